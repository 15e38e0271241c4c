package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// Deal — сырой кандидат из фида (лот до обогащения).
type Deal struct {
	ID          string
	Title       string
	Description string
	Price       float64 // listed price, linear currency units
	URL         string
	FetchedAt   time.Time
}

func (d Deal) Valid() bool {
	return d.ID != "" && d.Price > 0
}

// EnrichedDeal is a Deal with the normalized description attached.
// Immutable once produced by the preprocessor.
type EnrichedDeal struct {
	Deal
	Normalized string
}

// CanonicalDealID derives the dedup identity for a listing. The URL wins when
// it parses: scheme and host lowercased, query/fragment stripped, so the same
// listing re-scraped with tracking parameters maps to one ID. Otherwise a
// normalized title+price hash is used.
func CanonicalDealID(rawURL, title string, price float64) string {
	if rawURL != "" {
		if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" && u.Host != "" {
			u.Scheme = strings.ToLower(u.Scheme)
			u.Host = strings.ToLower(u.Host)
			u.RawQuery = ""
			u.Fragment = ""
			u.Path = strings.TrimRight(u.Path, "/")

			return u.String()
		}
	}

	normalized := strings.ToLower(strings.Join(strings.Fields(title), " "))
	cents := int64(math.Round(price * 100))

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", normalized, cents)))

	return "deal:" + hex.EncodeToString(sum[:8])
}
