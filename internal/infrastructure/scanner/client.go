package scanner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/pkg/contextx"
	"dealradar/pkg/errcodes"
	"dealradar/pkg/httpx"
	"dealradar/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Client pulls candidate deals from the HTTP feed. Responses are bounded:
// the feed may return anything, the client hands over at most maxDeals valid
// candidates.
type Client struct {
	baseURL    string
	maxDeals   int
	httpClient *http.Client
}

func NewClient(baseURL, apiToken string, timeout time.Duration, maxDeals int) *Client {
	transport := http.RoundTripper(http.DefaultTransport)

	if apiToken != "" {
		transport = httpx.NewAuthBearerRoundTripper(transport, staticAuthenticator{token: apiToken})
	}

	return &Client{
		baseURL:  baseURL,
		maxDeals: maxDeals,
		httpClient: &http.Client{ //nolint:exhaustruct
			Timeout: timeout,
			Transport: httpx.NewLoggingRoundTripper(
				transport,
				httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
				httpx.WithLogFieldMaxLen(2048),
			),
		},
	}
}

type feedItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"published_at"`
}

// FetchCandidates returns the current feed page as an ordered list of deals.
// Items without a usable identity or with a non-positive price are dropped.
func (c *Client) FetchCandidates(ctx context.Context) ([]entity.Deal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/deals", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.FetchFailed, "deal feed request failed")
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewError(
			errcodes.FetchFailed,
			fmt.Sprintf("deal feed replied %d", resp.StatusCode),
		)
	}

	var items []feedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, domain.WrapError(err, errcodes.FetchFailed, "deal feed decode failed")
	}

	deals := make([]entity.Deal, 0, len(items))

	for _, item := range items {
		if len(deals) >= c.maxDeals {
			break
		}

		deal := entity.Deal{
			ID:          entity.CanonicalDealID(item.URL, item.Title, item.Price),
			Title:       item.Title,
			Description: item.Description,
			Price:       item.Price,
			URL:         item.URL,
			FetchedAt:   time.Now(),
		}

		if fetched, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			deal.FetchedAt = fetched
		}

		if !deal.Valid() {
			logger(ctx).Warn("dropping invalid feed item", "title", item.Title, "price", item.Price)
			continue
		}

		deals = append(deals, deal)
	}

	return deals, nil
}

type staticAuthenticator struct {
	token string
}

func (a staticAuthenticator) Authenticate(context.Context) error { return nil }

func (a staticAuthenticator) BearerToken() string { return a.token }
