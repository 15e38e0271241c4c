package preprocessor

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/pkg/errcodes"
)

const maxNormalizedLen = 2000

//nolint:gochecknoglobals
var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Local normalizes deal text without leaving the process: markup is
// stripped, whitespace collapsed, and the result bounded. A pure function of
// the input text.
type Local struct{}

func NewLocal() Local {
	return Local{}
}

func (Local) Normalize(_ context.Context, deal entity.Deal) (entity.EnrichedDeal, error) {
	text := strings.TrimSpace(deal.Title + "\n" + deal.Description)

	text = tagPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if text == "" {
		return entity.EnrichedDeal{}, domain.NewError(errcodes.NormalizeFailed, "deal has no usable text")
	}

	text = truncateRunes(text, maxNormalizedLen)

	return entity.EnrichedDeal{
		Deal:       deal,
		Normalized: text,
	}, nil
}

// truncateRunes обрезает строку до max байт по границе руны, чтобы не
// отдавать моделям битый UTF-8 на кириллических заголовках.
func truncateRunes(text string, max int) string {
	if len(text) <= max {
		return text
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut]
}
