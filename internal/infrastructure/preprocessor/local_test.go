package preprocessor_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/internal/infrastructure/preprocessor"
	"dealradar/pkg/errcodes"
)

func TestLocalNormalize(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	local := preprocessor.NewLocal()

	deal := entity.Deal{
		ID:          "d1",
		Title:       "  Cordless   Drill ",
		Description: "<p>18V  brushless</p>\n\twith charger",
		Price:       79.99,
	}

	enriched, err := local.Normalize(ctx, deal)
	rq.NoError(err)
	rq.Equal("Cordless Drill 18V brushless with charger", enriched.Normalized)
	rq.Equal(deal.ID, enriched.ID, "the raw deal rides along unchanged")

	// Same input, same output.
	again, err := local.Normalize(ctx, deal)
	rq.NoError(err)
	rq.Equal(enriched.Normalized, again.Normalized)
}

func TestLocalNormalizeEmptyText(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	local := preprocessor.NewLocal()

	_, err := local.Normalize(ctx, entity.Deal{ID: "d1", Title: "  ", Description: "<br/>"})
	rq.Error(err)
	rq.True(domain.CodeIs(err, errcodes.NormalizeFailed))
}

func TestLocalNormalizeBoundsLength(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	local := preprocessor.NewLocal()

	deal := entity.Deal{ID: "d1", Title: "x", Description: strings.Repeat("word ", 1000)}

	enriched, err := local.Normalize(ctx, deal)
	rq.NoError(err)
	rq.LessOrEqual(len(enriched.Normalized), 2000)
}

func TestLocalNormalizeTruncatesOnRuneBoundary(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	local := preprocessor.NewLocal()

	// Кириллица — два байта на руну: лимит в 2000 байт попадает внутрь руны.
	deal := entity.Deal{ID: "d1", Title: "Дрель", Description: strings.Repeat("ю", 1500)}

	enriched, err := local.Normalize(ctx, deal)
	rq.NoError(err)
	rq.LessOrEqual(len(enriched.Normalized), 2000)
	rq.True(utf8.ValidString(enriched.Normalized))
}
