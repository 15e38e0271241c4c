package preprocessor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/pkg/errcodes"
	"dealradar/pkg/httpx"
	"dealradar/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// Remote asks a text-normalization endpoint (the summarization model) to
// rewrite the listing description for the price models.
type Remote struct {
	baseURL    string
	httpClient *http.Client
	fallback   Local
}

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL: baseURL,
		httpClient: &http.Client{ //nolint:exhaustruct
			Timeout: timeout,
			Transport: httpx.NewLoggingRoundTripper(
				http.DefaultTransport,
				httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
				httpx.WithLogFieldMaxLen(2048),
			),
		},
		fallback: NewLocal(),
	}
}

type normalizeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type normalizeResponse struct {
	Normalized string `json:"normalized"`
}

func (r *Remote) Normalize(ctx context.Context, deal entity.Deal) (entity.EnrichedDeal, error) {
	payload, err := json.Marshal(normalizeRequest{
		Title:       deal.Title,
		Description: deal.Description,
	})
	if err != nil {
		return entity.EnrichedDeal{}, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		r.baseURL+"/normalize",
		bytes.NewReader(payload),
	)
	if err != nil {
		return entity.EnrichedDeal{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return entity.EnrichedDeal{}, domain.WrapError(err, errcodes.NormalizeFailed, "normalize request failed")
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.EnrichedDeal{}, domain.NewError(
			errcodes.NormalizeFailed,
			fmt.Sprintf("normalize endpoint replied %d", resp.StatusCode),
		)
	}

	var body normalizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entity.EnrichedDeal{}, domain.WrapError(err, errcodes.NormalizeFailed, "normalize decode failed")
	}

	if body.Normalized == "" {
		// Модель ничего не вернула — чистим текст локально.
		return r.fallback.Normalize(ctx, deal)
	}

	return entity.EnrichedDeal{
		Deal:       deal,
		Normalized: body.Normalized,
	}, nil
}
