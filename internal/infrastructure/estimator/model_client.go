package estimator

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/pkg/errcodes"
	"dealradar/pkg/httpx"
	"dealradar/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const predictionCacheTTL = 5 * time.Minute

// ModelClient talks to one price-model inference server. The neural model
// reasons in log-space and its responses are exponentiated here, so every
// caller sees linear currency units. Predictions are cached briefly because
// repeated triggers tend to carry overlapping candidates.
type ModelClient struct {
	name       string
	baseURL    string
	logSpace   bool
	httpClient *http.Client
	cache      *cache.Cache
}

// NewSpecialist points at the fine-tuned pricing model, which answers in
// linear units.
func NewSpecialist(baseURL string, timeout time.Duration) *ModelClient {
	return newModelClient("specialist", baseURL, timeout, false)
}

// NewNeural points at the deep-network server, which answers in log-space.
func NewNeural(baseURL string, timeout time.Duration) *ModelClient {
	return newModelClient("neural", baseURL, timeout, true)
}

func newModelClient(name, baseURL string, timeout time.Duration, logSpace bool) *ModelClient {
	return &ModelClient{
		name:     name,
		baseURL:  baseURL,
		logSpace: logSpace,
		httpClient: &http.Client{ //nolint:exhaustruct
			Timeout: timeout,
			Transport: httpx.NewLoggingRoundTripper(
				http.DefaultTransport,
				httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
				httpx.WithLogFieldMaxLen(1024),
			),
		},
		cache: cache.New(predictionCacheTTL, predictionCacheTTL),
	}
}

func (c *ModelClient) Name() string {
	return c.name
}

type predictRequest struct {
	Description string `json:"description"`
}

type predictResponse struct {
	Price float64 `json:"price"`
}

func (c *ModelClient) Predict(ctx context.Context, deal entity.EnrichedDeal) (float64, error) {
	if cached, found := c.cache.Get(deal.ID); found {
		return cached.(float64), nil //nolint:forcetypeassert // cache only holds float64
	}

	payload, err := json.Marshal(predictRequest{Description: deal.Normalized})
	if err != nil {
		return 0, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/predict",
		bytes.NewReader(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.EstimationFailed, c.name+" request failed")
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, domain.NewError(
			errcodes.EstimationFailed,
			fmt.Sprintf("%s replied %d", c.name, resp.StatusCode),
		)
	}

	var body predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, domain.WrapError(err, errcodes.EstimationFailed, c.name+" decode failed")
	}

	price := body.Price
	if c.logSpace {
		price = math.Exp(price)
	}

	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, domain.NewError(
			errcodes.EstimationFailed,
			fmt.Sprintf("%s produced unusable price %f", c.name, price),
		)
	}

	c.cache.Set(deal.ID, price, cache.DefaultExpiration)

	return price, nil
}
