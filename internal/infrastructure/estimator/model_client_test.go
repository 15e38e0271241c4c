package estimator_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/internal/infrastructure/estimator"
	"dealradar/pkg/errcodes"
)

func testDeal(id string) entity.EnrichedDeal {
	return entity.EnrichedDeal{
		Deal:       entity.Deal{ID: id, Price: 10},
		Normalized: "cordless drill 18v",
	}
}

func TestSpecialistPredict(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		rq.Equal("/predict", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price":129.5}`))
	}))
	defer server.Close()

	client := estimator.NewSpecialist(server.URL, time.Second)
	rq.Equal("specialist", client.Name())

	price, err := client.Predict(ctx, testDeal("d1"))
	rq.NoError(err)
	rq.InDelta(129.5, price, 1e-9)

	// Second call for the same deal is served from the cache.
	price, err = client.Predict(ctx, testDeal("d1"))
	rq.NoError(err)
	rq.InDelta(129.5, price, 1e-9)
	rq.Equal(int32(1), calls.Load())
}

func TestNeuralPredictExponentiates(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price":4.0}`))
	}))
	defer server.Close()

	client := estimator.NewNeural(server.URL, time.Second)

	price, err := client.Predict(ctx, testDeal("d2"))
	rq.NoError(err)
	rq.InDelta(math.Exp(4.0), price, 1e-9)
}

func TestPredictRejectsUnusablePrice(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price":-5}`))
	}))
	defer server.Close()

	client := estimator.NewSpecialist(server.URL, time.Second)

	_, err := client.Predict(ctx, testDeal("d3"))
	rq.Error(err)
	rq.True(domain.CodeIs(err, errcodes.EstimationFailed))
}

func TestPredictUpstreamFailure(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := estimator.NewNeural(server.URL, time.Second)

	_, err := client.Predict(ctx, testDeal("d4"))
	rq.Error(err)
	rq.True(domain.CodeIs(err, errcodes.EstimationFailed))
}
