package scanner_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dealradar/internal/domain"
	"dealradar/internal/infrastructure/scanner"
	"dealradar/pkg/errcodes"
)

func TestFetchCandidates(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"title":"Cordless Drill","description":"18V drill","price":79.99,"url":"https://deals.example.com/item/1","published_at":"2026-03-14T10:00:00Z"},
			{"title":"Broken Item","description":"no price","price":0,"url":"https://deals.example.com/item/2"},
			{"title":"Router","description":"wifi 6","price":120,"url":"https://deals.example.com/item/3"},
			{"title":"Overflow","description":"beyond the bound","price":10,"url":"https://deals.example.com/item/4"}
		]`))
	}))
	defer server.Close()

	client := scanner.NewClient(server.URL, "feed-token", time.Second, 2)

	deals, err := client.FetchCandidates(ctx)
	rq.NoError(err)
	rq.Equal("Bearer feed-token", gotAuth)

	// The zero-price item is dropped and the result is capped at maxDeals.
	rq.Len(deals, 2)
	rq.Equal("Cordless Drill", deals[0].Title)
	rq.Equal("Router", deals[1].Title)
	rq.Equal("https://deals.example.com/item/1", deals[0].ID)
	rq.Equal(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), deals[0].FetchedAt)
}

func TestFetchCandidatesUpstreamError(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := scanner.NewClient(server.URL, "", time.Second, 10)

	_, err := client.FetchCandidates(ctx)
	rq.Error(err)
	rq.True(domain.CodeIs(err, errcodes.FetchFailed))
}
