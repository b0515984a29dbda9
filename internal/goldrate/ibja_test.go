package goldrate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/srabbas1701/wealthlens/internal/goldrate"
	"github.com/srabbas1701/wealthlens/internal/models"
)

func TestIBJAFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rates/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("session"); got != "AM" {
			t.Errorf("expected session=AM, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"date":"2026-08-25","session":"AM","gold_999":"99450","gold_916":"91100"}`))
	}))
	defer srv.Close()

	client := goldrate.NewIBJAClientWithBaseURL(srv.URL)
	quote, err := client.Fetch(context.Background(), models.SessionAM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Source != models.RateSourceIBJA {
		t.Errorf("expected source IBJA, got %s", quote.Source)
	}
	if quote.GramsPerUnit != 10 {
		t.Errorf("IBJA quotes per 10 grams, got GramsPerUnit=%d", quote.GramsPerUnit)
	}
	if !quote.Price24K.Equal(decimal.NewFromInt(99450)) {
		t.Errorf("expected 99450, got %s", quote.Price24K)
	}
	if !quote.Price22K.Equal(decimal.NewFromInt(91100)) {
		t.Errorf("expected 91100, got %s", quote.Price22K)
	}
	if quote.Session != models.SessionAM {
		t.Errorf("expected session AM, got %q", quote.Session)
	}
}

func TestIBJAFetch_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := goldrate.NewIBJAClientWithBaseURL(srv.URL)
	_, err := client.Fetch(context.Background(), models.SessionAM)
	if !errors.Is(err, goldrate.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestIBJAFetch_EmptyBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := goldrate.NewIBJAClientWithBaseURL(srv.URL)
	_, err := client.Fetch(context.Background(), models.SessionPM)
	if !errors.Is(err, goldrate.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestIBJAFetch_MalformedPriceIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"date":"2026-08-25","session":"AM","gold_999":"n/a","gold_916":"91100"}`))
	}))
	defer srv.Close()

	client := goldrate.NewIBJAClientWithBaseURL(srv.URL)
	_, err := client.Fetch(context.Background(), models.SessionAM)
	if !errors.Is(err, goldrate.ErrUnavailable) {
		t.Errorf("a partial quote must surface as ErrUnavailable, got %v", err)
	}
}

func TestIBJAFetch_ConnectionRefusedIsUnavailable(t *testing.T) {
	// grab a port that is closed by the time we fetch
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := goldrate.NewIBJAClientWithBaseURL(url)
	_, err := client.Fetch(context.Background(), models.SessionAM)
	if !errors.Is(err, goldrate.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
