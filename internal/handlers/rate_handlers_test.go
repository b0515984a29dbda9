package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/srabbas1701/wealthlens/internal/cache"
	"github.com/srabbas1701/wealthlens/internal/goldrate"
	"github.com/srabbas1701/wealthlens/internal/handlers"
	"github.com/srabbas1701/wealthlens/internal/models"
	"github.com/srabbas1701/wealthlens/internal/services"
)

type stubSource struct {
	quote *goldrate.RawQuote
	err   error
}

func (s *stubSource) Name() models.RateSource { return models.RateSourceIBJA }

func (s *stubSource) Fetch(_ context.Context, _ models.Session) (*goldrate.RawQuote, error) {
	return s.quote, s.err
}

type stubRateStore struct {
	latest *models.GoldRate
}

func (s *stubRateStore) Upsert(_ context.Context, rate *models.GoldRate) error {
	s.latest = rate
	return nil
}

func (s *stubRateStore) Latest(_ context.Context) (*models.GoldRate, error) {
	return s.latest, nil
}

type stubHoldingStore struct{}

func (stubHoldingStore) ListByKinds(_ context.Context, _ []models.HoldingKind) ([]models.Holding, error) {
	return nil, nil
}

func (stubHoldingStore) UpdateValue(_ context.Context, _ int64, _ decimal.Decimal, _ models.ValueConfidence, _ time.Time) error {
	return nil
}

type stubPortfolioStore struct{}

func (stubPortfolioStore) ListAffected(_ context.Context, _ []int64) ([]int64, error) {
	return nil, nil
}

func (stubPortfolioStore) SumHoldingValues(_ context.Context, _ int64) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, nil
}

func (stubPortfolioStore) UpdateAggregate(_ context.Context, _ *models.PortfolioAggregate) error {
	return nil
}

func rateRouter(source goldrate.Source, store *stubRateStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	memCache := cache.NewMemoryCache(time.Minute)
	normalizer := services.NewNormalizer(services.DefaultNormalizerConfig())
	cascadeSvc := services.NewCascadeService(stubHoldingStore{}, stubPortfolioStore{}, 2)
	pipelineSvc := services.NewPipelineService([]goldrate.Source{source}, normalizer, store, cascadeSvc, memCache)
	rateSvc := services.NewRateService(store, memCache)
	h := handlers.NewRateHandler(pipelineSvc, rateSvc)

	r := gin.New()
	r.POST("/api/rates/gold/refresh", h.Refresh)
	r.GET("/api/rates/gold/latest", h.Latest)
	return r
}

func validQuote() *goldrate.RawQuote {
	return &goldrate.RawQuote{
		Source:       models.RateSourceIBJA,
		Date:         time.Now(),
		Session:      models.SessionAM,
		Price24K:     decimal.NewFromInt(65000),
		GramsPerUnit: 10,
	}
}

func TestRefresh_Success(t *testing.T) {
	store := &stubRateStore{}
	r := rateRouter(&stubSource{quote: validQuote()}, store)

	req := httptest.NewRequest(http.MethodPost, "/api/rates/gold/refresh?session=AM", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result models.RefreshResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result.AcceptedSource != models.RateSourceIBJA {
		t.Errorf("expected IBJA, got %s", result.AcceptedSource)
	}
	if !result.Price24K.Equal(decimal.NewFromInt(6500)) {
		t.Errorf("expected 6500, got %s", result.Price24K)
	}
}

func TestRefresh_BadSession(t *testing.T) {
	r := rateRouter(&stubSource{quote: validQuote()}, &stubRateStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/rates/gold/refresh?session=NOON", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRefresh_AllSourcesDown(t *testing.T) {
	r := rateRouter(&stubSource{err: goldrate.ErrUnavailable}, &stubRateStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/rates/gold/refresh", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestRefresh_RejectedQuote(t *testing.T) {
	// per-gram quote three orders of magnitude out of band
	badQuote := &goldrate.RawQuote{
		Source:       models.RateSourceIBJA,
		Date:         time.Now(),
		Price24K:     decimal.NewFromInt(65000),
		GramsPerUnit: 1,
	}
	store := &stubRateStore{}
	r := rateRouter(&stubSource{quote: badQuote}, store)

	req := httptest.NewRequest(http.MethodPost, "/api/rates/gold/refresh", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if store.latest != nil {
		t.Error("rejected quote must not be persisted")
	}
}

func TestLatest_NoRateYet(t *testing.T) {
	r := rateRouter(&stubSource{quote: validQuote()}, &stubRateStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/rates/gold/latest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestLatest_LabelsProxyAsIndicative(t *testing.T) {
	store := &stubRateStore{latest: &models.GoldRate{
		RateDate:   time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		Price24K:   decimal.NewFromInt(6500),
		Price22K:   decimal.NewFromInt(5954),
		Source:     models.RateSourceMetalsDev,
		CapturedAt: time.Now(),
	}}
	r := rateRouter(&stubSource{quote: validQuote()}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/rates/gold/latest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp models.LatestRateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Indicative {
		t.Error("proxy-sourced rate should be labeled indicative")
	}
	if resp.Rate.Price24K.IsZero() {
		t.Error("latest must never serve a zero price")
	}
}

func TestLatest_OldRateLabeledStale(t *testing.T) {
	store := &stubRateStore{latest: &models.GoldRate{
		RateDate:   time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Price24K:   decimal.NewFromInt(4100),
		Source:     models.RateSourceIBJA,
		CapturedAt: time.Now(),
	}}
	r := rateRouter(&stubSource{err: goldrate.ErrUnavailable}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/rates/gold/latest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp models.LatestRateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Stale {
		t.Error("an old rate should be labeled stale, with its original date")
	}
	if got := resp.Rate.RateDate.Format("2006-01-02"); got != "2020-01-02" {
		t.Errorf("stale rate keeps its original date, got %s", got)
	}
	if resp.Indicative {
		t.Error("authoritative source should not be labeled indicative")
	}
}
