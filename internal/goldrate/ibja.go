package goldrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/srabbas1701/wealthlens/internal/models"
)

// IBJA (India Bullion and Jewellers Association) publishes the reference
// gold rate twice a day (AM/PM) as rupees per 10 grams for 999 and 916
// fineness. It is the authoritative source; everything else is a proxy.
const ibjaDefaultBaseURL = "https://api.ibjarates.com"

// IBJAClient is an HTTP client for the IBJA rates API
type IBJAClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewIBJAClient creates a new IBJA client
func NewIBJAClient() *IBJAClient {
	return NewIBJAClientWithBaseURL(ibjaDefaultBaseURL)
}

// NewIBJAClientWithBaseURL creates a new IBJA client with a custom base URL (for testing)
func NewIBJAClientWithBaseURL(baseURL string) *IBJAClient {
	return &IBJAClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name identifies this adapter's source tag.
func (c *IBJAClient) Name() models.RateSource {
	return models.RateSourceIBJA
}

// ibjaRateResponse mirrors the IBJA API payload. Prices are strings in
// rupees per 10 grams.
type ibjaRateResponse struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Session string `json:"session"`
	Gold999 string `json:"gold_999"`
	Gold916 string `json:"gold_916"`
}

// Fetch retrieves the published rate for the given session. Any transport or
// payload problem surfaces as ErrUnavailable so the pipeline can fall back.
func (c *IBJAClient) Fetch(ctx context.Context, session models.Session) (*RawQuote, error) {
	params := url.Values{}
	if session != models.SessionNone {
		params.Set("session", string(session))
	}

	reqURL := c.baseURL + "/api/rates/latest"
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ibja request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ibja returned status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read ibja response: %v", ErrUnavailable, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: ibja returned empty body", ErrUnavailable)
	}

	var rateResp ibjaRateResponse
	if err := json.Unmarshal(body, &rateResp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal ibja response: %v", ErrUnavailable, err)
	}

	price999, err := decimal.NewFromString(rateResp.Gold999)
	if err != nil {
		return nil, fmt.Errorf("%w: bad gold_999 value %q", ErrUnavailable, rateResp.Gold999)
	}
	price916, err := decimal.NewFromString(rateResp.Gold916)
	if err != nil {
		return nil, fmt.Errorf("%w: bad gold_916 value %q", ErrUnavailable, rateResp.Gold916)
	}

	date, err := time.Parse("2006-01-02", rateResp.Date)
	if err != nil {
		// rate without a parseable date is still usable for today's run
		date = time.Now()
	}

	return &RawQuote{
		Source:       models.RateSourceIBJA,
		Date:         date,
		Session:      models.Session(rateResp.Session),
		Price24K:     price999,
		Price22K:     price916,
		GramsPerUnit: 10,
	}, nil
}
