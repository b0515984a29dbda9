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

// metals.dev is a commodity spot-price API used as the fallback when IBJA is
// down. It quotes per gram in INR and only for pure gold; the 22k price is
// derived downstream. Values from here are labeled indicative.
const metalsDevDefaultBaseURL = "https://api.metals.dev"

// MetalsDevClient is an HTTP client for the metals.dev spot API
type MetalsDevClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewMetalsDevClient creates a new metals.dev client
func NewMetalsDevClient(apiKey string) *MetalsDevClient {
	return NewMetalsDevClientWithBaseURL(apiKey, metalsDevDefaultBaseURL)
}

// NewMetalsDevClientWithBaseURL creates a new metals.dev client with a custom base URL (for testing)
func NewMetalsDevClientWithBaseURL(apiKey, baseURL string) *MetalsDevClient {
	return &MetalsDevClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name identifies this adapter's source tag.
func (c *MetalsDevClient) Name() models.RateSource {
	return models.RateSourceMetalsDev
}

type metalsDevResponse struct {
	Status string `json:"status"`
	Metal  struct {
		Price float64 `json:"price"` // INR per gram
	} `json:"metal"`
}

// Fetch retrieves the current gold spot price per gram. The session parameter
// is ignored; spot feeds have no AM/PM fixing.
func (c *MetalsDevClient) Fetch(ctx context.Context, _ models.Session) (*RawQuote, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("metal", "gold")
	params.Set("currency", "INR")
	params.Set("unit", "g")

	reqURL := c.baseURL + "/v1/metal/spot?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: metals.dev request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: metals.dev returned status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read metals.dev response: %v", ErrUnavailable, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: metals.dev returned empty body", ErrUnavailable)
	}

	var spotResp metalsDevResponse
	if err := json.Unmarshal(body, &spotResp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal metals.dev response: %v", ErrUnavailable, err)
	}

	if spotResp.Status != "success" || spotResp.Metal.Price <= 0 {
		return nil, fmt.Errorf("%w: metals.dev returned no usable price", ErrUnavailable)
	}

	return &RawQuote{
		Source:       models.RateSourceMetalsDev,
		Date:         time.Now(),
		Session:      models.SessionNone,
		Price24K:     decimal.NewFromFloat(spotResp.Metal.Price),
		GramsPerUnit: 1,
	}, nil
}
