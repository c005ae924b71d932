package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/foodtrust/backend/internal/domain"
)

const (
	// DefaultRequestsPerHour is the FoodData Central quota for a standard key
	DefaultRequestsPerHour = 1000
	defaultTimeout         = 10 * time.Second
	limiterBurst           = 10
	maxAttempts            = 3
)

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      *zap.Logger
	debug       bool
}

var _ domain.USDAClient = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestsPerHour sets the client-side rate limit
func WithRequestsPerHour(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Limit(float64(n)/3600), limiterBurst)
		}
	}
}

// WithTimeout sets the per-request HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithBackoff replaces the retry delay schedule
func WithBackoff(backoff func(attempt int) time.Duration) Option {
	return func(c *Client) {
		if backoff != nil {
			c.backoff = backoff
		}
	}
}

// NewClient creates a new USDA API client
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(float64(DefaultRequestsPerHour)/3600), limiterBurst),
		backoff:     exponentialBackoff,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("usda")
	return c
}

// SetDebug toggles request/response debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns 500ms, 1s, 2s... for attempts 1, 2, 3...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return 500 * time.Millisecond * time.Duration(1<<(attempt-1))
}

// SearchByGTIN finds the branded food whose GTIN/UPC matches gtin
func (c *Client) SearchByGTIN(ctx context.Context, gtin string) (*domain.USDAFood, error) {
	params := url.Values{}
	params.Set("query", gtin)
	params.Set("dataType", "Branded")
	params.Set("pageSize", "10")

	var searchResp domain.USDASearchResponse
	if err := c.get(ctx, "/v1/foods/search", params, &searchResp); err != nil {
		return nil, err
	}

	want := strings.TrimLeft(gtin, "0")
	for i := range searchResp.Foods {
		food := &searchResp.Foods[i]
		if strings.TrimLeft(food.GTINUPC, "0") == want {
			c.logger.Debug("matched branded food by GTIN",
				zap.String("gtin", gtin),
				zap.Int("fdc_id", food.FdcID),
			)
			return food, nil
		}
	}

	c.logger.Info("no branded food matches GTIN",
		zap.String("gtin", gtin),
		zap.Int("candidates", len(searchResp.Foods)),
	)
	return nil, fmt.Errorf("gtin %s: %w", gtin, domain.ErrProductNotFound)
}

// GetFoodDetails retrieves a single food by FDC ID
func (c *Client) GetFoodDetails(ctx context.Context, fdcID string) (*domain.USDAFood, error) {
	var food domain.USDAFood
	if err := c.get(ctx, "/v1/food/"+url.PathEscape(fdcID), url.Values{}, &food); err != nil {
		return nil, err
	}
	return &food, nil
}

// get performs a rate-limited GET with retries for transient failures and
// decodes the JSON body into dst. 404 is reported as domain.ErrProductNotFound
// and never retried.
func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	params.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return err
			}
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// the next token is further away than the deadline
			return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("request failed", zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		if c.debug {
			c.logger.Debug("response",
				zap.String("path", path),
				zap.Int("status", status),
				zap.Int("bytes", len(body)),
			)
		}

		switch {
		case status == http.StatusOK:
			if err := json.Unmarshal(body, dst); err != nil {
				return fmt.Errorf("%w: decode response: %v", domain.ErrUSDAAPIFailure, err)
			}
			return nil
		case status == http.StatusNotFound:
			return domain.ErrProductNotFound
		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
			c.logger.Warn("transient API error",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Int("status", status),
			)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, status)
			if status == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("%w: %w", domain.ErrRateLimited, lastErr)
			}
		default:
			return fmt.Errorf("%w: status %d: %s", domain.ErrUSDAAPIFailure, status, truncate(body, 200))
		}
	}

	c.logger.Error("all retries failed", zap.String("path", path), zap.Error(lastErr))
	return lastErr
}

// doRequest executes a GET and returns the body and status code
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "FoodTrust/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read body: %v", domain.ErrUSDAAPIFailure, err)
	}
	return body, resp.StatusCode, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
