package whoop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/garrettladley/pulse/internal/xhttp"
	"github.com/garrettladley/pulse/internal/xslog"
)

const (
	DefaultBaseURL = "https://api.prod.whoop.com/developer"

	// WHOOP allows 100 requests per minute per app.
	defaultRequestsPerMinute = 100
	defaultTimeout           = 30 * time.Second
)

type Client struct {
	User     UserService
	Cycle    CycleService
	Recovery RecoveryService
	Sleep    SleepService
	Workout  WorkoutService

	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	rateLimit  atomic.Pointer[RateLimitInfo]
}

func New(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	cfg := &clientConfig{
		baseURL:     DefaultBaseURL,
		tokenSource: tokenSource,
		logger:      slog.Default(),
		timeout:     defaultTimeout,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/defaultRequestsPerMinute), 10),
		base:        http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	transport := &whoopTransport{
		base: xhttp.NewTransport(
			xhttp.WithBase(cfg.base),
			xhttp.WithLimiter(cfg.limiter),
		),
		tokenSource: cfg.tokenSource,
	}

	c := &Client{
		baseURL:    cfg.baseURL,
		httpClient: xhttp.NewHTTPClient(transport, xhttp.WithTimeout(cfg.timeout)),
		logger:     cfg.logger,
	}

	c.User = &userService{client: c}
	c.Cycle = &cycleService{client: c}
	c.Recovery = &recoveryService{client: c}
	c.Sleep = &sleepService{client: c}
	c.Workout = &workoutService{client: c}

	return c
}

type clientConfig struct {
	baseURL     string
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	timeout     time.Duration
	limiter     *rate.Limiter
	base        http.RoundTripper
}

type Option func(*clientConfig)

func WithBaseURL(baseURL string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = baseURL }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

// WithLimiter replaces the default 100 req/min limiter. A nil limiter
// disables client-side throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(cfg *clientConfig) { cfg.limiter = l }
}

func WithTransport(base http.RoundTripper) Option {
	return func(cfg *clientConfig) { cfg.base = base }
}

// RateLimit returns the limits reported by the most recent response, if any.
func (c *Client) RateLimit() *RateLimitInfo {
	return c.rateLimit.Load()
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if info := c.rateLimit.Load(); info.Exhausted() {
		c.logger.WarnContext(ctx, "whoop quota exhausted, waiting for reset",
			slog.Time("resume_at", info.ResumeAt()))
		if err := waitForQuota(ctx, info, time.Now()); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.DebugContext(ctx, "whoop request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	info, err := ParseRateLimitHeaders(resp.Header, time.Now())
	switch {
	case err != nil:
		c.logger.DebugContext(ctx, "ignoring malformed rate limit headers", xslog.Error(err))
	case info != nil:
		c.rateLimit.Store(info)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp, path)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if err := go_json.NewDecoder(bytes.NewReader(body)).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w\nbody: %s", err, string(body))
		}
	}

	return nil
}

type whoopTransport struct {
	base        http.RoundTripper
	tokenSource oauth2.TokenSource
}

var _ http.RoundTripper = (*whoopTransport)(nil)

func (t *whoopTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}

	req = req.Clone(req.Context())
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
}
