package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"

	"github.com/JonMunkholm/orderimport/internal/core"
)

// maxCatalogBytes caps the size of a catalog response body.
const maxCatalogBytes = 32 << 20

// HTTPConfig configures an HTTPGateway.
type HTTPConfig struct {
	BaseURL         string
	APIToken        string // Used when the request context carries no session token
	Timeout         time.Duration
	MaxRetries      uint64
	RetryBackoff    time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// StatusError is a non-2xx response from the inventory service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inventory: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("inventory: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// HTTPGateway fetches catalogs from the inventory REST service:
//
//	GET {base}/products?warehouse_id=<id>
//
// Transport errors and 5xx responses are retried with exponential backoff.
// Consecutive upstream failures open a circuit breaker so a dead inventory
// service fails imports fast instead of tying up import slots.
type HTTPGateway struct {
	endpoint   *url.URL
	token      string
	client     *http.Client
	maxRetries uint64
	backoff    time.Duration
	breaker    *gobreaker.CircuitBreaker
}

// clientFailure carries a 4xx out of the breaker without counting it as an
// upstream failure.
type clientFailure struct {
	err error
}

// NewHTTPGateway creates an HTTPGateway. If client is nil a client with
// cfg.Timeout is used.
func NewHTTPGateway(cfg HTTPConfig, client *http.Client) (*HTTPGateway, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse inventory base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("inventory base url %q must be absolute", cfg.BaseURL)
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "inventory",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("inventory: circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &HTTPGateway{
		endpoint:   base.JoinPath("products"),
		token:      cfg.APIToken,
		client:     client,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
		breaker:    breaker,
	}, nil
}

// FetchCatalog implements core.InventoryGateway.
func (g *HTTPGateway) FetchCatalog(ctx context.Context, warehouseID string) ([]core.Product, error) {
	b, err := retry.NewExponential(g.backoff)
	if err != nil {
		return nil, fmt.Errorf("create retry backoff: %w", err)
	}
	b = retry.WithMaxRetries(g.maxRetries, b)

	var products []core.Product
	attempt := 0
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempt++
		out, err := g.breaker.Execute(func() (interface{}, error) {
			fetched, err := g.fetchOnce(ctx, warehouseID)
			var se *StatusError
			if errors.As(err, &se) && !se.Temporary() {
				return clientFailure{err: err}, nil
			}
			return fetched, err
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return err
			}
			if ctx.Err() != nil {
				return err
			}
			slog.Warn("inventory: catalog fetch failed",
				"warehouse_id", warehouseID, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}

		switch v := out.(type) {
		case clientFailure:
			return v.err
		case []core.Product:
			products = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (g *HTTPGateway) fetchOnce(ctx context.Context, warehouseID string) ([]core.Product, error) {
	u := *g.endpoint
	q := u.Query()
	q.Set("warehouse_id", warehouseID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build inventory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	token := core.SessionFromContext(ctx)
	if token == "" {
		token = g.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("read inventory response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	return core.DecodeCatalog(body)
}

// BreakerState returns the current circuit breaker state, for status pages.
func (g *HTTPGateway) BreakerState() string {
	return g.breaker.State().String()
}
