// Package checkoutapi talks to the payments API over HTTP.
package checkoutapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/domain"
	pkgerrors "github.com/kevin07696/checkout-kit/pkg/errors"
	pkghttp "github.com/kevin07696/checkout-kit/pkg/http"
	"github.com/kevin07696/checkout-kit/pkg/resilience"
)

const (
	statusPath = "services/PaymentInitiation/v1/status"

	// RequestIDHeader carries a fresh id per status request
	RequestIDHeader = "Idempotency-Key"

	maxResponseBytes = 64 << 10
)

// StatusClientConfig configures the status endpoint adapter
type StatusClientConfig struct {
	BaseURL        string
	RequestsPerSec float64 // 0 disables client-side rate limiting
	Burst          int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// DefaultStatusClientConfig returns a config for baseURL with a limit
// well above what a single poller sends.
func DefaultStatusClientConfig(baseURL string) StatusClientConfig {
	return StatusClientConfig{
		BaseURL:        baseURL,
		RequestsPerSec: 5,
		Burst:          2,
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
	}
}

type statusRequest struct {
	PaymentData string `json:"paymentData"`
}

type errorResponse struct {
	Status    int    `json:"status"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// StatusClient implements ports.StatusChecker against the payments API
type StatusClient struct {
	baseURL    *url.URL
	httpClient ports.HTTPClient
	logger     ports.Logger
	limiter    *rate.Limiter
	breaker    *resilience.CircuitBreaker
}

// NewStatusClient creates a status client with dependency injection
func NewStatusClient(cfg StatusClientConfig, httpClient ports.HTTPClient, logger ports.Logger) (*StatusClient, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst)
	}

	return &StatusClient{
		baseURL:    base,
		httpClient: httpClient,
		logger:     logger,
		limiter:    limiter,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

// NewStatusClientWithDefaults creates a status client with the tuned HTTP client
func NewStatusClientWithDefaults(baseURL string, timeout time.Duration, logger ports.Logger) (*StatusClient, error) {
	return NewStatusClient(
		DefaultStatusClientConfig(baseURL),
		pkghttp.NewHTTPClient(pkghttp.StatusClientConfig(), timeout),
		logger,
	)
}

// Breaker exposes the circuit breaker state for health checks
func (c *StatusClient) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// CheckStatus implements ports.StatusChecker
func (c *StatusClient) CheckStatus(ctx context.Context, clientKey, paymentData string) (*domain.StatusResponse, error) {
	if clientKey == "" {
		return nil, pkgerrors.NewValidationError("client_key", "client key is required")
	}
	if paymentData == "" {
		return nil, pkgerrors.NewValidationError("payment_data", "payment data is required")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var status *domain.StatusResponse
	err := c.breaker.Call(func() error {
		var callErr error
		status, callErr = c.doRequest(ctx, clientKey, paymentData)
		return callErr
	}, pkgerrors.IsRetriable)
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (c *StatusClient) doRequest(ctx context.Context, clientKey, paymentData string) (*domain.StatusResponse, error) {
	payload, err := json.Marshal(statusRequest{PaymentData: paymentData})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(clientKey), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	// Client key and payment data stay out of the logs
	c.logger.Debug("Requesting payment status", ports.String("request_id", requestID))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, pkgerrors.NewNetworkError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, pkgerrors.NewNetworkError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)

		c.logger.Warn("Status request rejected",
			ports.String("request_id", requestID),
			ports.Int("status_code", httpResp.StatusCode),
			ports.String("error_code", apiErr.ErrorCode))

		return nil, pkgerrors.FromStatusCode(httpResp.StatusCode, apiErr.Message)
	}

	var status domain.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		e := pkgerrors.NewAPIError("INVALID_RESPONSE", "failed to decode status response", pkgerrors.CategoryInvalidReply, true)
		e.Err = err
		return nil, e
	}
	if status.ResultCode == "" {
		return nil, pkgerrors.NewAPIError("INVALID_RESPONSE", "status response has no result code", pkgerrors.CategoryInvalidReply, true)
	}

	return &status, nil
}

func (c *StatusClient) endpoint(clientKey string) string {
	u := c.baseURL.JoinPath(statusPath)
	u.RawQuery = url.Values{"token": {clientKey}}.Encode()
	return u.String()
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, pkgerrors.NewValidationError("base_url", "base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Join(pkgerrors.NewValidationError("base_url", "base URL is malformed"), err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, pkgerrors.NewValidationError("base_url", "base URL must be http or https")
	}
	if u.Host == "" {
		return nil, pkgerrors.NewValidationError("base_url", "base URL has no host")
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}
