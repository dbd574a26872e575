package delegation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/domain/model"
)

// ErrEmptyTxID indicates the delegation service accepted the request but returned no transaction.
var ErrEmptyTxID = errors.New("delegation service returned empty tx id")

// TooManyRequestsError represents rate limiting signal from delegation service.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// StatusError is a non-retryable rejection from the delegation service.
type StatusError struct {
	Code    int
	Message string
}

func (e StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("delegation rejected: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("delegation rejected: %d %s", e.Code, e.Message)
}

// HTTPClient delegates energy through the delegation service HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	backOff    func() backoff.BackOff
}

type request struct {
	TargetAddress  string          `json:"target_address"`
	ResourceAmount int64           `json:"resource_amount"`
	ExpiryHours    decimal.Decimal `json:"expiry_hours"`
	NetworkID      string          `json:"network_id"`
	TxID           string          `json:"tx_id"`
	OrderNumber    string          `json:"order_number"`
}

type response struct {
	TxID  string `json:"tx_id"`
	Error string `json:"error,omitempty"`
}

// NewHTTPClient creates delegation client. timeout bounds one DelegateEnergy call including retries.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse delegation url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("delegation url must be absolute")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    parsed,
		timeout:    timeout,
		logger:     logger.Named("delegation"),
		httpClient: &http.Client{Timeout: timeout},
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxElapsedTime = timeout
			return b
		},
	}, nil
}

// DelegateEnergy asks the service to delegate req.ResourceAmount to req.TargetAddress.
// Rate limiting and 5xx answers are retried until the client timeout elapses.
func (c *HTTPClient) DelegateEnergy(ctx context.Context, req model.DelegationRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(request{
		TargetAddress:  req.TargetAddress,
		ResourceAmount: req.ResourceAmount,
		ExpiryHours:    req.ExpiryHours,
		NetworkID:      req.NetworkID,
		TxID:           req.TxID,
		OrderNumber:    req.OrderNumber,
	})
	if err != nil {
		return "", err
	}

	var txID string
	attempt := func() error {
		id, err := c.post(ctx, body, req.OrderNumber)
		if err != nil {
			var tm TooManyRequestsError
			if errors.As(err, &tm) && tm.RetryAfter > 0 {
				select {
				case <-time.After(tm.RetryAfter):
				case <-ctx.Done():
					return backoff.Permanent(ctx.Err())
				}
			}
			return err
		}
		txID = id
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("delegation attempt failed",
			zap.String("order", req.OrderNumber), zap.Duration("retry_in", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(attempt, backoff.WithContext(c.backOff(), ctx), notify); err != nil {
		return "", err
	}
	return txID, nil
}

func (c *HTTPClient) post(ctx context.Context, body []byte, orderNumber string) (string, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/delegations")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Idempotency-Key", orderNumber)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var data response
		if err := json.Unmarshal(raw, &data); err != nil {
			return "", backoff.Permanent(fmt.Errorf("decode delegation response: %w", err))
		}
		if data.TxID == "" {
			return "", backoff.Permanent(ErrEmptyTxID)
		}
		return data.TxID, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Error("delegation request failed", zap.Int("status", resp.StatusCode), zap.ByteString("body", raw))
		return "", fmt.Errorf("delegation error: %s", resp.Status)
	default:
		var data response
		_ = json.Unmarshal(raw, &data)
		return "", backoff.Permanent(StatusError{Code: resp.StatusCode, Message: data.Error})
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return time.Second
}
