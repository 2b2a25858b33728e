package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrRejected = errors.New("payment rejected")
	ErrBadAck   = errors.New("unreadable acknowledgement")
)

const maxAckBytes = 1 << 20

// Client posts charges as JSON to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	l          *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger replaces the default named global logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.l = l }
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		// The submit deadline comes from the caller's context; this is only a backstop.
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		l:          zap.L().Named("payment_gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL charges are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Charge(ctx context.Context, req ChargeRequest) (Ack, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "Failed marshal charge request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "Failed new request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.l.Warn(
			"Failed do request",
			zap.String("invoice_id", req.InvoiceID),
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "Failed do request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAckBytes))
	if err != nil {
		return nil, errors.Wrap(err, "Failed read all body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.l.Warn(
			"Payment endpoint returned non-success status",
			zap.String("invoice_id", req.InvoiceID),
			zap.String("request_id", req.RequestID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.Wrapf(ErrRejected, "status %d", resp.StatusCode)
	}
	ack, err := decodeAck(raw)
	if err != nil {
		c.l.Warn(
			"Failed decode acknowledgement",
			zap.String("invoice_id", req.InvoiceID),
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		return nil, err
	}
	c.l.Debug("Payment acknowledged",
		zap.String("invoice_id", req.InvoiceID),
		zap.String("request_id", req.RequestID),
	)
	return ack, nil
}

// decodeAck accepts any JSON value; non-object values are kept under "ack".
func decodeAck(raw []byte) (Ack, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.Wrap(ErrBadAck, "empty body")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrap(ErrBadAck, err.Error())
	}
	if obj, ok := v.(map[string]any); ok {
		return Ack(obj), nil
	}
	return Ack{"ack": v}, nil
}
