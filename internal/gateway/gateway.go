// Package gateway talks to the remote payment endpoint. The endpoint is an
// opaque collaborator: any 2xx reply carrying JSON is an acknowledgement and
// everything else is a failure.
package gateway

import (
	"context"
	"encoding/json"
)

// ChargeRequest is the wire body sent to the payment endpoint.
type ChargeRequest struct {
	Email      string      `json:"email"`
	CardNumber string      `json:"cardNumber"`
	Expiry     string      `json:"expiry"`
	CVV        string      `json:"cvv"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Country    string      `json:"country"`
	Zip        string      `json:"zip"`
	InvoiceID  string      `json:"invoiceId"`
	Amount     json.Number `json:"amount"`

	// RequestID is sent as the X-Request-ID header.
	RequestID string `json:"-"`
}

// Ack is the decoded acknowledgement returned by the endpoint.
type Ack map[string]any

// Gateway submits one charge and waits for it to settle.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Ack, error)
}

// Func adapts a plain function to Gateway.
type Func func(ctx context.Context, req ChargeRequest) (Ack, error)

func (f Func) Charge(ctx context.Context, req ChargeRequest) (Ack, error) {
	return f(ctx, req)
}
