package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/diewo77/invoice-pay/internal/gateway"
	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func testInvoice() models.Invoice {
	return models.Invoice{
		ID:        "INV-2025-008",
		Vendor:    "Office Rent LLC",
		IssueDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("5000.00"),
		Priority:  models.PriorityCritical,
	}
}

func validForm() Form {
	return Form{
		Email:          "you@example.com",
		CardNumber:     "4532 0151 1283 0366",
		Expiry:         "12/30",
		CVC:            "123",
		CardholderName: "Ada King Lovelace",
		Country:        CountryCanada,
		Zip:            "10001",
	}
}

// fillValid types the valid form into an open flow, one field at a time.
func fillValid(f *Flow) error {
	form := validForm()
	for _, field := range Fields {
		val, _ := form.Get(field)
		if _, err := f.Set(field, val); err != nil {
			return err
		}
	}
	return nil
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []gateway.ChargeRequest
	err   error
}

func (g *fakeGateway) Charge(ctx context.Context, req gateway.ChargeRequest) (gateway.Ack, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return gateway.Ack{"status": "ok"}, nil
}

func (g *fakeGateway) Calls() []gateway.ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]gateway.ChargeRequest, len(g.calls))
	copy(out, g.calls)
	return out
}

func (g *fakeGateway) setErr(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

type memRecorder struct {
	mu       sync.Mutex
	attempts []models.PaymentAttempt
	err      error
}

func (r *memRecorder) Record(ctx context.Context, a *models.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.attempts = append(r.attempts, *a)
	return nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[models.AttemptStatus]int
}

func (o *countingObserver) ObserveSubmission(status models.AttemptStatus, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[models.AttemptStatus]int)
	}
	o.counts[status]++
}

type transitionLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *transitionLog) record(from, to State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, string(from)+"->"+string(to))
}

func (l *transitionLog) Steps() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}
