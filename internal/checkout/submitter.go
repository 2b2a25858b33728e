package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/diewo77/invoice-pay/card"
	"github.com/diewo77/invoice-pay/internal/gateway"
	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/diewo77/invoice-pay/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 30 * time.Second

	ReasonFailed  = "payment could not be processed"
	ReasonTimeout = "payment timed out"
)

// Recorder stores one ledger row per settled submission.
type Recorder interface {
	Record(ctx context.Context, attempt *models.PaymentAttempt) error
}

// Observer is told about every settled submission.
type Observer interface {
	ObserveSubmission(status models.AttemptStatus, elapsed time.Duration)
}

// Submitter turns a validated form and an invoice into exactly one charge
// request and maps the reply to an Outcome. It never retries.
type Submitter struct {
	gw       gateway.Gateway
	fee      decimal.Decimal
	timeout  time.Duration
	now      func() time.Time
	recorder Recorder
	observer Observer
	l        *zap.Logger
}

type SubmitterOption func(*Submitter)

func WithFee(fee decimal.Decimal) SubmitterOption {
	return func(s *Submitter) { s.fee = fee }
}

// WithTimeout bounds every submission; non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) SubmitterOption {
	return func(s *Submitter) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) { s.now = now }
}

func WithRecorder(r Recorder) SubmitterOption {
	return func(s *Submitter) { s.recorder = r }
}

func WithObserver(o Observer) SubmitterOption {
	return func(s *Submitter) { s.observer = o }
}

func WithLogger(l *zap.Logger) SubmitterOption {
	return func(s *Submitter) { s.l = l }
}

func NewSubmitter(gw gateway.Gateway, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		gw:      gw,
		fee:     services.ServiceFee,
		timeout: DefaultTimeout,
		now:     time.Now,
		l:       zap.L().Named("submitter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fee returns the service fee reported on successful outcomes.
func (s *Submitter) Fee() decimal.Decimal { return s.fee }

// Now returns the submitter's clock reading.
func (s *Submitter) Now() time.Time { return s.now() }

// Submit sends one charge for inv. The form is trusted to be valid already.
func (s *Submitter) Submit(ctx context.Context, form Form, inv models.Invoice) Outcome {
	attemptID := uuid.NewString()
	first, last := SplitName(form.CardholderName)
	req := gateway.ChargeRequest{
		Email:      form.Email,
		CardNumber: form.CardNumber,
		Expiry:     form.Expiry,
		CVV:        form.CVC,
		FirstName:  first,
		LastName:   last,
		Country:    string(form.CountryOrDefault()),
		Zip:        form.Zip,
		InvoiceID:  inv.ID,
		Amount:     json.Number(inv.Amount.String()),
		RequestID:  attemptID,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	_, err := s.gw.Charge(callCtx, req)
	elapsed := time.Since(started)

	attempt := &models.PaymentAttempt{
		AttemptID: attemptID,
		InvoiceID: inv.ID,
		Amount:    inv.Amount,
		Fee:       s.fee,
		CardBrand: string(form.Brand()),
		CardLast4: card.Last4(form.CardNumber),
	}

	var out Outcome
	if err != nil {
		reason := ReasonFailed
		if errors.Is(err, context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		s.l.Warn("Payment failed",
			zap.String("attempt_id", attemptID),
			zap.String("invoice_id", inv.ID),
			zap.String("card_brand", attempt.CardBrand),
			zap.String("card_last4", attempt.CardLast4),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		attempt.Status = models.AttemptFailed
		attempt.Reason = reason
		out = Failure{Reason: reason, Err: err}
	} else {
		success := Success{
			ConfirmationRef: inv.ID,
			AmountCharged:   inv.Amount,
			FeeCharged:      s.fee,
			Timestamp:       s.now(),
		}
		s.l.Info("Payment succeeded",
			zap.String("attempt_id", attemptID),
			zap.String("invoice_id", inv.ID),
			zap.String("amount", success.AmountCharged.StringFixed(2)),
			zap.String("fee", success.FeeCharged.StringFixed(2)),
			zap.Duration("elapsed", elapsed),
		)
		attempt.Status = models.AttemptSucceeded
		out = success
	}

	if s.observer != nil {
		s.observer.ObserveSubmission(attempt.Status, elapsed)
	}
	if s.recorder != nil {
		// The ledger write must not be cut short by the caller's deadline.
		if err := s.recorder.Record(context.WithoutCancel(ctx), attempt); err != nil {
			s.l.Error("Failed record payment attempt",
				zap.String("attempt_id", attemptID),
				zap.Error(err),
			)
		}
	}
	return out
}
