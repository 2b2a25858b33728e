package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/invoice-pay/internal/gateway"
	"github.com/diewo77/invoice-pay/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flowFixture struct {
	flow      *Flow
	gw        *fakeGateway
	log       *transitionLog
	successes []Success
	failures  []Failure
	closes    int
}

func newFlowFixture(t *testing.T, opts ...SubmitterOption) *flowFixture {
	t.Helper()
	fx := &flowFixture{gw: &fakeGateway{}, log: &transitionLog{}}
	opts = append([]SubmitterOption{WithClock(testClock)}, opts...)
	fx.flow = NewFlow(NewSubmitter(fx.gw, opts...), Hooks{
		OnSuccess:    func(s Success) { fx.successes = append(fx.successes, s) },
		OnFailure:    func(f Failure) { fx.failures = append(fx.failures, f) },
		OnClose:      func() { fx.closes++ },
		OnTransition: fx.log.record,
	})
	return fx
}

func TestFlow_SubmitSuccess(t *testing.T) {
	fx := newFlowFixture(t)
	assert.Equal(t, StateIdle, fx.flow.State())

	require.NoError(t, fx.flow.Open(testInvoice()))
	require.NoError(t, fillValid(fx.flow))

	out, err := fx.flow.Submit(context.Background())
	require.NoError(t, err)
	_, ok := out.(Success)
	require.True(t, ok)

	assert.Equal(t, StateSuccess, fx.flow.State())
	assert.Equal(t, []string{
		"idle->collecting",
		"collecting->submitting",
		"submitting->success",
	}, fx.log.Steps())

	require.Len(t, fx.successes, 1)
	s := fx.successes[0]
	assert.True(t, s.AmountCharged.Equal(testInvoice().Amount))
	assert.True(t, s.FeeCharged.Equal(decimal.RequireFromString("5.00")))
	assert.Equal(t, "INV-2025-008", s.ConfirmationRef)
	assert.Equal(t, s, fx.flow.Outcome())
	assert.Len(t, fx.gw.Calls(), 1)

	_, err = fx.flow.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	_, err = fx.flow.Set(FieldZip, "99999")
	assert.True(t, errors.Is(err, ErrFormLocked))
	assert.Len(t, fx.successes, 1, "success fires once")
}

func TestFlow_SubmitFailureKeepsFields(t *testing.T) {
	fx := newFlowFixture(t)
	fx.gw.setErr(errors.New("502 bad gateway"))

	require.NoError(t, fx.flow.Open(testInvoice()))
	require.NoError(t, fillValid(fx.flow))
	before := fx.flow.Form()

	out, err := fx.flow.Submit(context.Background())
	require.NoError(t, err)
	failure, ok := out.(Failure)
	require.True(t, ok)

	assert.Equal(t, StateCollecting, fx.flow.State())
	assert.Equal(t, []string{
		"idle->collecting",
		"collecting->submitting",
		"submitting->failed",
		"failed->collecting",
	}, fx.log.Steps())
	assert.Equal(t, before, fx.flow.Form())
	assert.Empty(t, fx.successes)
	require.Len(t, fx.failures, 1)
	assert.Equal(t, failure.Reason, fx.flow.Notice())
	assert.Nil(t, fx.flow.Outcome())

	// Retrying is a new explicit action with a new request.
	fx.gw.setErr(nil)
	out, err = fx.flow.Submit(context.Background())
	require.NoError(t, err)
	_, ok = out.(Success)
	assert.True(t, ok)
	assert.Len(t, fx.gw.Calls(), 2)
	assert.Equal(t, "", fx.flow.Notice())
	assert.Len(t, fx.successes, 1)
}

func TestFlow_SubmitInvalidIsRejected(t *testing.T) {
	fx := newFlowFixture(t)
	require.NoError(t, fx.flow.Open(testInvoice()))
	require.NoError(t, fillValid(fx.flow))
	_, err := fx.flow.Set(FieldCardNumber, "4532015112830367")
	require.NoError(t, err)

	out, err := fx.flow.Submit(context.Background())
	assert.Nil(t, out)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, validation.Violations{"card_number": validation.CodeInvalidCardNumber}, verr.Violations)
	assert.Equal(t, fx.flow.Violations(), verr.Violations)

	assert.Equal(t, StateCollecting, fx.flow.State())
	assert.Empty(t, fx.gw.Calls())
	assert.Equal(t, []string{"idle->collecting"}, fx.log.Steps())
}

func TestFlow_CloseResetsForm(t *testing.T) {
	tests := []struct {
		name       string
		gatewayErr error
		submit     bool
	}{
		{"while collecting", nil, false},
		{"after success", nil, true},
		{"after failure", errors.New("down"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFlowFixture(t)
			fx.gw.setErr(tt.gatewayErr)
			require.NoError(t, fx.flow.Open(testInvoice()))
			require.NoError(t, fillValid(fx.flow))
			if tt.submit {
				_, err := fx.flow.Submit(context.Background())
				require.NoError(t, err)
			}

			require.NoError(t, fx.flow.Close())
			assert.Equal(t, StateIdle, fx.flow.State())
			assert.Equal(t, 1, fx.closes)
			assert.True(t, fx.flow.Form().IsEmpty())
			assert.Equal(t, "", fx.flow.Notice())
			assert.Nil(t, fx.flow.Outcome())
			_, open := fx.flow.Invoice()
			assert.False(t, open)

			next := testInvoice()
			next.ID = "INV-2025-002"
			require.NoError(t, fx.flow.Open(next))
			assert.True(t, fx.flow.Form().IsEmpty(), "no leakage into a new attempt")
			inv, open := fx.flow.Invoice()
			assert.True(t, open)
			assert.Equal(t, "INV-2025-002", inv.ID)
		})
	}
}

func TestFlow_CloseWhileIdleIsNoop(t *testing.T) {
	fx := newFlowFixture(t)
	require.NoError(t, fx.flow.Close())
	assert.Equal(t, 0, fx.closes)
	assert.Empty(t, fx.log.Steps())
}

func TestFlow_StateGuards(t *testing.T) {
	fx := newFlowFixture(t)

	_, err := fx.flow.Set(FieldEmail, "you@example.com")
	assert.True(t, errors.Is(err, ErrFormLocked))
	_, err = fx.flow.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	require.NoError(t, fx.flow.Open(testInvoice()))
	assert.True(t, errors.Is(fx.flow.Open(testInvoice()), ErrInvalidTransition))

	_, err = fx.flow.Set(FieldCountry, "Atlantis")
	assert.True(t, errors.Is(err, ErrUnknownCountry))
}

func TestFlow_OneSubmissionInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	gw := gateway.Func(func(ctx context.Context, req gateway.ChargeRequest) (gateway.Ack, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(entered)
		<-release
		return gateway.Ack{"ok": true}, nil
	})
	flow := NewFlow(NewSubmitter(gw, WithClock(testClock)), Hooks{})
	require.NoError(t, flow.Open(testInvoice()))
	require.NoError(t, fillValid(flow))

	done := make(chan Outcome)
	go func() {
		out, _ := flow.Submit(context.Background())
		done <- out
	}()
	<-entered

	assert.Equal(t, StateSubmitting, flow.State())
	_, err := flow.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrSubmitInFlight))
	assert.True(t, errors.Is(flow.Close(), ErrSubmitInFlight))
	_, err = flow.Set(FieldZip, "00000")
	assert.True(t, errors.Is(err, ErrFormLocked))

	close(release)
	out := <-done
	_, ok := out.(Success)
	assert.True(t, ok)
	assert.Equal(t, StateSuccess, flow.State())
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestFlow_SubmitTimesOut(t *testing.T) {
	gw := gateway.Func(func(ctx context.Context, req gateway.ChargeRequest) (gateway.Ack, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	flow := NewFlow(NewSubmitter(gw, WithClock(testClock), WithTimeout(20*time.Millisecond)), Hooks{})
	require.NoError(t, flow.Open(testInvoice()))
	require.NoError(t, fillValid(flow))

	out, err := flow.Submit(context.Background())
	require.NoError(t, err)
	failure, ok := out.(Failure)
	require.True(t, ok)
	assert.Equal(t, ReasonTimeout, failure.Reason)
	assert.Equal(t, StateCollecting, flow.State())
	assert.Equal(t, ReasonTimeout, flow.Notice())
}

func TestFlow_BrandFollowsNumber(t *testing.T) {
	fx := newFlowFixture(t)
	require.NoError(t, fx.flow.Open(testInvoice()))
	_, _ = fx.flow.Set(FieldCardNumber, "371449635398431")
	assert.Equal(t, "American Express", string(fx.flow.Brand()))
	_, _ = fx.flow.Set(FieldCardNumber, "6011111111111117")
	assert.Equal(t, "Discover", string(fx.flow.Brand()))
}

func TestStateTransitionChart_Allowed(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateCollecting, true},
		{StateIdle, StateSubmitting, false},
		{StateCollecting, StateSubmitting, true},
		{StateCollecting, StateIdle, true},
		{StateCollecting, StateSuccess, false},
		{StateSubmitting, StateSuccess, true},
		{StateSubmitting, StateFailed, true},
		{StateSubmitting, StateIdle, false},
		{StateFailed, StateCollecting, true},
		{StateFailed, StateIdle, false},
		{StateSuccess, StateIdle, true},
		{StateSuccess, StateCollecting, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, flowTransitionChart.Allowed(tt.from, tt.to))
		})
	}
}
