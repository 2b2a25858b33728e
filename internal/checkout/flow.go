// Package checkout drives one card payment for one invoice: it owns the form,
// gates submission on validation and moves through
// idle -> collecting -> submitting -> success | failed -> collecting.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/diewo77/invoice-pay/card"
	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/diewo77/invoice-pay/validation"
	"go.uber.org/zap"
)

// Hooks are the signals a host receives. Every hook is optional and is
// called after the flow has released its lock.
type Hooks struct {
	OnSuccess    func(Success)
	OnFailure    func(Failure)
	OnClose      func()
	OnTransition func(from, to State)
}

// Flow is the state machine around one payment form. It is safe for
// concurrent use; the submitting state, not the lock, keeps a second request
// from being sent while one is in flight.
type Flow struct {
	mu    sync.Mutex
	sub   *Submitter
	hooks Hooks
	l     *zap.Logger

	state   State
	invoice *models.Invoice
	form    Form
	notice  string
	outcome Outcome
}

func NewFlow(sub *Submitter, hooks Hooks) *Flow {
	return &Flow{
		sub:   sub,
		hooks: hooks,
		l:     zap.L().Named("checkout_flow"),
		state: StateIdle,
	}
}

// events collects hook calls made under the lock so they run after it is released.
type events []func()

func (e events) fire() {
	for _, fn := range e {
		fn()
	}
}

// move must be called with f.mu held.
func (f *Flow) move(to State, ev *events) error {
	from := f.state
	if !flowTransitionChart.Allowed(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	f.state = to
	f.l.Debug("Transition", zap.String("from", string(from)), zap.String("to", string(to)))
	if h := f.hooks.OnTransition; h != nil {
		*ev = append(*ev, func() { h(from, to) })
	}
	return nil
}

// Open starts collecting card details for inv with an empty form.
func (f *Flow) Open(inv models.Invoice) error {
	var ev events
	f.mu.Lock()
	if err := f.move(StateCollecting, &ev); err != nil {
		f.mu.Unlock()
		return err
	}
	f.invoice = &inv
	f.form = Form{}
	f.notice = ""
	f.outcome = nil
	f.mu.Unlock()
	ev.fire()
	return nil
}

// Set formats raw into field and returns the stored value. Fields are only
// editable while collecting.
func (f *Flow) Set(field Field, raw string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateCollecting {
		return "", fmt.Errorf("%w: state %s", ErrFormLocked, f.state)
	}
	return f.form.Set(field, raw)
}

// Submit sends the form when it is valid. An invalid form returns a
// *ValidationError and leaves the state unchanged. A failed payment returns
// the Failure with a nil error and puts the flow back to collecting with the
// form untouched.
func (f *Flow) Submit(ctx context.Context) (Outcome, error) {
	var ev events
	f.mu.Lock()
	switch f.state {
	case StateCollecting:
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	default:
		state := f.state
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: submit in state %s", ErrInvalidTransition, state)
	}
	if v := f.form.ValidateAt(f.sub.Now()); !v.Empty() {
		f.mu.Unlock()
		return nil, &ValidationError{Violations: v}
	}
	form, inv := f.form, *f.invoice
	f.notice = ""
	_ = f.move(StateSubmitting, &ev)
	f.mu.Unlock()
	ev.fire()

	out := f.sub.Submit(ctx, form, inv)

	ev = nil
	f.mu.Lock()
	switch o := out.(type) {
	case Success:
		_ = f.move(StateSuccess, &ev)
		f.outcome = o
		if h := f.hooks.OnSuccess; h != nil {
			ev = append(ev, func() { h(o) })
		}
	case Failure:
		_ = f.move(StateFailed, &ev)
		f.notice = o.Reason
		if h := f.hooks.OnFailure; h != nil {
			ev = append(ev, func() { h(o) })
		}
		_ = f.move(StateCollecting, &ev)
	}
	f.mu.Unlock()
	ev.fire()
	return out, nil
}

// Close dismisses the form or the confirmation. The form is reset to empty
// whatever state it was in; closing while a request is in flight is refused.
func (f *Flow) Close() error {
	var ev events
	f.mu.Lock()
	switch f.state {
	case StateIdle:
		f.mu.Unlock()
		return nil
	case StateSubmitting:
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	if err := f.move(StateIdle, &ev); err != nil {
		f.mu.Unlock()
		return err
	}
	f.invoice = nil
	f.form = Form{}
	f.notice = ""
	f.outcome = nil
	if h := f.hooks.OnClose; h != nil {
		ev = append(ev, h)
	}
	f.mu.Unlock()
	ev.fire()
	return nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Form returns a copy of the current form.
func (f *Flow) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Invoice returns the invoice being paid; ok is false while idle.
func (f *Flow) Invoice() (inv models.Invoice, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invoice == nil {
		return models.Invoice{}, false
	}
	return *f.invoice, true
}

// Brand is inferred from the current card number.
func (f *Flow) Brand() card.Brand {
	return f.Form().Brand()
}

// Notice is the reason of the last failed submission, cleared on the next submit.
func (f *Flow) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Outcome returns the Success once the flow reached it, nil otherwise.
func (f *Flow) Outcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

func (f *Flow) Violations() validation.Violations {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form.ValidateAt(f.sub.Now())
}
