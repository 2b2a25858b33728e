package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/invoice-pay/card"
	"github.com/diewo77/invoice-pay/httpx"
	"github.com/diewo77/invoice-pay/internal/catalog"
	"github.com/diewo77/invoice-pay/internal/checkout"
	"github.com/diewo77/invoice-pay/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutHandler exposes checkout flows as JSON sessions.
type CheckoutHandler struct {
	Catalog  *catalog.Catalog
	Sessions *Sessions
	Sub      *checkout.Submitter
	Invoices *InvoiceHandler
	l        *zap.Logger
}

func NewCheckoutHandler(cat *catalog.Catalog, sessions *Sessions, sub *checkout.Submitter, invoices *InvoiceHandler) *CheckoutHandler {
	return &CheckoutHandler{
		Catalog:  cat,
		Sessions: sessions,
		Sub:      sub,
		Invoices: invoices,
		l:        zap.L().Named("checkout_handler"),
	}
}

type receiptView struct {
	checkout.Success
	Total decimal.Decimal `json:"total"`
}

type sessionView struct {
	ID         string                `json:"id"`
	State      checkout.State        `json:"state"`
	Invoice    *invoiceView          `json:"invoice,omitempty"`
	Form       checkout.Form         `json:"form"`
	Brand      card.Brand            `json:"brand"`
	Violations validation.Violations `json:"violations,omitempty"`
	Notice     string                `json:"notice,omitempty"`
	Receipt    *receiptView          `json:"receipt,omitempty"`
}

func newReceiptView(s checkout.Success) *receiptView {
	return &receiptView{Success: s, Total: s.Total()}
}

func (h *CheckoutHandler) view(sess *Session) sessionView {
	f := sess.Flow
	v := sessionView{
		ID:     sess.ID,
		State:  f.State(),
		Form:   f.Form().Masked(),
		Brand:  f.Brand(),
		Notice: f.Notice(),
	}
	if inv, ok := f.Invoice(); ok {
		iv := h.Invoices.view(inv)
		v.Invoice = &iv
	}
	if v.State == checkout.StateCollecting {
		v.Violations = f.Violations()
	}
	if s, ok := f.Outcome().(checkout.Success); ok {
		v.Receipt = newReceiptView(s)
	}
	return v
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, ok := h.Sessions.Get(r.PathValue("id"))
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "session_not_found", nil)
	}
	return sess, ok
}

func (h *CheckoutHandler) hooks(sessionID string) checkout.Hooks {
	l := h.l.With(zap.String("session_id", sessionID))
	return checkout.Hooks{
		OnSuccess: func(s checkout.Success) {
			l.Info("Payment confirmed",
				zap.String("ref_number", s.ConfirmationRef),
				zap.String("total", s.Total().StringFixed(2)),
				zap.Time("payment_time", s.Timestamp),
			)
		},
		OnFailure: func(f checkout.Failure) {
			l.Info("Payment not confirmed", zap.String("reason", f.Reason))
		},
		OnClose: func() {
			l.Debug("Checkout closed")
		},
	}
}

// Open: POST /checkout {"invoice_id": "..."}
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvoiceID string `json:"invoice_id"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.InvoiceID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", validation.Violations{"invoice_id": validation.CodeRequired})
		return
	}
	inv, err := h.Catalog.Find(req.InvoiceID)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		return
	}

	id := uuid.NewString()
	flow := checkout.NewFlow(h.Sub, h.hooks(id))
	if err := flow.Open(inv); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_open", nil)
		return
	}
	sess := h.Sessions.Add(id, flow)
	h.l.Debug("Checkout opened", zap.String("session_id", sess.ID), zap.String("invoice_id", inv.ID))
	httpx.JSON(w, http.StatusCreated, h.view(sess))
}

// View: GET /checkout/{id}
func (h *CheckoutHandler) View(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(sess))
}

// SetField: POST /checkout/{id}/fields {"field": "...", "value": "..."}
// Responds with the canonical value so the client can replace what was typed.
func (h *CheckoutHandler) SetField(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Field checkout.Field `json:"field"`
		Value string         `json:"value"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	value, err := sess.Flow.Set(req.Field, req.Value)
	switch {
	case errors.Is(err, checkout.ErrFormLocked):
		httpx.JSONError(w, http.StatusConflict, "invalid_state", map[string]any{"state": sess.Flow.State()})
		return
	case errors.Is(err, checkout.ErrUnknownField), errors.Is(err, checkout.ErrUnknownCountry):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_field", map[string]any{"field": req.Field})
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_set_field", nil)
		return
	}

	resp := map[string]any{
		"field": req.Field,
		"value": value,
		"brand": sess.Flow.Brand(),
	}
	if code, bad := sess.Flow.Violations()[string(req.Field)]; bad {
		resp["violation"] = code
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Submit: POST /checkout/{id}/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	out, err := sess.Flow.Submit(r.Context())
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_form", verr.Violations)
		return
	case errors.Is(err, checkout.ErrSubmitInFlight), errors.Is(err, checkout.ErrInvalidTransition):
		httpx.JSONError(w, http.StatusConflict, "invalid_state", map[string]any{"state": sess.Flow.State()})
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_submit", nil)
		return
	}

	switch o := out.(type) {
	case checkout.Success:
		httpx.JSON(w, http.StatusOK, map[string]any{
			"state":   sess.Flow.State(),
			"receipt": newReceiptView(o),
		})
	case checkout.Failure:
		httpx.JSONError(w, http.StatusPaymentRequired, "payment_failed", map[string]any{
			"reason": o.Reason,
			"state":  sess.Flow.State(),
		})
	}
}

// Close: POST /checkout/{id}/close
func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Flow.Close(); err != nil {
		httpx.JSONError(w, http.StatusConflict, "invalid_state", map[string]any{"state": sess.Flow.State()})
		return
	}
	h.Sessions.Remove(sess.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{"id": sess.ID, "state": checkout.StateIdle})
}
