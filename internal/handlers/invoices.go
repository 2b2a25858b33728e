package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/invoice-pay/httpx"
	"github.com/diewo77/invoice-pay/internal/catalog"
	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/diewo77/invoice-pay/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AttemptLister reads the payment attempt ledger.
type AttemptLister interface {
	ListByInvoice(ctx context.Context, invoiceID string) ([]models.PaymentAttempt, error)
}

type InvoiceHandler struct {
	Catalog  *catalog.Catalog
	Svc      *services.InvoiceService
	Ledger   AttemptLister
	Now      func() time.Time
	l        *zap.Logger
}

// NewInvoiceHandler serves the invoice list. attempts may be nil when no
// ledger is configured.
func NewInvoiceHandler(cat *catalog.Catalog, svc *services.InvoiceService, attempts AttemptLister) *InvoiceHandler {
	return &InvoiceHandler{
		Catalog:  cat,
		Svc:      svc,
		Ledger:   attempts,
		Now:      time.Now,
		l:        zap.L().Named("invoice_handler"),
	}
}

type invoiceView struct {
	models.Invoice
	Fee     decimal.Decimal `json:"fee"`
	Total   decimal.Decimal `json:"total"`
	Overdue bool            `json:"overdue"`
}

func (h *InvoiceHandler) view(inv models.Invoice) invoiceView {
	return invoiceView{
		Invoice: inv,
		Fee:     h.Svc.Fee(),
		Total:   h.Svc.PayableTotal(&inv),
		Overdue: inv.IsOverdue(h.Now()),
	}
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invs := h.Catalog.All()
	items := make([]invoiceView, 0, len(invs))
	for _, inv := range invs {
		items = append(items, h.view(inv))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": h.Svc.OutstandingTotal(invs),
	})
}

// View: GET /invoices/{id}
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Catalog.Find(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(inv))
}

// Attempts: GET /invoices/{id}/attempts
func (h *InvoiceHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Catalog.Find(id); errors.Is(err, catalog.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		return
	}
	items := []models.PaymentAttempt{}
	if h.Ledger != nil {
		got, err := h.Ledger.ListByInvoice(r.Context(), id)
		if err != nil {
			h.l.Error("Failed list attempts", zap.String("invoice_id", id), zap.Error(err))
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_attempts", nil)
			return
		}
		if got != nil {
			items = got
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}
