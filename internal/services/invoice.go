package services

import (
	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/shopspring/decimal"
)

// ServiceFee is the flat surcharge added to every invoice at payment time.
var ServiceFee = decimal.NewFromInt(5)

// InvoiceService computes what the payer is charged for an invoice.
type InvoiceService struct {
	fee decimal.Decimal
}

// NewInvoiceService uses ServiceFee when fee is zero.
func NewInvoiceService(fee decimal.Decimal) *InvoiceService {
	if fee.IsZero() {
		fee = ServiceFee
	}
	return &InvoiceService{fee: fee}
}

// Fee returns the flat service fee.
func (s *InvoiceService) Fee() decimal.Decimal { return s.fee }

// PayableTotal is the invoice amount plus the service fee.
func (s *InvoiceService) PayableTotal(inv *models.Invoice) decimal.Decimal {
	if inv == nil {
		return decimal.Zero
	}
	return inv.Amount.Add(s.fee)
}

// OutstandingTotal sums the amounts of the given invoices, fees excluded.
func (s *InvoiceService) OutstandingTotal(invoices []models.Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Amount)
	}
	return total
}
