package services

import (
	"context"

	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AttemptStore is the gorm-backed payment attempt ledger.
type AttemptStore struct {
	db *gorm.DB
}

func NewAttemptStore(db *gorm.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

// Record inserts one attempt row.
func (s *AttemptStore) Record(ctx context.Context, attempt *models.PaymentAttempt) error {
	if attempt == nil {
		return errors.New("nil attempt")
	}
	if err := s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return errors.Wrapf(err, "Failed insert attempt %s", attempt.AttemptID)
	}
	return nil
}

// ListByInvoice returns the attempts for invoiceID, oldest first.
func (s *AttemptStore) ListByInvoice(ctx context.Context, invoiceID string) ([]models.PaymentAttempt, error) {
	var out []models.PaymentAttempt
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrapf(err, "Failed list attempts for %s", invoiceID)
	}
	return out, nil
}

// Paid reports whether invoiceID has at least one successful attempt.
func (s *AttemptStore) Paid(ctx context.Context, invoiceID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.PaymentAttempt{}).
		Where("invoice_id = ? AND status = ?", invoiceID, models.AttemptSucceeded).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrapf(err, "Failed count attempts for %s", invoiceID)
	}
	return n > 0, nil
}
