package db

import (
	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for the ledger tables.
// Invoices are supplied by the host and have no table.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.PaymentAttempt{},
	); err != nil {
		return errors.Wrap(err, "Failed migrate")
	}
	return nil
}
