package db

import (
	"time"

	"github.com/diewo77/invoice-pay/internal/config"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Open connects to the ledger database. Postgres connections are retried to
// give the server time to start.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch cfg.Driver {
	case config.DriverSQLite:
		conn, err := gorm.Open(sqlite.Open(cfg.DSN()), gcfg)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed open sqlite database %q", cfg.Path)
		}
		return conn, nil
	case config.DriverPostgres:
		l := zap.L().Named("db")
		var conn *gorm.DB
		var err error
		for i := 0; i < connectAttempts; i++ {
			conn, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				return conn, nil
			}
			l.Warn("Connect failed, retrying",
				zap.Int("attempt", i+1),
				zap.Int("of", connectAttempts),
				zap.Error(err),
			)
			time.Sleep(connectBackoff)
		}
		return nil, errors.Wrap(err, "Failed connect postgres")
	}
	return nil, errors.Errorf("unsupported driver %q", cfg.Driver)
}
