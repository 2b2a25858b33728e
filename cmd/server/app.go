package main

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/invoice-pay/httpx"
	"github.com/diewo77/invoice-pay/internal/catalog"
	"github.com/diewo77/invoice-pay/internal/checkout"
	"github.com/diewo77/invoice-pay/internal/config"
	"github.com/diewo77/invoice-pay/internal/gateway"
	"github.com/diewo77/invoice-pay/internal/handlers"
	"github.com/diewo77/invoice-pay/internal/logging"
	"github.com/diewo77/invoice-pay/internal/metrics"
	"github.com/diewo77/invoice-pay/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	sessions *handlers.Sessions
	registry *prometheus.Registry

	invoices *handlers.InvoiceHandler
	checkout *handlers.CheckoutHandler
}

// NewApp wires the handlers. db may be nil, in which case attempts are not
// recorded and the attempts endpoint returns empty lists.
func NewApp(cfg *config.Config, cat *catalog.Catalog, gw gateway.Gateway, db *gorm.DB) (*App, error) {
	app := &App{
		mux:      http.NewServeMux(),
		db:       db,
		sessions: handlers.NewSessions(cfg.App.SessionTTL),
		registry: prometheus.NewRegistry(),
	}

	m := metrics.New(app.sessions.Len)
	if err := app.registry.Register(m); err != nil {
		return nil, err
	}

	svc := services.NewInvoiceService(cfg.Payment.ServiceFee)
	opts := []checkout.SubmitterOption{
		checkout.WithFee(svc.Fee()),
		checkout.WithTimeout(cfg.Payment.Timeout),
		checkout.WithObserver(m),
	}
	var ledger handlers.AttemptLister
	if db != nil {
		store := services.NewAttemptStore(db)
		opts = append(opts, checkout.WithRecorder(store))
		ledger = store
	}
	sub := checkout.NewSubmitter(gw, opts...)

	app.invoices = handlers.NewInvoiceHandler(cat, svc, ledger)
	app.checkout = handlers.NewCheckoutHandler(cat, app.sessions, sub, app.invoices)
	app.setupRoutes()
	return app, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	ih := a.invoices
	ch := a.checkout

	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET /metrics", metrics.Handler(a.registry))

	// Invoices (read-only, supplied by the host)
	a.mux.HandleFunc("GET /invoices", ih.List)
	a.mux.HandleFunc("GET /invoices/{id}", ih.View)
	a.mux.HandleFunc("GET /invoices/{id}/attempts", ih.Attempts)

	// Checkout sessions
	a.mux.HandleFunc("POST /checkout", ch.Open)
	a.mux.HandleFunc("GET /checkout/{id}", ch.View)
	a.mux.HandleFunc("POST /checkout/{id}/fields", ch.SetField)
	a.mux.HandleFunc("POST /checkout/{id}/submit", ch.Submit)
	a.mux.HandleFunc("POST /checkout/{id}/close", ch.Close)
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok", "sessions": a.sessions.Len()}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
			return
		}
		status["database"] = "ok"
	}
	httpx.JSON(w, http.StatusOK, status)
}

// sweepSessions drops idle checkout sessions until ctx is done.
func (a *App) sweepSessions(ctx context.Context, every time.Duration) {
	l := zap.L().Named("sweeper")
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := a.sessions.Sweep(now); n > 0 {
				l.Info("Expired checkout sessions", zap.Int("count", n))
			}
		}
	}
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return logging.Middleware(zap.L().Named("http"), next)
}
