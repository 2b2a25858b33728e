package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/diewo77/invoice-pay/internal/catalog"
	"github.com/diewo77/invoice-pay/internal/checkout"
	"github.com/diewo77/invoice-pay/internal/db"
	"github.com/diewo77/invoice-pay/internal/gateway"
	"github.com/diewo77/invoice-pay/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errPaymentFailed = errors.New("payment failed")

func payCmd() *cobra.Command {
	var (
		in       cardFlags
		file     string
		endpoint string
		dryRun   bool
		record   bool
	)
	cmd := &cobra.Command{
		Use:   "pay INVOICE_ID",
		Short: "Pay one invoice by card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.App.InvoicesFile
			}
			if endpoint == "" {
				endpoint = cfg.Payment.Endpoint
			}
			cat, err := catalog.Load(file)
			if err != nil {
				return err
			}
			inv, err := cat.Find(args[0])
			if err != nil {
				return err
			}

			var gw gateway.Gateway = gateway.NewClient(endpoint)
			if dryRun {
				gw = gateway.Func(func(ctx context.Context, req gateway.ChargeRequest) (gateway.Ack, error) {
					zap.L().Named("dry_run").Info("Charge skipped", zap.String("invoice_id", req.InvoiceID))
					return gateway.Ack{"dry_run": true}, nil
				})
			}

			svc := services.NewInvoiceService(cfg.Payment.ServiceFee)
			opts := []checkout.SubmitterOption{
				checkout.WithFee(svc.Fee()),
				checkout.WithTimeout(cfg.Payment.Timeout),
			}
			if record {
				conn, err := db.Open(cfg.Database)
				if err != nil {
					return err
				}
				if err := db.Migrate(conn); err != nil {
					return err
				}
				opts = append(opts, checkout.WithRecorder(services.NewAttemptStore(conn)))
			}

			out := cmd.OutOrStdout()
			flow := checkout.NewFlow(checkout.NewSubmitter(gw, opts...), checkout.Hooks{
				OnSuccess: func(s checkout.Success) { printReceipt(cmd, s) },
			})
			if err := flow.Open(inv); err != nil {
				return err
			}
			defer func() { _ = flow.Close() }()

			values := in.values()
			for _, field := range checkout.Fields {
				if values[field] == "" {
					continue
				}
				if _, err := flow.Set(field, values[field]); err != nil {
					return err
				}
			}

			fmt.Fprintf(out, "Paying %s (%s): $%s + $%s fee\n",
				inv.ID, inv.Vendor, inv.Amount.StringFixed(2), svc.Fee().StringFixed(2))
			outcome, err := flow.Submit(cmd.Context())
			var verr *checkout.ValidationError
			if errors.As(err, &verr) {
				fields := make([]string, 0, len(verr.Violations))
				for field := range verr.Violations {
					fields = append(fields, field)
				}
				sort.Strings(fields)
				for _, field := range fields {
					fmt.Fprintf(out, "  %s: %s\n", field, verr.Violations[field])
				}
				return errInvalidInput
			}
			if err != nil {
				return err
			}
			if f, ok := outcome.(checkout.Failure); ok {
				fmt.Fprintf(out, "Payment failed: %s\n", f.Reason)
				return errPaymentFailed
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Invoice YAML file (default $INVOICES_FILE)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Payment endpoint (default $PAYMENT_ENDPOINT)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Accept the charge locally instead of calling the endpoint")
	cmd.Flags().BoolVar(&record, "record", false, "Record the attempt in the ledger database")
	return cmd
}

func printReceipt(cmd *cobra.Command, s checkout.Success) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Payment successful")
	fmt.Fprintf(out, "  Ref number:   %s\n", s.ConfirmationRef)
	fmt.Fprintf(out, "  Payment time: %s\n", s.Timestamp.Format("02 Jan 2006, 15:04"))
	fmt.Fprintf(out, "  Amount:       $%s\n", s.AmountCharged.StringFixed(2))
	fmt.Fprintf(out, "  Fee:          $%s\n", s.FeeCharged.StringFixed(2))
	fmt.Fprintf(out, "  Total:        $%s\n", s.Total().StringFixed(2))
}
