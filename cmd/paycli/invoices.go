package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/diewo77/invoice-pay/internal/catalog"
	"github.com/diewo77/invoice-pay/internal/services"
	"github.com/spf13/cobra"
)

func invoicesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List the invoices offered for payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.App.InvoicesFile
			}
			cat, err := catalog.Load(file)
			if err != nil {
				return err
			}
			svc := services.NewInvoiceService(cfg.Payment.ServiceFee)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "ID\tVENDOR\tDUE\tPRIORITY\tAMOUNT\tFEE\tTOTAL\t")
			invs := cat.All()
			for i := range invs {
				inv := &invs[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
					inv.ID, inv.Vendor, inv.DueDate.Format(catalog.DateLayout), inv.Priority,
					inv.Amount.StringFixed(2), svc.Fee().StringFixed(2), svc.PayableTotal(inv).StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nTotal amount to pay: $%s\n", svc.OutstandingTotal(invs).StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Invoice YAML file (default $INVOICES_FILE)")
	return cmd
}
