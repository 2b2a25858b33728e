package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/diewo77/invoice-pay/internal/checkout"
	"github.com/spf13/cobra"
)

var errInvalidInput = errors.New("card details are not valid")

func checkCmd() *cobra.Command {
	var in cardFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Format and validate card details without paying",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := in.form()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			masked := form.Masked()
			fmt.Fprintf(out, "Card number: %s\n", form.CardNumber)
			fmt.Fprintf(out, "Brand:       %s\n", form.Brand())
			fmt.Fprintf(out, "Expiry:      %s\n", form.Expiry)
			fmt.Fprintf(out, "CVC:         %s\n", masked.CVC)

			v := form.Validate()
			// Only report fields that were given; check is also used on partial input.
			fields := make([]string, 0, len(v))
			for field := range v {
				if in.given(checkout.Field(field)) {
					fields = append(fields, field)
				}
			}
			if len(fields) == 0 {
				fmt.Fprintln(out, "Valid.")
				return nil
			}
			sort.Strings(fields)
			for _, field := range fields {
				fmt.Fprintf(out, "  %s: %s\n", field, v[field])
			}
			return errInvalidInput
		},
	}
	in.register(cmd)
	return cmd
}

// cardFlags are the form fields shared by check and pay.
type cardFlags struct {
	email, number, expiry, cvc, name, country, zip string
}

func (c *cardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "Payer email")
	cmd.Flags().StringVar(&c.number, "number", "", "Card number")
	cmd.Flags().StringVar(&c.expiry, "expiry", "", "Expiry date MM/YY")
	cmd.Flags().StringVar(&c.cvc, "cvc", "", "Card security code")
	cmd.Flags().StringVar(&c.name, "name", "", "Cardholder name")
	cmd.Flags().StringVar(&c.country, "country", "", "Country (United States, Brazil, Canada)")
	cmd.Flags().StringVar(&c.zip, "zip", "", "ZIP or postal code")
}

func (c *cardFlags) values() map[checkout.Field]string {
	return map[checkout.Field]string{
		checkout.FieldEmail:          c.email,
		checkout.FieldCardNumber:     c.number,
		checkout.FieldExpiry:         c.expiry,
		checkout.FieldCVC:            c.cvc,
		checkout.FieldCardholderName: c.name,
		checkout.FieldCountry:        c.country,
		checkout.FieldZip:            c.zip,
	}
}

func (c *cardFlags) given(field checkout.Field) bool {
	return c.values()[field] != ""
}

// form runs every given value through the formatter, in form order.
func (c *cardFlags) form() (checkout.Form, error) {
	var f checkout.Form
	values := c.values()
	for _, field := range checkout.Fields {
		raw := values[field]
		if raw == "" {
			continue
		}
		if _, err := f.Set(field, raw); err != nil {
			return checkout.Form{}, err
		}
	}
	return f, nil
}
