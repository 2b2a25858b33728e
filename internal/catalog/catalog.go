// Package catalog holds the host-owned collection of invoices offered for payment.
// A Catalog is built once (from literals or a YAML file) and passed to the
// handlers and the CLI; it is read-only afterwards.
package catalog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/diewo77/invoice-pay/validation"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DateLayout is the date format used in invoice files, e.g. 20-Feb-2025.
const DateLayout = "02-Jan-2006"

var ErrNotFound = errors.New("invoice not found")

// Catalog is an ordered, immutable set of invoices keyed by ID.
type Catalog struct {
	invoices []models.Invoice
	byID     map[string]int
}

// New builds a catalog, rejecting duplicate IDs, negative amounts and unknown priorities.
func New(invoices []models.Invoice) (*Catalog, error) {
	c := &Catalog{
		invoices: make([]models.Invoice, 0, len(invoices)),
		byID:     make(map[string]int, len(invoices)),
	}
	for _, inv := range invoices {
		v := make(validation.Violations)
		validation.Required("id", inv.ID, v)
		validation.NonNegative("amount", inv.Amount, v)
		if !inv.Priority.Valid() {
			v.Add("priority", validation.CodeInvalidPriority)
		}
		if !v.Empty() {
			return nil, fmt.Errorf("invoice %q: %v", inv.ID, v)
		}
		if _, dup := c.byID[inv.ID]; dup {
			return nil, fmt.Errorf("duplicate invoice id %q", inv.ID)
		}
		c.byID[inv.ID] = len(c.invoices)
		c.invoices = append(c.invoices, inv)
	}
	return c, nil
}

// All returns a copy of the invoices in file order.
func (c *Catalog) All() []models.Invoice {
	out := make([]models.Invoice, len(c.invoices))
	copy(out, c.invoices)
	return out
}

// Find returns the invoice with the given ID.
func (c *Catalog) Find(id string) (models.Invoice, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Invoice{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return c.invoices[i], nil
}

// Len returns the number of invoices.
func (c *Catalog) Len() int { return len(c.invoices) }

type fileInvoice struct {
	ID        string `yaml:"id"`
	Vendor    string `yaml:"vendor"`
	IssueDate string `yaml:"date"`
	DueDate   string `yaml:"due_date"`
	Amount    string `yaml:"amount"`
	Priority  string `yaml:"priority"`
}

type file struct {
	Invoices []fileInvoice `yaml:"invoices"`
}

// Load reads a YAML invoice file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Failed read invoice file")
	}
	return Parse(raw)
}

// Parse decodes YAML of the form:
//
//	invoices:
//	  - id: INV-2025-002
//	    vendor: Tech Solutions Inc.
//	    date: 20-Feb-2025
//	    due_date: 20-Mar-2025
//	    amount: "2850.00"
//	    priority: High
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "Failed unmarshal invoice file")
	}
	invoices := make([]models.Invoice, 0, len(f.Invoices))
	for _, fi := range f.Invoices {
		inv, err := fi.toModel()
		if err != nil {
			return nil, errors.Wrapf(err, "invoice %q", fi.ID)
		}
		invoices = append(invoices, inv)
	}
	return New(invoices)
}

func (fi fileInvoice) toModel() (models.Invoice, error) {
	issued, err := time.Parse(DateLayout, strings.TrimSpace(fi.IssueDate))
	if err != nil {
		return models.Invoice{}, errors.Wrap(err, "date")
	}
	due, err := time.Parse(DateLayout, strings.TrimSpace(fi.DueDate))
	if err != nil {
		return models.Invoice{}, errors.Wrap(err, "due_date")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(fi.Amount))
	if err != nil {
		return models.Invoice{}, errors.Wrap(err, "amount")
	}
	priority, ok := models.ParsePriority(fi.Priority)
	if !ok {
		return models.Invoice{}, errors.Errorf("unknown priority %q", fi.Priority)
	}
	return models.Invoice{
		ID:        strings.TrimSpace(fi.ID),
		Vendor:    fi.Vendor,
		IssueDate: issued,
		DueDate:   due,
		Amount:    amount,
		Priority:  priority,
	}, nil
}
