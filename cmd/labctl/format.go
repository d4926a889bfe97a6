package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"lab-backend/internal/models"
)

const dash = "-"

type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(headers...)
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

func dec(d decimal.NullDecimal) string {
	if !d.Valid {
		return dash
	}
	return d.Decimal.String()
}

func date(d models.NullDate) string {
	if !d.Valid {
		return dash
	}
	return d.Date.String()
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return dash
	}
	return s
}

// parseQuantity accepts a comma as decimal separator.
func parseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("número inválido: %q", s)
	}
	return d, nil
}
