package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lab-backend/internal/timeutil"
)

func init() {
	// the front end reads quantities and prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateFromTime(t time.Time) Date {
	return Date{timeutil.CivilDate(t)}
}

func (d Date) String() string {
	return d.Format(timeutil.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := timeutil.ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

// NullDate is an optional calendar date. JSON null and "" are both invalid.
type NullDate struct {
	Date  Date
	Valid bool
}

func NewNullDate(d Date) NullDate {
	return NullDate{Date: d, Valid: true}
}

// ParseNullDate treats blank input as absent.
func ParseNullDate(s string) (NullDate, error) {
	if s == "" {
		return NullDate{}, nil
	}
	t, err := timeutil.ParseDate(s)
	if err != nil {
		return NullDate{}, fmt.Errorf("invalid date %q", s)
	}
	return NewNullDate(Date{t}), nil
}

func (n NullDate) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Date.MarshalJSON()
}

func (n *NullDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*n = NullDate{}
		return nil
	}
	if err := n.Date.UnmarshalJSON(b); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns nil for an absent date; used as a query argument.
func (n NullDate) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Date.Time
	return &t
}
