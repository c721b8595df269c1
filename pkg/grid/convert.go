package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayouts are tried in order when a date arrives as text.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

// ParseError reports a cell value that could not be read as the wanted type.
type ParseError struct {
	Value string
	Want  string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %q as %s: %v", e.Value, e.Want, e.Err)
	}
	return fmt.Sprintf("cannot parse %q as %s", e.Value, e.Want)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decimal reads the cell as a number. Text uses a comma as decimal
// separator. Empty cells yield an invalid NullDecimal and no error.
func (c Cell) Decimal() (decimal.NullDecimal, error) {
	switch c.Kind {
	case Empty:
		return decimal.NullDecimal{}, nil
	case Number:
		return decimal.NewNullDecimal(decimal.NewFromFloat(c.Number)), nil
	case Date:
		return decimal.NullDecimal{}, &ParseError{Value: c.String(), Want: "number"}
	}
	s := strings.TrimSpace(strings.ReplaceAll(c.Text, ",", "."))
	s = strings.ReplaceAll(s, " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, &ParseError{Value: c.Text, Want: "number", Err: err}
	}
	return decimal.NewNullDecimal(d), nil
}

// Timestamp reads the cell as a point in time. Empty cells yield the zero
// time and no error.
func (c Cell) Timestamp() (time.Time, error) {
	switch c.Kind {
	case Empty:
		return time.Time{}, nil
	case Date:
		return c.Time, nil
	case Number:
		return time.Time{}, &ParseError{Value: c.String(), Want: "date"}
	}
	s := strings.TrimSpace(c.Text)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Value: c.Text, Want: "date"}
}
