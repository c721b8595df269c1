package normalize

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/xtbpp/pkg/models"
)

// Trade comments look like "OPEN BUY 10/1.2345 @ 150.20". Shares start right
// after the nine character prefix.
const notePrefixLen = 9

var noteMarkers = []string{"OPEN BUY", "CLOSE BUY"}

// IsTradeNote reports whether note carries shares and price.
func IsTradeNote(note string) bool {
	for _, m := range noteMarkers {
		if strings.Contains(note, m) {
			return true
		}
	}
	return false
}

// ExtractNoteFields sets Shares, GrossAmount and Value from trade comments.
// Malformed notes are logged and leave the record unchanged.
func ExtractNoteFields(records []models.Record, logger *log.Logger) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		r = r.Clone()
		if IsTradeNote(r.Note) {
			shares, gross, ok := splitNote(r.Note)
			if !ok {
				logger.Debug("Malformed trade note", "note", r.Note)
			} else {
				r.Shares = shares
				r.GrossAmount = gross
				if v, err := noteValue(shares, gross); err != nil {
					logger.Debug("Error computing note value", "note", r.Note, "error", err)
				} else {
					r.Value = decimal.NewNullDecimal(v)
				}
			}
		}
		out[i] = r
	}
	return out
}

func splitNote(note string) (shares, gross string, ok bool) {
	at := strings.Index(note, "@")
	if at < notePrefixLen {
		return "", "", false
	}
	end := at
	if slash := strings.Index(note, "/"); slash >= notePrefixLen && slash < at {
		end = slash
	}
	shares = strings.TrimSpace(note[notePrefixLen:end])
	gross = strings.TrimSpace(note[at+1:])
	return shares, gross, true
}

func noteValue(shares, gross string) (decimal.Decimal, error) {
	s, err := parseNumber(shares)
	if err != nil {
		return decimal.Decimal{}, err
	}
	g, err := parseNumber(gross)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return s.Mul(g), nil
}
