package normalize

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/xtbpp/pkg/grid"
	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/table"
)

// DefaultBrokerTag prefixes the securities account name.
const DefaultBrokerTag = "XTB"

type Normalizer struct {
	logger    *log.Logger
	currency  string
	brokerTag string
}

// New returns a Normalizer that tags records with the account currency.
// An empty currency is tolerated: currency fields stay empty.
func New(logger *log.Logger, currency, brokerTag string) *Normalizer {
	if brokerTag == "" {
		brokerTag = DefaultBrokerTag
	}
	return &Normalizer{
		logger:    logger,
		currency:  strings.TrimSpace(currency),
		brokerTag: brokerTag,
	}
}

// SecuritiesAccount is the broker tag followed by the account currency, or
// the tag alone when the currency is unknown.
func (n *Normalizer) SecuritiesAccount() string {
	if n.currency == "" {
		return n.brokerTag
	}
	return n.brokerTag + " " + n.currency
}

// Normalize checks the layout against the schema and converts rows into
// records. Cells that fail to parse are logged and left absent.
func (n *Normalizer) Normalize(s Schema, layout table.Layout, rows []table.Raw) ([]models.Record, error) {
	for _, label := range s.Required {
		if !layout.Has(label) {
			return nil, &MissingColumnError{Schema: s.Name, Column: label}
		}
	}

	records := make([]models.Record, 0, len(rows))
	for i, raw := range rows {
		rec, errs := decode(s, raw)
		for _, err := range errs {
			n.logger.Debug("Error parsing cell", "report", s.Name, "row", i, "error", err)
		}
		records = append(records, rec)
	}

	if s.ResolveCashFlows {
		records = ResolveTransfers(records)
		records = ResolveCloseTrades(records)
	}

	switch {
	case s.MergeLegs:
		cfd, stocks := PartitionCFD(records)
		opens, closes := SplitLegs(stocks)
		records = MergeClosed(opens, closes, CFDCashFlows(cfd))
	case s.MultiplyValue:
		records = MultiplyValue(records)
	}

	records = n.Accounts(records)

	if s.ExtractNotes {
		records = ExtractNoteFields(records, n.logger)
	}
	if s.ValueFromAmount {
		records = DefaultValue(records)
	}

	n.logger.Debug("Normalized report", "report", s.Name, "rows", len(rows), "records", len(records))
	return records, nil
}

// Accounts injects the currency and account fields.
func (n *Normalizer) Accounts(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		r = r.Clone()
		r.TransactionCurrency = n.currency
		r.CurrencyGrossAmount = n.currency
		r.CashAccount = n.currency
		r.SecuritiesAccount = n.SecuritiesAccount()
		out[i] = r
	}
	return out
}

// DefaultValue fills an absent Value with Amount.
func DefaultValue(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		r = r.Clone()
		if !r.Value.Valid {
			r.Value = r.Amount
		}
		out[i] = r
	}
	return out
}

func decode(s Schema, raw table.Raw) (models.Record, []error) {
	var (
		rec  models.Record
		errs []error
	)
	for label, cell := range raw {
		field, ok := s.Rename[label]
		if !ok {
			if rec.Extra == nil {
				rec.Extra = make(map[string]grid.Cell)
			}
			rec.Extra[label] = cell
			continue
		}

		switch field {
		case FieldIdentifier:
			rec.Identifier = text(cell)
		case FieldPosition:
			rec.Position = text(cell)
		case FieldType:
			rec.OperationType = MapType(cell.String())
		case FieldDate:
			t, err := cell.Timestamp()
			if err != nil {
				errs = append(errs, err)
			}
			rec.Date = t
		case FieldNote:
			rec.Note = cell.String()
		case FieldTicker:
			rec.TickerSymbol = text(cell)
		case FieldAmount:
			d, err := cell.Decimal()
			if err != nil {
				errs = append(errs, err)
			}
			rec.Amount = d
		case FieldShares:
			rec.Shares = text(cell)
		case FieldValue:
			d, err := cell.Decimal()
			if err != nil {
				errs = append(errs, err)
			}
			rec.Value = d
		case FieldGrossAmount:
			rec.GrossAmount = text(cell)
		}
	}
	return rec, errs
}

func text(c grid.Cell) string {
	return strings.TrimSpace(c.String())
}
