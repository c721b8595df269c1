package normalize

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/xtbpp/pkg/grid"
	"github.com/yurifrl/xtbpp/pkg/header"
	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/table"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func layoutOf(labels ...string) table.Layout {
	l := table.Layout{Columns: make(map[string]int)}
	for i, label := range labels {
		l.Columns[label] = i
		l.Labels = append(l.Labels, label)
	}
	return l
}

func TestMapType(t *testing.T) {
	tests := []struct {
		raw  string
		want models.OperationType
	}{
		{"deposit", models.Deposit},
		{"Stock purchase", models.Buy},
		{"Stock sale", models.Sell},
		{"DIVIDENT", models.Dividend},
		{"withdrawal", models.Withdrawal},
		{"Withholding Tax", models.Taxes},
		{"Free-funds Interest", models.Interest},
		{"Free-funds Interest Tax", models.Taxes},
		{"transfer", models.Transfer},
		{"close trade", models.CloseTrade},
		{"Subaccount transfer", models.OperationType("Subaccount transfer")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, MapType(tt.raw))
		})
	}
}

func TestIsCFD(t *testing.T) {
	assert.True(t, IsCFD("US30"))
	assert.True(t, IsCFD("DE40"))
	assert.True(t, IsCFD(" OIL "))
	assert.False(t, IsCFD("AAPL.US"))
	assert.False(t, IsCFD("EURUSD_4"))
	assert.False(t, IsCFD("aapl"))
	assert.False(t, IsCFD(""))
}

func TestPartitionCFD(t *testing.T) {
	records := []models.Record{
		{TickerSymbol: "AAPL.US", Position: "1"},
		{TickerSymbol: "US30", Position: "2"},
		{TickerSymbol: "MSFT.US", Position: "3"},
		{TickerSymbol: "DE40", Position: "4"},
	}
	cfd, other := PartitionCFD(records)
	require.Len(t, cfd, 2)
	require.Len(t, other, 2)
	assert.Equal(t, "2", cfd[0].Position)
	assert.Equal(t, "4", cfd[1].Position)
	assert.Equal(t, "1", other[0].Position)
	assert.Equal(t, "3", other[1].Position)
}

func TestResolveTransfers(t *testing.T) {
	records := ResolveTransfers([]models.Record{
		{OperationType: models.Transfer, Amount: amount("100")},
		{OperationType: models.Transfer, Amount: amount("-50")},
		{OperationType: models.Transfer, Amount: amount("0")},
		{OperationType: models.Transfer},
		{OperationType: models.Buy, Amount: amount("-10")},
	})
	assert.Equal(t, models.Deposit, records[0].OperationType)
	assert.Equal(t, models.Withdrawal, records[1].OperationType)
	assert.Equal(t, models.Transfer, records[2].OperationType)
	assert.Equal(t, models.Transfer, records[3].OperationType)
	assert.Equal(t, models.Buy, records[4].OperationType)
}

func TestResolveCloseTrades(t *testing.T) {
	records := ResolveCloseTrades([]models.Record{
		{OperationType: models.CloseTrade, TickerSymbol: "US30", Amount: amount("20")},
		{OperationType: models.CloseTrade, TickerSymbol: "DE40", Amount: amount("-5")},
		{OperationType: models.CloseTrade, TickerSymbol: "AAPL.US", Amount: amount("7")},
		{OperationType: models.CloseTrade, TickerSymbol: "US500", Amount: amount("0")},
		{OperationType: models.Deposit, Amount: amount("1")},
	})
	require.Len(t, records, 4)
	assert.Equal(t, models.Deposit, records[0].OperationType)
	assert.Equal(t, NoteProfitCFD, records[0].Note)
	assert.Equal(t, models.Withdrawal, records[1].OperationType)
	assert.Equal(t, NoteLossCFD, records[1].Note)
	assert.Equal(t, models.Deposit, records[2].OperationType)
	assert.Equal(t, NoteProfitCFD, records[2].Note)
	assert.Equal(t, models.Deposit, records[3].OperationType)
	assert.Empty(t, records[3].Note)

	for _, r := range records {
		assert.NotEqual(t, models.CloseTrade, r.OperationType)
	}
}

func TestExtractNoteFields(t *testing.T) {
	records := ExtractNoteFields([]models.Record{
		{Note: "OPEN BUY 10/1.2345 @1.50"},
		{Note: "CLOSE BUY 4 @ 2.5"},
		{Note: "OPEN BUY x @ y", Value: amount("3")},
		{Note: "OPEN BUY"},
		{Note: "Dividend AAPL", Shares: "1"},
	}, log.Default())

	assert.Equal(t, "10", records[0].Shares)
	assert.Equal(t, "1.50", records[0].GrossAmount)
	assert.Equal(t, "15", records[0].Value.Decimal.String())

	assert.Equal(t, "4", records[1].Shares)
	assert.Equal(t, "2.5", records[1].GrossAmount)
	assert.Equal(t, "10", records[1].Value.Decimal.String())

	assert.Equal(t, "x", records[2].Shares)
	assert.Equal(t, "3", records[2].Value.Decimal.String())

	assert.Empty(t, records[3].Shares)
	assert.False(t, records[3].Value.Valid)

	assert.Equal(t, "1", records[4].Shares)
}

func TestSplitLegsAndMerge(t *testing.T) {
	closedAt := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	stock := func(pos string) models.Record {
		return models.Record{
			Position:      pos,
			TickerSymbol:  "AAPL.US",
			OperationType: models.Buy,
			Shares:        "2",
			Date:          time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
			Value:         amount("100"),
			GrossAmount:   "200",
			Extra: map[string]grid.Cell{
				LabelCloseTime:  grid.DateCell(closedAt),
				LabelClosePrice: grid.NumberCell(110),
				LabelSaleValue:  grid.NumberCell(220),
				LabelGrossPL:    grid.NumberCell(20),
			},
		}
	}

	cfd := models.Record{
		Position:     "9",
		TickerSymbol: "US30",
		Extra: map[string]grid.Cell{
			LabelCloseTime: grid.DateCell(closedAt),
			LabelGrossPL:   grid.NumberCell(-12.5),
		},
	}

	opens, closes := SplitLegs([]models.Record{stock("1"), stock("2")})
	require.Len(t, opens, 2)
	require.Len(t, closes, 2)
	assert.Equal(t, models.Sell, closes[0].OperationType)
	assert.Equal(t, closedAt, closes[0].Date)
	assert.Equal(t, "220", closes[0].GrossAmount)

	merged := MergeClosed(opens, closes, CFDCashFlows([]models.Record{cfd}))
	require.Len(t, merged, 5)

	assert.Equal(t, models.OpenLeg, merged[0].Leg)
	assert.Equal(t, models.OpenLeg, merged[1].Leg)
	assert.Equal(t, models.CloseLeg, merged[2].Leg)
	assert.Equal(t, models.CloseLeg, merged[3].Leg)
	assert.Equal(t, "200", merged[0].Value.Decimal.String())
	assert.Equal(t, "220", merged[2].Value.Decimal.String())

	flow := merged[4]
	assert.Equal(t, models.Withdrawal, flow.OperationType)
	assert.Equal(t, "-12.5", flow.Value.Decimal.String())
	assert.Equal(t, closedAt, flow.Date)
	assert.Equal(t, "Loss CFD on: US30 on 2024-03-01 15:30:00", flow.Note)
	assert.Empty(t, flow.TickerSymbol)
}

func TestCFDCashFlowsProfit(t *testing.T) {
	flows := CFDCashFlows([]models.Record{{
		Position:     "7",
		TickerSymbol: "DE40",
		Extra: map[string]grid.Cell{
			LabelCloseTime: grid.TextCell("02.05.2024 09:15:00"),
			LabelGrossPL:   grid.NumberCell(0),
		},
	}})
	require.Len(t, flows, 1)
	assert.Equal(t, models.Deposit, flows[0].OperationType)
	assert.Equal(t, "Profit CFD on: DE40 on 2024-05-02 09:15:00", flows[0].Note)
	assert.Equal(t, "7", flows[0].Position)
}

func TestMultiplyValue(t *testing.T) {
	records := MultiplyValue([]models.Record{
		{Shares: "3", Value: amount("1.5")},
		{Shares: "0,5", Value: amount("10")},
		{Shares: "n/a", Value: amount("10")},
		{Shares: "2"},
	})
	assert.Equal(t, "4.5", records[0].Value.Decimal.String())
	assert.Equal(t, "5", records[1].Value.Decimal.String())
	assert.False(t, records[2].Value.Valid)
	assert.False(t, records[3].Value.Valid)
}

func TestStripTickerSuffix(t *testing.T) {
	assert.Equal(t, "AAPL", StripTickerSuffix("AAPL.US"))
	assert.Equal(t, "VWCE", StripTickerSuffix("VWCE.DE "))
	assert.Equal(t, "US30", StripTickerSuffix("US30"))
	assert.Equal(t, "", StripTickerSuffix(""))

	once := StripTickerSuffix("BRK.B.US")
	assert.Equal(t, once, StripTickerSuffix(once))
}

func TestDeposit(t *testing.T) {
	n := New(log.Default(), "EUR", "")
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	out := n.Deposit(nil, header.Info{Equity: amount("1234.56")}, at)
	require.Len(t, out, 1)
	assert.Equal(t, models.Deposit, out[0].OperationType)
	assert.Equal(t, at, out[0].Date)
	assert.Equal(t, "1234.56", out[0].Value.Decimal.String())
	assert.Equal(t, "EUR", out[0].CashAccount)
	assert.Equal(t, "XTB EUR", out[0].SecuritiesAccount)

	out = n.Deposit([]models.Record{{Note: "kept"}}, header.Info{}, at)
	require.Len(t, out, 2)
	assert.Equal(t, "kept", out[0].Note)
	assert.True(t, out[1].Value.Valid)
	assert.True(t, out[1].Value.Decimal.IsZero())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "123.4000", FormatAmount(amount("123.4")))
	assert.Equal(t, "-0.5000", FormatAmount(amount("-0.5")))
	assert.Equal(t, "", FormatAmount(decimal.NullDecimal{}))

	assert.Equal(t, "2024-01-02T10:05", FormatDate(time.Date(2024, 1, 2, 10, 5, 59, 0, time.UTC)))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestNormalizeCashHistory(t *testing.T) {
	labels := []string{"ID", "Type", "Time", "Comment", "Symbol", "Amount"}
	row := func(id, typ, comment, symbol string, amt any) table.Raw {
		return table.Raw{
			"ID":      grid.TextCell(id),
			"Type":    grid.TextCell(typ),
			"Time":    grid.TextCell("2024-01-02 10:00:00"),
			"Comment": grid.TextCell(comment),
			"Symbol":  grid.TextCell(symbol),
			"Amount":  grid.New([][]any{{amt}}).At(0, 0),
		}
	}

	n := New(log.Default(), "EUR", "XTB")
	records, err := n.Normalize(CashHistory, layoutOf(labels...), []table.Raw{
		row("1", "deposit", "Deposit", "", 500.0),
		row("2", "Stock purchase", "OPEN BUY 2 @ 10", "AAPL.US", -20.0),
		row("3", "close trade", "", "US30", 20.0),
		row("4", "close trade", "", "AAPL.US", 21.0),
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, models.Deposit, records[0].OperationType)
	assert.Equal(t, "500", records[0].Value.Decimal.String())
	assert.Equal(t, "500.0000", FormatAmount(records[0].Amount))

	assert.Equal(t, models.Buy, records[1].OperationType)
	assert.Equal(t, "2", records[1].Shares)
	assert.Equal(t, "20", records[1].Value.Decimal.String())

	assert.Equal(t, models.Deposit, records[2].OperationType)
	assert.Equal(t, NoteProfitCFD, records[2].Note)
	assert.Equal(t, "20", records[2].Value.Decimal.String())

	for _, r := range records {
		assert.Equal(t, "EUR", r.TransactionCurrency)
		assert.Equal(t, "EUR", r.CurrencyGrossAmount)
		assert.Equal(t, "EUR", r.CashAccount)
		assert.Equal(t, "XTB EUR", r.SecuritiesAccount)
		assert.Equal(t, "2024-01-02T10:00", FormatDate(r.Date))
	}
}

func TestNormalizeOpenPositions(t *testing.T) {
	n := New(log.Default(), "USD", "")
	records, err := n.Normalize(OpenPositions,
		layoutOf("Position", "Symbol", "Type", "Volume", "Open time", "Open price"),
		[]table.Raw{{
			"Position":   grid.TextCell("42"),
			"Symbol":     grid.TextCell("MSFT.US"),
			"Type":       grid.TextCell("BUY"),
			"Volume":     grid.NumberCell(3),
			"Open time":  grid.TextCell("2024-02-03 09:30:00"),
			"Open price": grid.NumberCell(400.5),
		}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.OperationType("BUY"), records[0].OperationType)
	assert.Equal(t, "3", records[0].Shares)
	assert.Equal(t, "1201.5", records[0].Value.Decimal.String())
	assert.Equal(t, "XTB USD", records[0].SecuritiesAccount)
}

func TestNormalizeMissingColumn(t *testing.T) {
	n := New(log.Default(), "EUR", "")
	_, err := n.Normalize(ClosedPositions, layoutOf("Position", "Symbol", "Volume"), nil)

	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "closed", missing.Schema)
	assert.Equal(t, "Open time", missing.Column)
}

func TestNormalizeBadCellsAreKept(t *testing.T) {
	n := New(log.Default(), "EUR", "")
	records, err := n.Normalize(CashHistory, layoutOf("Type", "Time", "Amount"), []table.Raw{{
		"Type":   grid.TextCell("deposit"),
		"Time":   grid.TextCell("yesterday"),
		"Amount": grid.TextCell("lots"),
	}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Date.IsZero())
	assert.False(t, records[0].Amount.Valid)
	assert.False(t, records[0].Value.Valid)
}
