package converter

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/normalize"
	"github.com/yurifrl/xtbpp/pkg/testutil"
)

var depositDate = time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)

func accountBlock() [][]any {
	return [][]any{
		{"Cash operations report"},
		{"Name and surname", "Account", "Currency"},
		{"Jan Kowalski", 51234567, "EUR"},
		{"Balance", "Equity", "Margin", "Free margin", "Margin level"},
		{1000.5, 1200.25, 0, 1200.25, 0},
		{},
	}
}

func report(t *testing.T) string {
	t.Helper()

	cash := append(accountBlock(),
		[]any{"ID", "Type", "Time", "Comment", "Symbol", "Amount"},
		[]any{1, "deposit", "2024-01-02 10:00:00", "Deposit", nil, 500.0},
		[]any{2, "Stock purchase", "2024-01-03 11:00:00", "OPEN BUY 2 @ 100.00", "AAPL.US", -200.0},
		[]any{3, "close trade", "2024-01-04 12:00:00", nil, "US30", 20.0},
		[]any{nil, "Total", nil, nil, nil, nil, 320.0, "EUR"},
	)

	open := append(accountBlock(),
		[]any{"Position", "Symbol", "Type", "Volume", "Open time", "Open price", "Market price", "Purchase value"},
		[]any{"101", "MSFT.US", "BUY", 3, "2024-02-03 09:30:00", 400.5, 410, 1201.5},
	)

	closed := append(accountBlock(),
		[]any{"Position", "Symbol", "Type", "Volume", "Open time", "Open price", "Close time", "Close price", "Purchase value", "Sale value", "Gross P/L"},
		[]any{"201", "AAPL.US", "BUY", 2, "2024-01-02 10:00:00", 100, "2024-02-01 10:00:00", 110, 200, 220, 20},
		[]any{"202", "US30", "BUY", 1, "2024-01-05 10:00:00", 38000, "2024-01-06 10:00:00", 37900, 38000, 37900, -100},
	)

	return testutil.WriteWorkbook(t, testutil.Report(closed, open, cash)...)
}

func newConverter() *Converter {
	return New(log.New(io.Discard), Options{DepositDate: depositDate})
}

func TestExportCash(t *testing.T) {
	res := newConverter().ExportCash(report(t))

	assert.Equal(t, ModeDefault, res.Mode)
	assert.Equal(t, "EUR", res.Info.Currency)
	require.Len(t, res.Records, 3)

	deposit := res.Records[0]
	assert.Equal(t, models.Deposit, deposit.OperationType)
	assert.Equal(t, "500", deposit.Value.Decimal.String())
	assert.Equal(t, "1", deposit.Identifier)
	assert.Equal(t, "XTB EUR", deposit.SecuritiesAccount)

	buy := res.Records[1]
	assert.Equal(t, models.Buy, buy.OperationType)
	assert.Equal(t, "AAPL", buy.TickerSymbol)
	assert.Equal(t, "2", buy.Shares)
	assert.Equal(t, "200", buy.Value.Decimal.String())
	assert.Equal(t, "2024-01-03T11:00", normalize.FormatDate(buy.Date))

	cfd := res.Records[2]
	assert.Equal(t, models.Deposit, cfd.OperationType)
	assert.Equal(t, normalize.NoteProfitCFD, cfd.Note)
	assert.Equal(t, "20", cfd.Value.Decimal.String())
}

func TestExportOpen(t *testing.T) {
	res := newConverter().ExportOpen(report(t))

	require.Len(t, res.Records, 1)
	r := res.Records[0]
	assert.Equal(t, "MSFT", r.TickerSymbol)
	assert.Equal(t, "3", r.Shares)
	assert.Equal(t, "1201.5", r.Value.Decimal.String())
	assert.Equal(t, "EUR", r.CashAccount)
}

func TestExportClosed(t *testing.T) {
	res := newConverter().ExportClosed(report(t))

	require.Len(t, res.Records, 3)

	open, closing, flow := res.Records[0], res.Records[1], res.Records[2]
	assert.Equal(t, models.OpenLeg, open.Leg)
	assert.Equal(t, "AAPL", open.TickerSymbol)
	assert.Equal(t, "200", open.Value.Decimal.String())

	assert.Equal(t, models.CloseLeg, closing.Leg)
	assert.Equal(t, models.Sell, closing.OperationType)
	assert.Equal(t, "220", closing.Value.Decimal.String())
	assert.Equal(t, "2024-02-01T10:00", normalize.FormatDate(closing.Date))

	assert.Equal(t, models.Withdrawal, flow.OperationType)
	assert.Equal(t, "202", flow.Position)
	assert.Equal(t, "-100", flow.Value.Decimal.String())
	assert.Equal(t, "Loss CFD on: US30 on 2024-01-06 10:00:00", flow.Note)
}

func TestExportXLS(t *testing.T) {
	c := newConverter()
	path := filepath.Join("testdata", "report.xls")

	assert.Equal(t, "EUR", c.Currency(path))

	closed := c.ExportClosed(path)
	require.Len(t, closed.Records, 3)
	assert.Equal(t, "2024-01-02T12:00", normalize.FormatDate(closed.Records[0].Date))
	assert.Equal(t, "2024-02-01T12:00", normalize.FormatDate(closed.Records[1].Date))
	assert.Equal(t, "Loss CFD on: US30 on 2024-01-06 18:00:00", closed.Records[2].Note)

	open := c.ExportOpen(path)
	require.Len(t, open.Records, 1)
	assert.Equal(t, "2024-02-03T12:00", normalize.FormatDate(open.Records[0].Date))

	cash := c.ExportCash(path)
	require.Len(t, cash.Records, 3)
	assert.Equal(t, "2024-01-03T12:00", normalize.FormatDate(cash.Records[1].Date))
	assert.Equal(t, "AAPL", cash.Records[1].TickerSymbol)

	deposit := c.ExportDeposit(path)
	require.Len(t, deposit.Records, 1)
	assert.Equal(t, "1200.25", deposit.Records[0].Value.Decimal.String())
}

func TestExportDeposit(t *testing.T) {
	res := newConverter().ExportDeposit(report(t))

	require.Len(t, res.Records, 1)
	assert.Equal(t, models.Deposit, res.Records[0].OperationType)
	assert.Equal(t, "1200.25", res.Records[0].Value.Decimal.String())
	assert.Equal(t, depositDate, res.Records[0].Date)
}

func TestExportFailuresAreEmpty(t *testing.T) {
	c := newConverter()
	missing := filepath.Join(t.TempDir(), "missing.xlsx")

	for _, res := range []Result{
		c.ExportCash(missing),
		c.ExportOpen(missing),
		c.ExportClosed(missing),
		c.ExportDeposit(missing),
	} {
		assert.NotNil(t, res.Records)
		assert.True(t, res.Empty())
	}

	noTables := testutil.WriteWorkbook(t, testutil.Report(accountBlock(), accountBlock(), accountBlock())...)
	res := c.ExportClosed(noTables)
	assert.NotNil(t, res.Records)
	assert.True(t, res.Empty())
}

func TestCurrency(t *testing.T) {
	c := newConverter()
	assert.Equal(t, "EUR", c.Currency(report(t)))
	assert.Equal(t, "", c.Currency(filepath.Join(t.TempDir(), "missing.xlsx")))
}

func TestExportModes(t *testing.T) {
	c := newConverter()
	path := report(t)

	results := c.ExportModes(path, []Mode{ModeDeposit, ModeOpen})
	require.Len(t, results, 2)
	assert.Equal(t, ModeOpen, results[0].Mode)
	assert.Equal(t, ModeDeposit, results[1].Mode)

	records := Concat(results)
	require.Len(t, records, 2)
	assert.Equal(t, "MSFT", records[0].TickerSymbol)
	assert.Equal(t, models.Deposit, records[1].OperationType)

	results = c.ExportModes(path, []Mode{ModeDefault, ModeOpen})
	require.Len(t, results, 1)
	assert.Equal(t, ModeDefault, results[0].Mode)
}

func TestParseModes(t *testing.T) {
	modes, err := ParseModes([]string{"deposit", "Open"})
	require.NoError(t, err)
	assert.Equal(t, []Mode{ModeOpen, ModeDeposit}, modes)

	modes, err = ParseModes([]string{"closed,default"})
	require.NoError(t, err)
	assert.Equal(t, []Mode{ModeDefault}, modes)

	_, err = ParseModes(nil)
	assert.ErrorIs(t, err, ErrNoModes)

	_, err = ParseModes([]string{"pending"})
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "report_XTB_EUR.csv", FileName("/tmp/in/report.xlsx", "", "EUR"))
	assert.Equal(t, "account 2024_BRK_USD.csv", FileName("account 2024.xls", "BRK", "USD"))
}
