package normalize

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/xtbpp/pkg/header"
	"github.com/yurifrl/xtbpp/pkg/models"
)

// Deposit appends a single deposit worth the account equity. A zero at
// means now.
func (n *Normalizer) Deposit(records []models.Record, info header.Info, at time.Time) []models.Record {
	if at.IsZero() {
		at = time.Now()
	}
	value := decimal.Zero
	if info.Equity.Valid {
		value = info.Equity.Decimal
	}

	deposit := n.Accounts([]models.Record{{
		OperationType: models.Deposit,
		Date:          at,
		Value:         decimal.NewNullDecimal(value),
	}})

	out := make([]models.Record, 0, len(records)+1)
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return append(out, deposit...)
}
