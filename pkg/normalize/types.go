package normalize

import (
	"strings"

	"github.com/yurifrl/xtbpp/pkg/models"
)

var typeMap = map[string]models.OperationType{
	"deposit":                 models.Deposit,
	"Stock purchase":          models.Buy,
	"Stock sale":              models.Sell,
	"DIVIDENT":                models.Dividend,
	"withdrawal":              models.Withdrawal,
	"Withholding Tax":         models.Taxes,
	"Free-funds Interest":     models.Interest,
	"Free-funds Interest Tax": models.Taxes,
	"transfer":                models.Transfer,
	"close trade":             models.CloseTrade,
}

// MapType maps a broker operation type to its canonical value. Unknown
// types are returned unchanged.
func MapType(raw string) models.OperationType {
	raw = strings.TrimSpace(raw)
	if t, ok := typeMap[raw]; ok {
		return t
	}
	return models.OperationType(raw)
}
