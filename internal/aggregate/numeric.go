package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"p2p-report/internal/types"
)

// parseNumeric coerces an exchange field to a decimal. Anything that does not
// parse yields an invalid NullDecimal instead of an error.
func parseNumeric(s types.NumericString) decimal.NullDecimal {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// netValue is the USDT value of an order. The exchange reports the two sides
// differently: SELL is totalPrice / unitPrice, everything else is amount.
func netValue(o types.RawOrder) decimal.NullDecimal {
	if o.TradeType != types.SideSell {
		return parseNumeric(o.Amount)
	}
	total := parseNumeric(o.TotalPrice)
	unit := parseNumeric(o.UnitPrice)
	if !total.Valid || !unit.Valid || unit.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(total.Decimal.Div(unit.Decimal))
}
