package types

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
)

type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Sides is the fetch order used by the runner.
var Sides = []TradeSide{SideBuy, SideSell}

const StatusCompleted = "COMPLETED"

// NumericString holds a numeric field exactly as the exchange sent it.
// The API returns decimals as JSON strings; bare numbers are accepted too.
type NumericString string

func (n *NumericString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	*n = NumericString(b)
	return nil
}

// RawOrder is one C2C order record as returned by listUserOrderHistory.
type RawOrder struct {
	OrderNumber         string        `json:"orderNumber"`
	AdvNo               string        `json:"advNo"`
	TradeType           TradeSide     `json:"tradeType"`
	Asset               string        `json:"asset"`
	Fiat                string        `json:"fiat"`
	FiatSymbol          string        `json:"fiatSymbol"`
	Amount              NumericString `json:"amount"`
	TotalPrice          NumericString `json:"totalPrice"`
	UnitPrice           NumericString `json:"unitPrice"`
	OrderStatus         string        `json:"orderStatus"`
	CreateTime          int64         `json:"createTime"`
	CounterPartNickName string        `json:"counterPartNickName"`
}

// SideBreakdown counts operations per side within a day.
type SideBreakdown struct {
	Buys  int
	Sells int
}

// DailySummary aggregates the completed orders of one calendar day.
// Profit is always SellNet minus BuyNet.
type DailySummary struct {
	Date       string
	BuyNet     decimal.Decimal
	SellNet    decimal.Decimal
	Profit     decimal.Decimal
	Operations int
	Detail     SideBreakdown
}

type ReportMetadata struct {
	BaseCurrency      string
	CommissionPercent decimal.Decimal
	OrdersAnalyzed    int
	RunID             string
}

// Report is the successful result of a run. Days are sorted ascending.
type Report struct {
	GeneratedAt     string
	LastUpdate      string
	TotalOperations int
	PeriodDays      int
	TotalBuys       decimal.Decimal
	TotalSells      decimal.Decimal
	TotalProfit     decimal.Decimal
	Days            []DailySummary
	Metadata        ReportMetadata
}

// FailureReport is written in place of a Report when a run yields no data
// or fails. TotalOrders is nil when it does not apply.
type FailureReport struct {
	Message     string
	Error       string
	GeneratedAt string
	TotalOrders *int
}

type RunState string

const (
	StateInit        RunState = "INIT"
	StateFetching    RunState = "FETCHING"
	StateAggregating RunState = "AGGREGATING"
	StateError       RunState = "ERROR"
	StateSaved       RunState = "SAVED"
)
