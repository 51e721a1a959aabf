// Package aggregate turns raw C2C orders into the daily report.
//
// Only COMPLETED orders count. Each order is valued in the base currency,
// charged the platform commission, and bucketed by calendar day. Daily buy
// and sell totals are rounded to cents first; the daily profit and every
// grand total are then derived from those rounded figures, so the report
// always adds up exactly.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"p2p-report/internal/types"
)

const (
	dayLayout        = "2006-01-02"
	timestampLayout  = "2006-01-02T15:04:05.000000"
	lastUpdateLayout = "2006-01-02 15:04:05"
	millisPerDay     = int64(24 * time.Hour / time.Millisecond)
)

var hundred = decimal.NewFromInt(100)

// Entry is a completed order after normalization. Valid is false when the
// net value could not be derived; such an entry counts as an operation but
// adds nothing to the totals.
type Entry struct {
	Order      types.RawOrder
	Day        string
	Net        decimal.Decimal
	Commission decimal.Decimal
	NetAfter   decimal.Decimal
	Valid      bool
}

type dayBucket struct {
	buy, sell   decimal.Decimal
	buys, sells int
	operations  int
}

type Aggregator struct {
	commissionRate decimal.Decimal
	baseCurrency   string
	loc            *time.Location
	now            func() time.Time
}

func New(commissionRate float64, baseCurrency string, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		commissionRate: decimal.NewFromFloat(commissionRate),
		baseCurrency:   baseCurrency,
		loc:            loc,
		now:            time.Now,
	}
}

// Completed keeps the orders whose status is COMPLETED, in input order.
func Completed(orders []types.RawOrder) []types.RawOrder {
	out := make([]types.RawOrder, 0, len(orders))
	for _, o := range orders {
		if o.OrderStatus == types.StatusCompleted {
			out = append(out, o)
		}
	}
	return out
}

// Normalize values a single order and assigns it to its calendar day.
func (a *Aggregator) Normalize(o types.RawOrder) Entry {
	e := Entry{
		Order: o,
		Day:   time.UnixMilli(o.CreateTime).In(a.loc).Format(dayLayout),
	}
	net := netValue(o)
	if !net.Valid {
		return e
	}
	e.Valid = true
	e.Net = net.Decimal
	e.Commission = net.Decimal.Mul(a.commissionRate)
	e.NetAfter = e.Net.Sub(e.Commission)
	return e
}

// Build aggregates orders into a report. It returns false when no order is
// COMPLETED.
func (a *Aggregator) Build(orders []types.RawOrder, runID string) (*types.Report, bool) {
	completed := Completed(orders)
	if len(completed) == 0 {
		return nil, false
	}

	buckets := make(map[string]*dayBucket)
	minTime, maxTime := completed[0].CreateTime, completed[0].CreateTime

	for _, o := range completed {
		if o.CreateTime < minTime {
			minTime = o.CreateTime
		}
		if o.CreateTime > maxTime {
			maxTime = o.CreateTime
		}

		e := a.Normalize(o)
		b := buckets[e.Day]
		if b == nil {
			b = &dayBucket{}
			buckets[e.Day] = b
		}
		b.operations++

		switch o.TradeType {
		case types.SideBuy:
			b.buys++
			if e.Valid {
				b.buy = b.buy.Add(e.NetAfter)
			}
		case types.SideSell:
			b.sells++
			if e.Valid {
				b.sell = b.sell.Add(e.NetAfter)
			}
		}
	}

	days := make([]string, 0, len(buckets))
	for d := range buckets {
		days = append(days, d)
	}
	sort.Strings(days)

	now := a.now().In(a.loc)
	report := &types.Report{
		GeneratedAt:     now.Format(timestampLayout),
		LastUpdate:      now.Format(lastUpdateLayout),
		TotalOperations: len(completed),
		PeriodDays:      int((maxTime-minTime)/millisPerDay) + 1,
		Days:            make([]types.DailySummary, 0, len(days)),
		Metadata: types.ReportMetadata{
			BaseCurrency:      a.baseCurrency,
			CommissionPercent: a.commissionRate.Mul(hundred),
			OrdersAnalyzed:    len(completed),
			RunID:             runID,
		},
	}

	for _, d := range days {
		b := buckets[d]
		buy := b.buy.Round(2)
		sell := b.sell.Round(2)
		summary := types.DailySummary{
			Date:       d,
			BuyNet:     buy,
			SellNet:    sell,
			Profit:     sell.Sub(buy),
			Operations: b.operations,
			Detail:     types.SideBreakdown{Buys: b.buys, Sells: b.sells},
		}
		report.Days = append(report.Days, summary)
		report.TotalBuys = report.TotalBuys.Add(summary.BuyNet)
		report.TotalSells = report.TotalSells.Add(summary.SellNet)
		report.TotalProfit = report.TotalProfit.Add(summary.Profit)
	}

	return report, true
}
