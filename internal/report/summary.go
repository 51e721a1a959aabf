package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const recentDays = 5

var amounts = message.NewPrinter(language.English)

// WriteSummary prints a human readable digest of a report file to w.
func WriteSummary(w io.Writer, env *Envelope) error {
	var sb strings.Builder
	rule := strings.Repeat("=", 60) + "\n"

	sb.WriteString(rule)
	sb.WriteString("P2P REPORT SUMMARY\n")
	sb.WriteString(rule)

	if env == nil || !env.Success || env.Report == nil {
		if env != nil && env.Failure != nil {
			f := env.Failure
			sb.WriteString(fmt.Sprintf("Status: FAILED (%s)\n", f.Message))
			if f.Error != "" {
				sb.WriteString(fmt.Sprintf("Error: %s\n", f.Error))
			}
			if f.TotalOrders != nil {
				sb.WriteString(fmt.Sprintf("Orders fetched: %d\n", *f.TotalOrders))
			}
			sb.WriteString(fmt.Sprintf("Generated: %s\n", f.Timestamp))
		} else {
			sb.WriteString("Status: no data\n")
		}
		_, err := io.WriteString(w, sb.String())
		return err
	}

	doc := env.Report
	sb.WriteString(fmt.Sprintf("Period analyzed:  %d days\n", doc.PeriodDays))
	sb.WriteString(fmt.Sprintf("Total operations: %d\n", doc.TotalOperations))
	sb.WriteString(amounts.Sprintf("Total buys:       $%.2f\n", doc.TotalBuys))
	sb.WriteString(amounts.Sprintf("Total sells:      $%.2f\n", doc.TotalSells))
	sb.WriteString(amounts.Sprintf("Total profit:     $%.2f\n", doc.TotalProfit))
	sb.WriteString(fmt.Sprintf("Last update:      %s\n", doc.LastUpdate))

	days := doc.Days
	if len(days) > recentDays {
		days = days[len(days)-recentDays:]
	}
	if len(days) > 0 {
		sb.WriteString("\n" + strings.Repeat("-", 60) + "\n")
		sb.WriteString(fmt.Sprintf("%-12s %12s %12s %12s %6s\n", "DATE", "BUYS", "SELLS", "PROFIT", "OPS"))
		for _, d := range days {
			sb.WriteString(amounts.Sprintf("%-12s %12.2f %12.2f %12.2f %6d\n", d.Date, d.Buys, d.Sells, d.Profit, d.Operations))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
