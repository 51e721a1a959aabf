package report

import (
	"github.com/shopspring/decimal"

	"p2p-report/internal/types"
)

// The key names are read by the dashboard and must not change.

type DayDetail struct {
	Buys  int `json:"compras"`
	Sells int `json:"ventas"`
}

type DayDocument struct {
	Date       string    `json:"fecha"`
	Buys       float64   `json:"compras_usdt"`
	Sells      float64   `json:"ventas_usdt"`
	Profit     float64   `json:"ganancia_usdt"`
	Operations int       `json:"operaciones"`
	Detail     DayDetail `json:"detalle"`
}

type MetadataDocument struct {
	BaseCurrency      string  `json:"moneda_base"`
	CommissionPercent float64 `json:"comision_porcentaje"`
	OrdersAnalyzed    int     `json:"ordenes_analizadas"`
	RunID             string  `json:"run_id,omitempty"`
}

// Document is the on-disk form of a successful report.
type Document struct {
	Success         bool             `json:"success"`
	Timestamp       string           `json:"timestamp"`
	TotalOperations int              `json:"total_operaciones"`
	PeriodDays      int              `json:"periodo_dias"`
	TotalBuys       float64          `json:"compras_total"`
	TotalSells      float64          `json:"ventas_total"`
	TotalProfit     float64          `json:"ganancia_total"`
	Days            []DayDocument    `json:"resumen_diario"`
	LastUpdate      string           `json:"ultima_actualizacion"`
	Metadata        MetadataDocument `json:"metadata"`
}

// FailureDocument is the on-disk form of a failed or empty run.
type FailureDocument struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Error       string `json:"error,omitempty"`
	Timestamp   string `json:"timestamp"`
	TotalOrders *int   `json:"total_ordenes,omitempty"`
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toDocument(r *types.Report) *Document {
	doc := &Document{
		Success:         true,
		Timestamp:       r.GeneratedAt,
		TotalOperations: r.TotalOperations,
		PeriodDays:      r.PeriodDays,
		TotalBuys:       money(r.TotalBuys),
		TotalSells:      money(r.TotalSells),
		TotalProfit:     money(r.TotalProfit),
		Days:            make([]DayDocument, 0, len(r.Days)),
		LastUpdate:      r.LastUpdate,
		Metadata: MetadataDocument{
			BaseCurrency:      r.Metadata.BaseCurrency,
			CommissionPercent: money(r.Metadata.CommissionPercent),
			OrdersAnalyzed:    r.Metadata.OrdersAnalyzed,
			RunID:             r.Metadata.RunID,
		},
	}
	for _, d := range r.Days {
		doc.Days = append(doc.Days, DayDocument{
			Date:       d.Date,
			Buys:       money(d.BuyNet),
			Sells:      money(d.SellNet),
			Profit:     money(d.Profit),
			Operations: d.Operations,
			Detail:     DayDetail{Buys: d.Detail.Buys, Sells: d.Detail.Sells},
		})
	}
	return doc
}

func toFailureDocument(f *types.FailureReport) *FailureDocument {
	return &FailureDocument{
		Success:     false,
		Message:     f.Message,
		Error:       f.Error,
		Timestamp:   f.GeneratedAt,
		TotalOrders: f.TotalOrders,
	}
}
