package models

import "time"

// SessionSummary aggregates a set of milk records. Fat, SNF and degree
// averages are weighted by quantity so larger deliveries dominate the
// quality figures. Derived on demand, never persisted.
type SessionSummary struct {
	TotalQuantity    float64 `json:"totalQuantity"`
	AvgFat           float64 `json:"avgFat"`
	AvgSNF           float64 `json:"avgSnf"`
	AvgDegree        float64 `json:"avgDegree"`
	AvgPricePerLiter float64 `json:"avgPricePerLiter"`
	TotalRevenue     float64 `json:"totalRevenue"`
	RecordCount      int     `json:"recordCount"`
}

// CustomerReport bundles the overall and per-session views of one
// customer's records.
type CustomerReport struct {
	Customer Customer        `json:"customer"`
	Overall  *SessionSummary `json:"overall"`
	Morning  *SessionSummary `json:"morning"`
	Evening  *SessionSummary `json:"evening"`
}

// DailyTotals is the cross-customer view for one calendar day.
type DailyTotals struct {
	Date            time.Time `json:"date"`
	TotalQuantity   float64   `json:"totalQuantity"`
	MorningQuantity float64   `json:"morningQuantity"`
	EveningQuantity float64   `json:"eveningQuantity"`
	TotalRevenue    float64   `json:"totalRevenue"`
	RecordCount     int       `json:"recordCount"`
	CustomerCount   int       `json:"customerCount"`
}
