package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/domain/models"
	"github.com/milkbook/milkbook/internal/service/dairy"
)

const dateLayout = "2006-01-02"

// Service computes summaries over milk record sets and renders them for
// operational use (SMS bodies, PDF reports, daily totals).
type Service struct {
	dairy  *dairy.Service
	loc    *time.Location
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(dairySvc *dairy.Service, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{dairy: dairySvc, loc: loc, logger: logger}
}

// Summarize aggregates a record set. Fat, SNF and degree averages are
// weighted by quantity: a 10 liter delivery moves the average ten times as
// much as a 1 liter one. Returns nil for an empty set so callers can tell
// "no data" apart from "all zero".
func Summarize(records []models.MilkRecord) *models.SessionSummary {
	if len(records) == 0 {
		return nil
	}

	var (
		totalQuantity  float64
		weightedFat    float64
		weightedSNF    float64
		weightedDegree float64
		totalRevenue   float64
	)
	for _, r := range records {
		totalQuantity += r.Quantity
		weightedFat += r.Fat * r.Quantity
		weightedSNF += r.SNF * r.Quantity
		weightedDegree += r.Degree * r.Quantity
		totalRevenue += r.TotalPrice
	}

	summary := &models.SessionSummary{
		TotalQuantity: totalQuantity,
		TotalRevenue:  totalRevenue,
		RecordCount:   len(records),
	}
	if totalQuantity > 0 {
		summary.AvgFat = weightedFat / totalQuantity
		summary.AvgSNF = weightedSNF / totalQuantity
		summary.AvgDegree = weightedDegree / totalQuantity
		summary.AvgPricePerLiter = totalRevenue / totalQuantity
	}
	return summary
}

// FilterBySession returns the subset of records collected in one window.
func FilterBySession(records []models.MilkRecord, session models.MilkSession) []models.MilkRecord {
	filtered := make([]models.MilkRecord, 0, len(records))
	for _, r := range records {
		if r.Session == session {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// CustomerReport computes the overall, morning and evening summaries over
// one customer's records.
func (s *Service) CustomerReport(ctx context.Context, ownerID, customerID string) (models.CustomerReport, error) {
	customer, err := s.dairy.GetCustomer(ctx, ownerID, customerID)
	if err != nil {
		return models.CustomerReport{}, err
	}

	records, err := s.dairy.RecordsByCustomer(ctx, ownerID, customerID)
	if err != nil {
		return models.CustomerReport{}, fmt.Errorf("load records: %w", err)
	}

	return models.CustomerReport{
		Customer: customer,
		Overall:  Summarize(records),
		Morning:  Summarize(FilterBySession(records, models.SessionMorning)),
		Evening:  Summarize(FilterBySession(records, models.SessionEvening)),
	}, nil
}

// DailyTotals computes the cross-customer totals for one calendar day.
func (s *Service) DailyTotals(ctx context.Context, ownerID string, date time.Time) (models.DailyTotals, error) {
	records, err := s.dairy.RecordsByDate(ctx, ownerID, date)
	if err != nil {
		return models.DailyTotals{}, fmt.Errorf("load records: %w", err)
	}

	totals := models.DailyTotals{Date: startOfDay(date, s.loc)}
	customers := make(map[string]struct{})
	for _, r := range records {
		totals.TotalQuantity += r.Quantity
		totals.TotalRevenue += r.TotalPrice
		customers[r.CustomerID] = struct{}{}
		switch r.Session {
		case models.SessionMorning:
			totals.MorningQuantity += r.Quantity
		case models.SessionEvening:
			totals.EveningQuantity += r.Quantity
		}
	}
	totals.RecordCount = len(records)
	totals.CustomerCount = len(customers)
	return totals, nil
}

// FormatDailySummary renders daily totals as a plain-text message body for
// the scheduled operator notification.
func (s *Service) FormatDailySummary(totals models.DailyTotals) string {
	day := totals.Date.Format(dateLayout)
	if totals.RecordCount == 0 {
		return fmt.Sprintf("Milk summary %s: no records yet.", day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Milk summary %s\n", day)
	fmt.Fprintf(&b, "Collected: %.2f L (%d records, %d customers)\n", totals.TotalQuantity, totals.RecordCount, totals.CustomerCount)
	fmt.Fprintf(&b, "Morning: %.2f L, Evening: %.2f L\n", totals.MorningQuantity, totals.EveningQuantity)
	fmt.Fprintf(&b, "Revenue: Rs.%.2f", totals.TotalRevenue)
	return b.String()
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
