package reporting

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/domain/models"
	"github.com/milkbook/milkbook/internal/repository/localstore"
	"github.com/milkbook/milkbook/internal/service/dairy"
)

const owner = "op-1"

func newTestServices(t *testing.T) (*dairy.Service, *Service) {
	t.Helper()
	store := localstore.New(filepath.Join(t.TempDir(), "milkbook.json"), zap.NewNop())
	dairySvc := dairy.NewService(store, 35, time.UTC, zap.NewNop())
	return dairySvc, NewService(dairySvc, time.UTC, zap.NewNop())
}

func record(qty, fat, snf, degree, total float64, session models.MilkSession) models.MilkRecord {
	return models.MilkRecord{
		Quantity:   qty,
		Fat:        fat,
		SNF:        snf,
		Degree:     degree,
		TotalPrice: total,
		Session:    session,
	}
}

func TestSummarizeEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, Summarize(nil))
	assert.Nil(t, Summarize([]models.MilkRecord{}))
}

func TestSummarizeWeightsByQuantity(t *testing.T) {
	records := []models.MilkRecord{
		record(10, 4, 8, 26, 400, models.SessionMorning),
		record(1, 8, 9, 30, 50, models.SessionEvening),
	}
	summary := Summarize(records)
	require.NotNil(t, summary)

	// The 10 liter delivery dominates: (4*10 + 8*1) / 11.
	assert.InDelta(t, 48.0/11.0, summary.AvgFat, 1e-9)
	assert.InDelta(t, 89.0/11.0, summary.AvgSNF, 1e-9)
	assert.InDelta(t, 290.0/11.0, summary.AvgDegree, 1e-9)
	assert.InDelta(t, 11.0, summary.TotalQuantity, 1e-9)
	assert.InDelta(t, 450.0, summary.TotalRevenue, 1e-9)
	assert.InDelta(t, 450.0/11.0, summary.AvgPricePerLiter, 1e-9)
	assert.Equal(t, 2, summary.RecordCount)

	// Weighted average invariant: avg * totalQty == sum of fat*qty.
	assert.InDelta(t, 48.0, summary.AvgFat*summary.TotalQuantity, 1e-9)
}

func TestFilterBySession(t *testing.T) {
	records := []models.MilkRecord{
		record(1, 0, 0, 0, 0, models.SessionMorning),
		record(2, 0, 0, 0, 0, models.SessionEvening),
		record(3, 0, 0, 0, 0, models.SessionMorning),
	}
	morning := FilterBySession(records, models.SessionMorning)
	require.Len(t, morning, 2)
	assert.InDelta(t, 1.0, morning[0].Quantity, 1e-9)
	assert.InDelta(t, 3.0, morning[1].Quantity, 1e-9)
	assert.Len(t, FilterBySession(records, models.SessionEvening), 1)
}

func TestCustomerReportEndToEnd(t *testing.T) {
	dairySvc, svc := newTestServices(t)
	ctx := context.Background()

	customer, err := dairySvc.AddCustomer(ctx, owner, "Ravi", "9999999999")
	require.NoError(t, err)

	price := 40.0
	_, err = dairySvc.AddMilkRecord(ctx, owner, customer.ID, dairy.MilkRecordInput{
		Quantity: 5, Fat: 6, SNF: 8.5, Degree: 28, PricePerLiter: &price,
		Session: models.SessionMorning,
	})
	require.NoError(t, err)
	_, err = dairySvc.AddMilkRecord(ctx, owner, customer.ID, dairy.MilkRecordInput{
		Quantity: 3, Fat: 5, PricePerLiter: &price,
		Session: models.SessionEvening,
	})
	require.NoError(t, err)

	report, err := svc.CustomerReport(ctx, owner, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", report.Customer.Name)

	require.NotNil(t, report.Overall)
	assert.InDelta(t, 8.0, report.Overall.TotalQuantity, 1e-9)
	assert.InDelta(t, 5.625, report.Overall.AvgFat, 1e-9)
	assert.InDelta(t, 320.0, report.Overall.TotalRevenue, 1e-9)
	assert.Equal(t, 2, report.Overall.RecordCount)

	require.NotNil(t, report.Morning)
	assert.InDelta(t, 5.0, report.Morning.TotalQuantity, 1e-9)
	assert.InDelta(t, 6.0, report.Morning.AvgFat, 1e-9)
	assert.InDelta(t, 200.0, report.Morning.TotalRevenue, 1e-9)

	require.NotNil(t, report.Evening)
	assert.InDelta(t, 3.0, report.Evening.TotalQuantity, 1e-9)
	assert.InDelta(t, 120.0, report.Evening.TotalRevenue, 1e-9)
}

func TestCustomerReportSessionWithoutRecordsIsNil(t *testing.T) {
	dairySvc, svc := newTestServices(t)
	ctx := context.Background()

	customer, err := dairySvc.AddCustomer(ctx, owner, "Ravi", "9999999999")
	require.NoError(t, err)
	_, err = dairySvc.AddMilkRecord(ctx, owner, customer.ID, dairy.MilkRecordInput{
		Quantity: 2, Session: models.SessionMorning,
	})
	require.NoError(t, err)

	report, err := svc.CustomerReport(ctx, owner, customer.ID)
	require.NoError(t, err)
	assert.NotNil(t, report.Morning)
	assert.Nil(t, report.Evening)
}

func TestCustomerReportUnknownCustomer(t *testing.T) {
	_, svc := newTestServices(t)
	_, err := svc.CustomerReport(context.Background(), owner, "ghost")
	assert.True(t, dairy.IsNotFound(err))
}

func TestDailyTotals(t *testing.T) {
	dairySvc, svc := newTestServices(t)
	ctx := context.Background()

	a, err := dairySvc.AddCustomer(ctx, owner, "A", "9999999991")
	require.NoError(t, err)
	b, err := dairySvc.AddCustomer(ctx, owner, "B", "9999999992")
	require.NoError(t, err)

	price := 40.0
	_, err = dairySvc.AddMilkRecord(ctx, owner, a.ID, dairy.MilkRecordInput{
		Quantity: 5, PricePerLiter: &price, Session: models.SessionMorning,
	})
	require.NoError(t, err)
	_, err = dairySvc.AddMilkRecord(ctx, owner, a.ID, dairy.MilkRecordInput{
		Quantity: 3, PricePerLiter: &price, Session: models.SessionEvening,
	})
	require.NoError(t, err)
	_, err = dairySvc.AddMilkRecord(ctx, owner, b.ID, dairy.MilkRecordInput{
		Quantity: 2, PricePerLiter: &price, Session: models.SessionMorning,
	})
	require.NoError(t, err)

	totals, err := svc.DailyTotals(ctx, owner, time.Now().UTC())
	require.NoError(t, err)
	assert.InDelta(t, 10.0, totals.TotalQuantity, 1e-9)
	assert.InDelta(t, 7.0, totals.MorningQuantity, 1e-9)
	assert.InDelta(t, 3.0, totals.EveningQuantity, 1e-9)
	assert.InDelta(t, 400.0, totals.TotalRevenue, 1e-9)
	assert.Equal(t, 3, totals.RecordCount)
	assert.Equal(t, 2, totals.CustomerCount)
}

func TestFormatDailySummary(t *testing.T) {
	_, svc := newTestServices(t)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	empty := svc.FormatDailySummary(models.DailyTotals{Date: date})
	assert.Equal(t, "Milk summary 2026-08-30: no records yet.", empty)

	body := svc.FormatDailySummary(models.DailyTotals{
		Date:            date,
		TotalQuantity:   10,
		MorningQuantity: 7,
		EveningQuantity: 3,
		TotalRevenue:    400,
		RecordCount:     3,
		CustomerCount:   2,
	})
	assert.Contains(t, body, "Milk summary 2026-08-30")
	assert.Contains(t, body, "Collected: 10.00 L (3 records, 2 customers)")
	assert.Contains(t, body, "Morning: 7.00 L, Evening: 3.00 L")
	assert.Contains(t, body, "Revenue: Rs.400.00")
}
