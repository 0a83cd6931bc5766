package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/milkbook/milkbook/internal/config"
	"github.com/milkbook/milkbook/internal/domain/models"
)

// dailyTotalsRange is the sheet the exporter appends one row per day to.
const dailyTotalsRange = "DailyTotals!A:G"

// Exporter appends daily collection totals to a spreadsheet so the operator
// can keep an off-device ledger.
type Exporter interface {
	AppendDailyTotals(ctx context.Context, totals models.DailyTotals) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendDailyTotals writes one row of daily totals to the spreadsheet.
func (e *GoogleSheetExporter) AppendDailyTotals(ctx context.Context, totals models.DailyTotals) error {
	values := []interface{}{
		totals.Date.Format("2006-01-02"),
		totals.TotalQuantity,
		totals.MorningQuantity,
		totals.EveningQuantity,
		totals.TotalRevenue,
		totals.RecordCount,
		totals.CustomerCount,
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, dailyTotalsRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append daily totals row: %w", err)
	}

	e.logger.Debug("daily totals appended to sheet", zap.String("date", totals.Date.Format("2006-01-02")))
	return nil
}
