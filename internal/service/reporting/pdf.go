package reporting

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/milkbook/milkbook/internal/domain/models"
)

// CustomerPDF renders a customer's report as a PDF document: title,
// customer metadata, the summary block, and (when enabled) the full record
// table. Returns the document bytes.
func (s *Service) CustomerPDF(ctx context.Context, ownerID, customerID string, includeTable bool) ([]byte, error) {
	report, err := s.CustomerReport(ctx, ownerID, customerID)
	if err != nil {
		return nil, err
	}

	records, err := s.dairy.RecordsByCustomer(ctx, ownerID, customerID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Milk Collection Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Customer: %s", report.Customer.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Contact: %s", report.Customer.ContactNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Generated: %s", time.Now().In(s.loc).Format("02-01-2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	writeSummaryLine(pdf, "Overall", report.Overall)
	writeSummaryLine(pdf, "Morning", report.Morning)
	writeSummaryLine(pdf, "Evening", report.Evening)
	pdf.Ln(3)

	if includeTable {
		writeRecordTable(pdf, records)
	} else {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 7, "Record table generation is disabled.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummaryLine(pdf *fpdf.Fpdf, label string, summary *models.SessionSummary) {
	if summary == nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: no records", label), "", 1, "L", false, 0, "")
		return
	}
	line := fmt.Sprintf("%s: %.2f L over %d records, avg fat %.2f, avg SNF %.2f, avg degree %.2f, revenue Rs.%.2f",
		label, summary.TotalQuantity, summary.RecordCount, summary.AvgFat, summary.AvgSNF, summary.AvgDegree, summary.TotalRevenue)
	pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
}

func writeRecordTable(pdf *fpdf.Fpdf, records []models.MilkRecord) {
	headers := []string{"Date", "Session", "Qty (L)", "Fat", "SNF", "Degree", "Rs/L", "Total", "Payment"}
	widths := []float64{24, 20, 18, 14, 14, 18, 18, 24, 20}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range records {
		cells := []string{
			r.Timestamp.Format("02-01-2006"),
			string(r.Session),
			fmt.Sprintf("%.2f", r.Quantity),
			fmt.Sprintf("%.1f", r.Fat),
			fmt.Sprintf("%.1f", r.SNF),
			fmt.Sprintf("%.1f", r.Degree),
			fmt.Sprintf("%.2f", r.PricePerLiter),
			fmt.Sprintf("%.2f", r.TotalPrice),
			string(r.PaymentStatus),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
