package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/service/dairy"
	"github.com/milkbook/milkbook/internal/service/reporting"
	smsclient "github.com/milkbook/milkbook/pkg/clients/sms"
)

// ReportHandler owns the summary, SMS, PDF and daily report endpoints.
type ReportHandler struct {
	svc            *reporting.Service
	smsClient      smsclient.Client // nil when no gateway is configured
	loc            *time.Location
	pdfRecordTable bool
	logger         *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter. smsClient may be nil.
func NewReportHandler(svc *reporting.Service, smsClient smsclient.Client, loc *time.Location, pdfRecordTable bool, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{
		svc:            svc,
		smsClient:      smsClient,
		loc:            loc,
		pdfRecordTable: pdfRecordTable,
		logger:         logger,
	}
}

// CustomerReport returns the overall/morning/evening summaries for one customer.
func (h *ReportHandler) CustomerReport(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	report, err := h.svc.CustomerReport(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if dairy.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.Error("failed building report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ComposeSMS returns the composed summary body and sms: URI for a customer.
func (h *ReportHandler) ComposeSMS(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	summary, err := h.svc.ComposeSMS(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if dairy.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.Error("failed composing sms", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compose sms"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SendSMS dispatches the composed summary through the configured gateway.
func (h *ReportHandler) SendSMS(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if h.smsClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sms gateway is not configured"})
		return
	}

	summary, err := h.svc.ComposeSMS(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if dairy.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.Error("failed composing sms", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compose sms"})
		return
	}

	if _, err := h.smsClient.SendText(c.Request.Context(), smsclient.SendTextRequest{
		To:   summary.To,
		Body: summary.Body,
	}); err != nil {
		h.logger.Error("failed sending sms", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send sms"})
		return
	}
	c.Status(http.StatusAccepted)
}

// CustomerPDF streams the customer's report as a PDF download.
func (h *ReportHandler) CustomerPDF(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	document, err := h.svc.CustomerPDF(c.Request.Context(), user.ID, c.Param("id"), h.pdfRecordTable)
	if err != nil {
		if dairy.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.Error("failed rendering pdf", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render pdf"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=milk-report-%s.pdf", c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", document)
}

// Daily returns cross-customer totals for one calendar day
// (?date=YYYY-MM-DD, defaulting to today).
func (h *ReportHandler) Daily(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	date := time.Now().In(h.loc)
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	totals, err := h.svc.DailyTotals(c.Request.Context(), user.ID, date)
	if err != nil {
		h.logger.Error("failed computing daily totals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute daily totals"})
		return
	}
	c.JSON(http.StatusOK, totals)
}
