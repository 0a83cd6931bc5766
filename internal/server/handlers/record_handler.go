package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/domain/models"
	"github.com/milkbook/milkbook/internal/service/dairy"
)

// RecordHandler owns the milk record endpoints.
type RecordHandler struct {
	svc    *dairy.Service
	logger *zap.Logger
}

// NewRecordHandler constructs the HTTP handler adapter.
func NewRecordHandler(svc *dairy.Service, logger *zap.Logger) *RecordHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordHandler{svc: svc, logger: logger}
}

type addRecordRequest struct {
	Quantity      float64  `json:"quantity" binding:"required"`
	Fat           float64  `json:"fat"`
	SNF           float64  `json:"snf"`
	Degree        float64  `json:"degree"`
	PricePerLiter *float64 `json:"pricePerLiter"`
	Session       string   `json:"session" binding:"required"`
}

type paymentRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListByCustomer returns a customer's records newest first; ?limit=n caps
// the result to the most recent n.
func (h *RecordHandler) ListByCustomer(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	customerID := c.Param("id")
	if _, err := h.svc.GetCustomer(c.Request.Context(), user.ID, customerID); err != nil {
		if dairy.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.Error("failed fetching customer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch customer"})
		return
	}

	var (
		records []models.MilkRecord
		err     error
	)
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, convErr := strconv.Atoi(limitStr)
		if convErr != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		records, err = h.svc.LastNRecordsByCustomer(c.Request.Context(), user.ID, customerID, limit)
	} else {
		records, err = h.svc.RecordsByCustomer(c.Request.Context(), user.ID, customerID)
	}
	if err != nil {
		h.logger.Error("failed listing records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create stores a new milk record for a customer.
func (h *RecordHandler) Create(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req addRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity and session are required"})
		return
	}

	record, err := h.svc.AddMilkRecord(c.Request.Context(), user.ID, c.Param("id"), dairy.MilkRecordInput{
		Quantity:      req.Quantity,
		Fat:           req.Fat,
		SNF:           req.SNF,
		Degree:        req.Degree,
		PricePerLiter: req.PricePerLiter,
		Session:       models.MilkSession(req.Session),
	})
	if err != nil {
		switch {
		case errors.Is(err, dairy.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case dairy.IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		default:
			h.logger.Error("failed adding record", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add record"})
		}
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Delete removes a milk record by id.
func (h *RecordHandler) Delete(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.svc.DeleteMilkRecord(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if dairy.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		h.logger.Error("failed deleting record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete record"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPayment toggles a record's payment status. No other field changes.
func (h *RecordHandler) SetPayment(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	err := h.svc.SetPaymentStatus(c.Request.Context(), user.ID, c.Param("id"), models.PaymentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, dairy.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case dairy.IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		default:
			h.logger.Error("failed updating payment status", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update payment status"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
