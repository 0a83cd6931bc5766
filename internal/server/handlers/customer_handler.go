package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/service/dairy"
)

// CustomerHandler owns the customer CRUD endpoints.
type CustomerHandler struct {
	svc    *dairy.Service
	logger *zap.Logger
}

// NewCustomerHandler constructs the HTTP handler adapter.
func NewCustomerHandler(svc *dairy.Service, logger *zap.Logger) *CustomerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerHandler{svc: svc, logger: logger}
}

type addCustomerRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactNumber string `json:"contactNumber" binding:"required"`
}

// List returns the operator's customers.
func (h *CustomerHandler) List(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	customers, err := h.svc.ListCustomers(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed listing customers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// Create registers a new customer.
func (h *CustomerHandler) Create(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req addCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and contactNumber are required"})
		return
	}

	customer, err := h.svc.AddCustomer(c.Request.Context(), user.ID, req.Name, req.ContactNumber)
	if err != nil {
		if errors.Is(err, dairy.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed adding customer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add customer"})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// Get returns one customer by id.
func (h *CustomerHandler) Get(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	customer, err := h.svc.GetCustomer(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if dairy.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.Error("failed fetching customer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch customer"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Delete removes a customer and cascades to its milk records.
func (h *CustomerHandler) Delete(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.svc.DeleteCustomer(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if dairy.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.Error("failed deleting customer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete customer"})
		return
	}
	c.Status(http.StatusNoContent)
}
