package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/server/handlers"
	"github.com/milkbook/milkbook/internal/service/identity"
)

// Handlers groups the HTTP adapters the router wires up.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Customer *handlers.CustomerHandler
	Record   *handlers.RecordHandler
	Report   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, identitySvc *identity.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/auth/signup", h.Auth.Signup)
	r.POST("/auth/login", h.Auth.Login)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := r.Group("/", authMiddleware(identitySvc))
	authed.POST("/auth/logout", h.Auth.Logout)

	authed.GET("/customers", h.Customer.List)
	authed.POST("/customers", h.Customer.Create)
	authed.GET("/customers/:id", h.Customer.Get)
	authed.DELETE("/customers/:id", h.Customer.Delete)

	authed.GET("/customers/:id/records", h.Record.ListByCustomer)
	authed.POST("/customers/:id/records", h.Record.Create)
	authed.DELETE("/records/:id", h.Record.Delete)
	authed.PATCH("/records/:id/payment", h.Record.SetPayment)

	authed.GET("/customers/:id/report", h.Report.CustomerReport)
	authed.GET("/customers/:id/report/sms", h.Report.ComposeSMS)
	authed.POST("/customers/:id/report/sms/send", h.Report.SendSMS)
	authed.GET("/customers/:id/report/pdf", h.Report.CustomerPDF)
	authed.GET("/reports/daily", h.Report.Daily)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// authMiddleware resolves the bearer token to an operator and aborts with
// 401 when it cannot.
func authMiddleware(identitySvc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		user, err := identitySvc.ResolveToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		handlers.SetCurrentUser(c, user)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
