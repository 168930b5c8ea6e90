package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/application"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/middleware"
	"github.com/petatwork/service-booking/internal/pkg/response"
)

// AdminHandler handles admin HTTP requests for oversight and refunds.
type AdminHandler struct {
	bookings *application.BookingService
	payments *application.PaymentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, payments *application.PaymentService) *AdminHandler {
	return &AdminHandler{bookings: bookings, payments: payments}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/payments", h.ListPayments)
		admin.POST("/payments/:id/refund", h.RefundPayment)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/stats/payments", h.PaymentStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.bookings.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListPayments handles GET /api/v1/admin/payments.
func (h *AdminHandler) ListPayments(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.payments.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// RefundPayment handles POST /api/v1/admin/payments/:id/refund.
func (h *AdminHandler) RefundPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	result, err := h.payments.Refund(c.Request.Context(), paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// PaymentStats handles GET /api/v1/admin/stats/payments.
func (h *AdminHandler) PaymentStats(c *gin.Context) {
	stats, err := h.payments.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
