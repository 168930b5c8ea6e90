package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/application"
	bookingDomain "github.com/petatwork/service-booking/internal/domain/booking"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
	"github.com/petatwork/service-booking/internal/pkg/middleware"
	"github.com/petatwork/service-booking/internal/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleOwner), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/availability", middleware.RequireRole(auth.RoleOwner), h.CheckAvailability)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id/status", h.UpdateStatus)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Owners see bookings for their
// animals; sitters and companies see bookings addressed to them.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	var result *domain.PaginatedResult[application.BookingDTO]
	var err error
	switch role {
	case auth.RoleSitter, auth.RoleCompany:
		result, err = h.service.ListCounterpartyBookings(c.Request.Context(), userID, role, page, limit)
	default:
		result, err = h.service.ListOwnerBookings(c.Request.Context(), userID, page, limit)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// CheckAvailability handles GET /api/v1/bookings/availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	animalID, err := uuid.Parse(c.Query("animal_id"))
	if err != nil {
		response.BadRequest(c, "invalid animal ID")
		return
	}
	startDate, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		response.BadRequest(c, "invalid start date, expected YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		response.BadRequest(c, "invalid end date, expected YYYY-MM-DD")
		return
	}

	conflicts, err := h.service.CheckAvailability(c.Request.Context(), userID, animalID, startDate, endDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"available": len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetBooking(c.Request.Context(), userID, role, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateStatus handles PUT /api/v1/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	var req application.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), userID, role, bookingID, bookingDomain.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, statusChangeMessage(result.Status), result)
}

// statusChangeMessage returns the confirmation message shown to the caller
// after a status update.
func statusChangeMessage(status string) string {
	switch bookingDomain.Status(status) {
	case bookingDomain.StatusAccepted:
		return "booking accepted"
	case bookingDomain.StatusRefused:
		return "booking refused"
	case bookingDomain.StatusCancelled:
		return "booking cancelled"
	case bookingDomain.StatusPaid:
		return "booking paid"
	default:
		return "booking status updated"
	}
}
