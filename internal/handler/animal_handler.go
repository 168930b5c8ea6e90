package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/application"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/middleware"
	"github.com/petatwork/service-booking/internal/pkg/response"
)

// AnimalHandler handles HTTP requests for animal management.
type AnimalHandler struct {
	animals  *application.AnimalService
	bookings *application.BookingService
}

// NewAnimalHandler creates a new AnimalHandler.
func NewAnimalHandler(animals *application.AnimalService, bookings *application.BookingService) *AnimalHandler {
	return &AnimalHandler{animals: animals, bookings: bookings}
}

// RegisterRoutes registers all animal routes on the given router group.
func (h *AnimalHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	ownerRole := middleware.RequireRole(auth.RoleOwner)

	animals := r.Group("/api/v1/animals")
	animals.Use(authMW, ownerRole)
	{
		animals.POST("", h.CreateAnimal)
		animals.GET("", h.ListAnimals)
		animals.GET("/:id", h.GetAnimal)
		animals.PUT("/:id", h.UpdateAnimal)
		animals.GET("/:id/bookings", h.ListAnimalBookings)
	}
}

// CreateAnimal handles POST /api/v1/animals.
func (h *AnimalHandler) CreateAnimal(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.animals.CreateAnimal(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListAnimals handles GET /api/v1/animals.
func (h *AnimalHandler) ListAnimals(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.animals.ListAnimals(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetAnimal handles GET /api/v1/animals/:id.
func (h *AnimalHandler) GetAnimal(c *gin.Context) {
	animalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid animal ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.animals.GetAnimal(c.Request.Context(), userID, animalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateAnimal handles PUT /api/v1/animals/:id.
func (h *AnimalHandler) UpdateAnimal(c *gin.Context) {
	animalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid animal ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.animals.UpdateAnimal(c.Request.Context(), userID, animalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListAnimalBookings handles GET /api/v1/animals/:id/bookings.
func (h *AnimalHandler) ListAnimalBookings(c *gin.Context) {
	animalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid animal ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.bookings.ListAnimalBookings(c.Request.Context(), userID, animalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
