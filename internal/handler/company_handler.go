package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/petatwork/service-booking/internal/application"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/middleware"
	"github.com/petatwork/service-booking/internal/pkg/response"
)

// DirectoryHandler handles HTTP requests for browsing sitters and companies.
type DirectoryHandler struct {
	service *application.UserService
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(service *application.UserService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// RegisterRoutes registers directory routes on the given router group.
// Owners browse sitters and companies with free capacity; sitters browse the
// full company list for engagements.
func (h *DirectoryHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	directory := r.Group("/api/v1/directory")
	directory.Use(authMW)
	{
		directory.GET("/sitters", middleware.RequireRole(auth.RoleOwner), h.ListSitters)
		directory.GET("/companies", middleware.RequireRole(auth.RoleSitter), h.ListCompanies)
		directory.GET("/companies/available", middleware.RequireRole(auth.RoleOwner), h.ListAvailableCompanies)
	}
}

// ListSitters handles GET /api/v1/directory/sitters.
func (h *DirectoryHandler) ListSitters(c *gin.Context) {
	result, err := h.service.ListSitters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListCompanies handles GET /api/v1/directory/companies.
func (h *DirectoryHandler) ListCompanies(c *gin.Context) {
	result, err := h.service.ListCompanies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAvailableCompanies handles GET /api/v1/directory/companies/available.
func (h *DirectoryHandler) ListAvailableCompanies(c *gin.Context) {
	result, err := h.service.ListAvailableCompanies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
