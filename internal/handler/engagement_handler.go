package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/application"
	engagementDomain "github.com/petatwork/service-booking/internal/domain/engagement"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
	"github.com/petatwork/service-booking/internal/pkg/middleware"
	"github.com/petatwork/service-booking/internal/pkg/response"
)

// EngagementHandler handles HTTP requests for sitter-company engagements.
type EngagementHandler struct {
	service *application.EngagementService
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(service *application.EngagementService) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// RegisterRoutes registers all engagement routes on the given router group.
func (h *EngagementHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	engagements := r.Group("/api/v1/engagements")
	engagements.Use(authMW)
	{
		engagements.POST("", middleware.RequireRole(auth.RoleSitter), h.CreateEngagement)
		engagements.GET("", h.ListEngagements)
		engagements.GET("/:id", h.GetEngagement)
		engagements.PUT("/:id/status", h.UpdateStatus)
	}
}

// CreateEngagement handles POST /api/v1/engagements.
func (h *EngagementHandler) CreateEngagement(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateEngagement(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListEngagements handles GET /api/v1/engagements. Sitters see the
// engagements they requested, companies the ones addressed to them.
func (h *EngagementHandler) ListEngagements(c *gin.Context) {
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

	var result *domain.PaginatedResult[application.EngagementDTO]
	var err error
	switch role {
	case auth.RoleCompany:
		result, err = h.service.ListCompanyEngagements(c.Request.Context(), userID, page, limit)
	case auth.RoleSitter, auth.RoleAdmin:
		result, err = h.service.ListSitterEngagements(c.Request.Context(), userID, page, limit)
	default:
		response.Error(c, domain.NewForbiddenError("engagements are between sitters and companies"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetEngagement handles GET /api/v1/engagements/:id.
func (h *EngagementHandler) GetEngagement(c *gin.Context) {
	engagementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid engagement ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetEngagement(c.Request.Context(), userID, role, engagementID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateStatus handles PUT /api/v1/engagements/:id/status.
func (h *EngagementHandler) UpdateStatus(c *gin.Context) {
	engagementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid engagement ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	var req application.UpdateEngagementStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), userID, role, engagementID, engagementDomain.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
