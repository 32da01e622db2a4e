package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/services"
	"github.com/araratsoft/tax_declaration_app/internal/dto"
	"github.com/araratsoft/tax_declaration_app/internal/middleware"
)

type declarationPointHandler struct {
	pointService *services.DeclarationPointService
}

func newDeclarationPointHandler(ps *services.DeclarationPointService) *declarationPointHandler {
	return &declarationPointHandler{pointService: ps}
}

// registerDeclarationPointRoutes registers routes related to declaration points.
func registerDeclarationPointRoutes(rg *gin.RouterGroup, ps *services.DeclarationPointService) {
	h := newDeclarationPointHandler(ps)

	points := rg.Group("/declaration-points")
	{
		points.POST("", h.createPoint)
		points.GET("", h.listPoints)
		points.GET("/:pointID", h.getPoint)
	}
}

// createPoint godoc
// @Summary Create a declaration point
// @Tags declaration-points
// @Accept json
// @Produce json
// @Param point body dto.CreateDeclarationPointRequest true "Point details"
// @Success 201 {object} dto.DeclarationPointResponse
// @Router /declaration-points [post]
func (h *declarationPointHandler) createPoint(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDeclarationPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDeclarationPoint", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	point, err := h.pointService.CreatePoint(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "A declaration point with this name already exists"})
		default:
			logger.Error("Failed to create declaration point", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create declaration point"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToDeclarationPointResponse(point))
}

// listPoints godoc
// @Summary List declaration points
// @Tags declaration-points
// @Produce json
// @Success 200 {array} dto.DeclarationPointResponse
// @Router /declaration-points [get]
func (h *declarationPointHandler) listPoints(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	points, err := h.pointService.ListPoints(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list declaration points", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list declaration points"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListDeclarationPointResponse(points))
}

// getPoint godoc
// @Summary Get a declaration point by ID
// @Tags declaration-points
// @Produce json
// @Param pointID path string true "Point ID"
// @Success 200 {object} dto.DeclarationPointResponse
// @Router /declaration-points/{pointID} [get]
func (h *declarationPointHandler) getPoint(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	point, err := h.pointService.GetPointByID(c.Request.Context(), c.Param("pointID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Declaration point not found"})
			return
		}
		logger.Error("Failed to get declaration point", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get declaration point"})
		return
	}
	c.JSON(http.StatusOK, dto.ToDeclarationPointResponse(point))
}
