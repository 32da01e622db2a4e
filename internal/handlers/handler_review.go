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

// reviewHandler handles HTTP requests for the manual review queue.
type reviewHandler struct {
	reviewService *services.ReviewService
}

func newReviewHandler(rs *services.ReviewService) *reviewHandler {
	return &reviewHandler{reviewService: rs}
}

// registerReviewRoutes registers routes related to review entries.
func registerReviewRoutes(rg *gin.RouterGroup, rs *services.ReviewService) {
	h := newReviewHandler(rs)

	reviews := rg.Group("/reviews")
	{
		reviews.GET("/:reviewID", h.getEntry)
		reviews.POST("/:reviewID/resolve", h.resolve)
		reviews.POST("/:reviewID/finalize", h.finalizeProposal)
	}
}

// getEntry godoc
// @Summary Get a review entry by ID
// @Tags reviews
// @Produce json
// @Param reviewID path string true "Review ID"
// @Success 200 {object} dto.ReviewEntryResponse
// @Router /reviews/{reviewID} [get]
func (h *reviewHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entry, err := h.reviewService.GetEntry(c.Request.Context(), c.Param("reviewID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review entry not found"})
			return
		}
		logger.Error("Failed to get review entry", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get review entry"})
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewEntryResponse(entry))
}

// resolve godoc
// @Summary Resolve a review entry
// @Description Assigns the transaction a declaration point and closes the entry, optionally capturing a rule proposal
// @Tags reviews
// @Accept json
// @Produce json
// @Param reviewID path string true "Review ID"
// @Param resolution body dto.ResolveReviewRequest true "Resolution details"
// @Success 200 {object} dto.ReviewEntryResponse
// @Router /reviews/{reviewID}/resolve [post]
func (h *reviewHandler) resolve(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ResolveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ResolveReview", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	entry, err := h.reviewService.Resolve(c.Request.Context(), c.Param("reviewID"), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Review entry or declaration point not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to resolve review entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve review entry"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewEntryResponse(entry))
}

// finalizeProposal godoc
// @Summary Finalize a rule proposal
// @Description Turns a captured proposal into a real category rule and closes the entry
// @Tags reviews
// @Accept json
// @Produce json
// @Param reviewID path string true "Review ID"
// @Param finalization body dto.FinalizeProposalRequest true "Rule details"
// @Success 201 {object} dto.RuleResponse
// @Router /reviews/{reviewID}/finalize [post]
func (h *reviewHandler) finalizeProposal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.FinalizeProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for FinalizeProposal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	rule, err := h.reviewService.FinalizeProposal(c.Request.Context(), c.Param("reviewID"), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Review entry not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to finalize rule proposal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize rule proposal"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToRuleResponse(rule))
}
