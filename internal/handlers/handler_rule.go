package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/services"
	"github.com/araratsoft/tax_declaration_app/internal/dto"
	"github.com/araratsoft/tax_declaration_app/internal/middleware"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// ruleHandler handles HTTP requests for classification rules.
type ruleHandler struct {
	ruleService *services.RuleService
}

func newRuleHandler(rs *services.RuleService) *ruleHandler {
	return &ruleHandler{ruleService: rs}
}

// registerRuleRoutes registers routes related to rules.
func registerRuleRoutes(rg *gin.RouterGroup, rs *services.RuleService) {
	h := newRuleHandler(rs)

	rules := rg.Group("/rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.GET("/proposed", h.listProposedRules)
		rules.GET("/:ruleID", h.getRule)
		rules.PUT("/:ruleID", h.updateRule)
		rules.DELETE("/:ruleID", h.deleteRule)
		rules.POST("/:ruleID/propose-global", h.proposeGlobal)
		rules.POST("/:ruleID/promote", h.promoteToGlobal)
		rules.POST("/:ruleID/reject-proposal", h.rejectProposal)
	}
}

// createRule godoc
// @Summary Create a new classification rule
// @Tags rules
// @Accept json
// @Produce json
// @Param rule body dto.CreateRuleRequest true "Rule details"
// @Success 201 {object} dto.RuleResponse
// @Router /rules [post]
func (h *ruleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID := middleware.GetUserIDFromContext(c)
	rule, err := h.ruleService.CreateRule(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Result declaration point not found"})
		default:
			logger.Error("Failed to create rule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToRuleResponse(rule))
}

// listRules godoc
// @Summary List rules in a domain
// @Tags rules
// @Produce json
// @Param domain query string true "Rule domain" Enums(CATEGORY, ENTITY_TYPE, SCOPE)
// @Param declarationID query string false "Narrow to one declaration's scope"
// @Success 200 {array} dto.RuleResponse
// @Router /rules [get]
func (h *ruleHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	domain := models.RuleDomain(c.Query("domain"))
	switch domain {
	case models.DomainCategory, models.DomainEntityType, models.DomainScope:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'domain' must be CATEGORY, ENTITY_TYPE or SCOPE"})
		return
	}
	var declarationID *string
	if v := c.Query("declarationID"); v != "" {
		declarationID = &v
	}

	rules, err := h.ruleService.ListRules(c.Request.Context(), domain, declarationID)
	if err != nil {
		logger.Error("Failed to list rules", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rules"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListRuleResponse(rules))
}

// listProposedRules godoc
// @Summary List rules proposed for promotion to global scope
// @Tags rules
// @Produce json
// @Success 200 {array} dto.RuleResponse
// @Router /rules/proposed [get]
func (h *ruleHandler) listProposedRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rules, err := h.ruleService.ListProposedRules(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list proposed rules", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list proposed rules"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListRuleResponse(rules))
}

// getRule godoc
// @Summary Get a rule by ID
// @Tags rules
// @Produce json
// @Param ruleID path string true "Rule ID"
// @Success 200 {object} dto.RuleResponse
// @Router /rules/{ruleID} [get]
func (h *ruleHandler) getRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rule, err := h.ruleService.GetRuleByID(c.Request.Context(), c.Param("ruleID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		logger.Error("Failed to get rule", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rule"})
		return
	}
	c.JSON(http.StatusOK, dto.ToRuleResponse(rule))
}

// updateRule godoc
// @Summary Update a rule
// @Tags rules
// @Accept json
// @Produce json
// @Param ruleID path string true "Rule ID"
// @Param rule body dto.UpdateRuleRequest true "Fields to update"
// @Success 200 {object} dto.RuleResponse
// @Router /rules/{ruleID} [put]
func (h *ruleHandler) updateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID := middleware.GetUserIDFromContext(c)
	rule, err := h.ruleService.UpdateRule(c.Request.Context(), c.Param("ruleID"), req, updaterUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update rule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rule"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToRuleResponse(rule))
}

// deleteRule godoc
// @Summary Delete a rule
// @Tags rules
// @Param ruleID path string true "Rule ID"
// @Success 204
// @Router /rules/{ruleID} [delete]
func (h *ruleHandler) deleteRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.ruleService.DeleteRule(c.Request.Context(), c.Param("ruleID")); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		logger.Error("Failed to delete rule", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule"})
		return
	}
	c.Status(http.StatusNoContent)
}

// proposeGlobal godoc
// @Summary Propose a declaration-scoped rule for global promotion
// @Tags rules
// @Produce json
// @Param ruleID path string true "Rule ID"
// @Success 200 {object} dto.RuleResponse
// @Router /rules/{ruleID}/propose-global [post]
func (h *ruleHandler) proposeGlobal(c *gin.Context) {
	h.transition(c, h.ruleService.ProposeGlobal)
}

// promoteToGlobal godoc
// @Summary Promote a proposed rule to global scope
// @Tags rules
// @Produce json
// @Param ruleID path string true "Rule ID"
// @Success 200 {object} dto.RuleResponse
// @Router /rules/{ruleID}/promote [post]
func (h *ruleHandler) promoteToGlobal(c *gin.Context) {
	h.transition(c, h.ruleService.PromoteToGlobal)
}

// rejectProposal godoc
// @Summary Reject a rule's promotion proposal
// @Tags rules
// @Produce json
// @Param ruleID path string true "Rule ID"
// @Success 200 {object} dto.RuleResponse
// @Router /rules/{ruleID}/reject-proposal [post]
func (h *ruleHandler) rejectProposal(c *gin.Context) {
	h.transition(c, h.ruleService.RejectProposal)
}

// transition runs one of the proposal state changes that share their
// request/response shape.
func (h *ruleHandler) transition(c *gin.Context, fn func(ctx context.Context, ruleID, userID string) (*models.Rule, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := middleware.GetUserIDFromContext(c)

	rule, err := fn(c.Request.Context(), c.Param("ruleID"), userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Rule state change failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rule state change failed"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToRuleResponse(rule))
}
