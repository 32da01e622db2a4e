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
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// declarationHandler handles HTTP requests for declarations, their imported
// statements and classification runs.
type declarationHandler struct {
	declarationService    *services.DeclarationService
	classificationService *services.ClassificationService
	reviewService         *services.ReviewService
}

func newDeclarationHandler(ds *services.DeclarationService, cs *services.ClassificationService, rs *services.ReviewService) *declarationHandler {
	return &declarationHandler{
		declarationService:    ds,
		classificationService: cs,
		reviewService:         rs,
	}
}

// registerDeclarationRoutes registers routes related to declarations.
func registerDeclarationRoutes(rg *gin.RouterGroup, ds *services.DeclarationService, cs *services.ClassificationService, rs *services.ReviewService) {
	h := newDeclarationHandler(ds, cs, rs)

	declarations := rg.Group("/declarations")
	{
		declarations.POST("", h.createDeclaration)
		declarations.GET("", h.listDeclarations)
		declarations.GET("/:declarationID", h.getDeclaration)
		declarations.POST("/:declarationID/statements", h.importStatement)
		declarations.GET("/:declarationID/statements", h.listStatements)
		declarations.GET("/:declarationID/transactions", h.listTransactions)
		declarations.GET("/:declarationID/report", h.getReport)
		declarations.POST("/:declarationID/analysis", h.runAnalysis)
		declarations.GET("/:declarationID/review-queue", h.listReviewQueue)
	}
}

// createDeclaration godoc
// @Summary Create a new declaration
// @Description Opens a new filing period for a client
// @Tags declarations
// @Accept json
// @Produce json
// @Param declaration body dto.CreateDeclarationRequest true "Declaration details"
// @Success 201 {object} dto.DeclarationResponse
// @Router /declarations [post]
func (h *declarationHandler) createDeclaration(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDeclaration", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID := middleware.GetUserIDFromContext(c)
	declaration, err := h.declarationService.CreateDeclaration(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create declaration", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create declaration"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToDeclarationResponse(declaration))
}

// listDeclarations godoc
// @Summary List declarations
// @Tags declarations
// @Produce json
// @Success 200 {array} dto.DeclarationResponse
// @Router /declarations [get]
func (h *declarationHandler) listDeclarations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	declarations, err := h.declarationService.ListDeclarations(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list declarations", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list declarations"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListDeclarationResponse(declarations))
}

// getDeclaration godoc
// @Summary Get a declaration by ID
// @Tags declarations
// @Produce json
// @Param declarationID path string true "Declaration ID"
// @Success 200 {object} dto.DeclarationResponse
// @Router /declarations/{declarationID} [get]
func (h *declarationHandler) getDeclaration(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	declarationID := c.Param("declarationID")

	declaration, err := h.declarationService.GetDeclarationByID(c.Request.Context(), declarationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Declaration not found"})
			return
		}
		logger.Error("Failed to get declaration", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get declaration"})
		return
	}
	c.JSON(http.StatusOK, dto.ToDeclarationResponse(declaration))
}

// importStatement godoc
// @Summary Import a statement
// @Description Records one statement and its normalized transaction rows under a declaration
// @Tags declarations
// @Accept json
// @Produce json
// @Param declarationID path string true "Declaration ID"
// @Param statement body dto.ImportStatementRequest true "Statement and transaction rows"
// @Success 201 {object} dto.ImportStatementResponse
// @Router /declarations/{declarationID}/statements [post]
func (h *declarationHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	declarationID := c.Param("declarationID")

	var req dto.ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID := middleware.GetUserIDFromContext(c)
	statement, count, err := h.declarationService.ImportStatement(c.Request.Context(), declarationID, req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Declaration not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to import statement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import statement"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ImportStatementResponse{
		Statement:        dto.ToStatementResponse(statement),
		TransactionCount: count,
	})
}

// listStatements godoc
// @Summary List a declaration's statements
// @Tags declarations
// @Produce json
// @Param declarationID path string true "Declaration ID"
// @Success 200 {array} dto.StatementResponse
// @Router /declarations/{declarationID}/statements [get]
func (h *declarationHandler) listStatements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	statements, err := h.declarationService.ListStatements(c.Request.Context(), c.Param("declarationID"))
	if err != nil {
		logger.Error("Failed to list statements", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list statements"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListStatementResponse(statements))
}

// listTransactions godoc
// @Summary List a declaration's transactions
// @Tags declarations
// @Produce json
// @Param declarationID path string true "Declaration ID"
// @Param incomeOnly query bool false "Only income transactions"
// @Success 200 {array} dto.TransactionResponse
// @Router /declarations/{declarationID}/transactions [get]
func (h *declarationHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	incomeOnly := c.Query("incomeOnly") == "true"

	txns, err := h.declarationService.ListTransactions(c.Request.Context(), c.Param("declarationID"), incomeOnly)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionResponse(txns))
}

// getReport godoc
// @Summary Get the declaration report
// @Description Sums classified transactions per declaration point
// @Tags declarations
// @Produce json
// @Param declarationID path string true "Declaration ID"
// @Success 200 {array} dto.PointTotalResponse
// @Router /declarations/{declarationID}/report [get]
func (h *declarationHandler) getReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	totals, err := h.declarationService.GetReport(c.Request.Context(), c.Param("declarationID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Declaration not found"})
			return
		}
		logger.Error("Failed to build declaration report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build declaration report"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListPointTotalResponse(totals))
}

// runAnalysis godoc
// @Summary Run a classification analysis
// @Description Runs one classification domain over the declaration's candidate transactions
// @Tags declarations
// @Accept json
// @Produce json
// @Param declarationID path string true "Declaration ID"
// @Param run body dto.RunAnalysisRequest true "Domain and mode"
// @Success 200 {object} dto.RunSummaryResponse
// @Router /declarations/{declarationID}/analysis [post]
func (h *declarationHandler) runAnalysis(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	declarationID := c.Param("declarationID")

	var req dto.RunAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RunAnalysis", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	mode := services.RunMode(req.Mode)
	if mode == "" {
		mode = services.RunModeFull
	}

	triggeredBy := middleware.GetUserIDFromContext(c)
	summary, err := h.classificationService.RunAnalysis(c.Request.Context(), declarationID, models.RuleDomain(req.Domain), mode, triggeredBy)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Declaration not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Analysis run failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis run failed"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.RunSummaryResponse{
		Matched:      summary.Matched,
		NewUnmatched: summary.NewUnmatched,
		Cleared:      summary.Cleared,
	})
}

// listReviewQueue godoc
// @Summary List a declaration's review queue
// @Tags declarations
// @Produce json
// @Param declarationID path string true "Declaration ID"
// @Param status query string false "Filter by review status"
// @Success 200 {array} dto.ReviewEntryResponse
// @Router /declarations/{declarationID}/review-queue [get]
func (h *declarationHandler) listReviewQueue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := models.ReviewStatus(c.Query("status"))

	entries, err := h.reviewService.ListQueue(c.Request.Context(), c.Param("declarationID"), status)
	if err != nil {
		logger.Error("Failed to list review queue", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list review queue"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListReviewEntryResponse(entries))
}
