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

type exchangeRateHandler struct {
	rateService *services.ExchangeRateService
}

func newExchangeRateHandler(rs *services.ExchangeRateService) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rs}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rs *services.ExchangeRateService) {
	h := newExchangeRateHandler(rs)

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.upsertRate)
	}
}

// upsertRate godoc
// @Summary Create or update an exchange rate
// @Description Stores the rate of one unit of the given currency in the local currency for a date
// @Tags exchange-rates
// @Accept json
// @Produce json
// @Param rate body dto.UpsertExchangeRateRequest true "Rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Router /exchange-rates [post]
func (h *exchangeRateHandler) upsertRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpsertExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	rate, err := h.rateService.UpsertExchangeRate(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to upsert exchange rate", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert exchange rate"})
		return
	}
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}
