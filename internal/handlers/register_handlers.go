package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/araratsoft/tax_declaration_app/internal/core/services"
)

// Services bundles the concrete services the route handlers need.
type Services struct {
	Declaration    *services.DeclarationService
	Point          *services.DeclarationPointService
	Rule           *services.RuleService
	Classification *services.ClassificationService
	Review         *services.ReviewService
	ExchangeRate   *services.ExchangeRateService
}

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, svc *Services) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.GET("/", getHome)

	v1 := r.Group("/api/v1")

	registerDeclarationRoutes(v1, svc.Declaration, svc.Classification, svc.Review)
	registerDeclarationPointRoutes(v1, svc.Point)
	registerRuleRoutes(v1, svc.Rule)
	registerReviewRoutes(v1, svc.Review)
	registerExchangeRateRoutes(v1, svc.ExchangeRate)
}
