package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/bengalbreeze/backend/internal/auth"
	"github.com/bengalbreeze/backend/internal/handlers"
	"github.com/bengalbreeze/backend/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(db *gorm.DB, tokens *iauth.TokenService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}

	resolver, err := iauth.NewRoleResolver(db)
	if err != nil {
		return nil, err
	}
	guards, err := middleware.NewGuards(tokens, resolver)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	authHandler, err := handlers.NewAuthHandler(tokens)
	if err != nil {
		return nil, err
	}
	r.POST("/jwt", authHandler.IssueToken)

	if err := registerUserRoutes(r, db, guards); err != nil {
		return nil, err
	}
	if err := registerPropertyRoutes(r, db, guards); err != nil {
		return nil, err
	}
	if err := registerReviewRoutes(r, db, guards, resolver); err != nil {
		return nil, err
	}
	if err := registerWishlistRoutes(r, db, guards); err != nil {
		return nil, err
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
