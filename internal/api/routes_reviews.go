package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/bengalbreeze/backend/internal/auth"
	"github.com/bengalbreeze/backend/internal/handlers"
	"github.com/bengalbreeze/backend/internal/middleware"
	"github.com/bengalbreeze/backend/internal/services"
)

func registerReviewRoutes(r *gin.Engine, db *gorm.DB, guards *middleware.Guards, resolver *iauth.RoleResolver) error {
	reviewSvc, err := services.NewReviewService(db)
	if err != nil {
		return err
	}
	handler, err := handlers.NewReviewHandler(reviewSvc, resolver)
	if err != nil {
		return err
	}

	r.GET("/reviews/property/:id", handler.ListByProperty)

	authed := guards.Authenticated()
	r.POST("/reviews", authed, handler.Create)
	r.DELETE("/reviews/:id", authed, handler.Delete)

	return nil
}
