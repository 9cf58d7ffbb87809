package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/handlers"
	"github.com/bengalbreeze/backend/internal/middleware"
	"github.com/bengalbreeze/backend/internal/services"
)

func registerWishlistRoutes(r *gin.Engine, db *gorm.DB, guards *middleware.Guards) error {
	wishlistSvc, err := services.NewWishlistService(db)
	if err != nil {
		return err
	}
	handler, err := handlers.NewWishlistHandler(wishlistSvc)
	if err != nil {
		return err
	}

	authed := guards.Authenticated()
	r.POST("/wishlist", authed, handler.Add)
	r.GET("/wishlist", authed, handler.List)
	r.DELETE("/wishlist/:id", authed, handler.Remove)

	return nil
}
