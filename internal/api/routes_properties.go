package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/handlers"
	"github.com/bengalbreeze/backend/internal/middleware"
	"github.com/bengalbreeze/backend/internal/models"
	"github.com/bengalbreeze/backend/internal/services"
)

func registerPropertyRoutes(r *gin.Engine, db *gorm.DB, guards *middleware.Guards) error {
	propertySvc, err := services.NewPropertyService(db)
	if err != nil {
		return err
	}
	handler, err := handlers.NewPropertyHandler(propertySvc)
	if err != nil {
		return err
	}

	// Public browsing
	r.GET("/properties/verified", handler.ListVerified)
	r.GET("/properties/advertised", handler.ListAdvertised)
	r.GET("/properties/:id", handler.Get)

	// Agent surface
	agent := guards.Role(models.RoleAgent)
	r.POST("/add/properties", agent, handler.Submit)
	r.GET("/agent-properties", agent, handler.ListMine)

	// Admin lifecycle surface
	admin := guards.Role(models.RoleAdmin)
	r.PATCH("/verify/property/:id", admin, handler.Verify)
	r.PATCH("/reject/property/:id", admin, handler.Reject)
	r.PATCH("/add-advertise/property/:id", admin, handler.Advertise)
	r.PATCH("/remove-advertise/property/:id", admin, handler.Unadvertise)

	return nil
}
