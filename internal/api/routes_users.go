package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/handlers"
	"github.com/bengalbreeze/backend/internal/middleware"
	"github.com/bengalbreeze/backend/internal/models"
	"github.com/bengalbreeze/backend/internal/services"
)

func registerUserRoutes(r *gin.Engine, db *gorm.DB, guards *middleware.Guards) error {
	userSvc, err := services.NewUserService(db)
	if err != nil {
		return err
	}
	handler, err := handlers.NewUserHandler(userSvc)
	if err != nil {
		return err
	}

	// Registration is open; role lookups are self-scoped; everything else is
	// admin territory.
	r.POST("/users", handler.Register)
	r.GET("/users/admin/:email", guards.Self("email"), handler.CheckAdmin)
	r.GET("/users/agent/:email", guards.Self("email"), handler.CheckAgent)

	admin := guards.Role(models.RoleAdmin)
	r.GET("/users", admin, handler.List)
	r.PATCH("/users/admin/:id", admin, handler.PromoteToAdmin)
	r.PATCH("/users/agent/:id", admin, handler.PromoteToAgent)
	r.DELETE("/users/:id", admin, handler.Delete)

	return nil
}
