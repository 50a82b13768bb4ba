package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopit-dev/shopit-backend/internal/container"
	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
	repo "github.com/shopit-dev/shopit-backend/internal/domain/repository"
	handlers "github.com/shopit-dev/shopit-backend/internal/interface/http"
	"github.com/shopit-dev/shopit-backend/internal/interface/middleware"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
)

type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
	Users   repo.UserRepository
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager, users repo.UserRepository) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt, Users: users}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.JWT, m.Users))
	admin.Use(middleware.RequireRole(entity.RoleAdmin))
	admin.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()))
	{
		admin.GET("/users", m.Handler.ListUsers)
		admin.GET("/users/search", m.Handler.SearchUsers)
		admin.GET("/user/:id", m.Handler.GetUser)
		admin.PUT("/user/:id", m.Handler.UpdateUser)
		admin.DELETE("/user/:id", m.Handler.DeleteUser)
	}
}
