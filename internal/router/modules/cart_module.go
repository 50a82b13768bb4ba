package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopit-dev/shopit-backend/internal/container"
	repo "github.com/shopit-dev/shopit-backend/internal/domain/repository"
	handlers "github.com/shopit-dev/shopit-backend/internal/interface/http"
	"github.com/shopit-dev/shopit-backend/internal/interface/middleware"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
)

// CartModule keeps the storefront's historical route shapes, including the
// legacy GET removal path.

type CartModule struct {
	Handler *handlers.CartHandler
	JWT     *helpers.JWTManager
	Users   repo.UserRepository
}

func NewCartModule(h *handlers.CartHandler, jwt *helpers.JWTManager, users repo.UserRepository) *CartModule {
	return &CartModule{Handler: h, JWT: jwt, Users: users}
}

func (m *CartModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT, m.Users))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.PUT("/addtocart/:id", m.Handler.AddToCart)
		auth.PUT("/deleteFromCartById/:id", m.Handler.DeleteFromCartByID)
		auth.GET("/deleteFromCart", m.Handler.DeleteFromCart)
	}
}
