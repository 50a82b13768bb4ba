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

// AccountModule wires the public auth endpoints and the authenticated
// profile endpoints.
// Public: POST /register, POST /login, POST /password/forgot,
// PUT /password/reset/:token, GET /logout
// Protected: GET /me, PUT /me/update, PUT /password/update

type AccountModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
	Users   repo.UserRepository
}

func NewAccountModule(h *handlers.AccountHandler, jwt *helpers.JWTManager, users repo.UserRepository) *AccountModule {
	return &AccountModule{Handler: h, JWT: jwt, Users: users}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/password/forgot", forgotLimiter, m.Handler.ForgotPassword)
	rg.PUT("/password/reset/:token", resetLimiter, m.Handler.ResetPassword)
	rg.GET("/logout", m.Handler.Logout)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT, m.Users))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.GetProfile)
		auth.PUT("/me/update", m.Handler.UpdateProfile)
		auth.PUT("/password/update", m.Handler.UpdatePassword)
	}
}
