package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopit-dev/shopit-backend/internal/container"
	handlers "github.com/shopit-dev/shopit-backend/internal/interface/http"
	"github.com/shopit-dev/shopit-backend/internal/interface/middleware"
)

type ProductModule struct {
	Handler *handlers.ProductHandler
}

func NewProductModule(h *handlers.ProductHandler) *ProductModule {
	return &ProductModule{Handler: h}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/products", rl, m.Handler.ListProducts)
	rg.GET("/product/:id", rl, m.Handler.GetProduct)
}
