package router

import (
	"github.com/shopit-dev/shopit-backend/internal/application"
	"github.com/shopit-dev/shopit-backend/internal/container"
	"github.com/shopit-dev/shopit-backend/internal/infrastructure/mongodb"
	pginfra "github.com/shopit-dev/shopit-backend/internal/infrastructure/postgres"
	handlers "github.com/shopit-dev/shopit-backend/internal/interface/http"
	"github.com/shopit-dev/shopit-backend/internal/router/modules"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userRepo := mongodb.NewUserRepository(container.GetMongoDB())
	productRepo := mongodb.NewProductRepository(container.GetMongoDB())

	var audit *pginfra.AuditRepository
	if pool := container.GetPGPool(); pool != nil {
		audit = pginfra.NewAuditRepository(pool)
	}

	assets := helpers.NewGCSAssetStore(container.GetGCS(), cfg.GCSBucket)

	// Mail and the publisher are optional; a typed-nil pointer must not become
	// a non-nil interface, so only assign when the component is really there.
	var mail application.Mailer
	if mg := container.GetMailgun(); mg != nil {
		mail = mg
	}
	var pub application.Publisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	accountSvc := application.NewAccountService(
		userRepo,
		assets,
		mail,
		pub,
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
	)
	cartSvc := application.NewCartService(userRepo)
	productSvc := application.NewProductService(productRepo)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	accountHandler := handlers.NewAccountHandler(accountSvc, container.GetJWT(), cookies, container.GetLogger(), audit, cfg.FrontendURL)
	adminHandler := handlers.NewAdminHandler(accountSvc, container.GetLogger(), audit)
	cartHandler := handlers.NewCartHandler(cartSvc, container.GetLogger())
	productHandler := handlers.NewProductHandler(productSvc)

	r.Add(modules.NewAccountModule(accountHandler, container.GetJWT(), userRepo))
	r.Add(modules.NewAdminModule(adminHandler, container.GetJWT(), userRepo))
	r.Add(modules.NewCartModule(cartHandler, container.GetJWT(), userRepo))
	r.Add(modules.NewProductModule(productHandler))
}
