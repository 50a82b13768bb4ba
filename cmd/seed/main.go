package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/shopit-dev/shopit-backend/config"
	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
	"github.com/shopit-dev/shopit-backend/internal/domain/repository"
	"github.com/shopit-dev/shopit-backend/internal/infrastructure/mongodb"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
)

// Seeds an admin account and a couple of demo products so a fresh
// environment is usable immediately. Safe to run twice: the unique email
// index rejects the duplicate admin and the products are skipped then.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, cfg.MongoURI, uint64(cfg.MongoMaxPoolSize))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB)

	if err := mongodb.EnsureUserIndexes(ctx, db); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	users := mongodb.NewUserRepository(db)
	products := mongodb.NewProductRepository(db)

	hash, err := helpers.HashPassword("admin123")
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin := &entity.User{
		Name:     "Admin",
		Email:    "admin@shopit.dev",
		Password: hash,
		Role:     entity.RoleAdmin,
	}
	switch err := users.Create(ctx, admin); {
	case err == nil:
		log.Printf("created admin user %s", admin.Email)
	case errors.Is(err, repository.ErrDuplicateEmail):
		log.Printf("admin user already exists, skipping")
		return
	default:
		log.Fatalf("create admin: %v", err)
	}

	demo := []*entity.Product{
		{
			Name:   "128GB SanDisk Memory Card",
			Price:  "45.99",
			Stock:  50,
			Images: []entity.ProductImage{{URL: "https://storage.googleapis.com/shopit-assets/products/sandisk-128.jpg"}},
		},
		{
			Name:   "Bose QuietComfort Headphones",
			Price:  "329.00",
			Stock:  12,
			Images: []entity.ProductImage{{URL: "https://storage.googleapis.com/shopit-assets/products/bose-qc.jpg"}},
		},
		{
			Name:   "Anker PowerCore 20000",
			Price:  "59.95",
			Stock:  80,
			Images: []entity.ProductImage{{URL: "https://storage.googleapis.com/shopit-assets/products/anker-20k.jpg"}},
		},
	}
	for _, p := range demo {
		if err := products.Create(ctx, p); err != nil {
			log.Fatalf("create product %q: %v", p.Name, err)
		}
		log.Printf("created product %s", p.Name)
	}
	log.Println("seed complete")
}
