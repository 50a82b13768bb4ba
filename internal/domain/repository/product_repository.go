package repository

import (
	"context"

	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
)

// ProductRepository exposes the read side of the catalog plus the insert the
// seeder needs.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context) ([]entity.Product, error)
}
