package application

import (
	"context"
	"errors"

	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
	repo "github.com/shopit-dev/shopit-backend/internal/domain/repository"
)

var ErrProductNotFound = errors.New("product not found")

// ProductService is the read side of the catalog consumed by the storefront
// cart flow.
type ProductService struct {
	Repo repo.ProductRepository
}

func NewProductService(r repo.ProductRepository) *ProductService {
	return &ProductService{Repo: r}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return s.Repo.List(ctx)
}
