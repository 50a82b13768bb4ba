package application

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
	repo "github.com/shopit-dev/shopit-backend/internal/domain/repository"
)

// CartService owns the embedded cart list inside a user document. Quantity
// changes are not supported; lines are only appended and removed.
type CartService struct {
	Repo repo.UserRepository
}

func NewCartService(r repo.UserRepository) *CartService {
	return &CartService{Repo: r}
}

type AddLineInput struct {
	Product  string
	Name     string
	Price    string
	Image    string
	Stock    int
	Quantity int
}

// AddLine appends a new cart line built from the request fields and returns
// the full updated user. The line's Price is populated from the Name input;
// the storefront has always stored it that way and existing carts depend on
// the shape, so it is kept verbatim.
func (s *CartService) AddLine(ctx context.Context, userID string, in AddLineInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	line := entity.CartLine{
		ID:       primitive.NewObjectID(),
		Product:  in.Product,
		Name:     in.Name,
		Price:    in.Name,
		Image:    in.Image,
		Stock:    in.Stock,
		Quantity: in.Quantity,
	}
	if err := s.Repo.PushCartLine(ctx, userID, line); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, u.ID.Hex())
}

// RemoveLineByID removes the cart line with the given id via an atomic pull.
// The returned snapshot is computed client-side by filtering the lines that
// were read before the pull; when lineID matches nothing the pull is a no-op
// but the snapshot is still returned, so the two can diverge.
func (s *CartService) RemoveLineByID(ctx context.Context, userID, lineID string) ([]entity.CartLine, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	matched := false
	remaining := make([]entity.CartLine, 0, len(u.Cart))
	for _, line := range u.Cart {
		if line.ID.Hex() == lineID {
			matched = true
			continue
		}
		remaining = append(remaining, line)
	}

	if matched {
		if err := s.Repo.PullCartLine(ctx, userID, lineID); err != nil {
			return nil, err
		}
	}
	return remaining, nil
}

// RemoveLineByQuery is the legacy removal path. It filters the lines locally
// and then updates a document field named cartDatas instead of cart, so the
// persisted cart never changes. The storefront still calls it; it is kept
// with its original behavior until the route can be retired.
func (s *CartService) RemoveLineByQuery(ctx context.Context, userID, id string) ([]entity.CartLine, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	remaining := make([]entity.CartLine, 0, len(u.Cart))
	for _, line := range u.Cart {
		if line.ID.Hex() == id {
			continue
		}
		remaining = append(remaining, line)
	}

	if err := s.Repo.SetFields(ctx, userID, map[string]any{"cartDatas": remaining}); err != nil {
		return nil, err
	}
	return remaining, nil
}
