package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
	repo "github.com/shopit-dev/shopit-backend/internal/domain/repository"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
)

// fakeUserRepo is an in-memory UserRepository with the same projection and
// partial-update behavior as the mongo implementation.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	// extras records $set keys that do not map to a known document field,
	// the way a schemaless store would accept them.
	extras map[string]map[string]any

	pullCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  map[string]*entity.User{},
		extras: map[string]map[string]any{},
	}
}

func (f *fakeUserRepo) copyUser(u *entity.User, includePassword bool) *entity.User {
	out := *u
	out.Cart = append([]entity.CartLine(nil), u.Cart...)
	if !includePassword {
		out.Password = ""
	}
	return &out
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	f.users[u.ID.Hex()] = f.copyUser(u, true)
	return nil
}

func (f *fakeUserRepo) get(id string, includePassword bool) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return f.copyUser(u, includePassword), nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id, false)
}

func (f *fakeUserRepo) GetByIDWithPassword(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id, true)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string, includePassword bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return f.copyUser(u, includePassword), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByResetToken(_ context.Context, hashedToken string, now time.Time) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetPasswordToken == hashedToken && u.ResetPasswordExpire.After(now) {
			return f.copyUser(u, false), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *f.copyUser(u, false))
	}
	return out, nil
}

func (f *fakeUserRepo) SetFields(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "role":
			u.Role = v.(string)
		case "password":
			u.Password = v.(string)
		case "avatar":
			u.Avatar = v.(entity.Avatar)
		case "reset_password_token":
			u.ResetPasswordToken = v.(string)
		case "reset_password_expire":
			u.ResetPasswordExpire = v.(time.Time)
		case "cart":
			u.Cart = v.([]entity.CartLine)
		default:
			if f.extras[id] == nil {
				f.extras[id] = map[string]any{}
			}
			f.extras[id][k] = v
		}
	}
	return nil
}

func (f *fakeUserRepo) UnsetFields(_ context.Context, id string, fields ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	for _, k := range fields {
		switch k {
		case "reset_password_token":
			u.ResetPasswordToken = ""
		case "reset_password_expire":
			u.ResetPasswordExpire = time.Time{}
		case "password":
			u.Password = ""
		default:
			delete(f.extras[id], k)
		}
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) PushCartLine(_ context.Context, id string, line entity.CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Cart = append(u.Cart, line)
	return nil
}

func (f *fakeUserRepo) PullCartLine(_ context.Context, id string, lineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pullCalls++
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	remaining := u.Cart[:0]
	for _, line := range u.Cart {
		if line.ID.Hex() == lineID {
			continue
		}
		remaining = append(remaining, line)
	}
	u.Cart = remaining
	return nil
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)

type fakeAssets struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	uploadErr error
}

func (f *fakeAssets) Upload(_ context.Context, _ []byte, folder string) (helpers.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return helpers.Asset{}, f.uploadErr
	}
	f.uploads++
	id := fmt.Sprintf("%s/asset-%d", folder, f.uploads)
	return helpers.Asset{PublicID: id, URL: "https://assets.example.com/" + id}, nil
}

func (f *fakeAssets) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []any
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, body)
	return nil
}

var errSMTPDown = errors.New("smtp connection refused")
