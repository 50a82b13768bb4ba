package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
	repo "github.com/shopit-dev/shopit-backend/internal/domain/repository"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
	"github.com/shopit-dev/shopit-backend/pkg/mailer"
)

var (
	ErrMissingCredentials   = errors.New("please enter email and password")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email address already registered")
	ErrResetTokenInvalid    = errors.New("password reset token is invalid or has expired")
	ErrPasswordMismatch     = errors.New("password does not match")
	ErrOldPasswordIncorrect = errors.New("old password is incorrect")
	// ErrEmailDelivery wraps a notification failure after the reset token has
	// been rolled back.
	ErrEmailDelivery = errors.New("email could not be sent")
)

const (
	avatarFolder  = "avatars"
	resetTokenTTL = 30 * time.Minute
)

// AssetStore uploads an image payload and returns a public identifier and
// URL; Destroy deletes an image by public identifier.
type AssetStore interface {
	Upload(ctx context.Context, payload []byte, folder string) (helpers.Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Mailer delivers an email synchronously.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Publisher enqueues a message for asynchronous handling.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AccountService owns the user lifecycle: registration, authentication,
// password reset, profile management and the admin operations.
type AccountService struct {
	Repo         repo.UserRepository
	Assets       AssetStore
	Mail         Mailer
	Pub          Publisher
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewAccountService(r repo.UserRepository, assets AssetStore, mail Mailer, pub Publisher, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *AccountService {
	return &AccountService{
		Repo:         r,
		Assets:       assets,
		Mail:         mail,
		Pub:          pub,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Avatar   []byte // optional image payload
}

// Register creates a user. When an avatar payload is present it is uploaded
// first; otherwise the avatar fields stay empty strings. The welcome email
// and search indexing are best-effort.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	avatar := helpers.Asset{}
	if len(in.Avatar) > 0 {
		a, err := s.Assets.Upload(ctx, in.Avatar, avatarFolder)
		if err != nil {
			return nil, err
		}
		avatar = a
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     entity.RoleUser,
		Avatar:   entity.Avatar{PublicID: avatar.PublicID, URL: avatar.URL},
		Cart:     []entity.CartLine{},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if s.Pub != nil {
		if err := s.Pub.PublishJSON(ctx, mailer.WelcomeJob(u.Email, u.Name)); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Warn("welcome email enqueue failed")
		}
	}
	_ = s.indexUser(ctx, u)

	u.Password = ""
	return u, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same error so existence does not leak.
func (s *AccountService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := s.Repo.GetByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	u.Password = ""
	return u, nil
}

// ForgotPassword stores a hashed reset token with an expiry and mails the raw
// token URL. If delivery fails the token fields are rolled back and the
// failure surfaces with the delivery error's message.
func (s *AccountService) ForgotPassword(ctx context.Context, email, resetURLBase string) (string, error) {
	u, err := s.Repo.GetByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if s.Mail == nil {
		// Mail sending is disabled; fail before a token is stored.
		return "", fmt.Errorf("%w: mail sender not configured", ErrEmailDelivery)
	}

	raw, hashed, err := helpers.NewResetToken()
	if err != nil {
		return "", err
	}
	uid := u.ID.Hex()
	err = s.Repo.SetFields(ctx, uid, map[string]any{
		"reset_password_token":  hashed,
		"reset_password_expire": time.Now().Add(resetTokenTTL),
	})
	if err != nil {
		return "", err
	}

	resetURL := strings.TrimRight(resetURLBase, "/") + "/password/reset/" + raw
	if err := s.Mail.Send(ctx, u.Email, mailer.PasswordResetSubject, mailer.PasswordResetBody(resetURL)); err != nil {
		if rbErr := s.Repo.UnsetFields(ctx, uid, "reset_password_token", "reset_password_expire"); rbErr != nil && s.Logger != nil {
			s.Logger.WithError(rbErr).WithField("user_id", uid).Error("reset token rollback failed")
		}
		return "", fmt.Errorf("%w: %s", ErrEmailDelivery, err.Error())
	}
	return u.Email, nil
}

// ResetPassword exchanges a valid, unexpired reset token for a new password.
func (s *AccountService) ResetPassword(ctx context.Context, token, password, confirm string) (*entity.User, error) {
	u, err := s.Repo.GetByResetToken(ctx, helpers.Sha256Hex(token), time.Now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrResetTokenInvalid
		}
		return nil, err
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	uid := u.ID.Hex()
	if err := s.Repo.SetFields(ctx, uid, map[string]any{"password": hash}); err != nil {
		return nil, err
	}
	if err := s.Repo.UnsetFields(ctx, uid, "reset_password_token", "reset_password_expire"); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, uid)
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdatePassword verifies the old password before storing the new hash.
func (s *AccountService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (*entity.User, error) {
	u, err := s.Repo.GetByIDWithPassword(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return nil, ErrOldPasswordIncorrect
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetFields(ctx, userID, map[string]any{"password": hash}); err != nil {
		return nil, err
	}
	u.Password = ""
	return u, nil
}

type UpdateProfileInput struct {
	Name   string
	Email  string
	Avatar []byte // optional replacement image
}

// UpdateProfile replaces name/email and, when a payload is present, swaps the
// avatar: the old asset is destroyed before the new one is uploaded. The
// caller gets no updated document back.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) error {
	fields := map[string]any{
		"name":  in.Name,
		"email": in.Email,
	}

	if len(in.Avatar) > 0 {
		u, err := s.Repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := s.Assets.Destroy(ctx, u.Avatar.PublicID); err != nil {
			return err
		}
		a, err := s.Assets.Upload(ctx, in.Avatar, avatarFolder)
		if err != nil {
			return err
		}
		fields["avatar"] = entity.Avatar{PublicID: a.PublicID, URL: a.URL}
	}

	if err := s.Repo.SetFields(ctx, userID, fields); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u, err := s.Repo.GetByID(ctx, userID); err == nil {
		_ = s.indexUser(ctx, u)
	}
	return nil
}

// Admin operations.

func (s *AccountService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.Repo.List(ctx)
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// AdminUpdateUser overwrites name, email and role unconditionally. Like
// UpdateProfile, the response omits the updated document.
func (s *AccountService) AdminUpdateUser(ctx context.Context, id, name, email, role string) error {
	err := s.Repo.SetFields(ctx, id, map[string]any{
		"name":  name,
		"email": email,
		"role":  role,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if u, gerr := s.Repo.GetByID(ctx, id); gerr == nil {
		_ = s.indexUser(ctx, u)
	}
	return nil
}

// DeleteUser destroys the avatar in the asset store (unconditionally, even
// when the account never uploaded one) and then deletes the document.
func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.Assets.Destroy(ctx, u.Avatar.PublicID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.deleteUserIndex(ctx, id)
	return nil
}

// Elasticsearch mirror of the users collection for the admin search endpoint.
// All operations are best-effort; the document store stays authoritative.

func (s *AccountService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID.Hex(),
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"avatar_url": u.Avatar.URL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID.Hex(), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID.Hex()).Warn("es index response error")
	}
	return nil
}

func (s *AccountService) deleteUserIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *AccountService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
