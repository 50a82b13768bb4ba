package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopit-dev/shopit-backend/internal/application"
	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
	repo "github.com/shopit-dev/shopit-backend/internal/domain/repository"
	"github.com/shopit-dev/shopit-backend/internal/interface/middleware"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
	"github.com/shopit-dev/shopit-backend/pkg/validation"
)

// memUserRepo is the minimal in-memory store the route tests need.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (m *memUserRepo) copyUser(u *entity.User, withPassword bool) *entity.User {
	out := *u
	if u.Cart != nil {
		out.Cart = append([]entity.CartLine{}, u.Cart...)
	}
	if !withPassword {
		out.Password = ""
	}
	return &out
}

func (m *memUserRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = time.Now()
	m.users[u.ID.Hex()] = m.copyUser(u, true)
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return m.copyUser(u, false), nil
}

func (m *memUserRepo) GetByIDWithPassword(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return m.copyUser(u, true), nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string, withPassword bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return m.copyUser(u, withPassword), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) GetByResetToken(_ context.Context, hashed string, now time.Time) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetPasswordToken == hashed && u.ResetPasswordExpire.After(now) {
			return m.copyUser(u, false), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) List(_ context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *m.copyUser(u, false))
	}
	return out, nil
}

func (m *memUserRepo) SetFields(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
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
		}
	}
	return nil
}

func (m *memUserRepo) UnsetFields(_ context.Context, id string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	for _, k := range fields {
		switch k {
		case "reset_password_token":
			u.ResetPasswordToken = ""
		case "reset_password_expire":
			u.ResetPasswordExpire = time.Time{}
		}
	}
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) PushCartLine(_ context.Context, id string, line entity.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Cart = append(u.Cart, line)
	return nil
}

func (m *memUserRepo) PullCartLine(_ context.Context, id string, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
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

type noopAssets struct{}

func (noopAssets) Upload(_ context.Context, _ []byte, folder string) (helpers.Asset, error) {
	return helpers.Asset{PublicID: folder + "/x", URL: "https://assets.example.com/x"}, nil
}
func (noopAssets) Destroy(context.Context, string) error { return nil }

type noopMailer struct{}

func (noopMailer) Send(context.Context, string, string, string) error { return nil }

// newTestRouter assembles the account, admin and cart routes the way the
// modules register them, minus the Redis rate limiters.
func newTestRouter(t *testing.T) (*gin.Engine, *memUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	users := newMemUserRepo()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	accountSvc := application.NewAccountService(users, noopAssets{}, noopMailer{}, nil, logger, nil, "")
	cartSvc := application.NewCartService(users)
	jwtMgr := helpers.NewJWTManager("test-secret", time.Hour)
	cookies := helpers.NewCookie("", false)

	account := NewAccountHandler(accountSvc, jwtMgr, cookies, logger, nil, "http://localhost:3000")
	admin := NewAdminHandler(accountSvc, logger, nil)
	cart := NewCartHandler(cartSvc, logger)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/register", account.Register)
	api.POST("/login", account.Login)
	api.GET("/logout", account.Logout)

	auth := api.Group("")
	auth.Use(middleware.Auth(jwtMgr, users))
	auth.GET("/me", account.GetProfile)
	auth.PUT("/me/update", account.UpdateProfile)
	auth.PUT("/password/update", account.UpdatePassword)
	auth.PUT("/addtocart/:id", cart.AddToCart)
	auth.PUT("/deleteFromCartById/:id", cart.DeleteFromCartByID)
	auth.GET("/deleteFromCart", cart.DeleteFromCart)

	adm := auth.Group("/admin")
	adm.Use(middleware.RequireRole(entity.RoleAdmin))
	adm.GET("/users", admin.ListUsers)
	adm.GET("/user/:id", admin.GetUser)

	return r, users
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == helpers.SessionCookie {
			return ck
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func registerUser(t *testing.T, r *gin.Engine, name, email, password string) (*http.Cookie, string) {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/register", gin.H{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, body)
	user := body["user"].(map[string]any)
	return sessionCookie(t, w), user["id"].(string)
}

func TestRegisterIssuesSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/register", gin.H{
		"name": "John", "email": "john@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	ck := sessionCookie(t, w)
	assert.True(t, ck.HttpOnly)
	assert.NotEmpty(t, ck.Value)

	user := body["user"].(map[string]any)
	assert.Equal(t, "john@example.com", user["email"])
	_, leaked := user["password"]
	assert.False(t, leaked, "password must not appear in the response")
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/register", gin.H{
		"name": "John", "email": "john@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "password")
}

func TestLoginRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "John", "john@example.com", "secret1")

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/login", gin.H{
		"email": "john@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["token"])

	// Wrong password and unknown email yield the same message.
	w1, b1 := doJSON(t, r, http.MethodPost, "/api/v1/login", gin.H{"email": "john@example.com", "password": "wrong"})
	w2, b2 := doJSON(t, r, http.MethodPost, "/api/v1/login", gin.H{"email": "nobody@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w1.Code)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
	assert.Equal(t, b1["message"], b2["message"])
}

func TestMeRequiresSession(t *testing.T) {
	r, _ := newTestRouter(t)
	ck, _ := registerUser(t, r, "John", "john@example.com", "secret1")

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/me", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "John", user["name"])

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "login first to access this resource", body["message"])

	bad := &http.Cookie{Name: helpers.SessionCookie, Value: "garbage"}
	w, body = doJSON(t, r, http.MethodGet, "/api/v1/me", nil, bad)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid session token", body["message"])
}

func TestLogoutExpiresCookie(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	ck := sessionCookie(t, w)
	assert.Empty(t, ck.Value)
	assert.Less(t, ck.MaxAge, 0)
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	r, users := newTestRouter(t)
	ck, uid := registerUser(t, r, "John", "john@example.com", "secret1")

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/admin/users", nil, ck)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "role (user) is not allowed to access this resource", body["message"])

	users.mu.Lock()
	users.users[uid].Role = entity.RoleAdmin
	users.mu.Unlock()

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/admin/users", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["users"], 1)
}

func TestAddToCartRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	ck, uid := registerUser(t, r, "John", "john@example.com", "secret1")

	w, body := doJSON(t, r, http.MethodPut, "/api/v1/addtocart/"+uid, gin.H{
		"product": "prod-1", "name": "SanDisk Card", "price": "45.99", "quantity": 2,
	}, ck)
	require.Equal(t, http.StatusOK, w.Code, body)

	user := body["user"].(map[string]any)
	cart := user["cart"].([]any)
	require.Len(t, cart, 1)
	line := cart[0].(map[string]any)
	assert.Equal(t, "SanDisk Card", line["price"])
	assert.Equal(t, float64(2), line["quantity"])
}

func TestAddToCartUnknownUserMessage(t *testing.T) {
	r, _ := newTestRouter(t)
	ck, _ := registerUser(t, r, "John", "john@example.com", "secret1")

	w, body := doJSON(t, r, http.MethodPut, "/api/v1/addtocart/ffffffffffffffffffffffff", gin.H{
		"product": "prod-1", "name": "SanDisk Card", "quantity": 1,
	}, ck)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", body["message"])
}

func TestDeleteFromCartByIDRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	ck, uid := registerUser(t, r, "John", "john@example.com", "secret1")

	_, body := doJSON(t, r, http.MethodPut, "/api/v1/addtocart/"+uid, gin.H{
		"product": "prod-1", "name": "a", "quantity": 1,
	}, ck)
	user := body["user"].(map[string]any)
	lineID := user["cart"].([]any)[0].(map[string]any)["_id"].(string)

	w, body := doJSON(t, r, http.MethodPut, "/api/v1/deleteFromCartById/"+uid, gin.H{
		"userId": uid, "cartId": lineID,
	}, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uid, body["userId"])
	assert.Len(t, body["cartData"], 0)

	// The cart is really empty afterwards.
	_, body = doJSON(t, r, http.MethodGet, "/api/v1/me", nil, ck)
	assert.Len(t, body["user"].(map[string]any)["cart"], 0)
}

func TestAccountCartScenario(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "John", "john@example.com", "secret1")

	// Fresh login session, separate from the registration one.
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/login", gin.H{
		"email": "john@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	ck := sessionCookie(t, w)
	uid := body["user"].(map[string]any)["id"].(string)

	// Registration left the avatar empty.
	avatar := body["user"].(map[string]any)["avatar"].(map[string]any)
	assert.Equal(t, "", avatar["public_id"])
	assert.Equal(t, "", avatar["url"])

	_, body = doJSON(t, r, http.MethodPut, "/api/v1/addtocart/"+uid, gin.H{
		"product": "prod-1", "name": "SanDisk Card", "price": "45.99", "quantity": 1,
	}, ck)
	cart := body["user"].(map[string]any)["cart"].([]any)
	require.Len(t, cart, 1)
	lineID := cart[0].(map[string]any)["_id"].(string)

	w, _ = doJSON(t, r, http.MethodPut, "/api/v1/deleteFromCartById/"+uid, gin.H{
		"userId": uid, "cartId": lineID,
	}, ck)
	require.Equal(t, http.StatusOK, w.Code)

	_, body = doJSON(t, r, http.MethodGet, "/api/v1/me", nil, ck)
	assert.Len(t, body["user"].(map[string]any)["cart"], 0)
}

func TestDeleteFromCartLegacyRouteDoesNotPersist(t *testing.T) {
	r, _ := newTestRouter(t)
	ck, uid := registerUser(t, r, "John", "john@example.com", "secret1")

	_, body := doJSON(t, r, http.MethodPut, "/api/v1/addtocart/"+uid, gin.H{
		"product": "prod-1", "name": "a", "quantity": 1,
	}, ck)
	user := body["user"].(map[string]any)
	lineID := user["cart"].([]any)[0].(map[string]any)["_id"].(string)

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/deleteFromCart?userId="+uid+"&id="+lineID, nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["cartData"], 0)

	// The snapshot said empty, the stored cart still has the line.
	_, body = doJSON(t, r, http.MethodGet, "/api/v1/me", nil, ck)
	assert.Len(t, body["user"].(map[string]any)["cart"], 1)
}
