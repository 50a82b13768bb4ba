package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shopit-dev/shopit-backend/internal/application"
	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
	"github.com/shopit-dev/shopit-backend/internal/infrastructure/postgres"
	"github.com/shopit-dev/shopit-backend/internal/interface/middleware"
	"github.com/shopit-dev/shopit-backend/pkg/helpers"
	"github.com/shopit-dev/shopit-backend/pkg/response"
	"github.com/shopit-dev/shopit-backend/pkg/validation"
)

// AccountHandler exposes registration, authentication, password reset and
// profile endpoints. Every successful auth or account mutation responds by
// issuing a fresh session token.
type AccountHandler struct {
	Svc     *application.AccountService
	JWT     *helpers.JWTManager
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
	Audit   *postgres.AuditRepository
	// FrontendURL is the base for the password-reset link embedded in email.
	FrontendURL string
}

func NewAccountHandler(svc *application.AccountService, jwt *helpers.JWTManager, cookies *helpers.CookieManager, logger *logrus.Logger, audit *postgres.AuditRepository, frontendURL string) *AccountHandler {
	return &AccountHandler{Svc: svc, JWT: jwt, Cookies: cookies, Logger: logger, Audit: audit, FrontendURL: frontendURL}
}

// statusFor maps service errors onto the HTTP status carried by the error kind.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrMissingCredentials),
		errors.Is(err, application.ErrEmailTaken),
		errors.Is(err, application.ErrResetTokenInvalid),
		errors.Is(err, application.ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrOldPasswordIncorrect):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrProductNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	response.Error(c, statusFor(err), err.Error())
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func (h *AccountHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Insert(c.Request.Context(), postgres.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	})
	if err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

// sendToken issues the session token, sets the HTTP-only cookie and writes
// the {success, user, token} body.
func (h *AccountHandler) sendToken(c *gin.Context, u *entity.User, status int) {
	token, exp, err := h.JWT.Generate(u.ID.Hex())
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Error("token signing failed")
		}
		response.Error(c, http.StatusInternalServerError, "could not issue session token")
		return
	}
	h.Cookies.SetSession(c, token, exp)
	response.OK(c, status, gin.H{"user": u, "token": token})
}

// decodeImagePayload accepts either a bare base64 string or a data URI.
func decodeImagePayload(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if i := strings.Index(s, ";base64,"); i >= 0 {
		s = s[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Avatar   string `json:"avatar"`
}

// Register POST /register
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	avatar, err := decodeImagePayload(req.Avatar)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "avatar must be base64 encoded")
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   avatar,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, u.ID.Hex(), u.Email, "register", nil)
	h.sendToken(c, u, http.StatusOK)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.audit(c, "", req.Email, "login_failed", nil)
		fail(c, err)
		return
	}
	h.audit(c, u.ID.Hex(), u.Email, "login", nil)
	h.sendToken(c, u, http.StatusOK)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword POST /password/forgot
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	sentTo, err := h.Svc.ForgotPassword(c.Request.Context(), req.Email, h.FrontendURL)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, "", req.Email, "password_forgot", nil)
	response.Message(c, http.StatusOK, "email sent to: "+sentTo)
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ResetPassword PUT /password/reset/:token
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	u, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, u.ID.Hex(), u.Email, "password_reset", nil)
	h.sendToken(c, u, http.StatusOK)
}

// GetProfile GET /me
func (h *AccountHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"user": u})
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	Password    string `json:"password" binding:"required,pwd"`
}

// UpdatePassword PUT /password/update
func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.UpdatePassword(c.Request.Context(), uid, req.OldPassword, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, uid, u.Email, "password_update", nil)
	h.sendToken(c, u, http.StatusOK)
}

type updateProfileRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Avatar string `json:"avatar"`
}

// UpdateProfile PUT /me/update
// The response deliberately carries no updated user document; the storefront
// refetches the profile instead.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	avatar, err := decodeImagePayload(req.Avatar)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "avatar must be base64 encoded")
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	err = h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: avatar,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, uid, req.Email, "profile_update", nil)
	response.OK(c, http.StatusOK, gin.H{})
}

// Logout GET /logout
// Only expires the cookie; the token itself stays valid until expiry.
func (h *AccountHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Message(c, http.StatusOK, "logged out")
}
