package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shopit-dev/shopit-backend/internal/application"
	"github.com/shopit-dev/shopit-backend/internal/infrastructure/postgres"
	"github.com/shopit-dev/shopit-backend/internal/interface/middleware"
	"github.com/shopit-dev/shopit-backend/pkg/response"
	"github.com/shopit-dev/shopit-backend/pkg/validation"
)

// AdminHandler exposes the admin user-management endpoints. All routes sit
// behind Auth plus the admin role gate.
type AdminHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
	Audit  *postgres.AuditRepository
}

func NewAdminHandler(svc *application.AccountService, logger *logrus.Logger, audit *postgres.AuditRepository) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger, Audit: audit}
}

func (h *AdminHandler) audit(c *gin.Context, targetID, action string) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Insert(c.Request.Context(), postgres.AuditEntry{
		UserID:    c.GetString(middleware.CtxUserIDKey),
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  map[string]any{"target_user_id": targetID},
	})
	if err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

// ListUsers GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"users": users})
}

// GetUser GET /admin/user/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"user": u})
}

type adminUpdateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=user admin"`
}

// UpdateUser PUT /admin/user/:id
// Unconditional overwrite; like profile update, the response omits the
// updated document.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	id := c.Param("id")
	if err := h.Svc.AdminUpdateUser(c.Request.Context(), id, req.Name, req.Email, req.Role); err != nil {
		fail(c, err)
		return
	}
	h.audit(c, id, "admin_user_update")
	response.OK(c, http.StatusOK, gin.H{})
}

// DeleteUser DELETE /admin/user/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.DeleteUser(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	h.audit(c, id, "admin_user_delete")
	response.OK(c, http.StatusOK, gin.H{})
}

// SearchUsers GET /admin/users/search?q=&size=
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"users": hits})
}
