package users

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/models"
	"github.com/campus-events/backend/internal/roles"
	"github.com/campus-events/backend/pkg/response"
	"github.com/campus-events/backend/pkg/utils"
)

// DefaultInitialPassword is assigned to admin-created accounts. The account
// is forced to change it at first login.
const DefaultInitialPassword = "strongpassword123"

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handler handles the admin user-management endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// NormalizePaging parses page and page_size query values, clamping the page
// to at least 1 and the size to [1, 200] with a default of 50.
func NormalizePaging(pageStr, sizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		size = defaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// List handles GET /admin/users.
func (h *Handler) List(c *gin.Context) {
	page, size := NormalizePaging(c.Query("page"), c.Query("page_size"))
	f := ListFilter{
		Q:        strings.TrimSpace(c.Query("q")),
		Role:     roles.Normalize(c.Query("role")),
		Page:     page,
		PageSize: size,
	}
	if c.Query("role") == "" {
		f.Role = ""
	}
	switch c.Query("active") {
	case "1", "true":
		t := true
		f.Active = &t
	case "0", "false":
		fv := false
		f.Active = &fv
	}

	items, total, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("list users", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// CreateRequest is the body for POST /admin/users.
type CreateRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Dept     *string `json:"dept"`
	Active   *bool   `json:"active"`
	Allergy  *string `json:"allergy"`
	Password string  `json:"password"`
}

// Create handles POST /admin/users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		response.BadRequest(c, "Missing fields")
		return
	}

	userType := strings.ToLower(strings.TrimSpace(req.Role))
	if userType == "" {
		userType = models.TypeStudent
	}
	if _, ok := models.AllowedTypes[userType]; !ok {
		response.BadRequest(c, "Invalid role")
		return
	}

	exists, err := h.repo.EmailExists(c.Request.Context(), email)
	if err != nil {
		response.Internal(c, "failed to check user")
		return
	}
	if exists {
		response.Conflict(c, "A user with this email already exists")
		return
	}

	password := req.Password
	if password == "" {
		password = DefaultInitialPassword
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	id, err := h.repo.Create(c.Request.Context(), CreateParams{
		Username:     name,
		Email:        email,
		Type:         userType,
		Department:   req.Dept,
		Active:       active,
		Allergy:      req.Allergy,
		PasswordHash: hash,
	})
	if err != nil {
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	item, err := h.repo.GetItem(c.Request.Context(), id)
	if err != nil || item == nil {
		response.Internal(c, "failed to load created user")
		return
	}
	response.Created(c, item)
}

// UpdateRequest is the body for PUT /admin/users/:id. Only allow-listed
// fields are applied.
type UpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Dept     *string `json:"dept"`
	Active   *bool   `json:"active"`
	Allergy  *string `json:"allergy"`
	Password *string `json:"password"`
}

// Update handles PUT /admin/users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	p := UpdateParams{
		Username:   req.Name,
		Email:      req.Email,
		Department: req.Dept,
		Active:     req.Active,
		Allergy:    req.Allergy,
	}
	if req.Role != nil {
		t := strings.ToLower(strings.TrimSpace(*req.Role))
		if _, ok := models.AllowedTypes[t]; !ok {
			response.BadRequest(c, "Invalid role")
			return
		}
		p.Type = &t
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			response.Internal(c, "failed to hash password")
			return
		}
		p.PasswordHash = &hash
	}
	if p.Empty() {
		response.BadRequest(c, "No valid fields provided")
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), id, p)
	if err != nil {
		h.logger.Error("update user", zap.Error(err))
		response.Internal(c, "failed to update user")
		return
	}
	if !updated {
		response.NotFound(c, "User not found")
		return
	}

	item, err := h.repo.GetItem(c.Request.Context(), id)
	if err != nil || item == nil {
		response.Internal(c, "failed to load updated user")
		return
	}
	response.OK(c, item)
}

// Delete handles DELETE /admin/users/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user id")
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete user", zap.Error(err))
		response.Internal(c, "failed to delete user")
		return
	}
	if !deleted {
		response.NotFound(c, "User not found")
		return
	}
	response.OK(c, gin.H{"message": "User deleted"})
}
