package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/middleware"
	"github.com/campus-events/backend/internal/models"
	"github.com/campus-events/backend/internal/roles"
	"github.com/campus-events/backend/internal/session"
	"github.com/campus-events/backend/pkg/response"
	"github.com/campus-events/backend/pkg/utils"
)

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo     *Repository
	sessions *session.Store
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, sessions *session.Store, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, sessions: sessions, logger: logger}
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Type       string  `json:"type"`
	Department *string `json:"department"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userType := strings.ToLower(strings.TrimSpace(req.Type))
	if userType == "" {
		userType = models.TypeStudent
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		response.BadRequest(c, "Missing fields")
		return
	}
	if _, ok := models.AllowedTypes[userType]; !ok {
		response.BadRequest(c, "Invalid role")
		return
	}

	exists, err := h.repo.Exists(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		response.Internal(c, "failed to check user")
		return
	}
	if exists {
		response.BadRequest(c, "User already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Type:         userType,
		Department:   req.Department,
		Active:       true,
	}
	if err := h.repo.Create(c.Request.Context(), u); err != nil {
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, gin.H{"message": "User registered successfully"})
}

// LoginRequest is the body for POST /auth/login. Either username or email
// identifies the account.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login. On success it establishes the server-side
// session and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if req.Password == "" || (username == "" && email == "") {
		response.BadRequest(c, "Missing fields")
		return
	}

	var (
		user *models.User
		err  error
	)
	if username != "" {
		user, err = h.repo.GetByUsername(c.Request.Context(), username)
	} else {
		user, err = h.repo.GetByEmail(c.Request.Context(), email)
	}
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "Invalid credentials")
		return
	}
	if !user.Active {
		response.Forbidden(c, "Account deactivated")
		return
	}

	role := roles.Normalize(user.Type)
	token, err := h.sessions.Create(c.Request.Context(), session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Type:     user.Type,
		Role:     role,
	})
	if err != nil {
		h.logger.Error("create session", zap.Error(err))
		response.Internal(c, "failed to create session")
		return
	}
	h.sessions.SetCookie(c, token)

	response.OK(c, gin.H{
		"role": role,
		"user": gin.H{
			"id":                   user.ID,
			"username":             user.Username,
			"email":                user.Email,
			"role":                 role,
			"must_change_password": user.MustChangePassword,
		},
	})
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.sessions.CookieName()); err == nil && token != "" {
		if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
			h.logger.Warn("delete session", zap.Error(err))
		}
	}
	h.sessions.ClearCookie(c)
	response.OK(c, gin.H{"message": "Logged out"})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	v, ok := c.Get(middleware.ContextUsername)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	response.OK(c, gin.H{
		"user": gin.H{
			"username": v.(string),
			"role":     middleware.CurrentRole(c),
		},
	})
}

// ChangePasswordRequest is the body for POST /auth/change_password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /auth/change_password.
func (h *Handler) ChangePassword(c *gin.Context) {
	v, ok := c.Get(middleware.ContextUsername)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if len(req.NewPassword) < 8 {
		response.BadRequest(c, "Password too short")
		return
	}

	user, err := h.repo.GetByUsername(c.Request.Context(), v.(string))
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil || !utils.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		response.BadRequest(c, "Invalid current password")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.repo.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		response.Internal(c, "failed to update password")
		return
	}
	response.OK(c, gin.H{"message": "Password updated"})
}

// RegisterEventRequest is the body for POST /auth/register_event.
type RegisterEventRequest struct {
	EventID string `json:"event_id"`
}

// RegisterEvent handles POST /auth/register_event: records an event signup on
// the caller's account, at most once per event.
func (h *Handler) RegisterEvent(c *gin.Context) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	var req RegisterEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	eventID := strings.TrimSpace(req.EventID)
	if eventID == "" {
		response.BadRequest(c, "Missing event_id")
		return
	}

	userID := v.(uuid.UUID)
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil {
		response.NotFound(c, "User not found")
		return
	}

	added, err := h.repo.AddSignup(c.Request.Context(), userID, models.Signup{EventID: eventID, Status: "attending"})
	if err != nil {
		response.Internal(c, "failed to register for event")
		return
	}
	msg := "Already registered"
	if added {
		msg = "Registered for event"
	}
	response.OK(c, gin.H{"updated": added, "message": msg})
}

// CreateUserRequest is the body for the legacy POST /auth/create_publisher route.
type CreateUserRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Username   string  `json:"username"`
	Type       string  `json:"type"`
	Department *string `json:"department"`
}

// CreatePublisher handles POST /auth/create_publisher (legacy admin route).
// The created account must change its password at first login.
func (h *Handler) CreatePublisher(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userType := strings.ToLower(strings.TrimSpace(req.Type))
	if req.Email == "" || req.Password == "" || req.Username == "" || userType == "" {
		response.BadRequest(c, "Missing fields.")
		return
	}
	if _, ok := models.AllowedTypes[userType]; !ok {
		response.BadRequest(c, "Invalid role specified.")
		return
	}
	if userType == models.TypePublisher && (req.Department == nil || *req.Department == "") {
		response.BadRequest(c, "Department is required for publishers.")
		return
	}

	exists, err := h.repo.Exists(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		response.Internal(c, "failed to check user")
		return
	}
	if exists {
		response.Conflict(c, "User already exists.")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	u := &models.User{
		Username:           req.Username,
		Email:              req.Email,
		PasswordHash:       hash,
		Type:               userType,
		Department:         req.Department,
		Active:             true,
		MustChangePassword: true,
	}
	if err := h.repo.Create(c.Request.Context(), u); err != nil {
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, gin.H{"message": "User '" + req.Email + "' created successfully as a " + userType + "."})
}

// UpdateUserRequest is the body for the legacy PUT /auth/update_user/:username route.
type UpdateUserRequest struct {
	Email              *string `json:"email"`
	Password           *string `json:"password"`
	Username           *string `json:"username"`
	Type               *string `json:"type"`
	Department         *string `json:"department"`
	Active             *bool   `json:"active"`
	MustChangePassword *bool   `json:"must_change_password"`
}

// UpdateUserByName handles PUT /auth/update_user/:username (legacy admin route).
func (h *Handler) UpdateUserByName(c *gin.Context) {
	username := c.Param("username")
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	p := UpdateParams{
		Email:              req.Email,
		Username:           req.Username,
		Department:         req.Department,
		Active:             req.Active,
		MustChangePassword: req.MustChangePassword,
	}
	if req.Type != nil {
		t := strings.ToLower(*req.Type)
		if _, ok := models.AllowedTypes[t]; !ok {
			response.BadRequest(c, "Invalid role specified.")
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
		response.BadRequest(c, "No valid fields to update.")
		return
	}

	updated, err := h.repo.UpdateByUsername(c.Request.Context(), username, p)
	if err != nil {
		response.Internal(c, "failed to update user")
		return
	}
	if !updated {
		response.NotFound(c, "User '"+username+"' not found.")
		return
	}
	response.OK(c, gin.H{"message": "User '" + username + "' updated successfully."})
}

// DeleteUserByName handles DELETE /auth/delete_user/:username (legacy admin route).
func (h *Handler) DeleteUserByName(c *gin.Context) {
	username := c.Param("username")
	deleted, err := h.repo.DeleteByUsername(c.Request.Context(), username)
	if err != nil {
		response.Internal(c, "failed to delete user")
		return
	}
	if !deleted {
		response.NotFound(c, "User '"+username+"' not found.")
		return
	}
	response.OK(c, gin.H{"message": "User '" + username + "' deleted successfully."})
}
