package profile

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/auth"
	"github.com/campus-events/backend/internal/middleware"
	"github.com/campus-events/backend/pkg/response"
)

// Handler handles the self-service profile endpoints.
type Handler struct {
	repo   *auth.Repository
	logger *zap.Logger
}

// NewHandler creates a profile handler.
func NewHandler(repo *auth.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) profileBody(c *gin.Context, username string) (gin.H, bool) {
	user, err := h.repo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.Internal(c, "failed to load profile")
		return nil, false
	}
	if user == nil {
		response.NotFound(c, "User not found")
		return nil, false
	}
	department := ""
	if user.Department != nil {
		department = *user.Department
	}
	allergy := ""
	if user.Allergy != nil {
		allergy = *user.Allergy
	}
	return gin.H{
		"username":   user.Username,
		"email":      user.Email,
		"department": department,
		"type":       user.Type,
		"allergy":    allergy,
	}, true
}

// Get handles GET /profile.
func (h *Handler) Get(c *gin.Context) {
	body, ok := h.profileBody(c, middleware.Username(c))
	if !ok {
		return
	}
	response.OK(c, body)
}

// UpdateRequest is the body for POST /profile. Only email and allergy may
// be changed by the account itself.
type UpdateRequest struct {
	Email   *string `json:"email"`
	Allergy *string `json:"allergy"`
}

// Update handles POST /profile.
func (h *Handler) Update(c *gin.Context) {
	username := middleware.Username(c)
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Email == nil && req.Allergy == nil {
		response.BadRequest(c, "No valid fields provided")
		return
	}
	if err := h.repo.UpdateProfile(c.Request.Context(), username, req.Email, req.Allergy); err != nil {
		h.logger.Error("update profile", zap.Error(err))
		response.Internal(c, "failed to update profile")
		return
	}
	body, ok := h.profileBody(c, username)
	if !ok {
		return
	}
	response.OK(c, body)
}
