package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/St0bbe/remix-of-our-little-pix/auth"
	"github.com/St0bbe/remix-of-our-little-pix/middleware"
	"github.com/St0bbe/remix-of-our-little-pix/models"
)

// AuthHandler handles login, password change and password reset
type AuthHandler struct {
	auth *auth.Service
	jwt  *auth.JWTManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *auth.Service, jwt *auth.JWTManager) *AuthHandler {
	return &AuthHandler{auth: svc, jwt: jwt}
}

// Login authenticates an allow-listed identity and returns a session
// token. A first login stores the submitted password and is flagged in
// the response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": processValidationError(err)})
		return
	}

	if !models.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	result, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	token, err := h.jwt.Generate(result.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":          token,
		"email":          result.Email,
		"is_first_login": result.IsFirstLogin,
	})
}

// ChangePassword overwrites the authenticated identity's password after
// verifying the current one
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": processValidationError(err)})
		return
	}

	email := middleware.GetEmail(c)
	if err := h.auth.ChangePassword(email, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ResetPassword deletes the stored hash for an allow-listed identity so
// its next login becomes a first login. The identity must be typed twice;
// that re-confirmation is deliberately the only gate.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email        string `json:"email" binding:"required"`
		ConfirmEmail string `json:"confirm_email" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": processValidationError(err)})
		return
	}

	if models.NormalizeEmail(req.Email) != models.NormalizeEmail(req.ConfirmEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email addresses do not match"})
		return
	}

	if err := h.auth.ResetPassword(req.Email); err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset; the next login sets a new password"})
}

// respondAuthError keeps wrong-password and not-on-allow-list
// distinguishable so the client can render different messages
func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrIncorrectPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
	}
}
