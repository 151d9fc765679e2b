package handlers

import (
	"errors"
	"net/http"

	"gym_backend/internal/models"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// AdminLogin handles dashboard operator login.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var creds models.Credentials
	if !bindJSON(c, &creds, "AdminLogin") {
		return
	}

	resp, err := h.authService.AdminLogin(c.Request.Context(), creds)
	if err != nil {
		h.respondLoginError(c, err, "AdminLogin")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MemberLogin handles member portal login.
func (h *AuthHandler) MemberLogin(c *gin.Context) {
	var creds models.Credentials
	if !bindJSON(c, &creds, "MemberLogin") {
		return
	}

	resp, err := h.authService.MemberLogin(c.Request.Context(), creds)
	if err != nil {
		h.respondLoginError(c, err, "MemberLogin")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from authService")
	if respondValidation(c, err) {
		return
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), ""))
		return
	}
	utils.RespondInternal(c, "Login failed.")
}

// Signup attaches credentials to an existing member record.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if !bindJSON(c, &req, "Signup") {
		return
	}

	member, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "Signup: Error from authService.Signup")
		if respondValidation(c, err) {
			return
		}
		switch {
		case errors.Is(err, services.ErrMemberNotRegistered):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
		case errors.Is(err, services.ErrAccountAlreadyCreated), errors.Is(err, services.ErrUsernameTaken):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.RespondInternal(c, "Failed to create account.")
		}
		return
	}
	c.JSON(http.StatusCreated, member)
}

// CurrentSession returns the session of the caller.
func (h *AuthHandler) CurrentSession(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session)
}
