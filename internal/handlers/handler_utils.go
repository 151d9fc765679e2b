package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gym_backend/internal/middleware"
	"gym_backend/internal/models"
	"gym_backend/internal/validation"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive int64 path parameter and answers 400 when it is not one.
func parseIDParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+label+" ID format.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the request body, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.LogError(err, op+": Failed to bind JSON")
		utils.RespondValidationFailed(c, validation.Describe(err))
		return false
	}
	return true
}

// respondValidation answers 400 when err came from request validation.
func respondValidation(c *gin.Context, err error) bool {
	if errors.Is(err, validation.ErrValidation) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Input validation failed", err.Error()))
		return true
	}
	return false
}

// sessionFrom returns the authenticated session or answers 401.
func sessionFrom(c *gin.Context) (*models.Session, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", ""))
		return nil, false
	}
	return session, true
}

func paged(data interface{}, total, page, pageSize int) gin.H {
	return gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}
}
