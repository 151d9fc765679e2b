package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gym_backend/internal/models"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TestimonialHandler holds the testimonial service.
type TestimonialHandler struct {
	testimonialService services.TestimonialService
}

// NewTestimonialHandler creates a new TestimonialHandler.
func NewTestimonialHandler(ts services.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{testimonialService: ts}
}

// CreateTestimonial stores a review from the calling member.
func (h *TestimonialHandler) CreateTestimonial(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req services.CreateTestimonialRequest
	if !bindJSON(c, &req, "CreateTestimonial") {
		return
	}

	t, err := h.testimonialService.CreateTestimonial(c.Request.Context(), session.UserID, req)
	if err != nil {
		utils.LogError(err, "CreateTestimonial: Error from testimonialService.CreateTestimonial")
		if respondValidation(c, err) {
			return
		}
		switch {
		case errors.Is(err, services.ErrTestimonialValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		case errors.Is(err, services.ErrMemberNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Member no longer exists.", ""))
		default:
			utils.RespondInternal(c, "Failed to submit testimonial.")
		}
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTestimonials lists reviews newest first. The rating filter is honoured when present.
func (h *TestimonialHandler) GetTestimonials(c *gin.Context) {
	page, pageSize := utils.Pagination(c)
	filter := models.TestimonialFilter{Page: page, PageSize: pageSize}
	if ratingStr := c.Query("rating"); ratingStr != "" {
		rating, err := strconv.Atoi(ratingStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid rating format.", ratingStr))
			return
		}
		filter.Rating = &rating
	}
	h.list(c, filter)
}

// GetPublicTestimonials lists reviews for the public site.
func (h *TestimonialHandler) GetPublicTestimonials(c *gin.Context) {
	page, pageSize := utils.Pagination(c)
	h.list(c, models.TestimonialFilter{Page: page, PageSize: pageSize})
}

func (h *TestimonialHandler) list(c *gin.Context, filter models.TestimonialFilter) {
	testimonials, total, err := h.testimonialService.GetTestimonials(c.Request.Context(), filter)
	if err != nil {
		utils.LogError(err, "GetTestimonials: Error from testimonialService.GetTestimonials")
		if errors.Is(err, services.ErrTestimonialValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.RespondInternal(c, "Failed to fetch testimonials.")
		return
	}
	if testimonials == nil {
		testimonials = []models.Testimonial{}
	}
	c.JSON(http.StatusOK, paged(testimonials, total, filter.Page, filter.PageSize))
}

func (h *TestimonialHandler) DeleteTestimonial(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "testimonial")
	if !ok {
		return
	}

	if err := h.testimonialService.DeleteTestimonial(c.Request.Context(), id); err != nil {
		utils.LogError(err, "DeleteTestimonial: Error from testimonialService.DeleteTestimonial for ID "+utils.Int64ToStr(id))
		if errors.Is(err, services.ErrTestimonialNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Testimonial not found.", ""))
			return
		}
		utils.RespondInternal(c, "Failed to delete testimonial.")
		return
	}
	c.Status(http.StatusNoContent)
}
