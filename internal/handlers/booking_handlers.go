package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gym_backend/internal/models"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler holds the booking service.
type BookingHandler struct {
	bookingService services.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bs services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bs}
}

// CreateBooking files a pending trainer booking for the calling member.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req services.CreateBookingRequest
	if !bindJSON(c, &req, "CreateBooking") {
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), session.UserID, req)
	if err != nil {
		utils.LogError(err, "CreateBooking: Error from bookingService.CreateBooking")
		if respondValidation(c, err) {
			return
		}
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Member no longer exists.", ""))
		case errors.Is(err, services.ErrMembershipExpired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		case errors.Is(err, services.ErrTrainerNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		case errors.Is(err, services.ErrBookingInPast), errors.Is(err, services.ErrDateFormat):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.RespondInternal(c, "Failed to create booking.")
		}
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GetMyBookings lists the calling member's bookings.
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	page, pageSize := utils.Pagination(c)

	bookings, total, err := h.bookingService.GetMemberBookings(c.Request.Context(), session.UserID, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetMyBookings: Error from bookingService.GetMemberBookings")
		utils.RespondInternal(c, "Failed to fetch bookings.")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, paged(bookings, total, page, pageSize))
}

// GetBookings handles fetching all bookings with pagination and filters.
func (h *BookingHandler) GetBookings(c *gin.Context) {
	page, pageSize := utils.Pagination(c)
	filter := models.BookingFilter{Page: page, PageSize: pageSize}
	if status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status != "" {
		filter.Status = &status
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}

	bookings, total, err := h.bookingService.GetBookings(c.Request.Context(), filter)
	if err != nil {
		utils.LogError(err, "GetBookings: Error from bookingService.GetBookings")
		if errors.Is(err, services.ErrBookingValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.RespondInternal(c, "Failed to fetch bookings.")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, paged(bookings, total, page, pageSize))
}

// UpdateBookingStatus approves or rejects a pending booking.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID, ok := parseIDParam(c, "id", "booking")
	if !ok {
		return
	}
	var req services.UpdateBookingStatusRequest
	if !bindJSON(c, &req, "UpdateBookingStatus") {
		return
	}

	booking, err := h.bookingService.UpdateBookingStatus(c.Request.Context(), bookingID, req)
	if err != nil {
		utils.LogError(err, "UpdateBookingStatus: Error from bookingService.UpdateBookingStatus for ID "+utils.Int64ToStr(bookingID))
		if respondValidation(c, err) {
			return
		}
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Booking not found.", ""))
		case errors.Is(err, services.ErrInvalidStatusTransition):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.RespondInternal(c, "Failed to update booking status.")
		}
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	bookingID, ok := parseIDParam(c, "id", "booking")
	if !ok {
		return
	}

	if err := h.bookingService.DeleteBooking(c.Request.Context(), bookingID); err != nil {
		utils.LogError(err, "DeleteBooking: Error from bookingService.DeleteBooking for ID "+utils.Int64ToStr(bookingID))
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Booking not found.", ""))
			return
		}
		utils.RespondInternal(c, "Failed to delete booking.")
		return
	}
	c.Status(http.StatusNoContent)
}
