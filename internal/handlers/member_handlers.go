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

// MemberHandler holds the member service.
type MemberHandler struct {
	memberService services.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(ms services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: ms}
}

func (h *MemberHandler) respondWriteError(c *gin.Context, err error, fallback string) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", ""))
	case errors.Is(err, services.ErrEmailExists), errors.Is(err, services.ErrPhoneNumberExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "email or phone already registered", err.Error()))
	case errors.Is(err, services.ErrMemberValidation), errors.Is(err, services.ErrDateFormat), errors.Is(err, services.ErrInvalidMembershipWindow):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	default:
		utils.RespondInternal(c, fallback)
	}
}

// CreateMember registers a new member.
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req services.CreateMemberRequest
	if !bindJSON(c, &req, "CreateMember") {
		return
	}

	member, err := h.memberService.CreateMember(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateMember: Error from memberService.CreateMember")
		h.respondWriteError(c, err, "Failed to create member.")
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetMembers lists members with search, status filter and pagination.
func (h *MemberHandler) GetMembers(c *gin.Context) {
	page, pageSize := utils.Pagination(c)
	query := services.MemberListQuery{
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Page:     page,
		PageSize: pageSize,
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query.Search = &search
	}

	members, total, err := h.memberService.GetMembers(c.Request.Context(), query)
	if err != nil {
		utils.LogError(err, "GetMembers: Error from memberService.GetMembers")
		if errors.Is(err, services.ErrMemberValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.RespondInternal(c, "Failed to fetch members.")
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	c.JSON(http.StatusOK, paged(members, total, page, pageSize))
}

// GetMemberByID fetches a member with their membership status.
func (h *MemberHandler) GetMemberByID(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	member, err := h.memberService.GetMemberByID(c.Request.Context(), memberID)
	if err != nil {
		utils.LogError(err, "GetMemberByID: Error from memberService.GetMemberByID for ID "+utils.Int64ToStr(memberID))
		h.respondWriteError(c, err, "Failed to fetch member.")
		return
	}
	c.JSON(http.StatusOK, member)
}

// UpdateMember applies a partial update.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}
	var req services.UpdateMemberRequest
	if !bindJSON(c, &req, "UpdateMember") {
		return
	}

	member, err := h.memberService.UpdateMember(c.Request.Context(), memberID, req)
	if err != nil {
		utils.LogError(err, "UpdateMember: Error from memberService.UpdateMember for ID "+utils.Int64ToStr(memberID))
		h.respondWriteError(c, err, "Failed to update member.")
		return
	}
	c.JSON(http.StatusOK, member)
}

// DeleteMember removes a member together with their bookings and testimonials.
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	if err := h.memberService.DeleteMember(c.Request.Context(), memberID); err != nil {
		utils.LogError(err, "DeleteMember: Error from memberService.DeleteMember for ID "+utils.Int64ToStr(memberID))
		h.respondWriteError(c, err, "Failed to delete member.")
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the calling member's profile.
func (h *MemberHandler) Me(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	member, err := h.memberService.GetMemberByID(c.Request.Context(), session.UserID)
	if err != nil {
		utils.LogError(err, "Me: Error from memberService.GetMemberByID")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Member no longer exists.", ""))
			return
		}
		utils.RespondInternal(c, "Failed to fetch profile.")
		return
	}
	c.JSON(http.StatusOK, member)
}
