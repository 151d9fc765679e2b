package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_backend/internal/membership"
	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/internal/validation"
	"gym_backend/pkg/utils"
)

// --- Custom Service Errors for Member ---
var (
	ErrMemberNotFound          = errors.New("member not found")
	ErrMemberValidation        = errors.New("member data validation error")
	ErrEmailExists             = errors.New("email already registered")
	ErrPhoneNumberExists       = errors.New("phone number already registered")
	ErrDateFormat              = errors.New("invalid date format, use YYYY-MM-DD or DD/MM/YYYY")
	ErrInvalidMembershipWindow = errors.New("expiry date cannot be before registration date")
)

// --- Member DTOs ---
type CreateMemberRequest struct {
	FullName     string `json:"full_name" binding:"required,max=120"`
	Email        string `json:"email" binding:"required,email"`
	PhoneNumber  string `json:"phone_number" binding:"required,phone"`
	RegisteredAt string `json:"registered_at" binding:"required,caldate"`
	ExpiresAt    string `json:"expires_at" binding:"required,caldate"`
}

type UpdateMemberRequest struct {
	FullName     *string `json:"full_name" binding:"omitempty,min=1,max=120"`
	Email        *string `json:"email" binding:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number" binding:"omitempty,phone"`
	RegisteredAt *string `json:"registered_at" binding:"omitempty,caldate"`
	ExpiresAt    *string `json:"expires_at" binding:"omitempty,caldate"`
}

// MemberListQuery is the admin listing request. Status is one of active, expiring or expired.
type MemberListQuery struct {
	Search   *string
	Status   string
	Page     int
	PageSize int
}

// --- MemberService Interface ---
type MemberService interface {
	CreateMember(ctx context.Context, req CreateMemberRequest) (*models.Member, error)
	GetMemberByID(ctx context.Context, memberID int64) (*models.Member, error)
	GetMembers(ctx context.Context, query MemberListQuery) ([]models.Member, int, error)
	UpdateMember(ctx context.Context, memberID int64, req UpdateMemberRequest) (*models.Member, error)
	DeleteMember(ctx context.Context, memberID int64) error
	GetExpiringMembers(ctx context.Context) ([]models.MemberWindow, error)
	CountMembers(ctx context.Context) (int, error)
}

// --- memberService Implementation ---
type memberService struct {
	memberRepo  repositories.MemberRepository
	tx          repositories.TxRunner
	loc         *time.Location
	phoneRegion string
	dashboard   *DashboardCache
	now         func() time.Time
}

// NewMemberService creates a new instance of MemberService.
func NewMemberService(repo repositories.MemberRepository, tx repositories.TxRunner, loc *time.Location, phoneRegion string, dashboard *DashboardCache) MemberService {
	if loc == nil {
		loc = time.UTC
	}
	return &memberService{
		memberRepo:  repo,
		tx:          tx,
		loc:         loc,
		phoneRegion: phoneRegion,
		dashboard:   dashboard,
		now:         time.Now,
	}
}

func (s *memberService) withStatus(m *models.Member) *models.Member {
	status := membership.Evaluate(m.RegisteredAt, m.ExpiresAt, s.now().In(s.loc))
	m.Membership = &status
	return m
}

func (s *memberService) parseDate(raw string) (time.Time, error) {
	t, err := utils.ParseCalendarDate(raw, s.loc)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return t, nil
}

// checkContactUnique rejects an email or phone already used by a member other than selfID.
func (s *memberService) checkContactUnique(ctx context.Context, email, phone string, selfID int64) error {
	existing, err := s.memberRepo.FindMembersByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return fmt.Errorf("failed to check contact uniqueness: %w", err)
	}
	for _, m := range existing {
		if m.ID == selfID {
			continue
		}
		if m.Email == email {
			return ErrEmailExists
		}
		return ErrPhoneNumberExists
	}
	return nil
}

// mapMemberWriteError covers the race where two writers pass checkContactUnique together.
func mapMemberWriteError(err error) error {
	switch {
	case repositories.IsConstraint(err, repositories.ConstraintMemberEmail):
		return ErrEmailExists
	case repositories.IsConstraint(err, repositories.ConstraintMemberPhone):
		return ErrPhoneNumberExists
	case errors.Is(err, repositories.ErrNotFound):
		return ErrMemberNotFound
	}
	return err
}

func (s *memberService) CreateMember(ctx context.Context, req CreateMemberRequest) (*models.Member, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	registeredAt, err := s.parseDate(req.RegisteredAt)
	if err != nil {
		return nil, err
	}
	expiresAt, err := s.parseDate(req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if expiresAt.Before(registeredAt) {
		return nil, ErrInvalidMembershipWindow
	}
	phone, err := utils.NormalizePhone(req.PhoneNumber, s.phoneRegion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemberValidation, err)
	}

	member := &models.Member{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        utils.NormalizeEmail(req.Email),
		PhoneNumber:  phone,
		RegisteredAt: registeredAt,
		ExpiresAt:    expiresAt,
	}
	if member.FullName == "" {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrMemberValidation)
	}
	if err := s.checkContactUnique(ctx, member.Email, member.PhoneNumber, 0); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.memberRepo.CreateMember(ctx, exec, member)
		return err
	})
	if err != nil {
		return nil, mapMemberWriteError(err)
	}
	utils.LogInfo("Member created", map[string]interface{}{"member_id": member.ID})
	s.dashboard.Invalidate(ctx)
	return s.withStatus(member), nil
}

func (s *memberService) GetMemberByID(ctx context.Context, memberID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return s.withStatus(member), nil
}

// GetMembers lists members newest registration first. The status filter is applied in SQL using
// date cutoffs equivalent to the membership evaluator.
func (s *memberService) GetMembers(ctx context.Context, query MemberListQuery) ([]models.Member, int, error) {
	filter := models.MemberFilter{Search: query.Search, Page: query.Page, PageSize: query.PageSize}

	activeFrom, expiringThrough := membership.Cutoffs(s.now().In(s.loc))
	switch query.Status {
	case "", "all":
	case "active":
		filter.ExpiresOnOrAfter = &activeFrom
	case "expiring":
		before := expiringThrough.AddDate(0, 0, 1)
		filter.ExpiresOnOrAfter = &activeFrom
		filter.ExpiresBefore = &before
	case "expired":
		filter.ExpiresBefore = &activeFrom
	default:
		return nil, 0, fmt.Errorf("%w: status must be active, expiring or expired", ErrMemberValidation)
	}

	members, total, err := s.memberRepo.GetMembers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range members {
		s.withStatus(&members[i])
	}
	return members, total, nil
}

func (s *memberService) UpdateMember(ctx context.Context, memberID int64, req UpdateMemberRequest) (*models.Member, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	if req.FullName != nil {
		member.FullName = strings.TrimSpace(*req.FullName)
		if member.FullName == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrMemberValidation)
		}
	}
	if req.Email != nil {
		member.Email = utils.NormalizeEmail(*req.Email)
	}
	if req.PhoneNumber != nil {
		phone, err := utils.NormalizePhone(*req.PhoneNumber, s.phoneRegion)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMemberValidation, err)
		}
		member.PhoneNumber = phone
	}
	if req.RegisteredAt != nil {
		if member.RegisteredAt, err = s.parseDate(*req.RegisteredAt); err != nil {
			return nil, err
		}
	}
	if req.ExpiresAt != nil {
		if member.ExpiresAt, err = s.parseDate(*req.ExpiresAt); err != nil {
			return nil, err
		}
	}
	if utils.DateIn(member.ExpiresAt, s.loc).Before(utils.DateIn(member.RegisteredAt, s.loc)) {
		return nil, ErrInvalidMembershipWindow
	}
	if req.Email != nil || req.PhoneNumber != nil {
		if err := s.checkContactUnique(ctx, member.Email, member.PhoneNumber, member.ID); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.memberRepo.UpdateMember(ctx, exec, member)
	})
	if err != nil {
		return nil, mapMemberWriteError(err)
	}
	s.dashboard.Invalidate(ctx)
	return s.withStatus(member), nil
}

func (s *memberService) DeleteMember(ctx context.Context, memberID int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.memberRepo.DeleteMember(ctx, exec, memberID)
	})
	if err != nil {
		return mapMemberWriteError(err)
	}
	utils.LogInfo("Member deleted", map[string]interface{}{"member_id": memberID})
	s.dashboard.Invalidate(ctx)
	return nil
}

// GetExpiringMembers lists members whose membership is expiring soon right now.
func (s *memberService) GetExpiringMembers(ctx context.Context) ([]models.MemberWindow, error) {
	activeFrom, expiringThrough := membership.Cutoffs(s.now().In(s.loc))
	return s.memberRepo.GetMembersExpiringBetween(ctx, activeFrom, expiringThrough)
}

func (s *memberService) CountMembers(ctx context.Context) (int, error) {
	return s.memberRepo.CountMembers(ctx)
}
