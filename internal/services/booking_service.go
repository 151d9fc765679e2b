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

// --- Custom Service Errors for Booking ---
var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingValidation       = errors.New("booking validation error")
	ErrInvalidStatusTransition = errors.New("only pending bookings can be approved or rejected")
	ErrMembershipExpired       = errors.New("membership has expired")
	ErrBookingInPast           = errors.New("booking date cannot be in the past")
)

// --- Booking DTOs ---
type CreateBookingRequest struct {
	TrainerID   int64  `json:"trainer_id" binding:"required,gt=0"`
	BookingDate string `json:"booking_date" binding:"required,caldate"`
	BookingTime string `json:"booking_time" binding:"required,clock"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// --- BookingService Interface ---
type BookingService interface {
	CreateBooking(ctx context.Context, memberID int64, req CreateBookingRequest) (*models.Booking, error)
	GetBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	GetMemberBookings(ctx context.Context, memberID int64, page, pageSize int) ([]models.Booking, int, error)
	UpdateBookingStatus(ctx context.Context, bookingID int64, req UpdateBookingStatusRequest) (*models.Booking, error)
	DeleteBooking(ctx context.Context, bookingID int64) error
}

// --- bookingService Implementation ---
type bookingService struct {
	bookingRepo repositories.BookingRepository
	memberRepo  repositories.MemberRepository
	trainerRepo repositories.TrainerRepository
	tx          repositories.TxRunner
	loc         *time.Location
	dashboard   *DashboardCache
	now         func() time.Time
}

// NewBookingService creates a new instance of BookingService.
func NewBookingService(bookingRepo repositories.BookingRepository, memberRepo repositories.MemberRepository, trainerRepo repositories.TrainerRepository, tx repositories.TxRunner, loc *time.Location, dashboard *DashboardCache) BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingService{
		bookingRepo: bookingRepo,
		memberRepo:  memberRepo,
		trainerRepo: trainerRepo,
		tx:          tx,
		loc:         loc,
		dashboard:   dashboard,
		now:         time.Now,
	}
}

// CreateBooking files a pending booking for the member. Expired members cannot book.
func (s *bookingService) CreateBooking(ctx context.Context, memberID int64, req CreateBookingRequest) (*models.Booking, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	now := s.now().In(s.loc)

	date, err := utils.ParseCalendarDate(req.BookingDate, s.loc)
	if err != nil {
		return nil, ErrDateFormat
	}
	if date.Before(utils.Today(now, s.loc)) {
		return nil, ErrBookingInPast
	}

	member, err := s.memberRepo.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if membership.Evaluate(member.RegisteredAt, member.ExpiresAt, now).State == membership.StateExpired {
		return nil, ErrMembershipExpired
	}

	trainer, err := s.trainerRepo.GetTrainerByID(ctx, req.TrainerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	booking := &models.Booking{
		MemberID:    member.ID,
		TrainerID:   trainer.ID,
		BookingDate: date,
		BookingTime: strings.TrimSpace(req.BookingTime),
		Status:      models.BookingStatusPending,
		MemberName:  member.FullName,
		TrainerName: trainer.FullName,
	}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.bookingRepo.CreateBooking(ctx, exec, booking)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	utils.LogInfo("Booking created", map[string]interface{}{"booking_id": booking.ID, "member_id": memberID, "trainer_id": trainer.ID})
	s.dashboard.Invalidate(ctx)
	return booking, nil
}

func (s *bookingService) GetBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	if filter.Status != nil && *filter.Status != "" && !isBookingStatus(*filter.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrBookingValidation, *filter.Status)
	}
	return s.bookingRepo.GetBookings(ctx, filter)
}

func (s *bookingService) GetMemberBookings(ctx context.Context, memberID int64, page, pageSize int) ([]models.Booking, int, error) {
	return s.bookingRepo.GetBookings(ctx, models.BookingFilter{MemberID: &memberID, Page: page, PageSize: pageSize})
}

// UpdateBookingStatus approves or rejects a pending booking.
func (s *bookingService) UpdateBookingStatus(ctx context.Context, bookingID int64, req UpdateBookingStatusRequest) (*models.Booking, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	if _, err := s.bookingRepo.GetBookingByID(ctx, bookingID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.bookingRepo.TransitionStatus(ctx, exec, bookingID, models.BookingStatusPending, req.Status)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}
	utils.LogInfo("Booking status updated", map[string]interface{}{"booking_id": bookingID, "status": req.Status})
	s.dashboard.Invalidate(ctx)

	booking, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, bookingID int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.bookingRepo.DeleteBooking(ctx, exec, bookingID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	s.dashboard.Invalidate(ctx)
	return nil
}

func isBookingStatus(s string) bool {
	switch s {
	case models.BookingStatusPending, models.BookingStatusApproved, models.BookingStatusRejected:
		return true
	}
	return false
}
