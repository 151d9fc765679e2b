package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/internal/validation"
	"gym_backend/pkg/utils"
)

// --- Custom Service Errors for Testimonial ---
var (
	ErrTestimonialNotFound   = errors.New("testimonial not found")
	ErrTestimonialValidation = errors.New("testimonial validation error")
)

type CreateTestimonialRequest struct {
	Body   string `json:"body" binding:"required,max=2000"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

type TestimonialService interface {
	CreateTestimonial(ctx context.Context, memberID int64, req CreateTestimonialRequest) (*models.Testimonial, error)
	GetTestimonials(ctx context.Context, filter models.TestimonialFilter) ([]models.Testimonial, int, error)
	DeleteTestimonial(ctx context.Context, testimonialID int64) error
}

type testimonialService struct {
	testimonialRepo repositories.TestimonialRepository
	memberRepo      repositories.MemberRepository
	tx              repositories.TxRunner
	dashboard       *DashboardCache
}

// NewTestimonialService creates a new instance of TestimonialService.
func NewTestimonialService(testimonialRepo repositories.TestimonialRepository, memberRepo repositories.MemberRepository, tx repositories.TxRunner, dashboard *DashboardCache) TestimonialService {
	return &testimonialService{testimonialRepo: testimonialRepo, memberRepo: memberRepo, tx: tx, dashboard: dashboard}
}

// CreateTestimonial stores a review under the member's current name.
func (s *testimonialService) CreateTestimonial(ctx context.Context, memberID int64, req CreateTestimonialRequest) (*models.Testimonial, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrTestimonialValidation)
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: body cannot be empty", ErrTestimonialValidation)
	}

	member, err := s.memberRepo.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	t := &models.Testimonial{MemberID: member.ID, MemberName: member.FullName, Body: body, Rating: req.Rating}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.testimonialRepo.CreateTestimonial(ctx, exec, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Testimonial submitted", map[string]interface{}{"testimonial_id": t.ID, "member_id": memberID, "rating": t.Rating})
	s.dashboard.Invalidate(ctx)
	return t, nil
}

func (s *testimonialService) GetTestimonials(ctx context.Context, filter models.TestimonialFilter) ([]models.Testimonial, int, error) {
	if filter.Rating != nil && (*filter.Rating < 1 || *filter.Rating > 5) {
		return nil, 0, fmt.Errorf("%w: rating filter must be between 1 and 5", ErrTestimonialValidation)
	}
	return s.testimonialRepo.GetTestimonials(ctx, filter)
}

func (s *testimonialService) DeleteTestimonial(ctx context.Context, testimonialID int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.testimonialRepo.DeleteTestimonial(ctx, exec, testimonialID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTestimonialNotFound
		}
		return err
	}
	s.dashboard.Invalidate(ctx)
	return nil
}
