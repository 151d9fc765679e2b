package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"gym_backend/internal/cache"
	"gym_backend/internal/membership"
	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/pkg/utils"
)

const (
	statisticsCacheKey   = "statistics:dashboard"
	registrationsHistory = 12
)

// DashboardCache drops the cached dashboard after writes that change its figures. A nil *DashboardCache does nothing.
type DashboardCache struct {
	cache cache.Cache
}

func NewDashboardCache(c cache.Cache) *DashboardCache {
	if c == nil {
		return nil
	}
	return &DashboardCache{cache: c}
}

// Invalidate removes the cached dashboard. Failures are logged; the entry then lives until its TTL.
func (d *DashboardCache) Invalidate(ctx context.Context) {
	if d == nil {
		return
	}
	if err := d.cache.Delete(ctx, statisticsCacheKey); err != nil {
		utils.LogWarn("Statistics cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

type StatisticsService interface {
	GetDashboard(ctx context.Context) (*models.DashboardStatistics, error)
}

type statisticsService struct {
	memberRepo      repositories.MemberRepository
	testimonialRepo repositories.TestimonialRepository
	bookingRepo     repositories.BookingRepository
	itemRepo        repositories.InventoryRepository
	cache           cache.Cache
	ttl             time.Duration
	loc             *time.Location
	now             func() time.Time
}

// NewStatisticsService creates a new instance of StatisticsService. A nil cache disables caching.
func NewStatisticsService(
	memberRepo repositories.MemberRepository,
	testimonialRepo repositories.TestimonialRepository,
	bookingRepo repositories.BookingRepository,
	itemRepo repositories.InventoryRepository,
	c cache.Cache,
	ttl time.Duration,
	loc *time.Location,
) StatisticsService {
	if c == nil {
		c = cache.Noop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &statisticsService{
		memberRepo:      memberRepo,
		testimonialRepo: testimonialRepo,
		bookingRepo:     bookingRepo,
		itemRepo:        itemRepo,
		cache:           c,
		ttl:             ttl,
		loc:             loc,
		now:             time.Now,
	}
}

// GetDashboard gathers all dashboard figures concurrently. Cache failures are logged and ignored.
func (s *statisticsService) GetDashboard(ctx context.Context) (*models.DashboardStatistics, error) {
	var cached models.DashboardStatistics
	err := s.cache.GetJSON(ctx, statisticsCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		utils.LogWarn("Statistics cache read failed", map[string]interface{}{"error": err.Error()})
	}

	now := s.now().In(s.loc)
	today := utils.Today(now, s.loc)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	historyStart := monthStart.AddDate(0, -(registrationsHistory - 1), 0)
	activeFrom, expiringThrough := membership.Cutoffs(now)

	stats := &models.DashboardStatistics{}
	var byMonth map[string]int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, active, expiring, err := s.memberRepo.CountByWindow(gctx, activeFrom, expiringThrough)
		if err != nil {
			return err
		}
		stats.Members = models.MemberStatistics{
			Total:        total,
			Active:       active,
			ExpiringSoon: expiring,
			Expired:      total - active,
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.testimonialRepo.CountSince(gctx, monthStart)
		stats.TestimonialsThisMonth = n
		return err
	})
	g.Go(func() error {
		counts, err := s.testimonialRepo.CountByRating(gctx)
		stats.RatingCounts = counts
		return err
	})
	g.Go(func() error {
		m, err := s.memberRepo.CountRegistrationsByMonth(gctx, historyStart)
		byMonth = m
		return err
	})
	g.Go(func() error {
		n, err := s.bookingRepo.CountByStatus(gctx, models.BookingStatusPending)
		stats.PendingBookings = n
		return err
	})
	g.Go(func() error {
		inv, err := s.itemRepo.GetInventoryStatistics(gctx)
		stats.Inventory = inv
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.MonthlyRegistrations = make([]models.MonthlyRegistration, 0, registrationsHistory)
	for i := 0; i < registrationsHistory; i++ {
		month := historyStart.AddDate(0, i, 0).Format("2006-01")
		stats.MonthlyRegistrations = append(stats.MonthlyRegistrations, models.MonthlyRegistration{Month: month, Count: byMonth[month]})
	}

	if s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, statisticsCacheKey, stats, s.ttl); err != nil {
			utils.LogWarn("Statistics cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return stats, nil
}
