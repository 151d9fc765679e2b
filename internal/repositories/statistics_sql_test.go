package repositories_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestDashboardMemberCountsFromSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	// the dashboard queries run concurrently
	mock.MatchExpectationsInOrder(false)

	// one active, one expiring soon, one expired
	mock.ExpectQuery(regexp.QuoteMeta(`COUNT(*) FILTER (WHERE expires_at >= $1)`)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "active", "expiring"}).AddRow(3, 2, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM testimonials WHERE created_at >= $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT rating, COUNT(*) FROM testimonials GROUP BY rating`)).
		WillReturnRows(sqlmock.NewRows([]string{"rating", "count"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_char(registered_at, 'YYYY-MM')`)).
		WillReturnRows(sqlmock.NewRows([]string{"month", "count"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE status = $1`)).
		WithArgs(models.BookingStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM inventory_items WHERE archived_at IS NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{"items", "units", "value", "out"}).AddRow(0, 0, "0", 0))

	svc := services.NewStatisticsService(
		repositories.NewMemberRepository(db),
		repositories.NewTestimonialRepository(db),
		repositories.NewBookingRepository(db),
		repositories.NewInventoryRepository(db),
		nil, 0, time.UTC,
	)
	stats, err := svc.GetDashboard(context.Background())
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	want := models.MemberStatistics{Total: 3, Active: 2, ExpiringSoon: 1, Expired: 1}
	if stats.Members != want {
		t.Fatalf("members = %+v, want %+v", stats.Members, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
