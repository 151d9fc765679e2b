package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_backend/internal/models"
	"gym_backend/pkg/utils"
)

// BookingRepository defines the interface for trainer booking database operations.
type BookingRepository interface {
	CreateBooking(ctx context.Context, executor SQLExecutor, booking *models.Booking) (int64, error)
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	GetBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	TransitionStatus(ctx context.Context, executor SQLExecutor, id int64, from, to string) error
	DeleteBooking(ctx context.Context, executor SQLExecutor, id int64) error
	CountByStatus(ctx context.Context, status string) (int, error)
}

type bookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new instance of BookingRepository.
func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingSelect = `SELECT b.id, b.member_id, b.trainer_id, b.booking_date, b.booking_time, b.status, b.created_at, b.decided_at,
	    m.full_name, t.full_name`

const bookingJoins = `
	  FROM bookings b
	  JOIN members m ON m.id = b.member_id
	  JOIN trainers t ON t.id = b.trainer_id`

func scanBooking(s scanner, extra ...interface{}) (*models.Booking, error) {
	b := &models.Booking{}
	var decidedAt sql.NullTime
	dest := []interface{}{
		&b.ID, &b.MemberID, &b.TrainerID, &b.BookingDate, &b.BookingTime, &b.Status, &b.CreatedAt, &decidedAt,
		&b.MemberName, &b.TrainerName,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if decidedAt.Valid {
		b.DecidedAt = &decidedAt.Time
	}
	return b, nil
}

func (r *bookingRepository) CreateBooking(ctx context.Context, executor SQLExecutor, booking *models.Booking) (int64, error) {
	query := `INSERT INTO bookings (member_id, trainer_id, booking_date, booking_time, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	booking.CreatedAt = time.Now()
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	err := executor.QueryRowContext(ctx, query,
		booking.MemberID, booking.TrainerID, booking.BookingDate.Format(utils.DateLayout), booking.BookingTime,
		booking.Status, booking.CreatedAt,
	).Scan(&booking.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating booking")
	}
	return booking.ID, nil
}

func (r *bookingRepository) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+bookingJoins+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting booking ID %d: %v", ErrDatabaseError, id, err)
	}
	return b, nil
}

// GetBookings lists bookings newest first. Search matches the member's name.
func (r *bookingRepository) GetBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	bookings := []models.Booking{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(bookingSelect + `, COUNT(*) OVER() AS total_count` + bookingJoins)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.MemberID != nil {
		conditions = append(conditions, fmt.Sprintf("b.member_id = $%d", argCount))
		args = append(args, *filter.MemberID)
		argCount++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("m.full_name ILIKE $%d", argCount))
		args = append(args, "%"+*filter.Search+"%")
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY b.created_at DESC, b.id DESC")

	if filter.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filter.PageSize, utils.PageOffset(filter.Page, filter.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying bookings: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBooking(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning booking: %v", ErrDatabaseError, err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating bookings: %v", ErrDatabaseError, err)
	}
	return bookings, totalCount, nil
}

// TransitionStatus moves a booking from one status to another. ErrConflict means the booking was not in `from`.
func (r *bookingRepository) TransitionStatus(ctx context.Context, executor SQLExecutor, id int64, from, to string) error {
	query := `UPDATE bookings SET status = $1, decided_at = $2 WHERE id = $3 AND status = $4`
	result, err := executor.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating status of booking ID %d", id))
	}
	if err := expectOneRow(result, "updating booking status"); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *bookingRepository) DeleteBooking(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting booking ID %d", id))
	}
	return expectOneRow(result, fmt.Sprintf("deleting booking ID %d", id))
}

func (r *bookingRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting bookings: %v", ErrDatabaseError, err)
	}
	return n, nil
}
