package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gym_backend/internal/models"
	"gym_backend/pkg/utils"
)

// TestimonialRepository defines the interface for testimonial database operations.
type TestimonialRepository interface {
	CreateTestimonial(ctx context.Context, executor SQLExecutor, t *models.Testimonial) (int64, error)
	GetTestimonials(ctx context.Context, filter models.TestimonialFilter) ([]models.Testimonial, int, error)
	DeleteTestimonial(ctx context.Context, executor SQLExecutor, id int64) error
	CountSince(ctx context.Context, since time.Time) (int, error)
	CountByRating(ctx context.Context) (map[int]int, error)
}

type testimonialRepository struct {
	db *sql.DB
}

// NewTestimonialRepository creates a new instance of TestimonialRepository.
func NewTestimonialRepository(db *sql.DB) TestimonialRepository {
	return &testimonialRepository{db: db}
}

func (r *testimonialRepository) CreateTestimonial(ctx context.Context, executor SQLExecutor, t *models.Testimonial) (int64, error) {
	query := `INSERT INTO testimonials (member_id, member_name, body, rating, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	t.CreatedAt = time.Now()
	err := executor.QueryRowContext(ctx, query, t.MemberID, t.MemberName, t.Body, t.Rating, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating testimonial")
	}
	return t.ID, nil
}

// GetTestimonials lists testimonials newest first with an optional rating filter.
func (r *testimonialRepository) GetTestimonials(ctx context.Context, filter models.TestimonialFilter) ([]models.Testimonial, int, error) {
	testimonials := []models.Testimonial{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, member_id, member_name, body, rating, created_at, COUNT(*) OVER() AS total_count
	  FROM testimonials`)

	var args []interface{}
	argCount := 1
	if filter.Rating != nil {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE rating = $%d", argCount))
		args = append(args, *filter.Rating)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	if filter.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filter.PageSize, utils.PageOffset(filter.Page, filter.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying testimonials: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Testimonial
		if err := rows.Scan(&t.ID, &t.MemberID, &t.MemberName, &t.Body, &t.Rating, &t.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning testimonial: %v", ErrDatabaseError, err)
		}
		testimonials = append(testimonials, t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating testimonials: %v", ErrDatabaseError, err)
	}
	return testimonials, totalCount, nil
}

func (r *testimonialRepository) DeleteTestimonial(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting testimonial ID %d", id))
	}
	return expectOneRow(result, fmt.Sprintf("deleting testimonial ID %d", id))
}

func (r *testimonialRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM testimonials WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting testimonials: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// CountByRating returns a count for every rating 1..5, including zeros.
func (r *testimonialRepository) CountByRating(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rating, COUNT(*) FROM testimonials GROUP BY rating`)
	if err != nil {
		return nil, fmt.Errorf("%w: counting ratings: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	counts := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, fmt.Errorf("%w: scanning rating count: %v", ErrDatabaseError, err)
		}
		counts[rating] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rating counts: %v", ErrDatabaseError, err)
	}
	return counts, nil
}
