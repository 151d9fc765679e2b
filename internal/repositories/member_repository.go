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

// Unique constraints on members, named in the schema.
const (
	ConstraintMemberEmail    = "members_email_key"
	ConstraintMemberPhone    = "members_phone_number_key"
	ConstraintMemberUsername = "members_username_key"
)

// MemberRepository defines the interface for member-related database operations.
type MemberRepository interface {
	CreateMember(ctx context.Context, executor SQLExecutor, member *models.Member) (int64, error)
	GetMemberByID(ctx context.Context, id int64) (*models.Member, error)
	GetMemberByUsername(ctx context.Context, username string) (*models.Member, error)
	GetMemberByEmailAndPhone(ctx context.Context, email, phone string) (*models.Member, error)
	FindMembersByEmailOrPhone(ctx context.Context, email, phone string) ([]models.Member, error)
	GetMembers(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error)
	GetMembersExpiringBetween(ctx context.Context, from, through time.Time) ([]models.MemberWindow, error)
	UpdateMember(ctx context.Context, executor SQLExecutor, member *models.Member) error
	AttachCredentials(ctx context.Context, executor SQLExecutor, id int64, username, passwordHash string) error
	DeleteMember(ctx context.Context, executor SQLExecutor, id int64) error
	CountMembers(ctx context.Context) (int, error)
	CountByWindow(ctx context.Context, activeFrom, expiringThrough time.Time) (total, active, expiring int, err error)
	CountRegistrationsByMonth(ctx context.Context, from time.Time) (map[string]int, error)
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, full_name, email, phone_number, registered_at, expires_at, username, password_hash, created_at, updated_at`

func scanMember(s scanner, extra ...interface{}) (*models.Member, error) {
	m := &models.Member{}
	var username, hash sql.NullString
	dest := []interface{}{
		&m.ID, &m.FullName, &m.Email, &m.PhoneNumber, &m.RegisteredAt, &m.ExpiresAt,
		&username, &hash, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if username.Valid {
		m.Username = &username.String
	}
	if hash.Valid {
		m.PasswordHash = &hash.String
	}
	return m, nil
}

func dateArg(t time.Time) string {
	return t.Format(utils.DateLayout)
}

// CreateMember inserts a new member into the database.
func (r *memberRepository) CreateMember(ctx context.Context, executor SQLExecutor, member *models.Member) (int64, error) {
	query := `INSERT INTO members (full_name, email, phone_number, registered_at, expires_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	err := executor.QueryRowContext(ctx, query,
		member.FullName, member.Email, member.PhoneNumber,
		dateArg(member.RegisteredAt), dateArg(member.ExpiresAt), member.CreatedAt, member.UpdatedAt,
	).Scan(&member.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating member")
	}
	return member.ID, nil
}

func (r *memberRepository) getOne(ctx context.Context, where string, args ...interface{}) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE ` + where
	member, err := scanMember(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting member: %v", ErrDatabaseError, err)
	}
	return member, nil
}

// GetMemberByID retrieves a member by ID.
func (r *memberRepository) GetMemberByID(ctx context.Context, id int64) (*models.Member, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetMemberByUsername retrieves the member owning a portal username.
func (r *memberRepository) GetMemberByUsername(ctx context.Context, username string) (*models.Member, error) {
	return r.getOne(ctx, `username = $1`, username)
}

// GetMemberByEmailAndPhone finds the admin-created record a signup must match.
func (r *memberRepository) GetMemberByEmailAndPhone(ctx context.Context, email, phone string) (*models.Member, error) {
	return r.getOne(ctx, `email = $1 AND phone_number = $2`, email, phone)
}

// FindMembersByEmailOrPhone returns every member sharing either contact detail.
func (r *memberRepository) FindMembersByEmailOrPhone(ctx context.Context, email, phone string) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = $1 OR phone_number = $2`
	rows, err := r.db.QueryContext(ctx, query, email, phone)
	if err != nil {
		return nil, fmt.Errorf("%w: querying members by contact: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning member: %v", ErrDatabaseError, err)
		}
		members = append(members, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating member rows: %v", ErrDatabaseError, err)
	}
	return members, nil
}

// GetMembers retrieves members newest registration first, with pagination and optional name search.
func (r *memberRepository) GetMembers(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error) {
	members := []models.Member{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + memberColumns + `, COUNT(*) OVER() AS total_count FROM members`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("full_name ILIKE $%d", argCount))
		args = append(args, "%"+*filter.Search+"%")
		argCount++
	}
	if filter.ExpiresOnOrAfter != nil {
		conditions = append(conditions, fmt.Sprintf("expires_at >= $%d", argCount))
		args = append(args, dateArg(*filter.ExpiresOnOrAfter))
		argCount++
	}
	if filter.ExpiresBefore != nil {
		conditions = append(conditions, fmt.Sprintf("expires_at < $%d", argCount))
		args = append(args, dateArg(*filter.ExpiresBefore))
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY registered_at DESC, id DESC")

	if filter.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filter.PageSize, utils.PageOffset(filter.Page, filter.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMember(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning member: %v", ErrDatabaseError, err)
		}
		members = append(members, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating member rows: %v", ErrDatabaseError, err)
	}
	return members, totalCount, nil
}

// GetMembersExpiringBetween lists members whose expiry date lies in [from, through].
func (r *memberRepository) GetMembersExpiringBetween(ctx context.Context, from, through time.Time) ([]models.MemberWindow, error) {
	query := `SELECT id, full_name, registered_at, expires_at FROM members
	          WHERE expires_at >= $1 AND expires_at <= $2
	          ORDER BY expires_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, dateArg(from), dateArg(through))
	if err != nil {
		return nil, fmt.Errorf("%w: querying expiring members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	windows := []models.MemberWindow{}
	for rows.Next() {
		var w models.MemberWindow
		if err := rows.Scan(&w.ID, &w.FullName, &w.RegisteredAt, &w.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%w: scanning member window: %v", ErrDatabaseError, err)
		}
		windows = append(windows, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating member windows: %v", ErrDatabaseError, err)
	}
	return windows, nil
}

// UpdateMember updates the admin-editable fields of a member.
func (r *memberRepository) UpdateMember(ctx context.Context, executor SQLExecutor, member *models.Member) error {
	query := `UPDATE members SET
	            full_name = $1, email = $2, phone_number = $3, registered_at = $4, expires_at = $5, updated_at = $6
	          WHERE id = $7`

	member.UpdatedAt = time.Now()
	result, err := executor.ExecContext(ctx, query,
		member.FullName, member.Email, member.PhoneNumber,
		dateArg(member.RegisteredAt), dateArg(member.ExpiresAt), member.UpdatedAt, member.ID,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating member ID %d", member.ID))
	}
	return expectOneRow(result, fmt.Sprintf("updating member ID %d", member.ID))
}

// AttachCredentials sets portal credentials once. A member that already has a username yields ErrConflict.
func (r *memberRepository) AttachCredentials(ctx context.Context, executor SQLExecutor, id int64, username, passwordHash string) error {
	query := `UPDATE members SET username = $1, password_hash = $2, updated_at = $3
	          WHERE id = $4 AND username IS NULL`
	result, err := executor.ExecContext(ctx, query, username, passwordHash, time.Now(), id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("attaching credentials to member ID %d", id))
	}
	if err := expectOneRow(result, "attaching credentials"); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// DeleteMember removes a member. Bookings and testimonials cascade.
func (r *memberRepository) DeleteMember(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting member ID %d", id))
	}
	return expectOneRow(result, fmt.Sprintf("deleting member ID %d", id))
}

func (r *memberRepository) CountMembers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting members: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// CountByWindow counts all members, those not yet expired and those expiring by expiringThrough.
// active includes the expiring members.
func (r *memberRepository) CountByWindow(ctx context.Context, activeFrom, expiringThrough time.Time) (total, active, expiring int, err error) {
	query := `SELECT COUNT(*),
	                 COUNT(*) FILTER (WHERE expires_at >= $1),
	                 COUNT(*) FILTER (WHERE expires_at >= $1 AND expires_at <= $2)
	          FROM members`
	err = r.db.QueryRowContext(ctx, query, dateArg(activeFrom), dateArg(expiringThrough)).Scan(&total, &active, &expiring)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: counting members by window: %v", ErrDatabaseError, err)
	}
	return total, active, expiring, nil
}

// CountRegistrationsByMonth groups registrations since from by YYYY-MM.
func (r *memberRepository) CountRegistrationsByMonth(ctx context.Context, from time.Time) (map[string]int, error) {
	query := `SELECT to_char(registered_at, 'YYYY-MM') AS month, COUNT(*)
	          FROM members WHERE registered_at >= $1
	          GROUP BY month`
	rows, err := r.db.QueryContext(ctx, query, dateArg(from))
	if err != nil {
		return nil, fmt.Errorf("%w: counting registrations: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var month string
		var n int
		if err := rows.Scan(&month, &n); err != nil {
			return nil, fmt.Errorf("%w: scanning registration count: %v", ErrDatabaseError, err)
		}
		counts[month] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating registration counts: %v", ErrDatabaseError, err)
	}
	return counts, nil
}
