package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_backend/internal/models"
)

// AuthRepository defines the interface for admin account database operations.
// Member credentials live on the members table and are handled by MemberRepository.
type AuthRepository interface {
	CreateAdmin(ctx context.Context, executor SQLExecutor, admin *models.AdminUser) (int64, error)
	FindAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	FindAdminByID(ctx context.Context, id int64) (*models.AdminUser, error)
	CountAdmins(ctx context.Context) (int, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

// CreateAdmin inserts an admin; PasswordHash must already be hashed.
func (r *authRepository) CreateAdmin(ctx context.Context, executor SQLExecutor, admin *models.AdminUser) (int64, error) {
	admin.CreatedAt = time.Now()
	err := executor.QueryRowContext(ctx,
		`INSERT INTO admin_users (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`,
		admin.Username, admin.PasswordHash, admin.CreatedAt,
	).Scan(&admin.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating admin user")
	}
	return admin.ID, nil
}

func (r *authRepository) findAdmin(ctx context.Context, where string, arg interface{}) (*models.AdminUser, error) {
	a := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admin_users WHERE `+where, arg,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding admin user: %v", ErrDatabaseError, err)
	}
	return a, nil
}

func (r *authRepository) FindAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return r.findAdmin(ctx, "username = $1", username)
}

func (r *authRepository) FindAdminByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	return r.findAdmin(ctx, "id = $1", id)
}

func (r *authRepository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting admin users: %v", ErrDatabaseError, err)
	}
	return n, nil
}
