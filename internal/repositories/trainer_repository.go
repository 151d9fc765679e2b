package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_backend/internal/models"
)

// TrainerRepository defines the interface for trainer database operations.
type TrainerRepository interface {
	CreateTrainer(ctx context.Context, executor SQLExecutor, trainer *models.Trainer) (int64, error)
	GetTrainerByID(ctx context.Context, id int64) (*models.Trainer, error)
	GetTrainers(ctx context.Context) ([]models.Trainer, error)
	DeleteTrainer(ctx context.Context, executor SQLExecutor, id int64) error
}

type trainerRepository struct {
	db *sql.DB
}

// NewTrainerRepository creates a new instance of TrainerRepository.
func NewTrainerRepository(db *sql.DB) TrainerRepository {
	return &trainerRepository{db: db}
}

func (r *trainerRepository) CreateTrainer(ctx context.Context, executor SQLExecutor, trainer *models.Trainer) (int64, error) {
	trainer.CreatedAt = time.Now()
	err := executor.QueryRowContext(ctx,
		`INSERT INTO trainers (full_name, specialty, created_at) VALUES ($1, $2, $3) RETURNING id`,
		trainer.FullName, trainer.Specialty, trainer.CreatedAt,
	).Scan(&trainer.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating trainer")
	}
	return trainer.ID, nil
}

func (r *trainerRepository) GetTrainerByID(ctx context.Context, id int64) (*models.Trainer, error) {
	t := &models.Trainer{}
	var specialty sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT id, full_name, specialty, created_at FROM trainers WHERE id = $1`, id).
		Scan(&t.ID, &t.FullName, &specialty, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting trainer ID %d: %v", ErrDatabaseError, id, err)
	}
	if specialty.Valid {
		t.Specialty = &specialty.String
	}
	return t, nil
}

func (r *trainerRepository) GetTrainers(ctx context.Context) ([]models.Trainer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, full_name, specialty, created_at FROM trainers ORDER BY full_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying trainers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	trainers := []models.Trainer{}
	for rows.Next() {
		var t models.Trainer
		var specialty sql.NullString
		if err := rows.Scan(&t.ID, &t.FullName, &specialty, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning trainer: %v", ErrDatabaseError, err)
		}
		if specialty.Valid {
			t.Specialty = &specialty.String
		}
		trainers = append(trainers, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating trainers: %v", ErrDatabaseError, err)
	}
	return trainers, nil
}

// DeleteTrainer fails with ErrForeignKey while bookings still reference the trainer.
func (r *trainerRepository) DeleteTrainer(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM trainers WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting trainer ID %d", id))
	}
	return expectOneRow(result, fmt.Sprintf("deleting trainer ID %d", id))
}
