package services

import (
	"context"
	"errors"
	"strings"

	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/internal/validation"
)

var (
	ErrTrainerNotFound = errors.New("trainer not found")
	ErrTrainerInUse    = errors.New("trainer has bookings and cannot be deleted")
)

type CreateTrainerRequest struct {
	FullName  string  `json:"full_name" binding:"required,max=120"`
	Specialty *string `json:"specialty" binding:"omitempty,max=120"`
}

type TrainerService interface {
	CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*models.Trainer, error)
	GetTrainers(ctx context.Context) ([]models.Trainer, error)
	DeleteTrainer(ctx context.Context, trainerID int64) error
}

type trainerService struct {
	trainerRepo repositories.TrainerRepository
	tx          repositories.TxRunner
}

func NewTrainerService(repo repositories.TrainerRepository, tx repositories.TxRunner) TrainerService {
	return &trainerService{trainerRepo: repo, tx: tx}
}

func (s *trainerService) CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*models.Trainer, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	trainer := &models.Trainer{FullName: strings.TrimSpace(req.FullName), Specialty: trimmedOrNil(req.Specialty)}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.trainerRepo.CreateTrainer(ctx, exec, trainer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return trainer, nil
}

func (s *trainerService) GetTrainers(ctx context.Context) ([]models.Trainer, error) {
	return s.trainerRepo.GetTrainers(ctx)
}

func (s *trainerService) DeleteTrainer(ctx context.Context, trainerID int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.trainerRepo.DeleteTrainer(ctx, exec, trainerID)
	})
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrTrainerNotFound
	case errors.Is(err, repositories.ErrForeignKey):
		return ErrTrainerInUse
	}
	return err
}
