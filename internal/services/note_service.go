package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/internal/validation"
	"gym_backend/pkg/utils"
)

var (
	ErrNoteNotFound   = errors.New("note not found")
	ErrNoteValidation = errors.New("note validation error")
)

type CreateNoteRequest struct {
	Title    string  `json:"title" binding:"required,max=200"`
	Body     string  `json:"body" binding:"required,max=5000"`
	Deadline *string `json:"deadline" binding:"omitempty,caldate"`
}

type NoteService interface {
	CreateNote(ctx context.Context, req CreateNoteRequest) (*models.Note, error)
	GetNotes(ctx context.Context) ([]models.Note, error)
	DeleteNote(ctx context.Context, noteID int64) error
}

type noteService struct {
	noteRepo repositories.NoteRepository
	tx       repositories.TxRunner
	loc      *time.Location
}

func NewNoteService(repo repositories.NoteRepository, tx repositories.TxRunner, loc *time.Location) NoteService {
	if loc == nil {
		loc = time.UTC
	}
	return &noteService{noteRepo: repo, tx: tx, loc: loc}
}

func (s *noteService) CreateNote(ctx context.Context, req CreateNoteRequest) (*models.Note, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	note := &models.Note{Title: strings.TrimSpace(req.Title), Body: strings.TrimSpace(req.Body)}
	if note.Title == "" || note.Body == "" {
		return nil, fmt.Errorf("%w: title and body cannot be blank", ErrNoteValidation)
	}
	if req.Deadline != nil && strings.TrimSpace(*req.Deadline) != "" {
		deadline, err := utils.ParseCalendarDate(*req.Deadline, s.loc)
		if err != nil {
			return nil, ErrDateFormat
		}
		note.Deadline = &deadline
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.noteRepo.CreateNote(ctx, exec, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (s *noteService) GetNotes(ctx context.Context) ([]models.Note, error) {
	return s.noteRepo.GetNotes(ctx)
}

func (s *noteService) DeleteNote(ctx context.Context, noteID int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.noteRepo.DeleteNote(ctx, exec, noteID)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNoteNotFound
	}
	return err
}
