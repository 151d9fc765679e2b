package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gym_backend/internal/models"
	"gym_backend/pkg/utils"
)

// NoteRepository defines the interface for admin note database operations.
type NoteRepository interface {
	CreateNote(ctx context.Context, executor SQLExecutor, note *models.Note) (int64, error)
	GetNotes(ctx context.Context) ([]models.Note, error)
	DeleteNote(ctx context.Context, executor SQLExecutor, id int64) error
}

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new instance of NoteRepository.
func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) CreateNote(ctx context.Context, executor SQLExecutor, note *models.Note) (int64, error) {
	var deadline interface{}
	if note.Deadline != nil {
		deadline = note.Deadline.Format(utils.DateLayout)
	}
	note.CreatedAt = time.Now()
	err := executor.QueryRowContext(ctx,
		`INSERT INTO admin_notes (title, body, deadline, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		note.Title, note.Body, deadline, note.CreatedAt,
	).Scan(&note.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating note")
	}
	return note.ID, nil
}

// GetNotes lists notes newest first.
func (r *noteRepository) GetNotes(ctx context.Context) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, body, deadline, created_at FROM admin_notes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying notes: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		var deadline sql.NullTime
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &deadline, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning note: %v", ErrDatabaseError, err)
		}
		if deadline.Valid {
			n.Deadline = &deadline.Time
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating notes: %v", ErrDatabaseError, err)
	}
	return notes, nil
}

func (r *noteRepository) DeleteNote(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM admin_notes WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting note ID %d", id))
	}
	return expectOneRow(result, fmt.Sprintf("deleting note ID %d", id))
}
