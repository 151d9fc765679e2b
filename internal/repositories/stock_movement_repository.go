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

// StockMovementRepository appends and reads ledger rows. Ledger rows are append-only.
type StockMovementRepository interface {
	CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, int, error)
}

type stockMovementRepository struct {
	db *sql.DB
}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository(db *sql.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements (item_id, direction, quantity, note, recorded_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}

	err := executor.QueryRowContext(ctx, query,
		movement.ItemID, string(movement.Direction), movement.Quantity, movement.Note, movement.RecordedBy, movement.CreatedAt,
	).Scan(&movement.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating stock movement")
	}
	return movement.ID, nil
}

// GetMovements returns the stock history newest first, joined with item name and category.
func (r *stockMovementRepository) GetMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT m.id, m.item_id, m.direction, m.quantity, m.note, m.recorded_by, m.created_at,
	    i.name, i.category, COUNT(*) OVER() AS total_count
	  FROM stock_movements m
	  JOIN inventory_items i ON i.id = m.item_id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.ItemID != nil {
		conditions = append(conditions, fmt.Sprintf("m.item_id = $%d", argCount))
		args = append(args, *filter.ItemID)
		argCount++
	}
	if filter.Direction != nil {
		conditions = append(conditions, fmt.Sprintf("m.direction = $%d", argCount))
		args = append(args, string(*filter.Direction))
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY m.created_at DESC, m.id DESC")

	if filter.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filter.PageSize, utils.PageOffset(filter.Page, filter.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.StockMovement
		var note, recordedBy sql.NullString
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Direction, &m.Quantity, &note, &recordedBy, &m.CreatedAt,
			&m.ItemName, &m.ItemCategory, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		if note.Valid {
			m.Note = &note.String
		}
		if recordedBy.Valid {
			m.RecordedBy = &recordedBy.String
		}
		movements = append(movements, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}
	return movements, totalCount, nil
}
