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

// InventoryRepository defines the interface for inventory item database operations.
// Quantity is only written through SetQuantity, which callers pair with a stock movement.
type InventoryRepository interface {
	CreateItem(ctx context.Context, executor SQLExecutor, item *models.InventoryItem) (int64, error)
	GetItemByID(ctx context.Context, executor SQLExecutor, id int64) (*models.InventoryItem, error)
	GetItems(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, int, error)
	GetCategories(ctx context.Context) ([]string, error)
	UpdateItemDetails(ctx context.Context, executor SQLExecutor, item *models.InventoryItem) error
	SetQuantity(ctx context.Context, executor SQLExecutor, id int64, expected, next int) error
	ArchiveItem(ctx context.Context, executor SQLExecutor, id int64) error
	GetLedgerTotals(ctx context.Context) ([]models.LedgerTotal, error)
	GetInventoryStatistics(ctx context.Context) (models.InventoryStatistics, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

const itemColumns = `id, name, category, quantity, purchase_price, selling_price, note, archived_at, created_at, updated_at`

func scanItem(s scanner, extra ...interface{}) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	var note sql.NullString
	var archivedAt sql.NullTime
	dest := []interface{}{
		&item.ID, &item.Name, &item.Category, &item.Quantity, &item.PurchasePrice, &item.SellingPrice,
		&note, &archivedAt, &item.CreatedAt, &item.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if note.Valid {
		item.Note = &note.String
	}
	if archivedAt.Valid {
		item.ArchivedAt = &archivedAt.Time
	}
	return item, nil
}

// CreateItem inserts an item with zero quantity; opening stock is recorded as a movement.
func (r *inventoryRepository) CreateItem(ctx context.Context, executor SQLExecutor, item *models.InventoryItem) (int64, error) {
	query := `INSERT INTO inventory_items (name, category, quantity, purchase_price, selling_price, note, created_at, updated_at)
	          VALUES ($1, $2, 0, $3, $4, $5, $6, $7)
	          RETURNING id`

	now := time.Now()
	item.Quantity = 0
	item.CreatedAt = now
	item.UpdatedAt = now

	err := executor.QueryRowContext(ctx, query,
		item.Name, item.Category, item.PurchasePrice, item.SellingPrice, item.Note, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating inventory item")
	}
	return item.ID, nil
}

// GetItemByID reads a live (non-archived) item through executor, so it sees uncommitted writes of the same tx.
func (r *inventoryRepository) GetItemByID(ctx context.Context, executor SQLExecutor, id int64) (*models.InventoryItem, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1 AND archived_at IS NULL`
	item, err := scanItem(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory item ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

// GetItems lists live items by name with optional category filter and name search.
func (r *inventoryRepository) GetItems(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, int, error) {
	items := []models.InventoryItem{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + itemColumns + `, COUNT(*) OVER() AS total_count FROM inventory_items`)

	conditions := []string{"archived_at IS NULL"}
	var args []interface{}
	argCount := 1

	if filter.Category != nil && *filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filter.Category)
		argCount++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argCount))
		args = append(args, "%"+*filter.Search+"%")
		argCount++
	}
	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY name ASC, id ASC")

	if filter.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filter.PageSize, utils.PageOffset(filter.Page, filter.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying inventory items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory item: %v", ErrDatabaseError, err)
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory rows: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

func (r *inventoryRepository) GetCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM inventory_items WHERE archived_at IS NULL ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating categories: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

// UpdateItemDetails writes everything except quantity.
func (r *inventoryRepository) UpdateItemDetails(ctx context.Context, executor SQLExecutor, item *models.InventoryItem) error {
	query := `UPDATE inventory_items SET
	            name = $1, category = $2, purchase_price = $3, selling_price = $4, note = $5, updated_at = $6
	          WHERE id = $7 AND archived_at IS NULL`

	item.UpdatedAt = time.Now()
	result, err := executor.ExecContext(ctx, query,
		item.Name, item.Category, item.PurchasePrice, item.SellingPrice, item.Note, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating inventory item ID %d", item.ID))
	}
	return expectOneRow(result, fmt.Sprintf("updating inventory item ID %d", item.ID))
}

// SetQuantity moves quantity from expected to next. If another writer changed the row first,
// no row matches and ErrConflict is returned.
func (r *inventoryRepository) SetQuantity(ctx context.Context, executor SQLExecutor, id int64, expected, next int) error {
	query := `UPDATE inventory_items SET quantity = $1, updated_at = $2
	          WHERE id = $3 AND quantity = $4 AND archived_at IS NULL`
	result, err := executor.ExecContext(ctx, query, next, time.Now(), id, expected)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("setting quantity of item ID %d", id))
	}
	if err := expectOneRow(result, "setting quantity"); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: item ID %d no longer has quantity %d", ErrConflict, id, expected)
		}
		return err
	}
	return nil
}

// ArchiveItem hides an item while keeping its ledger.
func (r *inventoryRepository) ArchiveItem(ctx context.Context, executor SQLExecutor, id int64) error {
	now := time.Now()
	result, err := executor.ExecContext(ctx,
		`UPDATE inventory_items SET archived_at = $1, updated_at = $1 WHERE id = $2 AND archived_at IS NULL`, now, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("archiving inventory item ID %d", id))
	}
	return expectOneRow(result, fmt.Sprintf("archiving inventory item ID %d", id))
}

// GetLedgerTotals pairs every item's stored quantity with the signed sum of its movements.
func (r *inventoryRepository) GetLedgerTotals(ctx context.Context) ([]models.LedgerTotal, error) {
	query := `SELECT i.id, i.name, i.quantity,
	                 COALESCE(SUM(CASE m.direction WHEN 'in' THEN m.quantity ELSE -m.quantity END), 0) AS ledger_sum
	          FROM inventory_items i
	          LEFT JOIN stock_movements m ON m.item_id = i.id
	          GROUP BY i.id, i.name, i.quantity
	          ORDER BY i.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying ledger totals: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	totals := []models.LedgerTotal{}
	for rows.Next() {
		var t models.LedgerTotal
		if err := rows.Scan(&t.ItemID, &t.ItemName, &t.Quantity, &t.LedgerSum); err != nil {
			return nil, fmt.Errorf("%w: scanning ledger total: %v", ErrDatabaseError, err)
		}
		totals = append(totals, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ledger totals: %v", ErrDatabaseError, err)
	}
	return totals, nil
}

// GetInventoryStatistics summarises live items; stock value uses purchase price.
func (r *inventoryRepository) GetInventoryStatistics(ctx context.Context) (models.InventoryStatistics, error) {
	var stats models.InventoryStatistics
	query := `SELECT COUNT(*),
	                 COALESCE(SUM(quantity), 0),
	                 COALESCE(SUM(quantity * purchase_price), 0),
	                 COUNT(*) FILTER (WHERE quantity = 0)
	          FROM inventory_items WHERE archived_at IS NULL`
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.Items, &stats.UnitsOnHand, &stats.StockValue, &stats.OutOfStock)
	if err != nil {
		return stats, fmt.Errorf("%w: summarising inventory: %v", ErrDatabaseError, err)
	}
	return stats, nil
}
