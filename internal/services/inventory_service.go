package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gym_backend/internal/ledger"
	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/internal/validation"
	"gym_backend/pkg/utils"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Inventory ---
var (
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrItemValidation    = errors.New("inventory item validation error")
	ErrInvalidQuantity   = ledger.ErrInvalidQuantity
	ErrInsufficientStock = ledger.ErrInsufficientStock
	ErrStockConflict     = errors.New("stock was changed by another request, please retry")
)

// DefaultStockAttempts bounds the read-check-write retries of a stock movement.
const DefaultStockAttempts = 5

// --- Inventory DTOs ---
type CreateItemRequest struct {
	Name          string          `json:"name" binding:"required,max=120"`
	Category      string          `json:"category" binding:"required,max=60"`
	Quantity      int             `json:"quantity" binding:"gte=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Note          *string         `json:"note" binding:"omitempty,max=500"`
}

// UpdateItemRequest edits item details. Quantity is absent on purpose: it moves only through stock-in/out.
type UpdateItemRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=120"`
	Category      *string          `json:"category" binding:"omitempty,min=1,max=60"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	Note          *string          `json:"note" binding:"omitempty,max=500"`
}

type StockChangeRequest struct {
	Quantity int     `json:"quantity" binding:"gt=0"`
	Note     *string `json:"note" binding:"omitempty,max=500"`
}

// --- InventoryService Interface ---
type InventoryService interface {
	CreateItem(ctx context.Context, req CreateItemRequest, actor string) (*models.InventoryItem, error)
	GetItemByID(ctx context.Context, itemID int64) (*models.InventoryItem, error)
	GetItems(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, int, error)
	GetCategories(ctx context.Context) ([]string, error)
	UpdateItem(ctx context.Context, itemID int64, req UpdateItemRequest) (*models.InventoryItem, error)
	ArchiveItem(ctx context.Context, itemID int64) error

	RecordStockIn(ctx context.Context, itemID int64, req StockChangeRequest, actor string) (*models.StockMovementResult, error)
	RecordStockOut(ctx context.Context, itemID int64, req StockChangeRequest, actor string) (*models.StockMovementResult, error)
	GetMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, int, error)
	GetItemLedger(ctx context.Context, itemID int64) (*models.ItemLedger, error)
	ExportMovements(ctx context.Context, filter models.MovementFilter, w io.Writer) error
	ReconcileLedger(ctx context.Context) ([]models.LedgerTotal, error)
}

// --- inventoryService Implementation ---
type inventoryService struct {
	itemRepo     repositories.InventoryRepository
	movementRepo repositories.StockMovementRepository
	tx           repositories.TxRunner
	maxAttempts  int
	dashboard    *DashboardCache
	now          func() time.Time
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(itemRepo repositories.InventoryRepository, movementRepo repositories.StockMovementRepository, tx repositories.TxRunner, dashboard *DashboardCache) InventoryService {
	return &inventoryService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		tx:           tx,
		maxAttempts:  DefaultStockAttempts,
		dashboard:    dashboard,
		now:          time.Now,
	}
}

func validatePrices(prices ...*decimal.Decimal) error {
	for _, p := range prices {
		if p != nil && p.IsNegative() {
			return fmt.Errorf("%w: prices cannot be negative", ErrItemValidation)
		}
	}
	return nil
}

func (s *inventoryService) CreateItem(ctx context.Context, req CreateItemRequest, actor string) (*models.InventoryItem, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	if err := validatePrices(&req.PurchasePrice, &req.SellingPrice); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		Name:          strings.TrimSpace(req.Name),
		Category:      strings.TrimSpace(req.Category),
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		Note:          trimmedOrNil(req.Note),
	}
	if item.Name == "" || item.Category == "" {
		return nil, fmt.Errorf("%w: name and category cannot be blank", ErrItemValidation)
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.itemRepo.CreateItem(ctx, exec, item); err != nil {
			return err
		}
		if req.Quantity == 0 {
			return nil
		}
		opening := "opening stock"
		result, err := s.applyMovement(ctx, exec, item.ID, ledger.DirectionIn, req.Quantity, &opening, actor)
		if err != nil {
			return err
		}
		item = result.Item
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Inventory item created", map[string]interface{}{"item_id": item.ID, "quantity": item.Quantity})
	s.dashboard.Invalidate(ctx)
	return item, nil
}

func (s *inventoryService) GetItemByID(ctx context.Context, itemID int64) (*models.InventoryItem, error) {
	item, err := s.itemRepo.GetItemByID(ctx, nil, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) GetItems(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, int, error) {
	return s.itemRepo.GetItems(ctx, filter)
}

func (s *inventoryService) GetCategories(ctx context.Context) ([]string, error) {
	return s.itemRepo.GetCategories(ctx)
}

func (s *inventoryService) UpdateItem(ctx context.Context, itemID int64, req UpdateItemRequest) (*models.InventoryItem, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	if err := validatePrices(req.PurchasePrice, req.SellingPrice); err != nil {
		return nil, err
	}

	item, err := s.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if item.Name == "" || item.Category == "" {
		return nil, fmt.Errorf("%w: name and category cannot be blank", ErrItemValidation)
	}
	if req.PurchasePrice != nil {
		item.PurchasePrice = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		item.SellingPrice = *req.SellingPrice
	}
	if req.Note != nil {
		item.Note = trimmedOrNil(req.Note)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.itemRepo.UpdateItemDetails(ctx, exec, item)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	s.dashboard.Invalidate(ctx)
	return item, nil
}

// ArchiveItem hides the item from listings; its ledger stays intact.
func (s *inventoryService) ArchiveItem(ctx context.Context, itemID int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.itemRepo.ArchiveItem(ctx, exec, itemID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	s.dashboard.Invalidate(ctx)
	return nil
}

func (s *inventoryService) RecordStockIn(ctx context.Context, itemID int64, req StockChangeRequest, actor string) (*models.StockMovementResult, error) {
	return s.recordMovement(ctx, itemID, ledger.DirectionIn, req, actor)
}

func (s *inventoryService) RecordStockOut(ctx context.Context, itemID int64, req StockChangeRequest, actor string) (*models.StockMovementResult, error) {
	return s.recordMovement(ctx, itemID, ledger.DirectionOut, req, actor)
}

// recordMovement runs the quantity update and the ledger insert in one transaction.
// A lost conditional update rolls the transaction back and the whole read-check-write is retried.
func (s *inventoryService) recordMovement(ctx context.Context, itemID int64, dir ledger.Direction, req StockChangeRequest, actor string) (*models.StockMovementResult, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	note := trimmedOrNil(req.Note)

	for attempt := 1; ; attempt++ {
		var result *models.StockMovementResult
		err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			r, err := s.applyMovement(ctx, exec, itemID, dir, req.Quantity, note, actor)
			result = r
			return err
		})
		if err == nil {
			utils.LogInfo("Stock movement recorded", map[string]interface{}{
				"item_id": itemID, "direction": dir, "quantity": req.Quantity, "on_hand": result.Item.Quantity, "attempt": attempt,
			})
			s.dashboard.Invalidate(ctx)
			return result, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return nil, err
		}
		if attempt >= s.maxAttempts {
			return nil, fmt.Errorf("%w: item %d after %d attempts", ErrStockConflict, itemID, attempt)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		utils.LogDebug("Stock movement conflict, retrying", map[string]interface{}{"item_id": itemID, "attempt": attempt})
	}
}

func (s *inventoryService) applyMovement(ctx context.Context, exec repositories.SQLExecutor, itemID int64, dir ledger.Direction, qty int, note *string, actor string) (*models.StockMovementResult, error) {
	item, err := s.itemRepo.GetItemByID(ctx, exec, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	next, err := ledger.Apply(item.Quantity, ledger.Entry{Direction: dir, Quantity: qty})
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.SetQuantity(ctx, exec, itemID, item.Quantity, next); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ItemID:       itemID,
		Direction:    dir,
		Quantity:     qty,
		Note:         note,
		RecordedBy:   utils.NewNullString(actor),
		CreatedAt:    s.now(),
		ItemName:     item.Name,
		ItemCategory: item.Category,
	}
	if _, err := s.movementRepo.CreateMovement(ctx, exec, movement); err != nil {
		return nil, err
	}

	item.Quantity = next
	item.UpdatedAt = movement.CreatedAt
	return &models.StockMovementResult{Item: item, Movement: movement}, nil
}

func (s *inventoryService) GetMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, int, error) {
	if filter.Direction != nil && !filter.Direction.Valid() {
		return nil, 0, fmt.Errorf("%w: direction must be in or out", ErrItemValidation)
	}
	return s.movementRepo.GetMovements(ctx, filter)
}

// GetItemLedger returns an item's full history and whether it agrees with quantity on hand.
func (s *inventoryService) GetItemLedger(ctx context.Context, itemID int64) (*models.ItemLedger, error) {
	item, err := s.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	movements, _, err := s.movementRepo.GetMovements(ctx, models.MovementFilter{ItemID: &itemID})
	if err != nil {
		return nil, err
	}
	entries := make([]ledger.Entry, 0, len(movements))
	for _, m := range movements {
		entries = append(entries, ledger.Entry{Direction: m.Direction, Quantity: m.Quantity})
	}
	sum := ledger.Sum(entries)
	return &models.ItemLedger{
		Item:       item,
		Movements:  movements,
		LedgerSum:  sum,
		Consistent: ledger.Reconcile(item.Quantity, sum) == nil,
	}, nil
}

// ExportMovements writes the filtered stock history as CSV.
func (s *inventoryService) ExportMovements(ctx context.Context, filter models.MovementFilter, w io.Writer) error {
	movements, err := s.allMovements(ctx, filter)
	if err != nil {
		return err
	}
	rows := make([]*models.MovementCSVRow, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, &models.MovementCSVRow{
			ID:         m.ID,
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
			ItemID:     m.ItemID,
			ItemName:   m.ItemName,
			Category:   m.ItemCategory,
			Direction:  string(m.Direction),
			Quantity:   m.Quantity,
			Delta:      m.Delta(),
			RecordedBy: derefString(m.RecordedBy),
			Note:       derefString(m.Note),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing stock movement csv: %w", err)
	}
	return nil
}

// allMovements is GetMovements without pagination.
func (s *inventoryService) allMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, error) {
	filter.PageSize = 0
	movements, _, err := s.GetMovements(ctx, filter)
	return movements, err
}

// ReconcileLedger returns every item whose stored quantity disagrees with its ledger.
func (s *inventoryService) ReconcileLedger(ctx context.Context) ([]models.LedgerTotal, error) {
	totals, err := s.itemRepo.GetLedgerTotals(ctx)
	if err != nil {
		return nil, err
	}
	mismatches := []models.LedgerTotal{}
	for _, t := range totals {
		if err := ledger.Reconcile(t.Quantity, t.LedgerSum); err != nil {
			mismatches = append(mismatches, t)
		}
	}
	return mismatches, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NewNullString(*s)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
