package models

import (
	"time"

	"gym_backend/internal/ledger"

	"github.com/shopspring/decimal"
)

// InventoryItem is a stocked good. Quantity changes only through stock movements.
type InventoryItem struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Category      string          `json:"category" db:"category"`
	Quantity      int             `json:"quantity" db:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price" db:"selling_price"`
	Note          *string         `json:"note,omitempty" db:"note"`
	ArchivedAt    *time.Time      `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// StockMovement is one append-only ledger row.
type StockMovement struct {
	ID         int64            `json:"id" db:"id"`
	ItemID     int64            `json:"item_id" db:"item_id"`
	Direction  ledger.Direction `json:"direction" db:"direction"`
	Quantity   int              `json:"quantity" db:"quantity"`
	Note       *string          `json:"note,omitempty" db:"note"`
	RecordedBy *string          `json:"recorded_by,omitempty" db:"recorded_by"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	ItemName     string `json:"item_name,omitempty"`
	ItemCategory string `json:"item_category,omitempty"`
}

// Delta is the signed quantity change of the movement.
func (m StockMovement) Delta() int {
	return ledger.Entry{Direction: m.Direction, Quantity: m.Quantity}.Delta()
}

// InventoryFilter narrows item listings.
type InventoryFilter struct {
	Category *string
	Search   *string
	Page     int
	PageSize int
}

// MovementFilter narrows the stock history.
type MovementFilter struct {
	ItemID    *int64
	Direction *ledger.Direction
	Page      int
	PageSize  int // <= 0 returns every row
}

// LedgerTotal pairs an item's stored quantity with the sum of its movements.
type LedgerTotal struct {
	ItemID    int64  `json:"item_id"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	LedgerSum int    `json:"ledger_sum"`
}

// Consistent reports whether the stored quantity equals the ledger sum.
func (t LedgerTotal) Consistent() bool {
	return t.Quantity == t.LedgerSum
}

// ItemLedger is an item with its full movement history.
type ItemLedger struct {
	Item       *InventoryItem  `json:"item"`
	Movements  []StockMovement `json:"movements"`
	LedgerSum  int             `json:"ledger_sum"`
	Consistent bool            `json:"consistent"`
}

// StockMovementResult is returned after a stock-in or stock-out.
type StockMovementResult struct {
	Item     *InventoryItem `json:"item"`
	Movement *StockMovement `json:"movement"`
}

// MovementCSVRow is one line of the stock history export.
type MovementCSVRow struct {
	ID         int64  `csv:"id"`
	CreatedAt  string `csv:"created_at"`
	ItemID     int64  `csv:"item_id"`
	ItemName   string `csv:"item_name"`
	Category   string `csv:"category"`
	Direction  string `csv:"direction"`
	Quantity   int    `csv:"quantity"`
	Delta      int    `csv:"delta"`
	RecordedBy string `csv:"recorded_by"`
	Note       string `csv:"note"`
}
