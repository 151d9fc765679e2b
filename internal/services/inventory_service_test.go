package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"gym_backend/internal/ledger"
	"gym_backend/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

func newInventoryFixture(t *testing.T, opening int) (*memStore, *inventoryService, int64) {
	t.Helper()
	store := newMemStore()
	svc := NewInventoryService(store, store, store, nil).(*inventoryService)

	item, err := svc.CreateItem(context.Background(), CreateItemRequest{
		Name:          "Whey Protein 1kg",
		Category:      "supplement",
		Quantity:      opening,
		PurchasePrice: decimal.NewFromInt(250000),
		SellingPrice:  decimal.NewFromInt(300000),
	}, "admin")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return store, svc, item.ID
}

func stockReq(qty int) StockChangeRequest {
	return StockChangeRequest{Quantity: qty}
}

func TestCreateItemRecordsOpeningStock(t *testing.T) {
	store, svc, id := newInventoryFixture(t, 10)

	item, err := svc.GetItemByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if item.Quantity != 10 {
		t.Fatalf("quantity = %d, want 10", item.Quantity)
	}
	if len(store.movements) != 1 {
		t.Fatalf("expected one opening movement, got %d", len(store.movements))
	}
	m := store.movements[0]
	if m.Direction != ledger.DirectionIn || m.Quantity != 10 || m.Note == nil || *m.Note != "opening stock" {
		t.Fatalf("unexpected opening movement %+v", m)
	}
	if m.RecordedBy == nil || *m.RecordedBy != "admin" {
		t.Fatalf("recorded_by = %v", m.RecordedBy)
	}
}

func TestCreateItemWithoutStockWritesNoMovement(t *testing.T) {
	store, _, _ := newInventoryFixture(t, 0)
	if len(store.movements) != 0 {
		t.Fatalf("expected no movements, got %d", len(store.movements))
	}
}

func TestCreateItemRejectsNegativePrice(t *testing.T) {
	store := newMemStore()
	svc := NewInventoryService(store, store, store, nil)

	_, err := svc.CreateItem(context.Background(), CreateItemRequest{
		Name: "Towel", Category: "merch", PurchasePrice: decimal.NewFromInt(-1),
	}, "admin")
	if !errors.Is(err, ErrItemValidation) {
		t.Fatalf("expected ErrItemValidation, got %v", err)
	}
	if len(store.items) != 0 {
		t.Fatal("item must not be stored")
	}
}

func TestStockOutThenIn(t *testing.T) {
	ctx := context.Background()
	_, svc, id := newInventoryFixture(t, 10)

	out, err := svc.RecordStockOut(ctx, id, stockReq(3), "admin")
	if err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}
	if out.Item.Quantity != 7 {
		t.Fatalf("after out quantity = %d, want 7", out.Item.Quantity)
	}
	if out.Movement.Delta() != -3 {
		t.Fatalf("movement delta = %d, want -3", out.Movement.Delta())
	}

	in, err := svc.RecordStockIn(ctx, id, stockReq(5), "admin")
	if err != nil {
		t.Fatalf("RecordStockIn: %v", err)
	}
	if in.Item.Quantity != 12 {
		t.Fatalf("after in quantity = %d, want 12", in.Item.Quantity)
	}

	itemLedger, err := svc.GetItemLedger(ctx, id)
	if err != nil {
		t.Fatalf("GetItemLedger: %v", err)
	}
	if itemLedger.LedgerSum != 12 || !itemLedger.Consistent || len(itemLedger.Movements) != 3 {
		t.Fatalf("unexpected ledger %+v", itemLedger)
	}
	if itemLedger.Movements[0].Direction != ledger.DirectionIn || itemLedger.Movements[0].Quantity != 5 {
		t.Fatalf("movements should be newest first, got %+v", itemLedger.Movements[0])
	}
}

func TestStockOutInsufficientLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store, svc, id := newInventoryFixture(t, 10)

	_, err := svc.RecordStockOut(ctx, id, stockReq(11), "admin")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if q := store.items[id].Quantity; q != 10 {
		t.Fatalf("quantity = %d, want 10", q)
	}
	if len(store.movements) != 1 {
		t.Fatalf("no movement may be written, got %d", len(store.movements))
	}
}

func TestStockChangeRejectsNonPositiveQuantity(t *testing.T) {
	_, svc, id := newInventoryFixture(t, 10)
	for _, qty := range []int{0, -4} {
		if _, err := svc.RecordStockIn(context.Background(), id, stockReq(qty), "admin"); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestStockMovementRollsBackWhenLedgerWriteFails(t *testing.T) {
	ctx := context.Background()
	store, svc, id := newInventoryFixture(t, 10)
	store.movementErr = errors.New("disk full")

	_, err := svc.RecordStockOut(ctx, id, stockReq(4), "admin")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected ledger write error, got %v", err)
	}
	if q := store.items[id].Quantity; q != 10 {
		t.Fatalf("quantity must roll back to 10, got %d", q)
	}
	if store.rollbacks != 1 {
		t.Fatalf("rollbacks = %d, want 1", store.rollbacks)
	}
}

func TestStockMovementRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store, svc, id := newInventoryFixture(t, 10)
	store.conflicts = 2
	before := store.txCount

	res, err := svc.RecordStockOut(ctx, id, stockReq(1), "admin")
	if err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}
	if res.Item.Quantity != 9 {
		t.Fatalf("quantity = %d, want 9", res.Item.Quantity)
	}
	if got := store.txCount - before; got != 3 {
		t.Fatalf("transactions = %d, want 3", got)
	}
	if len(store.movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(store.movements))
	}
}

func TestStockMovementGivesUpAfterMaxAttempts(t *testing.T) {
	store, svc, id := newInventoryFixture(t, 10)
	store.conflicts = DefaultStockAttempts + 10

	_, err := svc.RecordStockIn(context.Background(), id, stockReq(1), "admin")
	if !errors.Is(err, ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}
	if q := store.items[id].Quantity; q != 10 {
		t.Fatalf("quantity = %d, want 10", q)
	}
}

func TestConcurrentStockOutNeverOversells(t *testing.T) {
	store, svc, id := newInventoryFixture(t, 10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordStockOut(context.Background(), id, stockReq(1), "admin")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("succeeded = %d, want 10", succeeded)
	}
	if q := store.items[id].Quantity; q != 0 {
		t.Fatalf("quantity = %d, want 0", q)
	}
	mismatches, err := svc.ReconcileLedger(context.Background())
	if err != nil {
		t.Fatalf("ReconcileLedger: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("ledger diverged: %+v", mismatches)
	}
}

func TestReconcileLedgerReportsDivergence(t *testing.T) {
	store, svc, id := newInventoryFixture(t, 10)
	item := store.items[id]
	item.Quantity = 9
	store.items[id] = item

	mismatches, err := svc.ReconcileLedger(context.Background())
	if err != nil {
		t.Fatalf("ReconcileLedger: %v", err)
	}
	if len(mismatches) != 1 || mismatches[0].ItemID != id || mismatches[0].LedgerSum != 10 {
		t.Fatalf("unexpected mismatches %+v", mismatches)
	}
}

func TestArchivedItemRejectsMovements(t *testing.T) {
	ctx := context.Background()
	store, svc, id := newInventoryFixture(t, 5)

	if err := svc.ArchiveItem(ctx, id); err != nil {
		t.Fatalf("ArchiveItem: %v", err)
	}
	if _, err := svc.RecordStockIn(ctx, id, stockReq(1), "admin"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := svc.ArchiveItem(ctx, id); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("second archive: expected ErrItemNotFound, got %v", err)
	}
	if len(store.movements) != 1 {
		t.Fatalf("archiving must keep the ledger, got %d movements", len(store.movements))
	}
}

func TestUpdateItemKeepsQuantity(t *testing.T) {
	_, svc, id := newInventoryFixture(t, 6)
	name := "Whey Protein 2kg"

	item, err := svc.UpdateItem(context.Background(), id, UpdateItemRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if item.Name != name || item.Quantity != 6 {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestExportMovementsCSV(t *testing.T) {
	ctx := context.Background()
	_, svc, id := newInventoryFixture(t, 10)
	if _, err := svc.RecordStockOut(ctx, id, stockReq(3), "admin"); err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}

	var buf bytes.Buffer
	out := ledger.DirectionOut
	if err := svc.ExportMovements(ctx, models.MovementFilter{Direction: &out}, &buf); err != nil {
		t.Fatalf("ExportMovements: %v", err)
	}

	var rows []*models.MovementCSVRow
	if err := gocsv.UnmarshalBytes(buf.Bytes(), &rows); err != nil {
		t.Fatalf("parse csv: %v\n%s", err, buf.String())
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Direction != "out" || rows[0].Delta != -3 || rows[0].ItemName != "Whey Protein 1kg" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
}
