package ledger_test

import (
	"errors"
	"testing"

	"gym_backend/internal/ledger"
)

func TestStockOutThenInRestores(t *testing.T) {
	for s := 1; s <= 25; s++ {
		for q := 1; q <= s; q++ {
			afterOut, err := ledger.StockOut(s, q)
			if err != nil {
				t.Fatalf("StockOut(%d,%d): %v", s, q, err)
			}
			afterIn, err := ledger.StockIn(afterOut, q)
			if err != nil {
				t.Fatalf("StockIn(%d,%d): %v", afterOut, q, err)
			}
			if afterIn != s {
				t.Fatalf("s=%d q=%d: got %d after out+in", s, q, afterIn)
			}
			net := ledger.Sum([]ledger.Entry{
				{Direction: ledger.DirectionOut, Quantity: q},
				{Direction: ledger.DirectionIn, Quantity: q},
			})
			if net != 0 {
				t.Fatalf("net change = %d, want 0", net)
			}
		}
	}
}

func TestStockOutInsufficient(t *testing.T) {
	for s := 0; s <= 10; s++ {
		got, err := ledger.StockOut(s, s+1)
		if !errors.Is(err, ledger.ErrInsufficientStock) {
			t.Fatalf("StockOut(%d,%d) err = %v, want ErrInsufficientStock", s, s+1, err)
		}
		if got != s {
			t.Fatalf("quantity changed on failure: %d -> %d", s, got)
		}
	}
}

func TestInvalidQuantity(t *testing.T) {
	tests := []struct {
		name string
		fn   func(int, int) (int, error)
		qty  int
	}{
		{"in zero", ledger.StockIn, 0},
		{"in negative", ledger.StockIn, -3},
		{"out zero", ledger.StockOut, 0},
		{"out negative", ledger.StockOut, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(5, tt.qty)
			if !errors.Is(err, ledger.ErrInvalidQuantity) {
				t.Fatalf("err = %v, want ErrInvalidQuantity", err)
			}
			if got != 5 {
				t.Fatalf("quantity changed: %d", got)
			}
		})
	}
}

func TestApplyRejectsUnknownDirection(t *testing.T) {
	if _, err := ledger.Apply(1, ledger.Entry{Direction: "sideways", Quantity: 1}); !errors.Is(err, ledger.ErrInvalidDirection) {
		t.Fatalf("err = %v", err)
	}
}

func TestWorkedExample(t *testing.T) {
	stock := 10
	var entries []ledger.Entry

	stock, err := ledger.StockOut(stock, 3)
	if err != nil || stock != 7 {
		t.Fatalf("after out: %d, %v", stock, err)
	}
	entries = append(entries, ledger.Entry{Direction: ledger.DirectionOut, Quantity: 3})

	stock, err = ledger.StockIn(stock, 5)
	if err != nil || stock != 12 {
		t.Fatalf("after in: %d, %v", stock, err)
	}
	entries = append(entries, ledger.Entry{Direction: ledger.DirectionIn, Quantity: 5})

	if sum := ledger.Sum(entries); sum != 2 || sum != stock-10 {
		t.Fatalf("ledger sum %d does not match net change %d", sum, stock-10)
	}
}

func TestReconcile(t *testing.T) {
	if err := ledger.Reconcile(12, 12); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := ledger.Reconcile(12, 10); !errors.Is(err, ledger.ErrLedgerMismatch) {
		t.Fatalf("err = %v, want ErrLedgerMismatch", err)
	}
}
