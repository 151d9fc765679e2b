// Package ledger holds the stock rules shared by the inventory service and the reconciliation job.
// Quantities are whole units; movements carry a positive quantity and a direction.
package ledger

import (
	"errors"
	"fmt"
)

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidDirection  = errors.New("direction must be in or out")
	ErrLedgerMismatch    = errors.New("quantity on hand does not match ledger")
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Entry is the part of a movement the rules care about.
type Entry struct {
	Direction Direction
	Quantity  int
}

// Delta is the signed change an entry applies to quantity on hand.
func (e Entry) Delta() int {
	if e.Direction == DirectionOut {
		return -e.Quantity
	}
	return e.Quantity
}

// StockIn returns the quantity after receiving qty units.
func StockIn(onHand, qty int) (int, error) {
	return Apply(onHand, Entry{Direction: DirectionIn, Quantity: qty})
}

// StockOut returns the quantity after issuing qty units.
// It fails with ErrInsufficientStock when qty exceeds onHand.
func StockOut(onHand, qty int) (int, error) {
	return Apply(onHand, Entry{Direction: DirectionOut, Quantity: qty})
}

// Apply validates e against onHand and returns the new quantity. onHand is never returned negative.
func Apply(onHand int, e Entry) (int, error) {
	if !e.Direction.Valid() {
		return onHand, ErrInvalidDirection
	}
	if e.Quantity <= 0 {
		return onHand, ErrInvalidQuantity
	}
	if e.Direction == DirectionOut && e.Quantity > onHand {
		return onHand, fmt.Errorf("%w: requested %d, on hand %d", ErrInsufficientStock, e.Quantity, onHand)
	}
	return onHand + e.Delta(), nil
}

// Sum is the net quantity implied by a list of movements.
func Sum(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Delta()
	}
	return total
}

// Reconcile checks a stored quantity against its ledger sum.
func Reconcile(onHand, ledgerSum int) error {
	if onHand != ledgerSum {
		return fmt.Errorf("%w: on hand %d, ledger %d", ErrLedgerMismatch, onHand, ledgerSum)
	}
	return nil
}
