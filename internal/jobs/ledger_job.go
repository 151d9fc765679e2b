package jobs

import (
	"context"

	"gym_backend/internal/models"

	"github.com/rs/zerolog/log"
)

type LedgerReconciler interface {
	ReconcileLedger(ctx context.Context) ([]models.LedgerTotal, error)
}

// LedgerReconcileJob logs every item whose quantity disagrees with its movement history.
type LedgerReconcileJob struct {
	inventory LedgerReconciler
}

func NewLedgerReconcileJob(inventory LedgerReconciler) *LedgerReconcileJob {
	return &LedgerReconcileJob{inventory: inventory}
}

func (j *LedgerReconcileJob) Name() string { return "ledger_reconcile" }

func (j *LedgerReconcileJob) Run(ctx context.Context) error {
	mismatches, err := j.inventory.ReconcileLedger(ctx)
	if err != nil {
		return err
	}
	for _, m := range mismatches {
		log.Error().
			Int64("item_id", m.ItemID).
			Str("item_name", m.ItemName).
			Int("quantity", m.Quantity).
			Int("ledger_sum", m.LedgerSum).
			Msg("Stock quantity diverges from ledger")
	}
	if len(mismatches) == 0 {
		log.Debug().Msg("Ledger consistent")
	}
	return nil
}
