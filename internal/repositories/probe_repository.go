package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ProbeRepository backs the connectivity probes. It touches a single bookkeeping row.
type ProbeRepository interface {
	Touch(ctx context.Context) (time.Time, error)
}

type probeRepository struct {
	db *sql.DB
}

func NewProbeRepository(db *sql.DB) ProbeRepository {
	return &probeRepository{db: db}
}

// Touch upserts the probe row and returns the stored timestamp.
func (r *probeRepository) Touch(ctx context.Context) (time.Time, error) {
	var touchedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO service_probe (id, touched_at) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET touched_at = EXCLUDED.touched_at
		 RETURNING touched_at`, time.Now(),
	).Scan(&touchedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: touching probe row: %v", ErrDatabaseError, err)
	}
	return touchedAt, nil
}
