package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/srabbas1701/wealthlens/internal/models"
)

// HoldingRepository handles database operations for holdings
type HoldingRepository struct {
	pool *pgxpool.Pool
}

// NewHoldingRepository creates a new HoldingRepository
func NewHoldingRepository(pool *pgxpool.Pool) *HoldingRepository {
	return &HoldingRepository{pool: pool}
}

// ListByKinds retrieves every holding of the given kinds across all
// portfolios. The cascade uses this to load the benchmark-valued population.
func (r *HoldingRepository) ListByKinds(ctx context.Context, kinds []models.HoldingKind) ([]models.Holding, error) {
	query := `
		SELECT id, portfolio_id, kind, quantity, COALESCE(purity, ''),
		       net_weight, gross_weight, invested_value, current_value,
		       COALESCE(value_confidence, 'stale'), valued_at
		FROM holding
		WHERE kind = ANY($1)
		ORDER BY id ASC
	`
	kindStrs := make([]string, len(kinds))
	for i, k := range kinds {
		kindStrs[i] = string(k)
	}

	rows, err := r.pool.Query(ctx, query, kindStrs)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.PortfolioID, &h.Kind, &h.Quantity, &h.Purity,
			&h.NetWeight, &h.GrossWeight, &h.InvestedValue, &h.CurrentValue,
			&h.Confidence, &h.ValuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// UpdateValue writes a holding's derived value. Only the cascade calls this;
// current_value is never user-editable.
func (r *HoldingRepository) UpdateValue(ctx context.Context, holdingID int64, value decimal.Decimal, confidence models.ValueConfidence, valuedAt time.Time) error {
	query := `
		UPDATE holding
		SET current_value = $2, value_confidence = $3, valued_at = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, holdingID, value, confidence, valuedAt)
	if err != nil {
		return fmt.Errorf("failed to update holding %d: %w", holdingID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("holding %d not found", holdingID)
	}
	return nil
}
