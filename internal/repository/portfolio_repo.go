package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/srabbas1701/wealthlens/internal/models"
)

// PortfolioRepository handles database operations for portfolio aggregates
type PortfolioRepository struct {
	pool *pgxpool.Pool
}

// NewPortfolioRepository creates a new PortfolioRepository
func NewPortfolioRepository(pool *pgxpool.Pool) *PortfolioRepository {
	return &PortfolioRepository{pool: pool}
}

// ListAffected returns the distinct portfolios containing any of the given
// holdings.
func (r *PortfolioRepository) ListAffected(ctx context.Context, holdingIDs []int64) ([]int64, error) {
	if len(holdingIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT portfolio_id
		FROM holding
		WHERE id = ANY($1)
		ORDER BY portfolio_id ASC
	`
	rows, err := r.pool.Query(ctx, query, holdingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query affected portfolios: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SumHoldingValues re-reads a portfolio's holdings and returns the total
// across all of them plus the gold-category subtotal. Called strictly after
// the portfolio's holdings are revalued, so the sums reflect updated rows.
func (r *PortfolioRepository) SumHoldingValues(ctx context.Context, portfolioID int64) (total, gold decimal.Decimal, err error) {
	query := `
		SELECT COALESCE(SUM(current_value), 0),
		       COALESCE(SUM(current_value) FILTER (WHERE kind = ANY($2)), 0)
		FROM holding
		WHERE portfolio_id = $1
	`
	goldKinds := []string{
		string(models.KindSGB), string(models.KindPhysical),
		string(models.KindDigital), string(models.KindGoldETF),
	}
	err = r.pool.QueryRow(ctx, query, portfolioID, goldKinds).Scan(&total, &gold)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum holdings for portfolio %d: %w", portfolioID, err)
	}
	return total, gold, nil
}

// UpdateAggregate upserts the derived rollup for one portfolio.
func (r *PortfolioRepository) UpdateAggregate(ctx context.Context, agg *models.PortfolioAggregate) error {
	query := `
		INSERT INTO portfolio_aggregate (portfolio_id, total_value, gold_value, gold_percentage, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (portfolio_id) DO UPDATE
		SET total_value = EXCLUDED.total_value, gold_value = EXCLUDED.gold_value,
		    gold_percentage = EXCLUDED.gold_percentage, computed_at = EXCLUDED.computed_at
	`
	_, err := r.pool.Exec(ctx, query,
		agg.PortfolioID, agg.TotalValue, agg.GoldValue, agg.GoldPercentage, agg.ComputedAt)
	if err != nil {
		return fmt.Errorf("failed to update aggregate for portfolio %d: %w", agg.PortfolioID, err)
	}
	return nil
}
