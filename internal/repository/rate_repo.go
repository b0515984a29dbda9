package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/srabbas1701/wealthlens/internal/models"
)

// ErrPermissionDenied marks a write rejected by database authorization. It is
// a data-shaped failure: never retried through the schema ladder.
var ErrPermissionDenied = errors.New("permission denied by database")

// RateRepository handles database operations for the canonical gold rate
type RateRepository struct {
	pool *pgxpool.Pool

	// ladder rungs; Upsert sequences through these
	fullUpsert   func(ctx context.Context, rate *models.GoldRate) error
	coreUpsert   func(ctx context.Context, rate *models.GoldRate) error
	replaceWrite func(ctx context.Context, rate *models.GoldRate) error
}

// NewRateRepository creates a new RateRepository
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	r := &RateRepository{pool: pool}
	r.fullUpsert = r.upsertFull
	r.coreUpsert = r.upsertCore
	r.replaceWrite = r.deleteThenInsert
	return r
}

// attemptOutcome classifies one persistence attempt so the ladder can pick
// its next step from a typed result instead of matching error strings.
type attemptOutcome int

const (
	attemptOK attemptOutcome = iota
	// attemptSchemaMismatch: a column in the statement does not exist in
	// this deployment's schema. Retry without optional columns.
	attemptSchemaMismatch
	// attemptConflictUnsupported: no unique constraint backs the ON CONFLICT
	// clause. Fall back to delete-then-insert.
	attemptConflictUnsupported
	// attemptHardFailure: anything data-shaped. Propagate immediately.
	attemptHardFailure
)

// Postgres error codes, per the SQLSTATE listing.
const (
	pgCodeUndefinedColumn        = "42703"
	pgCodeInvalidColumnReference = "42P10" // ON CONFLICT without matching index
	pgCodeInsufficientPrivilege  = "42501"
)

// classifyAttempt maps a pgconn error to a ladder outcome.
func classifyAttempt(err error) attemptOutcome {
	if err == nil {
		return attemptOK
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return attemptHardFailure
	}
	switch pgErr.Code {
	case pgCodeUndefinedColumn:
		return attemptSchemaMismatch
	case pgCodeInvalidColumnReference:
		return attemptConflictUnsupported
	default:
		return attemptHardFailure
	}
}

// isPermissionError reports whether the failure is an authorization denial.
func isPermissionError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeInsufficientPrivilege
}

// Upsert writes the canonical rate for its date, tolerating schema variance
// across deployments. Ladder: (1) full upsert with the optional session and
// source columns; (2) on a missing optional column, upsert the core columns
// only; (3) if the unique constraint backing ON CONFLICT is absent, delete
// then insert inside a transaction. Permission failures propagate from any
// rung without further retries.
func (r *RateRepository) Upsert(ctx context.Context, rate *models.GoldRate) error {
	err := r.fullUpsert(ctx, rate)
	if err == nil {
		return nil
	}
	if isPermissionError(err) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	switch classifyAttempt(err) {
	case attemptSchemaMismatch:
		log.Warnf("gold_rate upsert hit missing optional column, retrying core columns: %v", err)
		err = r.coreUpsert(ctx, rate)
	case attemptConflictUnsupported:
		log.Warnf("gold_rate upsert unsupported by schema, falling back to delete+insert: %v", err)
		return r.replaceWrite(ctx, rate)
	default:
		return fmt.Errorf("failed to upsert gold rate: %w", err)
	}

	if err == nil {
		return nil
	}
	if isPermissionError(err) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if classifyAttempt(err) == attemptConflictUnsupported {
		log.Warnf("gold_rate core upsert unsupported by schema, falling back to delete+insert: %v", err)
		return r.replaceWrite(ctx, rate)
	}
	return fmt.Errorf("failed to upsert gold rate: %w", err)
}

func (r *RateRepository) upsertFull(ctx context.Context, rate *models.GoldRate) error {
	query := `
		INSERT INTO gold_rate (rate_date, session, source, price_24k, price_22k, suspicious, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (rate_date) DO UPDATE
		SET session = EXCLUDED.session, source = EXCLUDED.source,
		    price_24k = EXCLUDED.price_24k, price_22k = EXCLUDED.price_22k,
		    suspicious = EXCLUDED.suspicious, captured_at = EXCLUDED.captured_at
	`
	_, err := r.pool.Exec(ctx, query,
		rate.RateDate, rate.Session, rate.Source, rate.Price24K, rate.Price22K, rate.Suspicious, rate.CapturedAt)
	return err
}

// upsertCore writes only the columns every deployment has.
func (r *RateRepository) upsertCore(ctx context.Context, rate *models.GoldRate) error {
	query := `
		INSERT INTO gold_rate (rate_date, price_24k, price_22k, captured_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (rate_date) DO UPDATE
		SET price_24k = EXCLUDED.price_24k, price_22k = EXCLUDED.price_22k,
		    captured_at = EXCLUDED.captured_at
	`
	_, err := r.pool.Exec(ctx, query, rate.RateDate, rate.Price24K, rate.Price22K, rate.CapturedAt)
	return err
}

func (r *RateRepository) deleteThenInsert(ctx context.Context, rate *models.GoldRate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM gold_rate WHERE rate_date = $1`, rate.RateDate); err != nil {
		if isPermissionError(err) {
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return fmt.Errorf("failed to delete existing rate: %w", err)
	}

	query := `
		INSERT INTO gold_rate (rate_date, price_24k, price_22k, captured_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, query, rate.RateDate, rate.Price24K, rate.Price22K, rate.CapturedAt); err != nil {
		if isPermissionError(err) {
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return fmt.Errorf("failed to insert rate: %w", err)
	}

	return tx.Commit(ctx)
}

// Latest retrieves the most recently persisted rate, or (nil, nil) when no
// rate has ever been stored.
func (r *RateRepository) Latest(ctx context.Context) (*models.GoldRate, error) {
	query := `
		SELECT rate_date, COALESCE(session, ''), COALESCE(source, ''), price_24k, price_22k,
		       COALESCE(suspicious, false), captured_at
		FROM gold_rate
		ORDER BY rate_date DESC
		LIMIT 1
	`
	rate := &models.GoldRate{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&rate.RateDate, &rate.Session, &rate.Source, &rate.Price24K, &rate.Price22K,
		&rate.Suspicious, &rate.CapturedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest rate: %w", err)
	}
	return rate, nil
}
