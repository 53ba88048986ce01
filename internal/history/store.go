package history

import (
	"context"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/google/uuid"
)

// MaxRecent caps how many rows Recent returns
const MaxRecent = 100

// Store reads and writes prediction history
type Store struct {
	db *DB
}

// NewStore wraps an open database
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Open opens the database under dataDir and returns a Store over it
func Open(dataDir string) (*Store, error) {
	db, err := OpenDB(dataDir)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Save inserts a record, filling in ID and CreatedAt when empty
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	stmt, err := s.db.GetPreparedStatement("insert_prediction")
	if err != nil {
		return err
	}

	f := rec.Features
	_, err = stmt.ExecContext(ctx,
		rec.ID, rec.Source,
		f.FixedAcidity, f.VolatileAcidity, f.CitricAcid, f.ResidualSugar,
		f.Chlorides, f.FreeSulfurDioxide, f.TotalSulfurDioxide, f.Density, f.PH,
		f.Sulphates, f.Alcohol,
		rec.Score, string(rec.Tier), rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// Recent returns up to limit records, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > MaxRecent {
		return nil, fmt.Errorf("limit must be between 1 and %d", MaxRecent)
	}

	stmt, err := s.db.GetPreparedStatement("recent_predictions")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var tier string
		var createdAt int64
		f := &rec.Features

		if err := rows.Scan(
			&rec.ID, &rec.Source,
			&f.FixedAcidity, &f.VolatileAcidity, &f.CitricAcid, &f.ResidualSugar,
			&f.Chlorides, &f.FreeSulfurDioxide, &f.TotalSulfurDioxide, &f.Density, &f.PH,
			&f.Sulphates, &f.Alcohol,
			&rec.Score, &tier, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}

		rec.Tier = prediction.QualityTier(tier)
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return records, nil
}

// TierCounts returns one entry per tier, best first, including empty tiers
func (s *Store) TierCounts(ctx context.Context) ([]TierCount, error) {
	stmt, err := s.db.GetPreparedStatement("tier_counts")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tiers: %w", err)
	}
	defer rows.Close()

	counts := make(map[prediction.QualityTier]int64)
	for rows.Next() {
		var tier string
		var count int64
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tier count: %w", err)
		}
		counts[prediction.QualityTier(tier)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tier counts: %w", err)
	}

	tiers := prediction.Tiers()
	out := make([]TierCount, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, TierCount{Tier: tier, Rank: tier.Rank(), Count: counts[tier]})
	}

	return out, nil
}

// Prune deletes records older than retention and returns how many were removed
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	stmt, err := s.db.GetPreparedStatement("prune_predictions")
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-retention).UnixNano()
	res, err := stmt.ExecContext(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune predictions: %w", err)
	}

	return res.RowsAffected()
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats returns connection pool statistics
func (s *Store) Stats() map[string]interface{} {
	return s.db.GetPoolStats()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
