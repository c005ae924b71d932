// Package sqlite persists analyzed products in a bounded SQLite table so the
// lookup flow survives restarts without calling USDA again.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/foodtrust/backend/internal/domain"
)

// Config holds the product store settings
type Config struct {
	Path            string
	MaxRows         int
	FreshnessWindow time.Duration
	FreshnessBonus  int64
}

// ProductStore implements domain.ProductRepository on SQLite.
// Rows are bounded by MaxRows and evicted with the same effective-score rule
// as the in-process cache.
type ProductStore struct {
	db      *sql.DB
	maxRows int
	policy  domain.FreshnessPolicy
	now     func() time.Time
	logger  *zap.Logger

	saveMu sync.Mutex
	closed atomic.Bool
}

var _ domain.ProductRepository = (*ProductStore)(nil)

// Open opens the database at cfg.Path with WAL enabled and creates the schema.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*ProductStore, error) {
	if cfg.MaxRows < 1 {
		return nil, fmt.Errorf("sqlite: max rows: %w", domain.ErrInvalidCapacity)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: busy timeout: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &ProductStore{
		db:      db,
		maxRows: cfg.MaxRows,
		policy:  domain.FreshnessPolicy{Window: cfg.FreshnessWindow, Bonus: cfg.FreshnessBonus},
		now:     time.Now,
		logger:  logger.Named("sqlite"),
	}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
	gtin TEXT PRIMARY KEY,
	fdc_id TEXT,
	description TEXT,
	brand_owner TEXT,
	analysis_json TEXT NOT NULL,
	lookup_count INTEGER NOT NULL DEFAULT 1,
	last_access INTEGER NOT NULL,
	analyzed_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_last_access ON products(last_access);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: init schema: %w", err)
	}
	return nil
}

// Close closes the database. Later calls fail with domain.ErrStoreClosed.
func (s *ProductStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *ProductStore) checkOpen() error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}
	return nil
}

// Get loads a stored product. Unknown GTINs return domain.ErrProductNotFound.
func (s *ProductStore) Get(ctx context.Context, gtin string) (*domain.StoredProduct, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var (
		payload     string
		lookupCount int64
		lastAccess  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT analysis_json, lookup_count, last_access FROM products WHERE gtin = ?`, gtin,
	).Scan(&payload, &lookupCount, &lastAccess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: gtin %s: %w", gtin, domain.ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s: %w", gtin, err)
	}

	var analysis domain.ProductAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, fmt.Errorf("sqlite: decode %s: %w", gtin, err)
	}
	return &domain.StoredProduct{
		Analysis:    analysis,
		LookupCount: lookupCount,
		LastAccess:  time.UnixMilli(lastAccess).UTC(),
	}, nil
}

// Save inserts or replaces the analysis for its GTIN. Replacing keeps the
// usage counters; inserting into a full table evicts the least valuable row
// first.
func (s *ProductStore) Save(ctx context.Context, analysis domain.ProductAnalysis) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if analysis.GTIN == "" {
		return fmt.Errorf("sqlite: save: %w", domain.ErrInvalidGTIN)
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("sqlite: encode %s: %w", analysis.GTIN, err)
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE gtin = ?)`, analysis.GTIN,
	).Scan(&exists); err != nil {
		return fmt.Errorf("sqlite: save %s: %w", analysis.GTIN, err)
	}

	if !exists {
		for {
			count, err := s.Count(ctx)
			if err != nil {
				return err
			}
			if count < s.maxRows {
				break
			}
			evicted, err := s.EvictLeastValuable(ctx)
			if err != nil {
				return err
			}
			if evicted == "" {
				break
			}
		}
	}

	now := s.now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO products (gtin, fdc_id, description, brand_owner, analysis_json, lookup_count, last_access, analyzed_at)
VALUES (?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT(gtin) DO UPDATE SET
	fdc_id = excluded.fdc_id,
	description = excluded.description,
	brand_owner = excluded.brand_owner,
	analysis_json = excluded.analysis_json,
	analyzed_at = excluded.analyzed_at`,
		analysis.GTIN, analysis.FdcID, analysis.Description, analysis.BrandOwner, string(payload), now, analysis.AnalyzedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", analysis.GTIN, err)
	}
	return nil
}

// RecordLookup counts one more lookup of gtin and refreshes its last access.
func (s *ProductStore) RecordLookup(ctx context.Context, gtin string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET lookup_count = lookup_count + 1, last_access = ? WHERE gtin = ?`,
		s.now().UnixMilli(), gtin,
	)
	if err != nil {
		return fmt.Errorf("sqlite: record lookup %s: %w", gtin, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sqlite: gtin %s: %w", gtin, domain.ErrProductNotFound)
	}
	return nil
}

// Count returns the number of stored products.
func (s *ProductStore) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// EvictLeastValuable deletes the row with the lowest effective score, oldest
// last access and smallest GTIN first. It returns "" when the table is empty.
func (s *ProductStore) EvictLeastValuable(ctx context.Context) (string, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}

	now := s.now().UnixMilli()
	var gtin string
	err := s.db.QueryRowContext(ctx, `
SELECT gtin FROM products
ORDER BY lookup_count + CASE WHEN ? - last_access < ? THEN ? ELSE 0 END ASC,
	last_access ASC,
	gtin ASC
LIMIT 1`,
		now, s.policy.Window.Milliseconds(), s.policy.Bonus,
	).Scan(&gtin)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: select eviction candidate: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE gtin = ?`, gtin); err != nil {
		return "", fmt.Errorf("sqlite: evict %s: %w", gtin, err)
	}
	s.logger.Debug("evicted product", zap.String("gtin", gtin))
	return gtin, nil
}
