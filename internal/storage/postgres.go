package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"ecom-auditor/internal/config"
	"ecom-auditor/internal/profit"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Cache is the subset of pkg/redis the storage reads through.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// PostgresStorage keeps operator fee overrides. It implements feebook.Book.
type PostgresStorage struct {
	db       *sqlx.DB
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

type feeScheduleRow struct {
	Platform  string        `db:"platform"`
	Overrides []byte        `db:"overrides"`
	UpdatedBy sql.NullInt64 `db:"updated_by"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// Override is one stored fee value.
type Override struct {
	Key   string
	Value float64
}

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, cache Cache, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:       db,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		logger:   logger,
	}, nil
}

// DB exposes the underlying handle for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Schedule returns the platform defaults overlaid with stored overrides.
func (s *PostgresStorage) Schedule(ctx context.Context, p profit.Platform) (profit.FeeStructure, error) {
	const operation = "storage.Schedule"

	if !p.Valid() {
		return profit.FeeStructure{}, fmt.Errorf("%s: %w", operation, profit.ErrUnknownPlatform)
	}

	overrides, err := s.overrides(ctx, p)
	if err != nil {
		return profit.FeeStructure{}, fmt.Errorf("%s: %w", operation, err)
	}

	fees, skipped := ApplyOverrides(profit.DefaultFees(p), overrides)
	for _, key := range skipped {
		s.logger.Warn("Ignoring stored override for unknown fee field",
			zap.String("platform", string(p)),
			zap.String("field", key))
	}
	return fees, nil
}

// Overrides lists the stored values for a platform, sorted by key.
func (s *PostgresStorage) Overrides(ctx context.Context, p profit.Platform) ([]Override, error) {
	const operation = "storage.Overrides"

	m, err := s.overrides(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	out := make([]Override, 0, len(m))
	for k, v := range m {
		out = append(out, Override{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *PostgresStorage) overrides(ctx context.Context, p profit.Platform) (map[string]float64, error) {
	cacheKey := feeCacheKey(p)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var m map[string]float64
			if err := json.Unmarshal(cached, &m); err == nil {
				return m, nil
			}
		}
	}

	const query = `
		SELECT platform, overrides, updated_by, updated_at
		FROM fee_schedules
		WHERE platform = $1
	`
	var row feeScheduleRow
	m := map[string]float64{}

	err := s.db.GetContext(ctx, &row, query, string(p))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to get fee schedule: %w", err)
	default:
		if err := json.Unmarshal(row.Overrides, &m); err != nil {
			return nil, fmt.Errorf("failed to decode overrides: %w", err)
		}
	}

	if s.cache != nil {
		if data, err := json.Marshal(m); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				s.logger.Warn("Failed to cache fee schedule", zap.Error(err))
			}
		}
	}
	return m, nil
}

// SetFee stores one override for a platform. The key must be one of the
// platform's fee fields and the value must be a valid amount.
func (s *PostgresStorage) SetFee(ctx context.Context, p profit.Platform, key string, value float64, updatedBy int64) error {
	const operation = "storage.SetFee"

	if err := CheckFeeKey(p, key); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	candidate, err := profit.FeeStructure{}.WithField(key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	patch, err := json.Marshal(map[string]float64{key: value})
	if err != nil {
		return fmt.Errorf("%s: marshal override: %w", operation, err)
	}

	const query = `
		INSERT INTO fee_schedules (platform, overrides, updated_by, updated_at)
		VALUES ($1, $2::jsonb, $3, NOW())
		ON CONFLICT (platform) DO UPDATE
		SET overrides = fee_schedules.overrides || EXCLUDED.overrides,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, string(p), string(patch), updatedBy); err != nil {
		return fmt.Errorf("%s: failed to save override: %w", operation, err)
	}

	s.invalidate(ctx, p)
	s.logger.Info("Fee override saved",
		zap.String("platform", string(p)),
		zap.String("field", key),
		zap.Float64("value", value),
		zap.Int64("updated_by", updatedBy))
	return nil
}

// ResetFees drops every override for a platform.
func (s *PostgresStorage) ResetFees(ctx context.Context, p profit.Platform) error {
	const operation = "storage.ResetFees"

	if !p.Valid() {
		return fmt.Errorf("%s: %w", operation, profit.ErrUnknownPlatform)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fee_schedules WHERE platform = $1`, string(p)); err != nil {
		return fmt.Errorf("%s: failed to delete overrides: %w", operation, err)
	}

	s.invalidate(ctx, p)
	s.logger.Info("Fee overrides reset", zap.String("platform", string(p)))
	return nil
}

func (s *PostgresStorage) invalidate(ctx context.Context, p profit.Platform) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, feeCacheKey(p)); err != nil {
		s.logger.Warn("Failed to invalidate fee cache",
			zap.String("platform", string(p)),
			zap.Error(err))
	}
}

func feeCacheKey(p profit.Platform) string {
	return fmt.Sprintf("fees:%s", p)
}

// CheckFeeKey reports whether key is a fee field the platform uses.
func CheckFeeKey(p profit.Platform, key string) error {
	if !p.Valid() {
		return profit.ErrUnknownPlatform
	}
	for _, f := range profit.FeeFields(p) {
		if f.Key == key {
			return nil
		}
	}
	return fmt.Errorf("%w: %q for %s", profit.ErrUnknownField, key, p)
}

// ApplyOverrides returns base with every known override applied, plus the
// keys that did not name a fee field.
func ApplyOverrides(base profit.FeeStructure, overrides map[string]float64) (profit.FeeStructure, []string) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var skipped []string
	for _, k := range keys {
		next, err := base.WithField(k, overrides[k])
		if err != nil {
			skipped = append(skipped, k)
			continue
		}
		base = next
	}
	return base, skipped
}
