package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/commodity-desk/pricer/pkg/model"
)

// Store is the persistence delegate for market-data records plus a JSON cache
// for trading-day lookups. Each call is atomic on its own; there are no
// cross-call transactions.
type Store interface {
	InsertMarketData(ctx context.Context, rec model.MarketDataRecord) (int64, error)
	GetMarketData(ctx context.Context, id int64) (*model.MarketDataRecord, error)
	ListMarketData(ctx context.Context) ([]model.MarketDataRecord, error)
	DeleteMarketDataWhere(ctx context.Context, exchangeCode, contract string) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// HybridStore persists market data in Postgres and keeps the JSON cache in Redis.
type HybridStore struct {
	redis  *redis.Client
	pg     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid connects to Redis and Postgres and returns the combined store.
func NewHybrid(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	if pgPoolConfig.MaxConns > 0 {
		cfg.MaxConns = pgPoolConfig.MaxConns
	}
	if pgPoolConfig.MinConns > 0 {
		cfg.MinConns = pgPoolConfig.MinConns
	}
	if pgPoolConfig.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
	}
	if pgPoolConfig.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
	}
	if pgPoolConfig.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
	}
	pgPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &HybridStore{redis: rdb, pg: pgPool, logger: logger}, nil
}

// InsertMarketData inserts a record and returns the assigned id.
func (s *HybridStore) InsertMarketData(ctx context.Context, rec model.MarketDataRecord) (int64, error) {
	var id int64
	err := s.pg.QueryRow(ctx, `
		INSERT INTO pricing.market_data (
			exchange_code, contract, pricing_model, market_data, upload_timestamp
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`, rec.ExchangeCode, rec.Contract, rec.PricingModel, rec.MarketData, rec.UploadTimestamp).Scan(&id)
	if err != nil {
		s.logger.Error("store.pg.insert_market_data_failed", zap.Error(err))
		return 0, err
	}
	return id, nil
}

// GetMarketData returns the record with the given id, or (nil, nil) if absent.
func (s *HybridStore) GetMarketData(ctx context.Context, id int64) (*model.MarketDataRecord, error) {
	row := s.pg.QueryRow(ctx, `
		SELECT id, exchange_code, contract, pricing_model, market_data, upload_timestamp
		FROM pricing.market_data
		WHERE id = $1;
	`, id)

	var rec model.MarketDataRecord
	if err := row.Scan(&rec.ID, &rec.ExchangeCode, &rec.Contract,
		&rec.PricingModel, &rec.MarketData, &rec.UploadTimestamp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetMarketData scan failed: %w", err)
	}
	return &rec, nil
}

// ListMarketData returns all records in id order.
func (s *HybridStore) ListMarketData(ctx context.Context) ([]model.MarketDataRecord, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT id, exchange_code, contract, pricing_model, market_data, upload_timestamp
		FROM pricing.market_data
		ORDER BY id;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.MarketDataRecord
	for rows.Next() {
		var rec model.MarketDataRecord
		if err := rows.Scan(&rec.ID, &rec.ExchangeCode, &rec.Contract,
			&rec.PricingModel, &rec.MarketData, &rec.UploadTimestamp); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteMarketDataWhere removes any record for the (exchange_code, contract) pair.
func (s *HybridStore) DeleteMarketDataWhere(ctx context.Context, exchangeCode, contract string) error {
	_, err := s.pg.Exec(ctx, `
		DELETE FROM pricing.market_data
		WHERE exchange_code = $1 AND contract = $2;
	`, exchangeCode, contract)
	if err != nil {
		s.logger.Error("store.pg.delete_market_data_failed", zap.Error(err))
	}
	return err
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.pg != nil {
		if err := s.pg.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.pg != nil {
		s.pg.Close()
	}
	return s.redis.Close()
}
