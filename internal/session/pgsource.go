package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regami/realtime/internal/config"
)

// PGSource resolves the newest unexpired session token from the app's
// Postgres session store. Each Token call queries the store, so rotation
// and logout are observed without any cache invalidation.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource connects to the session store and verifies the connection.
func NewPGSource(ctx context.Context, cfg config.DBConfig) (*PGSource, error) {
	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PGSource{pool: pool}, nil
}

// Token returns the current session token, or empty when no live session exists.
func (s *PGSource) Token(ctx context.Context) (string, error) {
	var token string
	err := s.pool.QueryRow(ctx, `
		SELECT access_token
		FROM sessions
		WHERE expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query session token: %w", err)
	}
	return token, nil
}

// Close releases the connection pool.
func (s *PGSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Connect creates a connection pool for the session store.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
