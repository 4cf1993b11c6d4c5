package store

import (
	"context"
	"fmt"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/config"
	"github.com/wonny/billflow/backend/pkg/database"
	"github.com/wonny/billflow/backend/pkg/httputil"
	"github.com/wonny/billflow/backend/pkg/logger"
	"github.com/wonny/billflow/backend/pkg/redis"
)

// Opened is a configured store plus whatever must be closed with it
type Opened struct {
	Store contracts.Store
	DB    *database.DB // postgres 소스일 때만
}

// Close releases the database pool if one was opened
func (o *Opened) Close() {
	if o.DB != nil {
		o.DB.Close()
	}
}

// Open builds the store selected by CONTRACTS_SOURCE.
// limiter (optional) throttles remote fetches with redis.RefreshRateLimit.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, limiter *redis.RateLimiter) (*Opened, error) {
	switch cfg.Contracts.Source {
	case config.SourceFile, "":
		return &Opened{Store: NewFileStore(cfg.Contracts.Path)}, nil

	case config.SourcePostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Opened{Store: NewPostgresStore(db.Pool), DB: db}, nil

	case config.SourceURL:
		client := httputil.New(cfg, log)
		if limiter != nil {
			client.WithRateLimiter(limiter, redis.RefreshRateLimit)
		}
		return &Opened{Store: NewRemoteStore(client, cfg.Contracts.URL)}, nil

	default:
		return nil, fmt.Errorf("unknown contract source %q", cfg.Contracts.Source)
	}
}
