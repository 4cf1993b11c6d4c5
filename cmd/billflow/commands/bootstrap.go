package commands

import (
	"context"
	"fmt"

	"github.com/wonny/billflow/backend/internal/intelligence"
	"github.com/wonny/billflow/backend/internal/outreach"
	"github.com/wonny/billflow/backend/internal/store"
	"github.com/wonny/billflow/backend/pkg/config"
	"github.com/wonny/billflow/backend/pkg/logger"
	"github.com/wonny/billflow/backend/pkg/redis"
)

// keyPrefix Redis 키 네임스페이스
const keyPrefix = "billflow"

// app holds the wired dependencies shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	redis   *redis.Client
	limiter *redis.RateLimiter
	opened  *store.Opened
	service *intelligence.Service
}

// loadConfig loads config and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if contractsSource != "" {
		cfg.Contracts.Source = contractsSource
	}
	if contractsPath != "" {
		cfg.Contracts.Path = contractsPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// bootstrap wires config -> logger -> redis -> store -> service and loads the first snapshot.
// quiet: 리포트 커맨드는 stdout 출력과 섞이지 않도록 warn 이상만 로깅
// ⭐ SSOT: 커맨드 공통 의존성 조립은 여기서만
func bootstrap(ctx context.Context, quiet bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if quiet && !verbose {
		cfg.LogLevel = "warn"
	}

	log := logger.New(cfg)

	rc, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	limiter := redis.NewRateLimiter(rc, keyPrefix)

	opened, err := store.Open(ctx, cfg, log, limiter)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("open contract store: %w", err)
	}

	opts := []intelligence.Option{
		intelligence.WithLogger(log),
		intelligence.WithOutreach(outreach.New(cfg.OpenAI, log)),
	}
	if rc.Enabled() {
		opts = append(opts, intelligence.WithCache(redis.NewCache(rc, keyPrefix)))
	}
	svc := intelligence.NewService(opened.Store, opts...)

	a := &app{
		cfg:     cfg,
		log:     log,
		redis:   rc,
		limiter: limiter,
		opened:  opened,
		service: svc,
	}

	if _, err := svc.Refresh(ctx); err != nil {
		a.Close()
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"source":    opened.Store.Name(),
		"contracts": len(svc.Snapshot().Portfolio),
		"redis":     rc.Enabled(),
		"outreach":  cfg.OpenAI.Enabled(),
	}).Debug("Dependencies initialized")

	return a, nil
}

// Close releases the database pool and the redis connection
func (a *app) Close() {
	a.opened.Close()
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}
