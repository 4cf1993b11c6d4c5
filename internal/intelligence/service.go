// Package intelligence is the application service over one contract snapshot:
// risk, churn, scenarios, comparison and the revenue engines, plus refresh and
// outreach generation.
package intelligence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/outreach"
	"github.com/wonny/billflow/backend/internal/simrand"
	"github.com/wonny/billflow/backend/pkg/logger"
	"github.com/wonny/billflow/backend/pkg/redis"
)

var (
	// ErrContractNotFound 해당 contract id 없음
	ErrContractNotFound = errors.New("contract not found")
	// ErrActionNotFound 해당 action id 없음
	ErrActionNotFound = errors.New("action not found")
)

// Service serves every read from the current snapshot.
// Refresh는 mutex로 직렬화되고, 스냅샷 교체는 atomic pointer 한 번으로 끝남.
// 기존 reader는 자신이 잡은 스냅샷을 계속 사용
type Service struct {
	store    contracts.Store
	rand     simrand.Source
	now      func() time.Time
	outreach outreach.Generator
	cache    *redis.Cache
	logger   *logger.Logger

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// Option configures a Service
type Option func(*Service)

// WithClock injects the clock used for due dates, signal timestamps and expiry metrics
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandom injects the seeded telemetry stand-in
func WithRandom(src simrand.Source) Option {
	return func(s *Service) { s.rand = src }
}

// WithOutreach sets the outreach generator
func WithOutreach(g outreach.Generator) Option {
	return func(s *Service) { s.outreach = g }
}

// WithCache enables the Redis script cache
func WithCache(c *redis.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service holding an empty snapshot until the first Refresh
func NewService(store contracts.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		rand:     simrand.NewSeeded(),
		now:      time.Now,
		outreach: outreach.Disabled{},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Component("intelligence")
	s.current.Store(newSnapshot(nil, "", s.rand, s.now))
	return s
}

// Snapshot returns the current snapshot (never nil)
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load()
}

// RefreshResult is returned by Refresh
type RefreshResult struct {
	Status          string    `json:"status"`
	SnapshotID      string    `json:"snapshot_id"`
	ContractsLoaded int       `json:"contracts_loaded"`
	LoadedAt        time.Time `json:"loaded_at"`
}

// Refresh reloads contracts through the store and swaps the snapshot.
// On failure the previous snapshot stays current.
func (s *Service) Refresh(ctx context.Context) (RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return RefreshResult{}, fmt.Errorf("refresh: no contract store configured")
	}

	start := time.Now()
	p, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("store", s.store.Name()).Error("Contract refresh failed")
		return RefreshResult{}, fmt.Errorf("refresh from %s: %w", s.store.Name(), err)
	}

	snap := newSnapshot(p, s.store.Name(), s.rand, s.now)
	s.current.Store(snap)

	s.logger.WithFields(map[string]interface{}{
		"store":       s.store.Name(),
		"snapshot_id": snap.ID,
		"contracts":   len(snap.Portfolio),
		"duration":    time.Since(start),
	}).Info("Contract snapshot refreshed")

	return RefreshResult{
		Status:          "refreshed",
		SnapshotID:      snap.ID,
		ContractsLoaded: len(snap.Portfolio),
		LoadedAt:        snap.LoadedAt,
	}, nil
}

func (s *Service) contract(snap *Snapshot, id int) (contracts.Contract, error) {
	c, ok := snap.Portfolio.Find(id)
	if !ok {
		return contracts.Contract{}, fmt.Errorf("%w: %d", ErrContractNotFound, id)
	}
	return c, nil
}
