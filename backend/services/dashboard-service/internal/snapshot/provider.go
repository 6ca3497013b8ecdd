package snapshot

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"brewdash/backend/services/dashboard-service/internal/models"
)

const (
	defaultInterval       = time.Second
	defaultRefreshTimeout = 30 * time.Second
	flightKey             = "snapshot"
)

// Source generates a fresh snapshot.
type Source interface {
	Load(ctx context.Context) (*models.Snapshot, error)
}

// Provider serves the current snapshot, regenerating it once it is older than the
// interval. A stale snapshot keeps serving while one background regeneration runs.
type Provider struct {
	source         Source
	store          Store
	interval       time.Duration
	refreshTimeout time.Duration
	logger         *zap.Logger
	group          singleflight.Group
	refreshing     atomic.Bool
	now            func() time.Time
}

// NewProvider wires a provider.
func NewProvider(source Source, store Store, interval time.Duration, logger *zap.Logger) *Provider {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Provider{
		source:         source,
		store:          store,
		interval:       interval,
		refreshTimeout: defaultRefreshTimeout,
		logger:         logger,
		now:            time.Now,
	}
}

// Current returns the snapshot to render. It only fails when no usable snapshot
// exists and generating one fails.
func (p *Provider) Current(ctx context.Context) (*models.Snapshot, error) {
	snap, err := p.store.Get(ctx)
	if err != nil {
		p.logger.Warn("snapshot store read failed", zap.Error(err))
		snap = nil
	}

	now := p.now()
	if snap == nil || snap.TokenExpired(now) {
		return p.regenerate(ctx)
	}
	if now.Sub(snap.GeneratedAt) >= p.interval {
		p.refreshInBackground()
	}
	return snap, nil
}

func (p *Provider) regenerate(ctx context.Context) (*models.Snapshot, error) {
	v, err, _ := p.group.Do(flightKey, func() (interface{}, error) {
		// Shared by every waiter, so one caller going away must not cancel it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.refreshTimeout)
		defer cancel()

		snap, err := p.source.Load(ctx)
		if err != nil {
			return nil, err
		}
		if err := p.store.Save(ctx, snap); err != nil {
			p.logger.Warn("snapshot store write failed", zap.Error(err))
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Snapshot), nil
}

func (p *Provider) refreshInBackground() {
	if !p.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer p.refreshing.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), p.refreshTimeout)
		defer cancel()
		if _, err := p.regenerate(ctx); err != nil {
			p.logger.Warn("background snapshot regeneration failed, serving stale snapshot", zap.Error(err))
		}
	}()
}
