package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/torbar/internal/artifact"
	"github.com/nao1215/torbar/internal/bootstrap"
	"github.com/nao1215/torbar/internal/config"
	"github.com/nao1215/torbar/internal/history"
	"github.com/nao1215/torbar/internal/model"
	"github.com/nao1215/torbar/internal/service"
	"github.com/nao1215/torbar/internal/state"
	"github.com/nao1215/torbar/internal/tor"
)

// ServiceProbe reports whether the Tor service is active.
type ServiceProbe interface {
	IsActive(ctx context.Context) bool
}

// BootstrapProbe reports the bootstrap percentage.
type BootstrapProbe interface {
	Percent(ctx context.Context) int
}

// ConnectivityProbe reports whether egress traffic goes through Tor.
type ConnectivityProbe interface {
	IsTor(ctx context.Context) bool
}

// Artifacts installs and removes the proxy artifacts.
type Artifacts interface {
	Present() bool
	Apply(ctx context.Context) artifact.Result
	Revert(ctx context.Context) artifact.Result
}

// StateStore persists state between invocations.
type StateStore interface {
	Load() model.PersistedState
	Save(st model.PersistedState)
}

// Recorder stores status transitions.
type Recorder interface {
	Record(ctx context.Context, tr model.Transition)
}

// Engine runs one status invocation.
type Engine struct {
	service      ServiceProbe
	bootstrap    BootstrapProbe
	connectivity ConnectivityProbe
	artifacts    Artifacts
	store        StateStore
	recorder     Recorder
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder records every status change. Without it no history is kept.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithClock overrides time.Now for transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine over the given collaborators.
func New(svc ServiceProbe, boot BootstrapProbe, conn ConnectivityProbe, arts Artifacts, store StateStore, opts ...Option) *Engine {
	e := &Engine{
		service:      svc,
		bootstrap:    boot,
		connectivity: conn,
		artifacts:    arts,
		store:        store,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig wires the production probes, artifact manager and state
// store described by cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	svc, err := service.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	checker, err := tor.NewCheckerFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	arts, err := artifact.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithLogger(logger)}
	if cfg.HistoryEnabled {
		opts = append(opts, WithRecorder(history.NewRecorder(cfg.HistoryDir, logger)))
	}
	return New(svc,
		bootstrap.NewJournalProbe(cfg, logger),
		checker,
		arts,
		state.NewStore(cfg.StateFile, logger),
		opts...,
	), nil
}

// Observe queries the probes in order. The bootstrap probe is skipped while
// the service is inactive and the connectivity probe until bootstrap is 100.
func (e *Engine) Observe(ctx context.Context) Observation {
	var obs Observation

	obs.Active = e.service.IsActive(ctx)
	if obs.Active {
		obs.Bootstrap = model.ClampPercent(e.bootstrap.Percent(ctx))
	}
	if obs.Bootstrap == 100 {
		obs.Connected = e.connectivity.IsTor(ctx)
	}
	obs.Present = e.artifacts.Present()

	e.logger.Debug("observed",
		"active", obs.Active,
		"bootstrap", obs.Bootstrap,
		"connected", obs.Connected,
		"present", obs.Present,
	)
	return obs
}

// Run performs a status invocation and returns the record to print.
// It never fails: every probe error has already collapsed to a negative
// observation and artifact errors are logged by the manager.
//
// Design decision: history is recorded before the state is saved and only
// when the status changed. A bar polling every few seconds would otherwise
// write one row per poll.
func (e *Engine) Run(ctx context.Context) model.StatusRecord {
	prev := e.store.Load()
	obs := e.Observe(ctx)

	dec := Decide(obs, prev.ProxyNotified)
	switch dec.Action {
	case model.ActionApply:
		e.artifacts.Apply(ctx)
	case model.ActionRevert:
		e.artifacts.Revert(ctx)
	}

	status := Classify(obs.Active, obs.Bootstrap, obs.Connected)
	if status != prev.Status {
		e.logger.Debug("status changed", "from", prev.Status.String(), "to", status.String(), "action", dec.Action.String())
		if e.recorder != nil {
			e.recorder.Record(ctx, model.Transition{
				Timestamp: e.now(),
				From:      prev.Status,
				To:        status,
				Bootstrap: obs.Bootstrap,
				Action:    dec.Action,
			})
		}
	}

	e.store.Save(model.PersistedState{
		Status:        status,
		Bootstrap:     obs.Bootstrap,
		ProxyNotified: dec.Notified,
	})
	return model.NewStatusRecord(status, obs.Bootstrap)
}
