// Package controller implements the click action of the bar module: it
// flips the Tor service and installs or removes the proxy artifacts to
// match, reporting the outcome as a desktop notification.
package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/torbar/internal/artifact"
	"github.com/nao1215/torbar/internal/config"
	"github.com/nao1215/torbar/internal/notify"
	"github.com/nao1215/torbar/internal/service"
)

// Notification texts.
const (
	SummaryDisabled = "🔓 Tor Disabled"
	BodyDisabled    = "Proxy settings removed"
	SummaryEnabled  = "🔒 Tor Enabled"
	BodyEnabled     = "Proxy configured - restart apps to apply"
	SummaryFailed   = "❌ Tor Toggle Failed"
)

// notifyExpire is how long toggle notifications stay on screen.
const notifyExpire = 3 * time.Second

// Artifacts installs and removes the proxy artifacts.
type Artifacts interface {
	Apply(ctx context.Context) artifact.Result
	Revert(ctx context.Context) artifact.Result
}

// Controller toggles the service. It never touches the persisted state;
// the next status run observes the new situation on its own.
type Controller struct {
	service   service.Manager
	artifacts Artifacts
	notifier  notify.Notifier
	logger    *slog.Logger
}

// New returns a Controller.
func New(svc service.Manager, arts Artifacts, notifier notify.Notifier, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{service: svc, artifacts: arts, notifier: notifier, logger: logger}
}

// NewFromConfig wires the production service manager, artifact manager and
// desktop notifier.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Controller, error) {
	svc, err := service.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	arts, err := artifact.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(svc, arts, notify.New(cfg.NotifyTimeout, logger), logger), nil
}

// Toggle stops a running service and removes the artifacts, or starts a
// stopped one and installs them. The returned error is the one reported to
// the user, if any.
func (c *Controller) Toggle(ctx context.Context) error {
	if c.service.IsActive(ctx) {
		return c.disable(ctx)
	}
	return c.enable(ctx)
}

func (c *Controller) disable(ctx context.Context) error {
	c.logger.Debug("stopping tor")
	if err := c.service.Stop(ctx); err != nil {
		c.fail(ctx, err)
		return err
	}
	res := c.artifacts.Revert(ctx)
	if err := res.Err(); err != nil {
		// The service is already down; the next status run retries the
		// leftovers, so only the log hears about it.
		c.logger.Warn("proxy settings partially removed", "failed", res.Failed(), "error", err)
		return nil
	}
	c.send(ctx, notify.Notification{
		Summary: SummaryDisabled,
		Body:    BodyDisabled,
		Urgency: notify.UrgencyNormal,
		Expire:  notifyExpire,
	})
	return nil
}

func (c *Controller) enable(ctx context.Context) error {
	c.logger.Debug("starting tor")
	if err := c.service.Start(ctx); err != nil {
		c.fail(ctx, err)
		return err
	}
	res := c.artifacts.Apply(ctx)
	if err := res.Err(); err != nil {
		c.fail(ctx, err)
		return err
	}
	c.send(ctx, notify.Notification{
		Summary: SummaryEnabled,
		Body:    BodyEnabled,
		Urgency: notify.UrgencyNormal,
		Expire:  notifyExpire,
	})
	return nil
}

func (c *Controller) fail(ctx context.Context, err error) {
	c.logger.Warn("toggle failed", "error", err)
	c.send(ctx, notify.Notification{
		Summary: SummaryFailed,
		Body:    err.Error(),
		Urgency: notify.UrgencyCritical,
		Expire:  notifyExpire,
	})
}

func (c *Controller) send(ctx context.Context, n notify.Notification) {
	if err := c.notifier.Notify(ctx, n); err != nil {
		c.logger.Debug("notification not delivered", "summary", n.Summary, "error", err)
	}
}
