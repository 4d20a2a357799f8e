// Package connectivity answers whether the backend can currently be reached.
package connectivity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/pkg/clients/api"
)

// HealthChecker pings the backend.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Rebaser re-resolves the backend address and reports whether it changed.
type Rebaser interface {
	Rebase(ctx context.Context) bool
}

// Probe reports the backend as online when its health endpoint answers.
// Any HTTP response counts, including errors: the network path works.
type Probe struct {
	checker HealthChecker
	rebaser Rebaser
	timeout time.Duration
	logger  *zap.Logger
}

// NewProbe builds a probe bounded by timeout per check; zero means the caller's context only.
func NewProbe(checker HealthChecker, timeout time.Duration, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{checker: checker, timeout: timeout, logger: logger}
}

// SetRebaser lets the probe try other backend addresses when the current one is down.
func (p *Probe) SetRebaser(r Rebaser) {
	p.rebaser = r
}

// Online reports whether the backend answered, switching to another backend
// address first if the current one did not.
func (p *Probe) Online(ctx context.Context) bool {
	if p.check(ctx) {
		return true
	}
	if p.rebaser == nil || !p.rebaser.Rebase(ctx) {
		return false
	}
	return p.check(ctx)
}

func (p *Probe) check(ctx context.Context) bool {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := p.checker.Health(ctx)
	if err == nil {
		return true
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		p.logger.Debug("backend answered health check with an error", zap.Int("status", apiErr.Status))
		return true
	}

	p.logger.Debug("backend unreachable", zap.Error(err))
	return false
}
