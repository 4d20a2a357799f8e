package api

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ResolveBaseURL returns the first candidate whose health endpoint answers within
// timeout. Any HTTP response counts as reachable. When none answer, the last
// candidate is returned so the public address is used by default.
func ResolveBaseURL(ctx context.Context, candidates []string, timeout time.Duration, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	probe := resty.New().SetTimeout(timeout)

	for _, candidate := range candidates {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		_, err := probe.R().SetContext(probeCtx).Get(strings.TrimSuffix(candidate, "/") + healthPath)
		cancel()

		if err == nil {
			logger.Info("backend reachable", zap.String("base_url", candidate))
			return candidate
		}
		logger.Debug("backend candidate unreachable", zap.String("base_url", candidate), zap.Error(err))
	}

	fallback := candidates[len(candidates)-1]
	logger.Warn("no backend candidate answered, using fallback", zap.String("base_url", fallback))
	return fallback
}

// Rebaser re-runs base URL resolution for a client, e.g. once the backend it
// was pointed at stops answering.
type Rebaser struct {
	client     *Client
	candidates []string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewRebaser builds a Rebaser over the same candidates used at startup.
func NewRebaser(client *Client, candidates []string, timeout time.Duration, logger *zap.Logger) *Rebaser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rebaser{client: client, candidates: candidates, timeout: timeout, logger: logger}
}

// Rebase points the client at the first reachable candidate and reports
// whether its base URL changed.
func (r *Rebaser) Rebase(ctx context.Context) bool {
	current := r.client.BaseURL()
	next := strings.TrimSuffix(ResolveBaseURL(ctx, r.candidates, r.timeout, r.logger), "/")
	if next == "" || next == current {
		return false
	}

	r.client.SetBaseURL(next)
	r.logger.Info("backend base URL switched", zap.String("from", current), zap.String("to", next))
	return true
}
