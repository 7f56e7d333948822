package workers

import (
	"bate-papo/observability"
	"context"
	"log/slog"
	"time"
)

const DefaultSweepInterval = 15 * time.Second

// Sweeper evicts the participants that stopped sending heartbeats.
type Sweeper interface {
	RunExpirySweep(ctx context.Context, now time.Time) []string
}

// ExpirySweepWorker runs the expiry sweep on a fixed interval,
// independently of incoming requests.
type ExpirySweepWorker struct {
	log      *slog.Logger
	sweeper  Sweeper
	interval time.Duration
	now      func() time.Time
	metrics  *observability.Metrics
}

type SweepOption func(*ExpirySweepWorker)

func WithSweepMetrics(metrics *observability.Metrics) SweepOption {
	return func(w *ExpirySweepWorker) {
		w.metrics = metrics
	}
}

func NewExpirySweepWorker(log *slog.Logger, sweeper Sweeper, interval time.Duration, opts ...SweepOption) *ExpirySweepWorker {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	w := &ExpirySweepWorker{
		log:      log,
		sweeper:  sweeper,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run sweeps once per tick until ctx is canceled.
func (w *ExpirySweepWorker) Run(ctx context.Context) error {
	w.log.Info("Starting expiry sweep worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			expired := w.sweeper.RunExpirySweep(ctx, w.now())
			if w.metrics != nil {
				w.metrics.ObserveSweep(len(expired), time.Since(start).Seconds())
			}
			if len(expired) > 0 {
				w.log.Debug("Sweep tick evicted participants", "count", len(expired))
			}
		}
	}
}
