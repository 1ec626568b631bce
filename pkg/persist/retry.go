package persist

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kgraph-io/kgraph/pkg/alert"
	"github.com/kgraph-io/kgraph/pkg/config"
	"github.com/kgraph-io/kgraph/pkg/store"
	"github.com/kgraph-io/kgraph/pkg/types"
)

// RetryFlusher wraps a Flusher with bounded retries and an optional
// circuit breaker. Retried flushes still complete before the wrapped
// call returns, so mutations remain durable on success. When the
// breaker is open the flush fails immediately and an alert is raised
// on the state change.
type RetryFlusher struct {
	inner      store.Flusher
	maxRetries int
	backoff    time.Duration
	cb         *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewRetryFlusher wraps inner according to cfg. With a disabled
// breaker and zero retries the wrapper is a transparent pass-through.
func NewRetryFlusher(inner store.Flusher, cfg config.FlushConfig, alerter alert.Alerter, logger *slog.Logger) *RetryFlusher {
	if logger == nil {
		logger = slog.Default()
	}
	if alerter == nil {
		alerter = &alert.NoOpAlerter{}
	}

	f := &RetryFlusher{
		inner:      inner,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMillis) * time.Millisecond,
		logger:     logger,
	}

	if cfg.Breaker.Enabled {
		st := gobreaker.Settings{
			Name:        "flush",
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    time.Duration(cfg.Breaker.Interval) * time.Second,
			Timeout:     time.Duration(cfg.Breaker.Timeout) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= cfg.Breaker.ReadyToTripRatio
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("flush breaker state change", "from", from.String(), "to", to.String())
				if to == gobreaker.StateOpen {
					msg := fmt.Sprintf("Circuit breaker %q changed from %s to %s. Graph mutations are no longer being persisted.", name, from, to)
					if err := alerter.Alert("URGENT: persistence circuit breaker tripped", msg); err != nil {
						logger.Error("failed to send breaker alert", "error", err)
					}
				}
			},
		}
		f.cb = gobreaker.NewCircuitBreaker(st)
	}

	return f
}

// Flush implements store.Flusher.
func (f *RetryFlusher) Flush(snapshot types.Snapshot) error {
	if f.cb == nil {
		return f.flushWithRetry(snapshot)
	}

	_, err := f.cb.Execute(func() (interface{}, error) {
		return nil, f.flushWithRetry(snapshot)
	})
	return err
}

func (f *RetryFlusher) flushWithRetry(snapshot types.Snapshot) error {
	var err error
	backoff := f.backoff

	for attempt := 0; ; attempt++ {
		err = f.inner.Flush(snapshot)
		if err == nil {
			return nil
		}
		if attempt >= f.maxRetries {
			break
		}
		f.logger.Warn("flush failed, retrying",
			"attempt", attempt+1,
			"max_retries", f.maxRetries,
			"backoff", backoff,
			"error", err)
		time.Sleep(backoff)
		backoff *= 2
	}

	return fmt.Errorf("flush failed after %d attempts: %w", f.maxRetries+1, err)
}
