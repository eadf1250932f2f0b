package source

import (
	"context"
	"errors"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.uber.org/zap"
)

// ResilienceConfig configures retries and the circuit breaker around a source.
type ResilienceConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// The breaker opens after FailureThreshold failures within the last
	// FailureWindow calls and stays open for OpenDelay.
	FailureThreshold uint
	FailureWindow    uint
	OpenDelay        time.Duration
}

func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxRetries:       2,
		BaseDelay:        100 * time.Millisecond,
		MaxDelay:         2 * time.Second,
		FailureThreshold: 5,
		FailureWindow:    10,
		OpenDelay:        15 * time.Second,
	}
}

// Resilient retries transient source failures and stops calling a source
// that keeps failing.
type Resilient struct {
	name     string
	next     domain.SourceHandler
	breaker  circuitbreaker.CircuitBreaker[[]domain.RawResult]
	executor failsafe.Executor[[]domain.RawResult]
}

func NewResilient(name string, next domain.SourceHandler, cfg ResilienceConfig, logger *zap.Logger) *Resilient {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.FailureWindow == 0 {
		cfg.FailureWindow = 10
	}
	if cfg.FailureThreshold == 0 || cfg.FailureThreshold > cfg.FailureWindow {
		cfg.FailureThreshold = cfg.FailureWindow
	}
	if cfg.OpenDelay <= 0 {
		cfg.OpenDelay = 15 * time.Second
	}

	retry := retrypolicy.NewBuilder[[]domain.RawResult]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(_ []domain.RawResult, err error) bool { return retryable(err) }).
		ReturnLastFailure().
		Build()

	breaker := circuitbreaker.NewBuilder[[]domain.RawResult]().
		WithFailureThresholdRatio(cfg.FailureThreshold, cfg.FailureWindow).
		WithDelay(cfg.OpenDelay).
		WithSuccessThreshold(1).
		HandleIf(func(_ []domain.RawResult, err error) bool { return retryable(err) }).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			logger.Warn("source circuit breaker state change",
				zap.String("source", name),
				zap.String("from", stateName(e.OldState)),
				zap.String("to", stateName(e.NewState)),
			)
		}).
		Build()

	return &Resilient{
		name:     name,
		next:     next,
		breaker:  breaker,
		executor: failsafe.With[[]domain.RawResult](retry, breaker),
	}
}

func (r *Resilient) Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.RawResult, error) {
	return r.executor.WithContext(ctx).Get(func() ([]domain.RawResult, error) {
		return r.next.Query(ctx, text, opts)
	})
}

// Open reports whether calls are currently being rejected.
func (r *Resilient) Open() bool {
	return r.breaker.IsOpen()
}

// retryable rejects caller mistakes and cancellations; everything else is
// treated as transient.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, service.ErrInvalidArgument) ||
		errors.Is(err, circuitbreaker.ErrOpen) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func stateName(s circuitbreaker.State) string {
	switch s {
	case circuitbreaker.OpenState:
		return "open"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	default:
		return "closed"
	}
}
