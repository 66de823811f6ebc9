// Package upstream guards outbound calls to TMDB and AniList with a circuit
// breaker and an optional request-rate limiter.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

const (
	defaultFailureThreshold = 3
	defaultOpenTimeout      = 30 * time.Second
)

// Options configures a Guard. RequestsPerMinute <= 0 disables pacing.
type Options struct {
	Name              string
	FailureThreshold  int
	OpenTimeout       time.Duration
	RequestsPerMinute int
	Logger            *slog.Logger
}

// Guard serializes the protections every upstream request passes through.
type Guard struct {
	name    string
	breaker *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
}

// NewGuard builds a Guard from opts, filling defaults for unset fields.
func NewGuard(opts Options) *Guard {
	threshold := opts.FailureThreshold
	if threshold <= 0 {
		threshold = defaultFailureThreshold
	}
	timeout := opts.OpenTimeout
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}
	logger := logging.NewComponentLogger(opts.Logger, "upstream")

	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(logger, "circuit opened", "breaker_open",
					logging.String("upstream", name),
					logging.String("from", from.String()),
					logging.String(logging.FieldErrorHint, "check network connectivity and API credentials"),
					logging.String(logging.FieldImpact, "requests fail fast until the breaker half-opens"),
				)
				return
			}
			logger.Debug("circuit state changed",
				logging.String("upstream", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
	}

	g := &Guard{
		name:    opts.Name,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
	if opts.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return g
}

// countsAsSuccess keeps caller-side outcomes from tripping the breaker:
// empty result sets, rejected credentials, bad requests and cancellations
// say nothing about upstream health.
func countsAsSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, services.ErrNoResults) ||
		errors.Is(err, services.ErrConfiguration) ||
		errors.Is(err, services.ErrValidation) ||
		errors.Is(err, context.Canceled)
}

// State reports the breaker state name (closed, half-open, open).
func (g *Guard) State() string {
	if g == nil {
		return gobreaker.StateClosed.String()
	}
	return g.breaker.State().String()
}

// Do runs fn once pacing allows and the breaker is closed or half-open.
func (g *Guard) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := Call(ctx, g, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Call runs fn through g and returns its typed result. A nil Guard calls fn
// directly.
func Call[T any](ctx context.Context, g *Guard, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if g == nil {
		return fn(ctx)
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return zero, fmt.Errorf("%s rate limit wait: %w", g.name, err)
		}
	}
	result, err := g.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s circuit %s: %w", services.ErrUpstreamUnavailable, g.name, g.breaker.State(), err)
		}
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}
