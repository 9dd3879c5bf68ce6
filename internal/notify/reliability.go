package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type ReliabilityOptions struct {
	RatePerSecond float64
	Burst         int
	Attempts      uint
	CallTimeout   time.Duration

	CBMaxRequests uint32
	CBInterval    time.Duration
	CBTimeout     time.Duration
}

// ReliableSender wraps a Sender with a rate limiter, a circuit breaker and retries.
type ReliableSender struct {
	next    Sender
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	opts    ReliabilityOptions
}

func NewReliableSender(next Sender, opts ReliabilityOptions, m *metrics.Metrics) *ReliableSender {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 2 // Resend default account limit
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	if opts.CBTimeout <= 0 {
		opts.CBTimeout = 30 * time.Second
	}
	if m == nil {
		m = metrics.New(nil)
	}

	const name = "mail-provider"
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: opts.CBMaxRequests,
		Interval:    opts.CBInterval,
		Timeout:     opts.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// a rejected address says nothing about provider health
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
		OnStateChange: func(_ string, _, to gobreaker.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &ReliableSender{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		opts:    opts,
	}
}

func (s *ReliableSender) Send(ctx context.Context, msg Message) (string, error) {
	// 1. Rate limiter
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	// 2. Circuit breaker around the retry loop
	res, err := s.cb.Execute(func() (interface{}, error) {
		var id string
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(s.opts.Attempts),
			retry.RetryIf(retryable),
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				var tErr *ThrottleError
				if errors.As(err, &tErr) {
					return tErr.RetryAfter
				}
				return retry.BackOffDelay(n, err, config)
			}),
		)

		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
			defer cancel()

			var callErr error
			id, callErr = s.next.Send(tCtx, msg)
			return callErr
		})
		return id, retryErr
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}
