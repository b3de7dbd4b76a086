package ledger

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// resilience wraps every outbound RPC in a circuit breaker keyed by RPC
// name, exponential-backoff retry bounded by connectTimeout for retryable
// transport failures, and a per-method rate limiter that caps retry
// traffic against a downed ledger.
type resilience struct {
	connectTimeout time.Duration
	breakers       map[string]*gobreaker.CircuitBreaker
	limiters       map[string]*rate.Limiter
}

func newResilience(connectTimeout time.Duration, methods []string) *resilience {
	r := &resilience{
		connectTimeout: connectTimeout,
		breakers:       make(map[string]*gobreaker.CircuitBreaker, len(methods)),
		limiters:       make(map[string]*rate.Limiter, len(methods)),
	}
	for _, name := range methods {
		r.breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    0,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
		r.limiters[name] = rate.NewLimiter(rate.Limit(10), 10)
	}
	return r
}

// call executes fn through the circuit breaker and retry policy for the
// named RPC.
func (r *resilience) call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	breaker := r.breakers[name]
	limiter := r.limiters[name]

	_, err := breaker.Execute(func() (any, error) {
		return nil, r.retry(ctx, limiter, fn)
	})
	return err
}

func (r *resilience) retry(ctx context.Context, limiter *rate.Limiter, fn func(ctx context.Context) error) error {
	bo := backoff.WithContext(backoff.WithMaxElapsedTime(backoff.NewExponentialBackOff(), r.connectTimeout), ctx)

	operation := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		if limiter != nil && !limiter.Allow() {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(operation, bo)
}

// isRetryable reports whether err is a transport-level failure worth
// retrying (connection reset, dial error, codes.Unavailable), as opposed to
// a non-retryable server error (PermissionDenied, NotFound, InvalidArgument)
// that must surface immediately per spec.md §5.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		// Not a gRPC status: a dial error or connection reset surfaces as a
		// plain transport error and is retryable.
		return true
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
		return true
	default:
		return false
	}
}
