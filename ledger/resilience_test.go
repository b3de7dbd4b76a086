package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsRetryableClassifiesTransportFailures(t *testing.T) {
	assert.True(t, isRetryable(status.Error(codes.Unavailable, "down")))
	assert.True(t, isRetryable(status.Error(codes.DeadlineExceeded, "timeout")))
	assert.True(t, isRetryable(status.Error(codes.Aborted, "conflict")))
	assert.True(t, isRetryable(errors.New("connection reset by peer")))
}

func TestIsRetryableRejectsNonRetryableStatuses(t *testing.T) {
	assert.False(t, isRetryable(status.Error(codes.PermissionDenied, "no")))
	assert.False(t, isRetryable(status.Error(codes.NotFound, "no")))
	assert.False(t, isRetryable(status.Error(codes.InvalidArgument, "no")))
	assert.False(t, isRetryable(nil))
}

func TestResilienceCallSucceedsWithoutRetryOnNil(t *testing.T) {
	r := newResilience(time.Second, []string{"Submit"})
	calls := 0
	err := r.call(context.Background(), "Submit", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestResilienceCallRetriesRetryableFailureUntilSuccess(t *testing.T) {
	r := newResilience(5*time.Second, []string{"Submit"})
	calls := 0
	err := r.call(context.Background(), "Submit", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return status.Error(codes.Unavailable, "down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestResilienceCallDoesNotRetryNonRetryableFailure(t *testing.T) {
	r := newResilience(5*time.Second, []string{"Submit"})
	calls := 0
	err := r.call(context.Background(), "Submit", func(ctx context.Context) error {
		calls++
		return status.Error(codes.InvalidArgument, "bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestResilienceCallStopsRetryingWhenRateLimited(t *testing.T) {
	r := newResilience(5*time.Second, []string{"Submit"})
	// Exhaust the method's burst allowance so the next Allow() call fails.
	limiter := r.limiters["Submit"]
	for limiter.Allow() {
	}

	calls := 0
	err := r.call(context.Background(), "Submit", func(ctx context.Context) error {
		calls++
		return status.Error(codes.Unavailable, "down")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
