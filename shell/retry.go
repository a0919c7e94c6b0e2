package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource"
)

const (
	defaultMaxAttempts  = 4
	defaultBaseDelay    = 25 * time.Millisecond
	defaultJitterFactor = 0.3
	defaultMaxDelay     = 5 * time.Second

	labelAttemptNumber  = "attempt_number"
	labelErrorType      = "error_type"
	labelFinalErrorType = "final_error_type"

	errorTypeNone             = "none"
	errorTypeCanceled         = "context_canceled"
	errorTypeDeadlineExceeded = "context_deadline_exceeded"
	errorTypeFetchFailed      = "fetch_failed"
	errorTypeOther            = "other"
)

var (
	// ErrNilMetricsCollector is returned by WithMetrics for a nil collector.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyCommandType is returned by WithMetrics for an empty command type.
	ErrEmptyCommandType = errors.New("command type must not be empty")

	// ErrInvalidMaxAttempts is returned by WithMaxAttempts for values below one.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned by WithBaseDelay for negative delays.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned by WithJitterFactor outside of [0, 1].
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")

	// ErrInvalidMaxDelay is returned by WithMaxDelay for values below one nanosecond.
	ErrInvalidMaxDelay = errors.New("max delay must be positive")
)

// RetryableFunc is one attempt of a retried operation.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how a retried operation went.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryPolicy) error

type retryPolicy struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
	maxDelay     time.Duration
	collector    MetricsCollector
	commandType  string
}

// RetryWithExponentialBackoff calls fn until it succeeds, fails with an error that is not
// retryable, or maxAttempts calls were made.
//
// Only datasource.ErrFetchFailed is retryable; cancellation and deadline errors never are.
// The wait before attempt n (n >= 1) is baseDelay * 2^(n-1) plus up to jitterFactor of that,
// so the default schedule is 0, 25, 50, 100 ms plus 30% jitter. The doubling stops at maxDelay.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {

	policy := &retryPolicy{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
		maxDelay:     defaultMaxDelay,
	}

	for _, option := range options {
		if err := option(policy); err != nil {
			return RetryMetrics{LastErrorType: errorTypeOf(err)}, err
		}
	}

	var result RetryMetrics
	var err error

	for attempt := 0; attempt < policy.maxAttempts; attempt++ {
		if attempt > 0 {
			wait := policy.backoff(attempt)
			policy.observeDelay(ctx, attempt, wait)

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
				result.TotalDelay += wait
			case <-ctx.Done():
				timer.Stop()
				result.LastErrorType = errorTypeOf(ctx.Err())
				return result, ctx.Err()
			}
		}

		result.Attempts++
		err = fn(ctx)
		result.LastErrorType = errorTypeOf(err)

		if err == nil || !isRetryable(err) {
			return result, err
		}

		if attempt < policy.maxAttempts-1 {
			policy.count(ctx, CommandHandlerRetriesMetric, BuildRetryLabels(policy.commandType, attempt+1, errorTypeOf(err)))
		}
	}

	result.RetriesExhausted = true
	policy.count(ctx, CommandHandlerMaxRetriesReachedMetric, map[string]string{
		LogAttrCommandType:  policy.commandType,
		labelFinalErrorType: errorTypeOf(err),
	})

	return result, err
}

func (p *retryPolicy) backoff(attempt int) time.Duration {
	delay := min(p.baseDelay, p.maxDelay)
	for i := 1; i < attempt && delay < p.maxDelay; i++ {
		if delay > p.maxDelay/2 {
			delay = p.maxDelay
			break
		}
		delay *= 2
	}

	jitter := time.Duration(rand.Float64() * float64(delay) * p.jitterFactor) //nolint:gosec // jitter needs no crypto randomness

	return delay + jitter
}

func (p *retryPolicy) observeDelay(ctx context.Context, attempt int, wait time.Duration) {
	if p.collector == nil {
		return
	}

	labels := map[string]string{
		LogAttrCommandType: p.commandType,
		labelAttemptNumber: strconv.Itoa(attempt),
	}

	if contextual, ok := p.collector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, CommandHandlerRetryDelayMetric, wait, labels)
		return
	}

	p.collector.RecordDuration(CommandHandlerRetryDelayMetric, wait, labels)
}

func (p *retryPolicy) count(ctx context.Context, metric string, labels map[string]string) {
	if p.collector == nil {
		return
	}

	if contextual, ok := p.collector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	p.collector.IncrementCounter(metric, labels)
}

func isRetryable(err error) bool {
	if IsCancellationError(err) || IsTimeoutError(err) {
		return false
	}

	return errors.Is(err, datasource.ErrFetchFailed)
}

func errorTypeOf(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeDeadlineExceeded
	case errors.Is(err, datasource.ErrFetchFailed):
		return errorTypeFetchFailed
	default:
		return errorTypeOther
	}
}

// WithMaxAttempts sets how many times fn is called at most, including the first call.
func WithMaxAttempts(attempts int) RetryOption {
	return func(p *retryPolicy) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the wait before the first retry. Every further retry doubles it.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(p *retryPolicy) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}
		p.baseDelay = delay

		return nil
	}
}

// WithMaxDelay caps the backoff delay before jitter is added.
func WithMaxDelay(delay time.Duration) RetryOption {
	return func(p *retryPolicy) error {
		if delay <= 0 {
			return ErrInvalidMaxDelay
		}
		p.maxDelay = delay

		return nil
	}
}

// WithJitterFactor sets the random extra wait as a fraction of the backoff delay.
func WithJitterFactor(factor float64) RetryOption {
	return func(p *retryPolicy) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}
		p.jitterFactor = factor

		return nil
	}
}

// WithMetrics records retry delays, retries and exhaustion, labelled with commandType.
func WithMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(p *retryPolicy) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}
		if commandType == "" {
			return ErrEmptyCommandType
		}
		p.collector = collector
		p.commandType = commandType

		return nil
	}
}
