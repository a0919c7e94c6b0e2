package shell

import (
	"time"

	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// HandlerResult represents the outcome of a command handler execution.
// It captures execution metadata (retry information) without coupling the handler
// to specific observability implementations.
type HandlerResult struct {
	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered during retries.
	// Values: "none" (success), "fetch_failed", "context_canceled", "context_deadline_exceeded", "other"
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached with a retryable error.
	RetriesExhausted bool

	// AuthorCount is the number of authors in the state after the dispatch.
	AuthorCount int

	// BusinessOutcome is StatusSuccess when the dispatch changed the view model, StatusUnchanged otherwise.
	BusinessOutcome string
}

// NewSuccessResult creates a HandlerResult for successful operations.
// prior and next are the states before and after the dispatch.
func NewSuccessResult(retryMetrics RetryMetrics, prior, next *viewmodel.ViewModel) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
		AuthorCount:      next.AuthorCount(),
		BusinessOutcome:  ClassifyBusinessOutcome(prior, next),
	}
}

// NewErrorResult creates a HandlerResult for failed operations.
// This is used when the handler returns an error but still wants to report retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
