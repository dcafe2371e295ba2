package reliability

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aashari/go-generative-gateway/internal/logger"
)

// RetryConfig defines configuration for retry behavior
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64

	// Retryable decides whether a failed attempt is worth repeating.
	// A nil predicate retries nothing.
	Retryable func(error) bool

	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the backoff used for backend dispatch.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryExecutor handles retry logic with exponential backoff
type RetryExecutor struct {
	config RetryConfig
}

// NewRetryExecutor creates a new retry executor with the given configuration
func NewRetryExecutor(config RetryConfig) *RetryExecutor {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	return &RetryExecutor{config: config}
}

// ExecuteWithRetry runs operation until it succeeds, returns a non-retryable
// error, runs out of attempts, or ctx is done. The last error is returned
// wrapped so errors.Is/As still see the cause.
func (r *RetryExecutor) ExecuteWithRetry(ctx context.Context, operation func(ctx context.Context) error) error {
	ctx = logger.WithComponent(ctx, logger.ComponentNames.Retry)
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info(ctx, "Operation succeeded after retry", "successful_attempt", attempt)
			}
			return nil
		}
		lastErr = err

		if !r.isRetryable(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			logger.Warn(ctx, "Max retry attempts reached",
				"max_attempts", r.config.MaxAttempts,
				"error_message", err.Error())
			break
		}

		delay := r.calculateBackoff(attempt)
		logger.Warn(logger.WithStage(ctx, logger.LogStages.Retry), "Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", r.config.MaxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error_message", err.Error())
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted after %d attempts: %w", attempt, lastErr)
		}
	}

	if r.config.MaxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("operation failed after %d attempts: %w", r.config.MaxAttempts, lastErr)
}

// calculateBackoff calculates the backoff delay for a given attempt
func (r *RetryExecutor) calculateBackoff(attempt int) time.Duration {
	// delay = initialDelay * factor^(attempt-1), capped at MaxDelay
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))
	if r.config.MaxDelay > 0 && time.Duration(delay) > r.config.MaxDelay {
		return r.config.MaxDelay
	}
	return time.Duration(delay)
}

func (r *RetryExecutor) isRetryable(err error) bool {
	return err != nil && r.config.Retryable != nil && r.config.Retryable(err)
}
