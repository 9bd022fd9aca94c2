package agent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// FallbackAnswer is shown when the pipeline keeps failing. The retry
// path never surfaces a raw error to the HTTP layer.
const FallbackAnswer = "Sorry, the service is unavailable right now. Please try again later."

const maxAttempts = 3

// Answerer is what the Retrier wraps; *Agent satisfies it.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Retrier retries the pipeline up to maxAttempts times with exponential
// backoff and no jitter: 1s after the first failure, 2s after the
// second.
type Retrier struct {
	pipeline   Answerer
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

func NewRetrier(pipeline Answerer) *Retrier {
	return &Retrier{
		pipeline: pipeline,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.Multiplier = 2
			b.RandomizationFactor = 0
			b.MaxElapsedTime = 0
			return b
		},
		logger: slog.Default(),
	}
}

// Answer always produces a displayable string: the model's reply on
// success, FallbackAnswer once the attempts are exhausted or the error
// is not worth retrying.
func (r *Retrier) Answer(ctx context.Context, question string) string {
	var answer string
	operation := func() error {
		out, err := r.pipeline.Answer(ctx, question)
		if err != nil {
			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		answer = out
		return nil
	}

	b := backoff.WithMaxRetries(r.newBackOff(), maxAttempts-1)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		r.logger.Error("error during API call", "error", err)
		return FallbackAnswer
	}
	return answer
}

// isPermanent reports whether the error is a client-side API error that
// a retry cannot fix. Rate limits (429) stay retryable.
func isPermanent(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusBadRequest &&
			apiErr.StatusCode < http.StatusInternalServerError &&
			apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}
