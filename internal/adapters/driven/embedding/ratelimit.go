// Package embedding provides decorators shared by the embedding adapters.
package embedding

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
)

// Ensure RateLimitedService implements the interface.
var _ driven.EmbeddingService = (*RateLimitedService)(nil)

// RateLimitedService throttles an EmbeddingService with a token bucket so
// that concurrent reindexing cannot flood the provider. It performs no
// retries - a rate-limit rejection from the provider still surfaces to the
// caller as an EmbeddingError from the wrapped service.
type RateLimitedService struct {
	inner  driven.EmbeddingService
	bucket *rate.Limiter
}

// RateLimited wraps svc so that at most rps embedding requests per second
// are issued, with bursts of up to burst. A non-positive rps disables
// throttling and returns svc unchanged.
func RateLimited(svc driven.EmbeddingService, rps float64, burst int) driven.EmbeddingService {
	if rps <= 0 {
		return svc
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedService{
		inner:  svc,
		bucket: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for bucket capacity, then delegates.
func (s *RateLimitedService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.bucket.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch consumes one token per text, then delegates.
// Tokens are taken one at a time so batches larger than the burst size
// still pass, just paced.
func (s *RateLimitedService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for range texts {
		if err := s.bucket.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (s *RateLimitedService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *RateLimitedService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates without consuming bucket capacity.
func (s *RateLimitedService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *RateLimitedService) Close() error {
	return s.inner.Close()
}
