package generator

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"reading-hero-service/internal/domain"
)

// Source is implemented by every generator in this package.
type Source interface {
	Generate(ctx context.Context, settings domain.Settings) (domain.QuizDocument, error)
	SuggestTopic(ctx context.Context) (string, error)
}

// Throttled caps the rate of upstream calls shared by all players.
type Throttled struct {
	next    Source
	limiter *rate.Limiter
}

// NewThrottled allows perMinute calls per minute with the given burst.
// A non-positive perMinute disables the limit.
func NewThrottled(next Source, perMinute, burst int) *Throttled {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Generate(ctx context.Context, settings domain.Settings) (domain.QuizDocument, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return domain.QuizDocument{}, &domain.GenerationError{Err: err}
	}
	return t.next.Generate(ctx, settings)
}

func (t *Throttled) SuggestTopic(ctx context.Context) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.next.SuggestTopic(ctx)
}
