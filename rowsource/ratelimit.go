package rowsource

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/model"
)

// RateLimited throttles the rows delivered by a source.
type RateLimited struct {
	src     bucket.Source
	limiter *rate.Limiter
}

// WithRateLimit wraps src so that at most rowsPerSecond rows are delivered,
// with bursts of up to burst rows. burst < 1 is treated as 1.
func WithRateLimit(src bucket.Source, rowsPerSecond float64, burst int) *RateLimited {
	return &RateLimited{
		src:     src,
		limiter: rate.NewLimiter(rate.Limit(rowsPerSecond), max(burst, 1)),
	}
}

// Hashtables implements bucket.Source.
func (r *RateLimited) Hashtables(ctx context.Context) ([]model.HashtableID, error) {
	return r.src.Hashtables(ctx)
}

// Scan implements bucket.Source.
func (r *RateLimited) Scan(ctx context.Context, ht model.HashtableID, fn func(model.Row) error) error {
	return r.src.Scan(ctx, ht, func(row model.Row) error {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		return fn(row)
	})
}
