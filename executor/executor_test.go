package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executors(t *testing.T) map[string]Executor {
	pool := NewPool(3)
	t.Cleanup(pool.Close)
	return map[string]Executor{
		"sequential": Sequential{},
		"group":      Group{Limit: 2},
		"pool":       pool,
	}
}

func TestMap_CollectsResultsAndErrors(t *testing.T) {
	errOdd := errors.New("odd")

	for name, ex := range executors(t) {
		t.Run(name, func(t *testing.T) {
			items := []int{0, 1, 2, 3, 4, 5}
			res, errs := Map(context.Background(), ex, items, func(_ context.Context, v int) (int, error) {
				if v%2 == 1 {
					return 0, errOdd
				}
				return v * 10, nil
			})

			assert.Equal(t, []int{0, 0, 20, 0, 40, 0}, res)
			assert.Equal(t, []int{1, 3, 5}, Failed(errs))
			for _, i := range Failed(errs) {
				assert.ErrorIs(t, errs[i], errOdd)
			}
		})
	}
}

func TestRun_PanicIsReportedPerTask(t *testing.T) {
	for name, ex := range executors(t) {
		t.Run(name, func(t *testing.T) {
			var ran atomic.Int32
			errs := ex.Run(context.Background(), 4, func(_ context.Context, i int) error {
				ran.Add(1)
				if i == 2 {
					panic("boom")
				}
				return nil
			})

			assert.Equal(t, int32(4), ran.Load())
			assert.Equal(t, []int{2}, Failed(errs))
			var pe *PanicError
			require.ErrorAs(t, errs[2], &pe)
			assert.Equal(t, "boom", pe.Value)
		})
	}
}

func TestRun_CancelledSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Int32
	errs := Sequential{}.Run(ctx, 5, func(_ context.Context, i int) error {
		ran.Add(1)
		if i == 1 {
			cancel()
		}
		return nil
	})

	assert.Equal(t, int32(2), ran.Load())
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	for _, err := range errs[2:] {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestGroup_RespectsLimit(t *testing.T) {
	var active, peak atomic.Int32
	Group{Limit: 2}.Run(context.Background(), 8, func(context.Context, int) error {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return nil
	})
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := NewPool(1)
	p.Close()
	p.Close()

	err := p.Submit(context.Background(), func() {})
	require.ErrorIs(t, err, ErrPoolClosed)

	errs := p.Run(context.Background(), 2, func(context.Context, int) error { return nil })
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrPoolClosed)
	}
}
