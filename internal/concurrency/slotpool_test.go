package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlotPool_BoundsConcurrency(t *testing.T) {
	p := NewSlotPool(4)
	var cur, peak atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, ok := p.Acquire(context.Background())
			require.True(t, ok)
			defer release()

			n := cur.Add(1)
			for {
				m := peak.Load()
				if n <= m || peak.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			cur.Add(-1)
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, peak.Load(), int32(4))
}

func TestSlotPool_AcquireRespectsContext(t *testing.T) {
	p := NewSlotPool(1)
	release, ok := p.Acquire(context.Background())
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok = p.Acquire(ctx)
	require.False(t, ok)

	release()
	release() // повторный release не освобождает лишний слот
	r1, ok := p.Acquire(context.Background())
	require.True(t, ok)
	defer r1()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel2()
	_, ok = p.Acquire(ctx2)
	require.False(t, ok)
}
