package memcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestCache_TTL(t *testing.T) {
	clk := &clock{t: time.Now()}
	c := New[string]("test", time.Minute, 10, WithClock(clk.now))

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "1", v)

	clk.t = clk.t.Add(time.Minute)
	_, ok = c.Get("a")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestCache_EvictsInInsertionOrder(t *testing.T) {
	c := New[int]("test", time.Hour, 3)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// чтение не продлевает жизнь записи
	_, _ = c.Get("a")
	c.Set("d", 4)

	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, 3, c.Len())

	// перезапись переносит ключ в конец очереди
	c.Set("b", 20)
	c.Set("e", 5)
	_, ok = c.Get("c")
	require.False(t, ok)
	v, ok := c.Get("b")
	require.True(t, ok)
	require.Equal(t, 20, v)
}

func TestCache_FetchDedupsConcurrentLoads(t *testing.T) {
	c := New[int]("test", time.Minute, 10)
	var loads atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Fetch(context.Background(), "k", func(context.Context) (int, error) {
				loads.Add(1)
				<-release
				return 42, nil
			})
			require.NoError(t, err)
			require.Equal(t, 42, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), loads.Load())
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestCache_FetchDoesNotCacheErrors(t *testing.T) {
	c := New[int]("test", time.Minute, 10)
	boom := errors.New("boom")

	_, err := c.Fetch(context.Background(), "k", func(context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, c.Len())

	v, err := c.Fetch(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestCache_FetchCallerCancel(t *testing.T) {
	c := New[int]("test", time.Minute, 10)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		<-started
		cancel()
	}()
	_, err := c.Fetch(ctx, "k", func(loadCtx context.Context) (int, error) {
		close(started)
		defer close(done)
		time.Sleep(30 * time.Millisecond)
		require.NoError(t, loadCtx.Err())
		return 1, nil
	})
	require.ErrorIs(t, err, context.Canceled)

	<-done
	require.Eventually(t, func() bool { _, ok := c.Get("k"); return ok }, time.Second, 5*time.Millisecond)
}

func TestCache_PurgeAndDeletePrefix(t *testing.T) {
	clk := &clock{t: time.Now()}
	c := New[int]("test", time.Minute, 10, WithClock(clk.now))
	c.Set("u1:a", 1)
	c.Set("u1:b", 2)
	c.Set("u2:a", 3)
	clk.t = clk.t.Add(30 * time.Second)

	require.Equal(t, 2, c.DeletePrefix("u1:"))
	c.Set("u1:c", 4)
	clk.t = clk.t.Add(45 * time.Second)
	require.Equal(t, 1, c.Purge())
	require.Equal(t, 1, c.Len())
}

func TestCache_FetchOverlappingInvalidateIsNotStored(t *testing.T) {
	c := New[string]("test", time.Minute, 10)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, err := c.Fetch(context.Background(), "fp|shipments|p1", func(context.Context) (string, error) {
			close(started)
			<-release
			return "before-write", nil
		})
		require.NoError(t, err)
		done <- v
	}()

	<-started
	require.Equal(t, 0, c.DeletePrefix("fp|shipments|"))

	// после инвалидации идёт новая загрузка, а не ожидание старой
	v, err := c.Fetch(context.Background(), "fp|shipments|p1", func(context.Context) (string, error) {
		return "after-write", nil
	})
	require.NoError(t, err)
	require.Equal(t, "after-write", v)

	close(release)
	require.Equal(t, "before-write", <-done)

	v, ok := c.Get("fp|shipments|p1")
	require.True(t, ok)
	require.Equal(t, "after-write", v)
}

func TestCache_FetchAfterDeleteSkipsStaleStore(t *testing.T) {
	c := New[int]("test", time.Minute, 10)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), "k", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()

	<-started
	c.Delete("k")
	close(release)
	<-done

	_, ok := c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}
