package concurrency

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// SlotPool — ресурс с конечной ёмкостью. Acquire ждёт свободный слот или
// отмену ctx; release нужно вызвать ровно один раз.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

type semPool struct {
	sem *semaphore.Weighted
}

func NewSlotPool(size int) SlotPool {
	if size <= 0 {
		size = 1
	}
	return &semPool{sem: semaphore.NewWeighted(int64(size))}
}

func (p *semPool) Acquire(ctx context.Context) (func(), bool) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { p.sem.Release(1) }) }, true
}
