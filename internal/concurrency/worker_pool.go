package concurrency

import (
	"context"
	"sync"
)

// WorkerFn handles the task at index. It should honour ctx cancellation.
type WorkerFn func(ctx context.Context, index int)

// SimpleWorkerPool runs fn once for every index in [0, tasks) using at most
// concurrency goroutines, and returns when all tasks finished. Tasks not yet
// started when ctx is cancelled are skipped.
func SimpleWorkerPool(ctx context.Context, concurrency int, tasks int, fn WorkerFn) {
	if tasks <= 0 {
		return
	}
	if concurrency <= 0 || concurrency > tasks {
		concurrency = tasks
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fn(ctx, idx)
			}
		}()
	}

feed:
	for i := 0; i < tasks && ctx.Err() == nil; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}
