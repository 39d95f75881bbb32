package async

import (
	"context"
	"fmt"
)

// Task is a named operation.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks concurrently and waits for all of them. The
// first error received is returned wrapped with its task name; the
// remaining errors are dropped.
//
// Example:
//
//	var latest, id uint64
//	err := RunParallel(ctx, []Task{
//	    {Name: "latest block", Func: func(ctx context.Context) (err error) { latest, err = probe.LatestBlockNumber(ctx, ep); return }},
//	    {Name: "chain id", Func: func(ctx context.Context) (err error) { id, err = probe.ChainID(ctx, ep); return }},
//	})
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	results := make(chan result, len(tasks))
	for _, task := range tasks {
		go func() {
			results <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var firstErr error
	for range len(tasks) {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", res.name, res.err)
		}
	}
	return firstErr
}
