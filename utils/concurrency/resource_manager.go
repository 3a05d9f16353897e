// Package concurrency implements a resource manager for concurrent operations
// that each need exclusive use of a resource, such as an evaluator with its own buffers.
package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ResourceManager distributes a pool of resources (e.g. shallow copies of an
// evaluator) among concurrent tasks, each task holding one resource for its
// whole duration.
type ResourceManager[T any] struct {
	group     *errgroup.Group
	ctx       context.Context
	resources chan T
}

// NewResourceManager instantiates a new [ResourceManager] over the given resources.
// At most len(resources) tasks run at the same time.
func NewResourceManager[T any](resources []T) *ResourceManager[T] {

	if len(resources) == 0 {
		panic("cannot NewResourceManager: resources must be non-empty")
	}

	pool := make(chan T, len(resources))
	for i := range resources {
		pool <- resources[i]
	}

	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(len(resources))

	return &ResourceManager[T]{
		group:     group,
		ctx:       ctx,
		resources: pool,
	}
}

// Task is a function taking as input a resource for its exclusive use.
type Task[T any] func(resource T) (err error)

// Run schedules f, blocking while every resource is in use.
// Once a [Task] has returned an error, the tasks that have not started are skipped.
func (r *ResourceManager[T]) Run(f Task[T]) {
	r.group.Go(func() error {

		if r.ctx.Err() != nil {
			return nil
		}

		resource := <-r.resources
		defer func() { r.resources <- resource }()

		return f(resource)
	})
}

// Wait waits until all scheduled [Task] have finished and returns
// the first encountered error, if any.
func (r *ResourceManager[T]) Wait() error {
	return r.group.Wait()
}
