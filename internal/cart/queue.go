package cart

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("cart synchronizer is closed")

type job struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// queue runs one owner's jobs one at a time in submission order.
type queue struct {
	jobs chan job
	stop <-chan struct{}
}

func newQueue(stop <-chan struct{}, wg *sync.WaitGroup) *queue {
	q := &queue{jobs: make(chan job), stop: stop}
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.loop()
	}()
	return q
}

func (q *queue) loop() {
	for {
		select {
		case j := <-q.jobs:
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			j.done <- j.run(j.ctx)
		case <-q.stop:
			return
		}
	}
}

// submit blocks until fn has run or ctx is done. A job whose caller gave up before it
// was dequeued is skipped.
func (q *queue) submit(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, run: fn, done: make(chan error, 1)}
	select {
	case q.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-q.stop:
		return ErrClosed
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
