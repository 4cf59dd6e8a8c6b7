package engine

import (
	"context"
	"sync"
)

// request is one queued unit of analysis work. done is buffered so the
// worker never blocks resolving a request whose caller has gone away.
type request struct {
	fen   string
	depth int
	done  chan Result
}

func (r *request) resolve(res Result) {
	r.done <- res
}

// requestQueue is an unbounded FIFO of pending analysis requests. The
// session's worker loop is its only consumer, which is what makes it a
// single-slot serializer rather than a pool feed.
type requestQueue struct {
	mu     sync.Mutex
	queue  []*request
	cond   *sync.Cond
	closed bool
}

func newRequestQueue() *requestQueue {
	q := &requestQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// enqueue appends a request, returning false if the queue has been closed
// (the request was not accepted and must be resolved by the caller).
func (q *requestQueue) enqueue(r *request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.queue = append(q.queue, r)
	q.cond.Signal()
	return true
}

// dequeue blocks until a request is available or the context is cancelled.
func (q *requestQueue) dequeue(ctx context.Context) (*request, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if len(q.queue) > 0 {
			r := q.queue[0]
			q.queue = q.queue[1:]
			return r, nil
		}

		// Wait for an item, waking up if the context goes away.
		wake := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				q.cond.Broadcast()
			case <-wake:
			}
		}()
		q.cond.Wait()
		close(wake)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
}

// close marks the queue as no longer accepting work and returns everything
// still pending, so the worker can resolve it on the way out.
func (q *requestQueue) close() []*request {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	pending := q.queue
	q.queue = nil
	return pending
}

func (q *requestQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
