package engine

import (
	"context"
	"testing"
	"time"
)

func TestRequestQueue_FIFO(t *testing.T) {
	q := newRequestQueue()
	for i := 0; i < 5; i++ {
		q.enqueue(&request{depth: i})
	}
	for i := 0; i < 5; i++ {
		r, err := q.dequeue(context.Background())
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if r.depth != i {
			t.Errorf("dequeued depth %d, want %d", r.depth, i)
		}
	}
}

func TestRequestQueue_DequeueCancelled(t *testing.T) {
	q := newRequestQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := q.dequeue(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("dequeue returned nil error on cancelled context")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dequeue did not return after context cancellation")
	}
}

func TestRequestQueue_CloseRejectsAndDrains(t *testing.T) {
	q := newRequestQueue()
	q.enqueue(&request{depth: 1})
	q.enqueue(&request{depth: 2})

	pending := q.close()
	if len(pending) != 2 {
		t.Fatalf("close drained %d requests, want 2", len(pending))
	}
	if q.enqueue(&request{depth: 3}) {
		t.Error("enqueue accepted work after close")
	}
	if q.len() != 0 {
		t.Errorf("len = %d after close, want 0", q.len())
	}
}

func TestRequestQueue_WakesWaiter(t *testing.T) {
	q := newRequestQueue()
	got := make(chan *request, 1)
	go func() {
		r, _ := q.dequeue(context.Background())
		got <- r
	}()

	time.Sleep(10 * time.Millisecond)
	q.enqueue(&request{depth: 7})

	select {
	case r := <-got:
		if r == nil || r.depth != 7 {
			t.Errorf("dequeued %+v, want depth 7", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never woke up")
	}
}
