package broker

import (
	"errors"
	"sync"
	"time"

	"github.com/webshop/backend/pkg/schema"
)

var errRequestExpired = errors.New("request expired without a response")

type outcome struct {
	resp schema.OrderResponseV1
	err  error
}

type waiter struct {
	ch       chan outcome
	deadline time.Time
}

// pendingTable tracks in-flight requests by correlation id. Expiry is
// driven by one sweep loop over the whole table rather than a timer
// per entry.
type pendingTable struct {
	mu      sync.Mutex
	waiters map[string]waiter
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[string]waiter)}
}

func (t *pendingTable) add(corrID string, deadline time.Time) <-chan outcome {
	ch := make(chan outcome, 1)
	t.mu.Lock()
	t.waiters[corrID] = waiter{ch: ch, deadline: deadline}
	t.mu.Unlock()
	return ch
}

// resolve delivers o to the waiter registered under corrID. It
// reports false for an unknown id, which means the response is an
// orphan: the waiter already expired or never existed.
func (t *pendingTable) resolve(corrID string, o outcome) bool {
	t.mu.Lock()
	w, ok := t.waiters[corrID]
	if ok {
		delete(t.waiters, corrID)
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	w.ch <- o
	return true
}

func (t *pendingTable) remove(corrID string) {
	t.mu.Lock()
	delete(t.waiters, corrID)
	t.mu.Unlock()
}

// sweep expires every waiter whose deadline passed and returns how
// many were expired.
func (t *pendingTable) sweep(now time.Time) int {
	t.mu.Lock()
	var expired []waiter
	for id, w := range t.waiters {
		if now.After(w.deadline) {
			expired = append(expired, w)
			delete(t.waiters, id)
		}
	}
	t.mu.Unlock()

	for _, w := range expired {
		w.ch <- outcome{err: errRequestExpired}
	}
	return len(expired)
}

func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}
