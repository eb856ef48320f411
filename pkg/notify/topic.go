// Package notify delivers object and branch changes to subscribers.
//
// Each Topic is either Idle (no subscribers, no watcher) or Watching. The
// first subscription starts the topic's watcher and removing the last one
// stops it.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

// Handler receives one published value. A returned error is logged and
// does not unsubscribe the handler.
type Handler[T any] func(T) error

// Subscription is the token returned by Subscribe. Pass it to Unsubscribe
// to remove exactly this registration.
type Subscription[T any] struct {
	handler Handler[T]
}

// ActivateFunc starts the watcher behind a topic and returns the function
// that stops it.
type ActivateFunc func() (stop func() error, e error)

// Topic is a list of subscribers for one category of change.
type Topic[T any] struct {
	name     string
	activate ActivateFunc
	log      *slog.Logger

	mu   sync.Mutex
	subs []*Subscription[T]
	stop func() error
}

// NewTopic creates an idle topic. activate may be nil for topics without a
// watcher.
func NewTopic[T any](name string, activate ActivateFunc, log *slog.Logger) *Topic[T] {
	return &Topic[T]{name: name, activate: activate, log: logger.OrDefault(log)}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers h. The watcher is started when h is the first
// subscriber; if it cannot be started nothing is registered.
func (t *Topic[T]) Subscribe(h Handler[T]) (*Subscription[T], error) {
	if h == nil {
		return nil, fmt.Errorf("notify: nil handler for %s", t.name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.subs) == 0 && t.stop == nil && t.activate != nil {
		stop, e := t.activate()
		if e != nil {
			return nil, fmt.Errorf("start %s watcher: %w", t.name, e)
		}
		t.stop = stop
		t.log.Debug("watching", "topic", t.name)
	}

	sub := &Subscription[T]{handler: h}
	t.subs = append(t.subs, sub)
	return sub, nil
}

// Unsubscribe removes sub. Unknown or already removed subscriptions are
// ignored. Removing the last subscriber stops the watcher.
func (t *Topic[T]) Unsubscribe(sub *Subscription[T]) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i, s := range t.subs {
		if s == sub {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	t.subs = append(t.subs[:idx:idx], t.subs[idx+1:]...)
	if len(t.subs) > 0 {
		return nil
	}
	return t.halt()
}

// Close removes every subscriber and stops the watcher.
func (t *Topic[T]) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = nil
	return t.halt()
}

func (t *Topic[T]) halt() error {
	if t.stop == nil {
		return nil
	}
	stop := t.stop
	t.stop = nil
	t.log.Debug("idle", "topic", t.name)
	return stop()
}

// Publish calls every current subscriber with v in subscription order and
// returns how many handlers ran without error.
func (t *Topic[T]) Publish(v T) int {
	t.mu.Lock()
	subs := make([]*Subscription[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	ok := 0
	for _, s := range subs {
		if e := t.deliver(s, v); e != nil {
			t.log.Warn("subscriber failed", "topic", t.name, "error", e)
			continue
		}
		ok++
	}
	return ok
}

func (t *Topic[T]) deliver(s *Subscription[T], v T) (e error) {
	defer func() {
		if r := recover(); r != nil {
			e = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return s.handler(v)
}

// Watching reports whether the topic's watcher is running.
func (t *Topic[T]) Watching() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Subscribers returns the number of registered handlers.
func (t *Topic[T]) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
