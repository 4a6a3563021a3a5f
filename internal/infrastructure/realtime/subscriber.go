package realtime

import (
	"context"
	"reflect"
	"time"
)

// Event is one observed document change.
type Event struct {
	Collection string
	DocID      string
	Data       map[string]interface{}
}

// Filter narrows a subscription to one collection, optionally to rows where
// Field == Value.
type Filter struct {
	Collection string
	Field      string
	Value      interface{}
}

// CancelFunc tears a subscription down. Both the snapshot-based and the
// polling implementation honor the same contract: after Cancel returns, the
// handler will not be invoked again.
type CancelFunc func()

type Handler func(Event)

// Subscriber is the change-notification capability. A caller that cannot
// establish a live subscription should fall back to NewPollingSubscriber.
type Subscriber interface {
	Subscribe(ctx context.Context, filter Filter, handler Handler) (CancelFunc, error)
}

// Fetcher is the query side of the polling fallback: return the current rows
// matching the filter.
type Fetcher func(ctx context.Context, filter Filter) ([]Event, error)

type pollingSubscriber struct {
	fetch    Fetcher
	interval time.Duration
}

// NewPollingSubscriber builds a timer-based re-fetch fallback with the same
// cancel contract as a live subscription.
func NewPollingSubscriber(fetch Fetcher, interval time.Duration) Subscriber {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &pollingSubscriber{fetch: fetch, interval: interval}
}

func (p *pollingSubscriber) Subscribe(ctx context.Context, filter Filter, handler Handler) (CancelFunc, error) {
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		seen := make(map[string]interface{})

		poll := func() {
			events, err := p.fetch(subCtx, filter)
			if err != nil {
				return
			}
			for _, ev := range events {
				// Re-fetch returns the full result set; only surface rows
				// that changed since the previous poll.
				if prev, ok := seen[ev.DocID]; ok && equalData(prev, ev.Data) {
					continue
				}
				seen[ev.DocID] = ev.Data
				handler(ev)
			}
		}

		poll()
		for {
			select {
			case <-ticker.C:
				poll()
			case <-subCtx.Done():
				return
			}
		}
	}()

	return CancelFunc(cancel), nil
}

// equalData must handle whatever document data carries, including slice and
// nested-map fields, so it compares structurally rather than with ==.
func equalData(a interface{}, b map[string]interface{}) bool {
	prev, ok := a.(map[string]interface{})
	if !ok {
		return false
	}
	return reflect.DeepEqual(prev, b)
}
