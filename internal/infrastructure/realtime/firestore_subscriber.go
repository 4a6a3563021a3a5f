package realtime

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"trashlink/pkg/logger"
)

// establishTimeout bounds how long Subscribe waits for the initial snapshot
// before reporting the listener as unavailable.
const establishTimeout = 5 * time.Second

type firestoreSubscriber struct {
	client *firestore.Client
}

// NewFirestoreSubscriber wires live change notification over Firestore
// snapshot listeners.
func NewFirestoreSubscriber(client *firestore.Client) Subscriber {
	return &firestoreSubscriber{client: client}
}

// Subscribe blocks until the listener delivers its first snapshot, so a
// broken stream surfaces as an error here and the caller can degrade to
// polling instead of silently losing events.
func (s *firestoreSubscriber) Subscribe(ctx context.Context, filter Filter, handler Handler) (CancelFunc, error) {
	subCtx, cancel := context.WithCancel(ctx)

	query := s.client.Collection(filter.Collection).Query
	if filter.Field != "" {
		query = query.Where(filter.Field, "==", filter.Value)
	}

	snapshots := query.Snapshots(subCtx)

	established := make(chan error, 1)

	go func() {
		defer snapshots.Stop()

		first := true
		for {
			snap, err := snapshots.Next()
			if err == iterator.Done {
				if first {
					established <- err
				}
				return
			}
			if err != nil {
				if first {
					established <- err
					return
				}
				if subCtx.Err() != nil {
					return
				}
				logger.Warn("Snapshot listener for %s failed: %v", filter.Collection, err)
				return
			}

			if first {
				first = false
				established <- nil
			}

			for _, change := range snap.Changes {
				if change.Kind == firestore.DocumentRemoved {
					continue
				}
				handler(Event{
					Collection: filter.Collection,
					DocID:      change.Doc.Ref.ID,
					Data:       change.Doc.Data(),
				})
			}
		}
	}()

	select {
	case err := <-established:
		if err != nil {
			cancel()
			return nil, fmt.Errorf("snapshot listener for %s: %w", filter.Collection, err)
		}
	case <-time.After(establishTimeout):
		cancel()
		return nil, fmt.Errorf("snapshot listener for %s did not deliver an initial snapshot within %s", filter.Collection, establishTimeout)
	}

	return CancelFunc(cancel), nil
}
