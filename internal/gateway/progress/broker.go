package progress

import (
	"context"
	"sync"
)

// Event is one lifecycle notification of a conversion run.
type Event struct {
	Type       string `json:"type"` // "fetching" | "planning" | "batch" | "done" | "failed"
	RunID      string `json:"runId"`
	BatchIndex int    `json:"batchIndex"`
	BatchTotal int    `json:"batchTotal"`
	Detail     string `json:"detail,omitempty"`
}

// Broker fans run events out to websocket subscribers. Publishing never
// blocks; a slow subscriber loses its oldest event instead of stalling
// the run.
type Broker struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]chan Event)}
}

// Publish delivers an event to every subscriber of its run.
func (b *Broker) Publish(evt Event) {
	if b == nil || evt.RunID == "" {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[evt.RunID] {
		select {
		case ch <- evt:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a listener for one run. The channel closes when
// ctx is done.
func (b *Broker) Subscribe(ctx context.Context, runID string) <-chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subs[runID] = append(b.subs[runID], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		chans := b.subs[runID]
		for i, c := range chans {
			if c == ch {
				b.subs[runID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(b.subs[runID]) == 0 {
			delete(b.subs, runID)
		}
		b.mu.Unlock()
		close(ch)
	}()
	return ch
}
