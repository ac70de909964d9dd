package sse

import "sync"

// Event is one message pushed to transaction subscribers.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

const subscriberBuffer = 8

// Registry is the process-owned map of open transaction streams. It replaces
// ambient module state: main constructs exactly one and hands it to whoever
// publishes or serves streams. Subscriptions live and die with the process;
// there is no cross-instance fan-out.
type Registry struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for one transaction id. The returned cancel
// func is idempotent and must be called when the connection closes.
func (r *Registry) Subscribe(txID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	r.mu.Lock()
	set, ok := r.subs[txID]
	if !ok {
		set = make(map[chan Event]struct{})
		r.subs[txID] = set
	}
	set[ch] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			if set, ok := r.subs[txID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(r.subs, txID)
				}
			}
			r.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers ev to every open subscriber of txID and reports how many
// received it. Subscribers that can't keep up just miss the event; the next
// status fetch catches them up.
func (r *Registry) Publish(txID string, ev Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	delivered := 0
	for ch := range r.subs[txID] {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers reports how many listeners a transaction currently has.
func (r *Registry) Subscribers(txID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[txID])
}
