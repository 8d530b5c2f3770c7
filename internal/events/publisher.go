package events

import (
	"sync"
	"sync/atomic"
)

// Subscriber receives every published envelope. Subscribers must not block;
// slow sinks (like the journal) buffer internally.
type Subscriber interface {
	Publish(env Envelope)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(env Envelope)

func (f SubscriberFunc) Publish(env Envelope) { f(env) }

// Publisher stamps events with sequence numbers and fans them out.
type Publisher struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	seq         atomic.Uint64
}

// NewPublisher creates an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Subscribe registers a subscriber for all future events.
func (p *Publisher) Subscribe(s Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, s)
}

// Publish stamps and delivers events in order. The engine calls this after
// a successful commit, so subscribers only ever see applied operations.
func (p *Publisher) Publish(evs ...Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ev := range evs {
		env := NewEnvelope(p.seq.Add(1), ev)
		for _, s := range p.subscribers {
			s.Publish(env)
		}
	}
}
