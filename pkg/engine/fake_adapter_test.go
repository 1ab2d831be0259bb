package engine

import (
	"context"
	"sync"

	"github.com/hetu-project/causal-gossip/pkg/pubsub"
)

// fakeAdapter is an in-process pubsub.Adapter used to drive the engine
// deterministically in tests, without going over a real socket.
// Published payloads are captured for assertions and can optionally be
// wired directly into another fakeAdapter's inbound event stream to
// simulate a connected mesh.
type fakeAdapter struct {
	mu        sync.Mutex
	published [][]byte
	peers     []string
	events    chan pubsub.Event
	forward   []*fakeAdapter // adapters that should receive our publishes
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{events: make(chan pubsub.Event, 64)}
}

func (f *fakeAdapter) Subscribe(topic string) error { return nil }

func (f *fakeAdapter) Publish(ctx context.Context, topic string, payload []byte) error {
	f.mu.Lock()
	f.published = append(f.published, payload)
	targets := append([]*fakeAdapter(nil), f.forward...)
	f.mu.Unlock()

	for _, t := range targets {
		t.deliver(payload)
	}
	return nil
}

func (f *fakeAdapter) deliver(payload []byte) {
	f.events <- pubsub.Event{Kind: pubsub.EventMessage, Payload: payload}
}

func (f *fakeAdapter) Events() <-chan pubsub.Event { return f.events }

func (f *fakeAdapter) KnownPeers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.peers...)
}

func (f *fakeAdapter) Close() error {
	close(f.events)
	return nil
}

func (f *fakeAdapter) lastPublished() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.published) == 0 {
		return nil
	}
	return f.published[len(f.published)-1]
}

func (f *fakeAdapter) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}
