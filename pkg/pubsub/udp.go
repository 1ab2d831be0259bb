package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// envelope is the datagram framing used between UDPAdapter instances:
// a topic name alongside the record payload, since a single UDP
// listener multiplexes every topic a node has subscribed to.
type envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// UDPAdapter is a best-effort UDP fanout transport standing in for the
// real (out-of-scope) libp2p gossipsub overlay described by
// original_source/src/node.rs. It is grounded on the gossip node's own
// UDPTransport and Node.pickPeers/tickOnce (pkg/gossip/transport.go,
// pkg/gossip/node.go): each publish fans a message out to every known
// peer address, and inbound datagrams are decoded and pushed onto the
// events channel.
type UDPAdapter struct {
	conn *net.UDPConn

	mu       sync.RWMutex
	topics   map[string]struct{}
	peers    map[string]struct{}
	breakers map[string]*gobreaker.CircuitBreaker

	events chan Event
	done   chan struct{}
}

// NewUDPAdapter binds a UDP socket on bind and begins listening
// immediately. Seed peer addresses are added to the known-peer set so
// the first publish has somewhere to go.
func NewUDPAdapter(bind string, seedPeers []string) (*UDPAdapter, error) {
	addr, err := net.ResolveUDPAddr("udp", bind)
	if err != nil {
		return nil, fmt.Errorf("pubsub: resolve bind address %q: %w", bind, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("pubsub: listen on %q: %w", bind, err)
	}

	a := &UDPAdapter{
		conn:     conn,
		topics:   make(map[string]struct{}),
		peers:    make(map[string]struct{}),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		events:   make(chan Event, 256),
		done:     make(chan struct{}),
	}
	for _, p := range seedPeers {
		a.peers[p] = struct{}{}
	}

	go a.readLoop()
	return a, nil
}

func (a *UDPAdapter) Subscribe(topic string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.topics[topic] = struct{}{}
	return nil
}

// Publish fans payload out to every known peer over UDP. Each peer
// send is wrapped in an exponential backoff retry and a per-peer
// circuit breaker (grounded on OmishaPatel-DistributedFileStorage's
// NodeClient, internal/httpClient/node_client.go) so a consistently
// unreachable peer stops absorbing retry latency after a burst of
// failures, without ever affecting the causal state that already
// advanced before the call.
func (a *UDPAdapter) Publish(ctx context.Context, topic string, payload []byte) error {
	env, err := json.Marshal(envelope{Topic: topic, Payload: payload})
	if err != nil {
		return fmt.Errorf("pubsub: encode envelope: %w", err)
	}

	a.mu.RLock()
	peers := make([]string, 0, len(a.peers))
	for p := range a.peers {
		peers = append(peers, p)
	}
	a.mu.RUnlock()

	var firstErr error
	for _, p := range peers {
		if err := a.sendWithResilience(ctx, p, env); err != nil {
			a.emit(Event{Kind: EventDialFailed, Peer: p})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		a.emit(Event{Kind: EventPeerConnected, Peer: p})
	}
	return firstErr
}

func (a *UDPAdapter) sendWithResilience(ctx context.Context, peer string, env []byte) error {
	breaker := a.breakerFor(peer)

	_, err := breaker.Execute(func() (interface{}, error) {
		bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
		return nil, backoff.Retry(func() error {
			return a.sendOnce(peer, env)
		}, bo)
	})
	return err
}

func (a *UDPAdapter) sendOnce(peer string, env []byte) error {
	raddr, err := net.ResolveUDPAddr("udp", peer)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("pubsub: resolve peer %q: %w", peer, err))
	}
	_, err = a.conn.WriteToUDP(env, raddr)
	return err
}

func (a *UDPAdapter) breakerFor(peer string) *gobreaker.CircuitBreaker {
	a.mu.Lock()
	defer a.mu.Unlock()
	if b, ok := a.breakers[peer]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        fmt.Sprintf("pubsub-publish-%s", peer),
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	a.breakers[peer] = b
	return b
}

// AddPeer registers a newly discovered peer address and surfaces a
// discovery event for telemetry.
func (a *UDPAdapter) AddPeer(addr string) {
	a.mu.Lock()
	_, existed := a.peers[addr]
	a.peers[addr] = struct{}{}
	a.mu.Unlock()

	if !existed {
		a.emit(Event{Kind: EventPeerDiscovered, Peer: addr})
	}
}

func (a *UDPAdapter) KnownPeers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.peers))
	for p := range a.peers {
		out = append(out, p)
	}
	return out
}

func (a *UDPAdapter) Events() <-chan Event { return a.events }

func (a *UDPAdapter) Close() error {
	close(a.done)
	err := a.conn.Close()
	return err
}

func (a *UDPAdapter) readLoop() {
	defer close(a.events)
	buf := make([]byte, 64<<10)
	for {
		n, raddr, err := a.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-a.done:
				return
			default:
				return
			}
		}

		var env envelope
		if err := json.Unmarshal(buf[:n], &env); err != nil {
			continue
		}

		a.mu.RLock()
		_, subscribed := a.topics[env.Topic]
		a.mu.RUnlock()
		if !subscribed {
			continue
		}

		a.emit(Event{Kind: EventMessage, Peer: raddr.String(), Payload: env.Payload})
		a.AddPeer(raddr.String())
	}
}

func (a *UDPAdapter) emit(ev Event) {
	select {
	case a.events <- ev:
	case <-a.done:
	}
}
