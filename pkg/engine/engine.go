// Package engine implements the causal replication engine: the single
// event loop that owns the local vector clock and replica, ingests
// local submissions and overlay messages, and drives gossip
// convergence, per spec.md §4.5. It is grounded on the control flow of
// original_source/src/node.rs's Node::run (tokio::select! over a
// timer, the swarm event stream, and the RPC channel) and on the
// gossip node's own Node.gossipLoop/Node.Handle split between periodic
// and reactive work (pkg/gossip/node.go).
package engine

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/hetu-project/causal-gossip/pkg/metrics"
	"github.com/hetu-project/causal-gossip/pkg/peerid"
	"github.com/hetu-project/causal-gossip/pkg/pubsub"
	"github.com/hetu-project/causal-gossip/pkg/record"
	"github.com/hetu-project/causal-gossip/pkg/replica"
	"github.com/hetu-project/causal-gossip/pkg/vclock"
)

// Topic is the single well-known pub/sub topic the engine subscribes
// to and publishes on, per spec.md §4.4.
const Topic = "relay_data"

// telemetryInterval is the cadence of the periodic tick described in
// spec.md §4.5.3.
const telemetryInterval = 5 * time.Second

// ClockView is the type ClockSnapshot returns for read-only inspection,
// e.g. by an RPC status endpoint: an independent copy of the engine's
// clock, so changes to it never reach the engine's own clock.
type ClockView = *vclock.Clock

// Now abstracts wall-clock access so tests can supply a fixed value
// without sleeping; it defaults to real time.
type Now func() time.Time

// Engine owns the local peer identity, the authoritative vector
// clock, the replica, and a handle to the gossip adapter. It is not
// safe to call any exported method concurrently from outside Run;
// the single-threaded event loop is the sole mutator, per spec.md §5.
type Engine struct {
	self    peerid.ID
	clock   *vclock.Clock
	store   *replica.Store
	adapter pubsub.Adapter
	logger  *zap.Logger
	now     Now
}

// New constructs an Engine. The adapter must already be constructed;
// Subscribe is called once during Run's setup phase.
func New(self peerid.ID, adapter pubsub.Adapter, logger *zap.Logger) *Engine {
	return &Engine{
		self:    self,
		clock:   vclock.New(),
		store:   replica.New(),
		adapter: adapter,
		logger:  logger,
		now:     time.Now,
	}
}

// SelfID returns the local peer identity.
func (e *Engine) SelfID() peerid.ID { return e.self }

// ClockSnapshot returns an immutable copy of the current vector clock.
func (e *Engine) ClockSnapshot() ClockView { return e.clock.Snapshot() }

// Replica exposes the replica store for read-only telemetry use.
func (e *Engine) Replica() *replica.Store { return e.store }

// Run drives the single-threaded event loop described in spec.md
// §4.5.4: subscribe once, then multiplex ingress submissions, overlay
// events, and the telemetry ticker until ctx is cancelled or either
// source is structurally exhausted (channel closed), both of which are
// terminal per spec.md §7.
func (e *Engine) Run(ctx context.Context, ingress <-chan string) error {
	if err := e.adapter.Subscribe(Topic); err != nil {
		return err
	}

	ticker := time.NewTicker(telemetryInterval)
	defer ticker.Stop()

	events := e.adapter.Events()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			e.emitTelemetry()

		case ev, ok := <-events:
			if !ok {
				return errOverlayClosed
			}
			e.handleOverlayEvent(ctx, ev)

		case payload, ok := <-ingress:
			if !ok {
				return errIngressClosed
			}
			e.handleLocalSubmission(ctx, payload)
		}
	}
}

// handleLocalSubmission implements spec.md §4.5.1: bump the local
// counter, snapshot the clock, publish. It deliberately does not
// insert into the local replica; see spec.md §9's "Local submission
// not stored locally" open question, resolved in DESIGN.md to preserve
// the reference behavior rather than silently "fixing" it.
func (e *Engine) handleLocalSubmission(ctx context.Context, payload string) {
	e.clock.Bump(e.self)
	now := uint64(e.now().Unix())

	r := record.New(payload, e.clock.Snapshot(), now)

	e.logger.Info("local submission accepted",
		zap.String("self", e.self.String()),
		zap.Uint64("self_clock", e.clock.Get(e.self)))

	metrics.RecordsAccepted.WithLabelValues("local", e.self.String()).Inc()
	metrics.SelfClock.WithLabelValues(e.self.String()).Set(float64(e.clock.Get(e.self)))

	if err := e.publish(ctx, r); err != nil {
		metrics.PublishFailures.WithLabelValues(e.self.String()).Inc()
		e.logger.Warn("publish failed for local submission",
			zap.String("self", e.self.String()),
			zap.Error(err))
	}
}

// handleOverlayEvent dispatches decoded messages through the
// causal-novelty check (spec.md §4.5.2) and treats every other event
// kind as telemetry-only, per spec.md §4.4.
func (e *Engine) handleOverlayEvent(ctx context.Context, ev pubsub.Event) {
	switch ev.Kind {
	case pubsub.EventMessage:
		e.handleMessage(ctx, ev.Payload)
	case pubsub.EventPeerDiscovered:
		e.logger.Info("peer discovered", zap.String("peer", ev.Peer))
	case pubsub.EventPeerConnected:
		e.logger.Debug("peer send succeeded", zap.String("peer", ev.Peer))
	case pubsub.EventPeerDisconnected:
		e.logger.Info("peer disconnected", zap.String("peer", ev.Peer))
	case pubsub.EventDialFailed:
		e.logger.Warn("dial failed", zap.String("peer", ev.Peer))
	}
}

func (e *Engine) handleMessage(ctx context.Context, payload []byte) {
	var r record.Data
	if err := json.Unmarshal(payload, &r); err != nil {
		metrics.DecodeFailures.WithLabelValues(e.self.String()).Inc()
		e.logger.Warn("dropping undecodable overlay message", zap.Error(err))
		return
	}

	if !e.isNovel(r.Clock) {
		metrics.RecordsRejected.WithLabelValues(e.self.String()).Inc()
		e.logger.Debug("received record is not new, discarding",
			zap.String("self", e.self.String()))
		return
	}

	// Merge, bump, rewrite: spec.md §4.5.2 steps (a)-(c).
	e.clock.Merge(r.Clock)
	e.clock.Bump(e.self)

	rewritten := record.New(r.Payload, e.clock.Snapshot(), uint64(e.now().Unix()))

	e.store.Insert(rewritten)

	metrics.RecordsAccepted.WithLabelValues("remote", e.self.String()).Inc()
	metrics.SelfClock.WithLabelValues(e.self.String()).Set(float64(e.clock.Get(e.self)))
	metrics.ReplicaSize.WithLabelValues(e.self.String()).Set(float64(e.store.Len()))

	e.logger.Info("accepted novel record, rebroadcasting",
		zap.String("self", e.self.String()),
		zap.Uint64("self_clock", e.clock.Get(e.self)),
		zap.Int("replica_size", e.store.Len()))

	if err := e.publish(ctx, rewritten); err != nil {
		metrics.PublishFailures.WithLabelValues(e.self.String()).Inc()
		e.logger.Warn("republish failed", zap.Error(err))
	}
}

// isNovel implements the novelty test of spec.md §4.5.2: r is new if
// any peer entry in its clock strictly exceeds what the local clock
// has seen for that peer, including peers entirely absent locally.
func (e *Engine) isNovel(remote *vclock.Clock) bool {
	for _, p := range remote.Peers() {
		if remote.Get(p) > e.clock.Get(p) {
			return true
		}
	}
	return false
}

func (e *Engine) publish(ctx context.Context, r record.Data) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return e.adapter.Publish(ctx, Topic, raw)
}

// emitTelemetry implements spec.md §4.5.3: log the known peers, the
// subscribed topic, the vector clock, and sorted replica contents, plus
// the supplemental facts named in SPEC_FULL.md §4.5 (distinct peers
// ever seen, replica byte size, oldest-entry age) carried over from
// original_source/src/node.rs's richer run() tick. No state mutation.
func (e *Engine) emitTelemetry() {
	sorted := e.store.IterSorted()

	oldestAge := time.Duration(0)
	if len(sorted) > 0 {
		oldest := sorted[0].Timestamp
		for _, r := range sorted {
			if r.Timestamp < oldest {
				oldest = r.Timestamp
			}
		}
		oldestAge = e.now().Sub(time.Unix(int64(oldest), 0))
	}

	replicaBytes := 0
	if raw, err := json.Marshal(sorted); err == nil {
		replicaBytes = len(raw)
	}

	knownPeers := e.adapter.KnownPeers()
	metrics.KnownPeers.WithLabelValues(e.self.String()).Set(float64(len(knownPeers)))
	metrics.ReplicaSize.WithLabelValues(e.self.String()).Set(float64(len(sorted)))
	metrics.SelfClock.WithLabelValues(e.self.String()).Set(float64(e.clock.Get(e.self)))

	e.logger.Info("telemetry tick",
		zap.String("self", e.self.String()),
		zap.String("topic", Topic),
		zap.Strings("known_peers", knownPeers),
		zap.String("vector_clock", e.clock.Key()),
		zap.Any("replica", sorted),
		zap.Int("replica_size", len(sorted)),
		zap.Int("replica_bytes", replicaBytes),
		zap.Int("distinct_peers_seen", e.clock.Len()),
		zap.Duration("oldest_entry_age", oldestAge),
		zap.Uint64("self_clock", e.clock.Get(e.self)))
}
