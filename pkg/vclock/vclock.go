// Package vclock implements the per-peer monotonic counter map used to
// capture causal knowledge across the gossip mesh, grounded on the
// merge/compare primitives common across the corpus's vector-clock
// implementations (see DeBrosOfficial-network's VectorClock and
// sfurman3-chatroom's Clock) but keyed by peerid.ID instead of a raw
// string or slot index.
package vclock

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hetu-project/causal-gossip/pkg/peerid"
)

// Order is the result of comparing two vector clocks under the
// standard partial order.
type Order int

const (
	// Equal means every counter matches.
	Equal Order = iota
	// Less means a causally precedes b.
	Less
	// Greater means a causally follows b.
	Greater
	// Concurrent means neither dominates the other; callers must
	// break the tie some other way (record ordering uses timestamp).
	Concurrent
)

func (o Order) String() string {
	switch o {
	case Equal:
		return "equal"
	case Less:
		return "less"
	case Greater:
		return "greater"
	case Concurrent:
		return "concurrent"
	default:
		return "unknown"
	}
}

// Clock is a mapping from PeerID to an unsigned monotonic counter.
// Missing keys are semantically zero. The zero value is a usable empty
// clock.
type Clock struct {
	counters map[peerid.ID]uint64
}

// New returns an empty clock.
func New() *Clock {
	return &Clock{counters: make(map[peerid.ID]uint64)}
}

// Get returns the counter for p, or zero if p is absent.
func (c *Clock) Get(p peerid.ID) uint64 {
	if c == nil || c.counters == nil {
		return 0
	}
	return c.counters[p]
}

// Bump increments the counter for self by exactly one, initializing it
// to one if absent.
func (c *Clock) Bump(self peerid.ID) {
	if c.counters == nil {
		c.counters = make(map[peerid.ID]uint64)
	}
	c.counters[self]++
}

// Merge sets every local counter to the max of itself and other's,
// per peer. Peers present only in other are adopted.
func (c *Clock) Merge(other *Clock) {
	if other == nil {
		return
	}
	if c.counters == nil {
		c.counters = make(map[peerid.ID]uint64)
	}
	for p, v := range other.counters {
		if v > c.counters[p] {
			c.counters[p] = v
		}
	}
}

// Snapshot returns a value copy safe to embed in a record or hand to
// another goroutine.
func (c *Clock) Snapshot() *Clock {
	cp := make(map[peerid.ID]uint64, len(c.counters))
	for p, v := range c.counters {
		cp[p] = v
	}
	return &Clock{counters: cp}
}

// Len reports the number of peers with an entry in the clock. An entry
// decoded with a zero counter (via FromMap) is counted too.
func (c *Clock) Len() int {
	if c == nil {
		return 0
	}
	return len(c.counters)
}

// Peers returns the set of peer identities present in the clock, in no
// particular order.
func (c *Clock) Peers() []peerid.ID {
	out := make([]peerid.ID, 0, len(c.counters))
	for p := range c.counters {
		out = append(out, p)
	}
	return out
}

// Compare implements the vector-clock partial order described in
// spec.md §4.1: scan every peer in a, then every peer in b absent from
// a, and classify based on which side ever strictly dominates.
func Compare(a, b *Clock) Order {
	var aGreater, bGreater bool

	for p, av := range a.counters {
		bv := b.Get(p)
		if av > bv {
			aGreater = true
		} else if av < bv {
			bGreater = true
		}
	}
	for p, bv := range b.counters {
		if _, ok := a.counters[p]; ok {
			continue
		}
		if bv > 0 {
			bGreater = true
		}
	}

	switch {
	case aGreater && !bGreater:
		return Greater
	case bGreater && !aGreater:
		return Less
	case !aGreater && !bGreater:
		return Equal
	default:
		return Concurrent
	}
}

// SameCounters reports whether a and b have identical counters for
// every peer mentioned by either clock. This is the record-equality
// relation from spec.md §3.
func SameCounters(a, b *Clock) bool {
	return Compare(a, b) == Equal
}

// Key returns a canonical, deterministic string encoding of the clock
// suitable for use as a map key or dedup key: peers sorted by their
// base58 text, joined as "peer:count". Two clocks with identical
// counters produce identical keys regardless of insertion order.
func (c *Clock) Key() string {
	byText := make(map[string]uint64, len(c.counters))
	texts := make([]string, 0, len(c.counters))
	for p, v := range c.counters {
		text := p.String()
		byText[text] = v
		texts = append(texts, text)
	}
	sort.Strings(texts)

	var b strings.Builder
	for i, text := range texts {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%d", text, byText[text])
	}
	return b.String()
}

// AsMap returns a copy of the underlying counters, for serialization.
func (c *Clock) AsMap() map[peerid.ID]uint64 {
	out := make(map[peerid.ID]uint64, len(c.counters))
	for p, v := range c.counters {
		out[p] = v
	}
	return out
}

// FromMap builds a clock from a peer-to-counter map, used when
// decoding the wire representation.
func FromMap(m map[peerid.ID]uint64) *Clock {
	cp := make(map[peerid.ID]uint64, len(m))
	for p, v := range m {
		cp[p] = v
	}
	return &Clock{counters: cp}
}
