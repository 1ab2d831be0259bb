// Package record defines DataWithClock, the causal replication unit,
// and its total order over the vector-clock partial order, grounded on
// the Ord/PartialOrd/PartialEq implementation in
// original_source/src/node.rs translated into a Less function and a
// SameIdentity predicate.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/hetu-project/causal-gossip/pkg/peerid"
	"github.com/hetu-project/causal-gossip/pkg/vclock"
)

// Data is the replication unit: an opaque string payload tagged with a
// vector-clock snapshot and the emitting node's wall-clock timestamp.
// Records are immutable by convention; any "update" produces a new
// value rather than mutating one in place.
type Data struct {
	Payload   string
	Clock     *vclock.Clock
	Timestamp uint64 // seconds since Unix epoch
}

// New builds a record from a payload, a clock snapshot, and a
// timestamp. Callers are expected to pass an already-snapshotted
// clock (vclock.Clock.Snapshot) so the record owns an independent
// copy.
func New(payload string, clock *vclock.Clock, timestamp uint64) Data {
	return Data{Payload: payload, Clock: clock, Timestamp: timestamp}
}

// SameIdentity reports whether two records are the same logical event.
// Equality is defined solely on the vector clock, per spec.md §3: two
// records with identical clocks are the same event regardless of
// payload or timestamp.
func SameIdentity(a, b Data) bool {
	return vclock.SameCounters(a.Clock, b.Clock)
}

// Less implements the total order from spec.md §4.2: compare clocks
// under the causal partial order first; if concurrent, fall back to
// timestamp; if still equal (same clock), neither record is less than
// the other regardless of timestamp, so that equal-by-clock records
// collapse rather than admit two distinct positions in a sorted set.
func Less(a, b Data) bool {
	switch vclock.Compare(a.Clock, b.Clock) {
	case vclock.Less:
		return true
	case vclock.Greater:
		return false
	case vclock.Equal:
		return false
	default: // Concurrent
		return a.Timestamp < b.Timestamp
	}
}

// wireForm is the JSON representation on the gossip overlay, matching
// spec.md §6 exactly: peer ids are encoded in their base58 textual
// form and unknown keys are ignored on decode.
type wireForm struct {
	Data        string            `json:"data"`
	VectorClock map[string]uint64 `json:"vector_clock"`
	Timestamp   uint64            `json:"timestamp"`
}

// MarshalJSON encodes the record per the wire contract in spec.md §6.
func (d Data) MarshalJSON() ([]byte, error) {
	clockOut := make(map[string]uint64, d.Clock.Len())
	for p, v := range d.Clock.AsMap() {
		clockOut[p.String()] = v
	}
	return json.Marshal(wireForm{
		Data:        d.Payload,
		VectorClock: clockOut,
		Timestamp:   d.Timestamp,
	})
}

// UnmarshalJSON decodes the wire form. A missing "data" or
// "vector_clock" key, or an unparsable peer id, is a decode failure
// per spec.md §4.4 ("decode failures are logged and dropped").
func (d *Data) UnmarshalJSON(raw []byte) error {
	var wf wireForm
	if err := json.Unmarshal(raw, &wf); err != nil {
		return fmt.Errorf("record: decode: %w", err)
	}
	if wf.VectorClock == nil {
		return fmt.Errorf("record: decode: missing vector_clock")
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return fmt.Errorf("record: decode: %w", err)
	}
	if _, ok := keys["data"]; !ok {
		return fmt.Errorf("record: decode: missing data")
	}

	clockIn := make(map[peerid.ID]uint64, len(wf.VectorClock))
	for text, count := range wf.VectorClock {
		id, err := peerid.Parse(text)
		if err != nil {
			return fmt.Errorf("record: decode: %w", err)
		}
		clockIn[id] = count
	}

	d.Payload = wf.Data
	d.Clock = vclock.FromMap(clockIn)
	d.Timestamp = wf.Timestamp
	return nil
}
