// Package replica holds the per-node ordered set of observed records,
// grounded on the gossip node's own Store (pkg/gossip/store.go): a
// dedup map guarding against reinsertion, adapted here to key on
// vector-clock identity instead of a rumor id, plus a sort-on-read
// view over the causal total order.
package replica

import (
	"sort"
	"sync"

	"github.com/hetu-project/causal-gossip/pkg/record"
)

// Store is an ordered set of record.Data. Insertion is idempotent by
// vector-clock identity (spec.md §3); iteration yields records in
// ascending total order (spec.md §4.2). There is no deletion.
type Store struct {
	mu   sync.Mutex
	byID map[string]record.Data
}

// New returns an empty replica store.
func New() *Store {
	return &Store{byID: make(map[string]record.Data)}
}

// Insert adds r to the store if no record with the same vector-clock
// identity is already present. It returns true if r was newly
// inserted, false if it was a duplicate (idempotent no-op).
func (s *Store) Insert(r record.Data) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.Clock.Key()
	if _, exists := s.byID[key]; exists {
		return false
	}
	s.byID[key] = r
	return true
}

// Len reports the number of distinct records currently stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// IterSorted returns every stored record in ascending total order.
// Enumeration is expected to be rare (telemetry only per spec.md
// §4.3), so a sort-on-read design is used rather than maintaining a
// balanced tree incrementally.
func (s *Store) IterSorted() []record.Data {
	s.mu.Lock()
	out := make([]record.Data, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return record.Less(out[i], out[j])
	})
	return out
}
