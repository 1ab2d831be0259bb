package vclock

import (
	"testing"

	"github.com/hetu-project/causal-gossip/pkg/peerid"
)

func mustID(t *testing.T, text string) peerid.ID {
	t.Helper()
	kp, err := peerid.Generate()
	if err != nil {
		t.Fatalf("peerid.Generate: %v", err)
	}
	_ = text
	return peerid.FromPublicKey(kp.Public)
}

func TestBumpInitializesAndIncrements(t *testing.T) {
	a := mustID(t, "a")
	c := New()

	if got := c.Get(a); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	c.Bump(a)
	if got := c.Get(a); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	c.Bump(a)
	if got := c.Get(a); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestMergeTakesMax(t *testing.T) {
	a, b := mustID(t, "a"), mustID(t, "b")

	local := New()
	local.Bump(a)

	other := New()
	other.Bump(a)
	other.Bump(a)
	other.Bump(b)

	local.Merge(other)

	if got := local.Get(a); got != 2 {
		t.Fatalf("expected merged a=2, got %d", got)
	}
	if got := local.Get(b); got != 1 {
		t.Fatalf("expected merged b=1, got %d", got)
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	a := mustID(t, "a")
	c := New()
	c.Bump(a)

	snap := c.Snapshot()
	c.Bump(a)

	if got := snap.Get(a); got != 1 {
		t.Fatalf("snapshot should be frozen at 1, got %d", got)
	}
	if got := c.Get(a); got != 2 {
		t.Fatalf("original should advance to 2, got %d", got)
	}
}

func TestCompareEqual(t *testing.T) {
	a, b := mustID(t, "a"), mustID(t, "b")
	x := New()
	x.Bump(a)
	x.Bump(b)
	y := x.Snapshot()

	if got := Compare(x, y); got != Equal {
		t.Fatalf("expected Equal, got %s", got)
	}
}

func TestCompareGreaterAndLess(t *testing.T) {
	a := mustID(t, "a")
	x := New()
	x.Bump(a)

	y := New()
	y.Bump(a)
	y.Bump(a)

	if got := Compare(y, x); got != Greater {
		t.Fatalf("expected Greater, got %s", got)
	}
	if got := Compare(x, y); got != Less {
		t.Fatalf("expected Less, got %s", got)
	}
}

func TestComparePresenceOnlyInOtherCountsAsGreater(t *testing.T) {
	a, b := mustID(t, "a"), mustID(t, "b")
	x := New()
	x.Bump(a)

	y := New()
	y.Bump(a)
	y.Bump(b)

	if got := Compare(y, x); got != Greater {
		t.Fatalf("expected Greater when y has an extra peer, got %s", got)
	}
}

func TestCompareConcurrent(t *testing.T) {
	a, b := mustID(t, "a"), mustID(t, "b")
	x := New()
	x.Bump(a)

	y := New()
	y.Bump(b)

	if got := Compare(x, y); got != Concurrent {
		t.Fatalf("expected Concurrent, got %s", got)
	}
	if got := Compare(y, x); got != Concurrent {
		t.Fatalf("expected Concurrent, got %s", got)
	}
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a, b := mustID(t, "a"), mustID(t, "b")

	x := New()
	x.Bump(a)
	x.Bump(b)

	y := New()
	y.Bump(b)
	y.Bump(a)

	if x.Key() != y.Key() {
		t.Fatalf("expected identical keys regardless of bump order, got %q and %q", x.Key(), y.Key())
	}
}

func TestSameCountersMatchesEqualOrder(t *testing.T) {
	a := mustID(t, "a")
	x := New()
	x.Bump(a)
	y := x.Snapshot()

	if !SameCounters(x, y) {
		t.Fatal("expected SameCounters true for identical clocks")
	}

	y.Bump(a)
	if SameCounters(x, y) {
		t.Fatal("expected SameCounters false after divergence")
	}
}
