package roster

import (
	"net"
	"testing"
)

func fakeConnPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestAddAndSnapshot(t *testing.T) {
	r := New()
	c1, _ := fakeConnPair(t)
	c2, _ := fakeConnPair(t)

	e1 := r.Add(c1)
	e2 := r.Add(c2)

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(snap))
	}
	if snap[0].ID != e1.ID || snap[1].ID != e2.ID {
		t.Errorf("expected insertion order preserved")
	}
}

func TestLookupByName(t *testing.T) {
	r := New()
	c1, _ := fakeConnPair(t)
	e1 := r.Add(c1)
	r.Rename(e1.ID, "alice")

	got, ok := r.Lookup("alice")
	if !ok {
		t.Fatal("expected to find alice")
	}
	if got.ID != e1.ID {
		t.Errorf("found wrong entry")
	}

	if _, ok := r.Lookup("bob"); ok {
		t.Errorf("did not expect to find bob")
	}
}

func TestCloseRemovesEntryAndClosesConn(t *testing.T) {
	r := New()
	c1, peer := fakeConnPair(t)
	e1 := r.Add(c1)

	if err := r.Close(e1.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if _, ok := r.Lookup(""); ok {
		t.Errorf("expected no entries left to match")
	}

	buf := make([]byte, 1)
	if _, err := peer.Read(buf); err == nil {
		t.Errorf("expected peer read to fail once the roster closed its side")
	}
}

func TestCloseDuringIterationIsSafe(t *testing.T) {
	r := New()
	c1, _ := fakeConnPair(t)
	c2, _ := fakeConnPair(t)
	c3, _ := fakeConnPair(t)
	e1 := r.Add(c1)
	r.Add(c2)
	e3 := r.Add(c3)

	snap := r.Snapshot()
	if err := r.Close(e1.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// The snapshot taken before Close is unaffected — callers iterating it
	// still see the entry, same as the source's "returns the previous node"
	// contract lets the caller finish a pass safely.
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d, want 3", len(snap))
	}

	remaining := r.Snapshot()
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d, want 2", len(remaining))
	}
	if remaining[len(remaining)-1].ID != e3.ID {
		t.Errorf("expected e3 to remain in order")
	}
}

func TestCloseUnknownIDIsNoop(t *testing.T) {
	r := New()
	if err := r.Close(ID{}); err != nil {
		t.Errorf("Close on unknown id: %v", err)
	}
}
