package descriptors

import (
	"os"
	"testing"
)

func pipePair(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	return r, w
}

func TestTrackAndGet(t *testing.T) {
	reg := New()
	r, w := pipePair(t)
	defer r.Close()
	defer w.Close()

	entry := reg.Track(r, w, Pipe)
	if entry == nil {
		t.Fatal("Track returned nil entry")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	got, ok := reg.Get(Pipe)
	if !ok {
		t.Fatal("Get(Pipe) found nothing")
	}
	if got != entry {
		t.Errorf("Get returned a different entry")
	}
}

func TestCloseOneRemovesEntry(t *testing.T) {
	reg := New()
	r, w := pipePair(t)
	entry := reg.Track(r, w, Pipe)

	if err := reg.CloseOne(entry); err != nil {
		t.Fatalf("CloseOne: %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after CloseOne, want 0", reg.Len())
	}
	if _, ok := reg.Get(Pipe); ok {
		t.Errorf("expected no pipe entries after CloseOne")
	}
}

func TestCloseAllMaskLeavesOtherKinds(t *testing.T) {
	reg := New()
	pr, pw := pipePair(t)
	reg.Track(pr, pw, Pipe)

	lr, lw := pipePair(t)
	defer lr.Close()
	defer lw.Close()
	reg.Track(lr, lw, ListenSocket)

	if err := reg.CloseAll(AllPipes); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d after CloseAll(AllPipes), want 1 (listen socket survives)", reg.Len())
	}
	if _, ok := reg.Get(ListenSocket); !ok {
		t.Errorf("expected listen socket entry to survive CloseAll(AllPipes)")
	}
	if _, ok := reg.Get(Pipe); ok {
		t.Errorf("expected pipe entry to be gone after CloseAll(AllPipes)")
	}
}

func TestCloseAllEmptyRegistryIsNoop(t *testing.T) {
	reg := New()
	if err := reg.CloseAll(AllPipes); err != nil {
		t.Fatalf("CloseAll on empty registry: %v", err)
	}
}
