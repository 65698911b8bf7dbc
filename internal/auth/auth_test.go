package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/infodancer/chatd/internal/store"
)

func TestCheckNewNameSetsPassword(t *testing.T) {
	st := store.NewMem()
	v := NewPlainValidator(st)
	ctx := context.Background()

	if err := v.Check(ctx, "alice", "secret"); err != nil {
		t.Fatalf("Check: %v", err)
	}

	stored, ok, err := st.StringGet(ctx, "alice")
	if err != nil {
		t.Fatalf("StringGet: %v", err)
	}
	if !ok {
		t.Fatalf("expected a password to have been stored for alice")
	}
	if stored == "secret" {
		t.Errorf("expected the stored password to be hashed, not stored in clear text")
	}
}

func TestCheckExistingNameMatch(t *testing.T) {
	st := store.NewMem()
	v := NewPlainValidator(st)
	ctx := context.Background()

	if err := v.Check(ctx, "alice", "secret"); err != nil {
		t.Fatalf("first Check: %v", err)
	}
	if err := v.Check(ctx, "alice", "secret"); err != nil {
		t.Fatalf("second Check with correct password: %v", err)
	}
}

func TestCheckExistingNameMismatch(t *testing.T) {
	st := store.NewMem()
	v := NewPlainValidator(st)
	ctx := context.Background()

	if err := v.Check(ctx, "alice", "secret"); err != nil {
		t.Fatalf("first Check: %v", err)
	}
	err := v.Check(ctx, "alice", "wrong")
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("Check with wrong password = %v, want ErrMismatch", err)
	}
}

func TestHashPasswordProducesVerifiableHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Errorf("expected a hash, not the clear-text password")
	}
}
