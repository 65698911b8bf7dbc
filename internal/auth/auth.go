// Package auth implements the credential side of the Session State Machine's
// AwaitingPassword transition (spec.md §4.H): hashing passwords at rest with
// bcrypt instead of the original program's clear-text comparison, and
// validating them through an internal SASL PLAIN exchange built on
// github.com/emersion/go-sasl, the same library the teacher depends on for
// its own SASL handling (internal/pop3/auth_commands.go).
package auth

import (
	"context"
	"errors"

	"github.com/emersion/go-sasl"
	"golang.org/x/crypto/bcrypt"

	"github.com/infodancer/chatd/internal/store"
)

// ErrMismatch is returned when a supplied password does not match the
// stored hash for an existing name.
var ErrMismatch = errors.New("auth: password mismatch")

// HashPassword hashes pwd for storage in the `<name>` durable key.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PlainValidator checks a name/password pair against the durable store
// through an internal SASL PLAIN server exchange. The wire protocol never
// negotiates SASL with the client (spec.md §6 is plain name/password
// prompts), but reusing go-sasl's PLAIN mechanism internally keeps the
// teacher's credential-validation idiom alive for a single round trip.
type PlainValidator struct {
	store store.Store
}

// NewPlainValidator builds a validator backed by st.
func NewPlainValidator(st store.Store) *PlainValidator {
	return &PlainValidator{store: st}
}

// Check validates name/pwd per spec.md §4.H's AwaitingPassword row: if the
// `<name>` key exists, its bcrypt hash must match; if it does not exist,
// pwd is accepted and hashed into place (first-login-sets-password, a
// documented design decision, not a bug — see DESIGN.md Open Questions).
func (v *PlainValidator) Check(ctx context.Context, name, pwd string) error {
	server := sasl.NewPlainServer(func(identity, username, password string) error {
		stored, ok, err := v.store.StringGet(ctx, username)
		if err != nil {
			return err
		}
		if !ok {
			hash, err := HashPassword(password)
			if err != nil {
				return err
			}
			return v.store.StringSet(ctx, username, hash)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
			return ErrMismatch
		}
		return nil
	})

	_, _, err := server.Next(plainResponse("", name, pwd))
	if err != nil {
		if errors.Is(err, ErrMismatch) {
			return ErrMismatch
		}
		return err
	}
	return nil
}

// plainResponse builds the SASL PLAIN initial-response wire format
// (authzid\0authcid\0passwd) go-sasl's server expects.
func plainResponse(authzid, authcid, passwd string) []byte {
	buf := make([]byte, 0, len(authzid)+len(authcid)+len(passwd)+2)
	buf = append(buf, authzid...)
	buf = append(buf, 0)
	buf = append(buf, authcid...)
	buf = append(buf, 0)
	buf = append(buf, passwd...)
	return buf
}
