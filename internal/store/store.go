// Package store is the thin adapter (spec component F, "Durable Store
// Gateway") exposing the set/list/sorted-set/string operations the chat core
// needs from the external key-value store. Everything above this package
// talks to the Store interface only; nutsdb.go is the only file that imports
// the backing engine.
package store

import "context"

// Store is the durable store gateway contract described in spec.md §4.F.
// Implementations are assumed to succeed; a returned error is always a
// transport/storage failure, never a semantic "not found" (those are
// expressed through the zero value: an empty slice, an empty string, a
// false/0 return, or a nil rank).
type Store interface {
	// SetAdd idempotently adds member to the set at key.
	// Returns true if the member was newly added, false if it was already present.
	SetAdd(ctx context.Context, key, member string) (bool, error)

	// SetIsMember reports whether member is in the set at key.
	SetIsMember(ctx context.Context, key, member string) (bool, error)

	// SetMembers returns every member of the set at key.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// SetDiff returns the members present in the set at keyA but not keyB.
	SetDiff(ctx context.Context, keyA, keyB string) ([]string, error)

	// SetRemove removes member from the set at key.
	// Returns true if it was present and removed, false otherwise.
	SetRemove(ctx context.Context, key, member string) (bool, error)

	// StringGet returns the value stored at key, and false if key does not exist.
	StringGet(ctx context.Context, key string) (string, bool, error)

	// StringSet unconditionally sets key to value.
	StringSet(ctx context.Context, key, value string) error

	// KeyDelete removes the given keys, regardless of their underlying type.
	KeyDelete(ctx context.Context, keys ...string) error

	// ListPushRight appends elems, in order, to the list at key.
	ListPushRight(ctx context.Context, key string, elems ...string) error

	// ListRange returns the slice of the list at key from index start to
	// index stop inclusive. stop == -1 means "to the end of the list".
	ListRange(ctx context.Context, key string, start, stop int) ([]string, error)

	// ListSet replaces the element at index i of the list at key.
	ListSet(ctx context.Context, key string, i int, value string) error

	// ListRemove removes up to count occurrences of value from the list at
	// key (count <= 0 means "remove all occurrences").
	ListRemove(ctx context.Context, key string, count int, value string) error

	// ZSetAdd inserts member into the sorted set at key with the given
	// score, or updates its score if already present. Returns true if the
	// member was newly inserted.
	ZSetAdd(ctx context.Context, key string, score float64, member string) (bool, error)

	// ZSetRange returns members in the sorted set at key, ordered by
	// ascending score, from rank start to rank stop inclusive (-1 = last).
	ZSetRange(ctx context.Context, key string, start, stop int) ([]string, error)

	// ZSetRank returns the 0-based ascending-score rank of member in the
	// sorted set at key, and false if member is not in the set.
	ZSetRank(ctx context.Context, key, member string) (int, bool, error)

	// ZSetRemove removes member from the sorted set at key.
	// Returns true if it was present and removed.
	ZSetRemove(ctx context.Context, key, member string) (bool, error)

	// Close releases the underlying storage engine.
	Close() error
}
