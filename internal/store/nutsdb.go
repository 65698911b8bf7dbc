package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutsdb/nutsdb"
)

// Buckets partition the four data shapes the gateway supports. Every key
// used by the chat core (Chatroom, Chatroom.online, <name>, <name>.mail, …)
// lives in exactly one bucket, chosen by which of the operations in Store it
// participates in — the same key string never needs two buckets at once
// because spec.md's key namespace already disambiguates by suffix.
const (
	bucketStrings = "strings"
	bucketSets    = "sets"
	bucketLists   = "lists"
	bucketZSets   = "zsets"
)

// NutsDB is a Store backed by an embedded nutsdb database. It is the default
// gateway implementation; any store.Store-shaped engine could replace it.
type NutsDB struct {
	db *nutsdb.DB
}

// OpenNutsDB opens (creating if necessary) a nutsdb database rooted at dir.
func OpenNutsDB(dir string) (*NutsDB, error) {
	opts := nutsdb.DefaultOptions
	opts.Dir = dir

	db, err := nutsdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open durable store at %s: %w", dir, err)
	}
	return &NutsDB{db: db}, nil
}

func (n *NutsDB) Close() error {
	return n.db.Close()
}

func isNotFound(err error) bool {
	return errors.Is(err, nutsdb.ErrKeyNotFound) ||
		errors.Is(err, nutsdb.ErrBucketNotFound) ||
		errors.Is(err, nutsdb.ErrBucketEmpty) ||
		errors.Is(err, nutsdb.ErrNotFoundKey)
}

func (n *NutsDB) SetAdd(ctx context.Context, key, member string) (added bool, err error) {
	err = n.db.Update(func(tx *nutsdb.Tx) error {
		isMember, e := tx.SIsMember(bucketSets, []byte(key), []byte(member))
		if e != nil && !isNotFound(e) {
			return e
		}
		if isMember {
			added = false
			return nil
		}
		if e := tx.SAdd(bucketSets, []byte(key), []byte(member)); e != nil {
			return e
		}
		added = true
		return nil
	})
	return added, err
}

func (n *NutsDB) SetIsMember(ctx context.Context, key, member string) (bool, error) {
	var isMember bool
	err := n.db.View(func(tx *nutsdb.Tx) error {
		m, e := tx.SIsMember(bucketSets, []byte(key), []byte(member))
		if e != nil {
			if isNotFound(e) {
				return nil
			}
			return e
		}
		isMember = m
		return nil
	})
	return isMember, err
}

func (n *NutsDB) SetMembers(ctx context.Context, key string) ([]string, error) {
	var out []string
	err := n.db.View(func(tx *nutsdb.Tx) error {
		members, e := tx.SMembers(bucketSets, []byte(key))
		if e != nil {
			if isNotFound(e) {
				return nil
			}
			return e
		}
		for _, m := range members {
			out = append(out, string(m))
		}
		return nil
	})
	return out, err
}

func (n *NutsDB) SetDiff(ctx context.Context, keyA, keyB string) ([]string, error) {
	a, err := n.SetMembers(ctx, keyA)
	if err != nil {
		return nil, err
	}
	b, err := n.SetMembers(ctx, keyB)
	if err != nil {
		return nil, err
	}
	exclude := make(map[string]struct{}, len(b))
	for _, m := range b {
		exclude[m] = struct{}{}
	}
	var diff []string
	for _, m := range a {
		if _, skip := exclude[m]; !skip {
			diff = append(diff, m)
		}
	}
	return diff, nil
}

func (n *NutsDB) SetRemove(ctx context.Context, key, member string) (removed bool, err error) {
	err = n.db.Update(func(tx *nutsdb.Tx) error {
		isMember, e := tx.SIsMember(bucketSets, []byte(key), []byte(member))
		if e != nil && !isNotFound(e) {
			return e
		}
		if !isMember {
			removed = false
			return nil
		}
		if e := tx.SRem(bucketSets, []byte(key), []byte(member)); e != nil {
			return e
		}
		removed = true
		return nil
	})
	return removed, err
}

func (n *NutsDB) StringGet(ctx context.Context, key string) (value string, ok bool, err error) {
	err = n.db.View(func(tx *nutsdb.Tx) error {
		e, gerr := tx.Get(bucketStrings, []byte(key))
		if gerr != nil {
			if isNotFound(gerr) {
				return nil
			}
			return gerr
		}
		value = string(e.Value)
		ok = true
		return nil
	})
	return value, ok, err
}

func (n *NutsDB) StringSet(ctx context.Context, key, value string) error {
	return n.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Put(bucketStrings, []byte(key), []byte(value), 0)
	})
}

func (n *NutsDB) KeyDelete(ctx context.Context, keys ...string) error {
	return n.db.Update(func(tx *nutsdb.Tx) error {
		for _, key := range keys {
			for _, bucket := range []string{bucketStrings, bucketSets, bucketLists, bucketZSets} {
				if err := tx.Delete(bucket, []byte(key)); err != nil && !isNotFound(err) {
					return fmt.Errorf("delete %s from %s: %w", key, bucket, err)
				}
			}
		}
		return nil
	})
}

func (n *NutsDB) ListPushRight(ctx context.Context, key string, elems ...string) error {
	if len(elems) == 0 {
		return nil
	}
	values := make([][]byte, len(elems))
	for i, e := range elems {
		values[i] = []byte(e)
	}
	return n.db.Update(func(tx *nutsdb.Tx) error {
		return tx.RPush(bucketLists, []byte(key), values...)
	})
}

func (n *NutsDB) ListRange(ctx context.Context, key string, start, stop int) ([]string, error) {
	var out []string
	err := n.db.View(func(tx *nutsdb.Tx) error {
		values, e := tx.LRange(bucketLists, []byte(key), start, stop)
		if e != nil {
			if isNotFound(e) {
				return nil
			}
			return e
		}
		for _, v := range values {
			out = append(out, string(v))
		}
		return nil
	})
	return out, err
}

func (n *NutsDB) ListSet(ctx context.Context, key string, i int, value string) error {
	return n.db.Update(func(tx *nutsdb.Tx) error {
		return tx.LSet(bucketLists, []byte(key), i, []byte(value))
	})
}

func (n *NutsDB) ListRemove(ctx context.Context, key string, count int, value string) error {
	return n.db.Update(func(tx *nutsdb.Tx) error {
		if err := tx.LRem(bucketLists, []byte(key), count, []byte(value)); err != nil && !isNotFound(err) {
			return err
		}
		return nil
	})
}

func (n *NutsDB) ZSetAdd(ctx context.Context, key string, score float64, member string) (added bool, err error) {
	err = n.db.Update(func(tx *nutsdb.Tx) error {
		_, rerr := tx.ZRank(bucketZSets, []byte(key), []byte(member))
		existed := rerr == nil
		if e := tx.ZAdd(bucketZSets, []byte(key), score, []byte(member)); e != nil {
			return e
		}
		added = !existed
		return nil
	})
	return added, err
}

func (n *NutsDB) ZSetRange(ctx context.Context, key string, start, stop int) ([]string, error) {
	var out []string
	err := n.db.View(func(tx *nutsdb.Tx) error {
		members, e := tx.ZRangeByRank(bucketZSets, []byte(key), start, stop)
		if e != nil {
			if isNotFound(e) {
				return nil
			}
			return e
		}
		for _, m := range members {
			out = append(out, string(m.Value))
		}
		return nil
	})
	return out, err
}

func (n *NutsDB) ZSetRank(ctx context.Context, key, member string) (rank int, ok bool, err error) {
	err = n.db.View(func(tx *nutsdb.Tx) error {
		r, e := tx.ZRank(bucketZSets, []byte(key), []byte(member))
		if e != nil {
			if isNotFound(e) {
				return nil
			}
			return e
		}
		// nutsdb ranks are 1-based; the gateway contract is 0-based.
		rank = r - 1
		ok = true
		return nil
	})
	return rank, ok, err
}

func (n *NutsDB) ZSetRemove(ctx context.Context, key, member string) (removed bool, err error) {
	err = n.db.Update(func(tx *nutsdb.Tx) error {
		_, rerr := tx.ZRank(bucketZSets, []byte(key), []byte(member))
		if rerr != nil {
			removed = false
			return nil
		}
		if e := tx.ZRem(bucketZSets, []byte(key), []byte(member)); e != nil {
			return e
		}
		removed = true
		return nil
	})
	return removed, err
}
