package store

import (
	"context"
	"sort"
	"sync"
)

// Mem is an in-memory Store used by tests. It implements the same contract
// as NutsDB without touching disk.
type Mem struct {
	mu      sync.Mutex
	strings map[string]string
	sets    map[string]map[string]struct{}
	lists   map[string][]string
	zsets   map[string]map[string]float64
}

// NewMem creates an empty in-memory Store.
func NewMem() *Mem {
	return &Mem{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
		lists:   make(map[string][]string),
		zsets:   make(map[string]map[string]float64),
	}
}

func (m *Mem) Close() error { return nil }

func (m *Mem) SetAdd(ctx context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	if _, exists := set[member]; exists {
		return false, nil
	}
	set[member] = struct{}{}
	return true, nil
}

func (m *Mem) SetIsMember(ctx context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sets[key][member]
	return ok, nil
}

func (m *Mem) SetMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.sets[key]), nil
}

func (m *Mem) SetDiff(ctx context.Context, keyA, keyB string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var diff []string
	for member := range m.sets[keyA] {
		if _, excluded := m.sets[keyB][member]; !excluded {
			diff = append(diff, member)
		}
	}
	sort.Strings(diff)
	return diff, nil
}

func (m *Mem) SetRemove(ctx context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		return false, nil
	}
	if _, exists := set[member]; !exists {
		return false, nil
	}
	delete(set, member)
	return true, nil
}

func (m *Mem) StringGet(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *Mem) StringSet(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[key] = value
	return nil
}

func (m *Mem) KeyDelete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.strings, key)
		delete(m.sets, key)
		delete(m.lists, key)
		delete(m.zsets, key)
	}
	return nil
}

func (m *Mem) ListPushRight(ctx context.Context, key string, elems ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append(m.lists[key], elems...)
	return nil
}

func (m *Mem) ListRange(ctx context.Context, key string, start, stop int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	if stop < 0 || stop >= len(list) {
		stop = len(list) - 1
	}
	if start < 0 {
		start = 0
	}
	if start > stop || start >= len(list) {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (m *Mem) ListSet(ctx context.Context, key string, i int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	if i < 0 || i >= len(list) {
		return nil
	}
	list[i] = value
	return nil
}

func (m *Mem) ListRemove(ctx context.Context, key string, count int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	out := make([]string, 0, len(list))
	removed := 0
	for _, v := range list {
		if v == value && (count <= 0 || removed < count) {
			removed++
			continue
		}
		out = append(out, v)
	}
	m.lists[key] = out
	return nil
}

func (m *Mem) ZSetAdd(ctx context.Context, key string, score float64, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	zset, ok := m.zsets[key]
	if !ok {
		zset = make(map[string]float64)
		m.zsets[key] = zset
	}
	_, existed := zset[member]
	zset[member] = score
	return !existed, nil
}

func (m *Mem) ZSetRange(ctx context.Context, key string, start, stop int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := zsetMembersByScore(m.zsets[key])
	if stop < 0 || stop >= len(members) {
		stop = len(members) - 1
	}
	if start < 0 {
		start = 0
	}
	if start > stop || start >= len(members) {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, members[start:stop+1])
	return out, nil
}

func (m *Mem) ZSetRank(ctx context.Context, key, member string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	zset, ok := m.zsets[key]
	if !ok {
		return 0, false, nil
	}
	if _, exists := zset[member]; !exists {
		return 0, false, nil
	}
	members := zsetMembersByScore(zset)
	for i, mm := range members {
		if mm == member {
			return i, true, nil
		}
	}
	return 0, false, nil
}

func (m *Mem) ZSetRemove(ctx context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	zset, ok := m.zsets[key]
	if !ok {
		return false, nil
	}
	if _, exists := zset[member]; !exists {
		return false, nil
	}
	delete(zset, member)
	return true, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func zsetMembersByScore(zset map[string]float64) []string {
	out := make([]string, 0, len(zset))
	for m := range zset {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if zset[out[i]] == zset[out[j]] {
			return out[i] < out[j]
		}
		return zset[out[i]] < zset[out[j]]
	})
	return out
}

var _ Store = (*Mem)(nil)
