// Package syncutil implements the generic mutex-guarded collections of
// SPEC_FULL.md supplement C.1: SynchronizedMap, SynchronizedSet and
// SynchronizedList, each offering a With(func) scoped-access escape
// hatch alongside their atomic single-operation methods.
//
// Grounded on original_source/Beam/Include/Beam/Utilities/
// SynchronizedMap.hpp/SynchronizedList.hpp: GetOrInsert/TestAndSet/
// Find/Insert/Update/Erase/Swap/With, translated from a boost::mutex-
// guarded container into a generic Go type over comparable keys.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package syncutil

import "sync"

// Map wraps a map[K]V behind a mutex, offering the atomic
// read-modify-write operations SynchronizedMap provides instead of
// forcing every caller to hold the lock manually.
type Map[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// NewMap builds an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{m: make(map[K]V)}
}

// GetOrInsert returns the value at key, inserting build()'s result first
// if the key is absent.
func (m *Map[K, V]) GetOrInsert(key K, build func() V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.m[key]; ok {
		return v
	}
	v := build()
	m.m[key] = v
	return v
}

// TestAndSet inserts build()'s result at key only if test(existing, ok)
// returns true, returning the value now stored (existing or newly
// built) and whether an insert happened.
func (m *Map[K, V]) TestAndSet(key K, test func(existing V, ok bool) bool, build func() V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.m[key]
	if !test(existing, ok) {
		return existing, false
	}
	v := build()
	m.m[key] = v
	return v, true
}

// Find returns the value at key and whether it was present.
func (m *Map[K, V]) Find(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	return v, ok
}

// Insert stores value at key only if key is absent, reporting whether
// the insert happened.
func (m *Map[K, V]) Insert(key K, value V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.m[key]; ok {
		return false
	}
	m.m[key] = value
	return true
}

// Update stores value at key unconditionally.
func (m *Map[K, V]) Update(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
}

// Erase removes key, a no-op if absent.
func (m *Map[K, V]) Erase(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
}

// Clear empties the map.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m = make(map[K]V)
}

// Len returns the current entry count.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.m)
}

// With runs f with exclusive access to the underlying map, for
// operations GetOrInsert/TestAndSet/etc. don't cover (multi-key
// invariants, iteration). f must not call back into m.
func (m *Map[K, V]) With(f func(map[K]V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f(m.m)
}
