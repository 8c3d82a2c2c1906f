// Package algo implements the small generic helper grab-bag of
// SPEC_FULL.md supplement C.3: Remove, RemoveIf, SortedMerge and
// BinaryConvert. No pack dependency covers generic slice algorithms
// this small, so this package stays stdlib generics - the
// stdlib-justification case the grounding rule expects for it.
//
// Grounded on original_source/Beam/Include/Beam/Utilities/
// Algorithm.hpp: RemoveFirst's swap-with-back removal (order doesn't
// matter, so pop the back element into the hole instead of shifting),
// and MergeWithoutDuplicates's three-way merge of two already-sorted
// ranges.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package algo

// Remove deletes the first element equal to v from s by swapping it with
// the last element and truncating - O(1) but does not preserve order,
// matching RemoveFirst's "doesn't matter, it's about to be erased"
// tradeoff. Reports whether an element was removed.
func Remove[T comparable](s []T, v T) ([]T, bool) {
	for i, x := range s {
		if x == v {
			last := len(s) - 1
			s[i] = s[last]
			return s[:last], true
		}
	}
	return s, false
}

// RemoveIf deletes every element for which match returns true,
// preserving the relative order of the elements that remain - the
// index-stable counterpart to Remove.
func RemoveIf[T any](s []T, match func(T) bool) []T {
	kept := s[:0]
	for _, v := range s {
		if !match(v) {
			kept = append(kept, v)
		}
	}
	return kept
}

// SortedMerge merges two slices already sorted by less, eliminating
// values that compare equal across the two inputs (neither less(a,b) nor
// less(b,a)) - a direct port of MergeWithoutDuplicates's three-way
// walk.
func SortedMerge[T any](a, b []T, less func(x, y T) bool) []T {
	out := make([]T, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case less(a[i], b[j]):
			out = append(out, a[i])
			i++
		case less(b[j], a[i]):
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Unsigned is the set of widths BinaryConvert/BinaryConvertFrom
// support.
type Unsigned interface {
	~uint16 | ~uint32 | ~uint64
}

// BinaryConvert encodes v as big-endian bytes, width bytes wide - the Go
// stand-in for the original's reinterpret-the-bytes-of-a-POD idiom,
// which has no direct equivalent without unsafe.
func BinaryConvert[T Unsigned](v T, width int) []byte {
	out := make([]byte, width)
	u := uint64(v)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(u)
		u >>= 8
	}
	return out
}

// BinaryConvertFrom decodes bytes produced by BinaryConvert back into T.
func BinaryConvertFrom[T Unsigned](b []byte) T {
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return T(u)
}
