// Package set provides a generic set backed by a map.
package set

import (
	"cmp"
	"slices"
)

type Set[T comparable] map[T]struct{}

func New[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value and reports whether it was absent.
func (s Set[T]) Add(value T) bool {
	if _, exists := s[value]; exists {
		return false
	}
	s[value] = struct{}{}
	return true
}

func (s Set[T]) Contains(value T) bool {
	_, exists := s[value]
	return exists
}

func (s Set[T]) Remove(value T) {
	delete(s, value)
}

func (s Set[T]) Len() int {
	return len(s)
}

// Sorted returns the values of s in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	values := make([]T, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}
