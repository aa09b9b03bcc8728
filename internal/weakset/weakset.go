// Package weakset provides an identity set that does not keep its members
// alive.
//
// Membership is by pointer identity. When a member becomes unreachable and is
// collected, its entry is removed by a runtime cleanup. The set supports
// membership test and insertion only; it cannot be iterated.
package weakset

import (
	"runtime"
	"sync"
	"weak"
)

// Set is a weak identity set of *T. The zero value is ready to use.
type Set[T any] struct {
	mu      sync.Mutex
	members map[weak.Pointer[T]]struct{}
}

// New returns an empty set.
func New[T any]() *Set[T] {
	return &Set[T]{}
}

// Add inserts p and reports whether it was newly added. Nil is never a
// member.
func (s *Set[T]) Add(p *T) bool {
	if p == nil {
		return false
	}
	key := weak.Make(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.members == nil {
		s.members = make(map[weak.Pointer[T]]struct{})
	}
	if _, ok := s.members[key]; ok {
		return false
	}
	s.members[key] = struct{}{}
	runtime.AddCleanup(p, s.forget, key)
	return true
}

// Has reports whether p is a member.
func (s *Set[T]) Has(p *T) bool {
	if p == nil {
		return false
	}
	key := weak.Make(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[key]
	return ok
}

// Len returns the number of live members.
func (s *Set[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

func (s *Set[T]) forget(key weak.Pointer[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, key)
}
