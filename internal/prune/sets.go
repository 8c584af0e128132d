package prune

import (
	"slices"

	"github.com/patrickmn/go-cache"
)

// hashSet remembers hashes that shaman has confirmed. Entries never expire
// and are never removed; a miss means "ask shaman", not "absent".
type hashSet struct {
	c *cache.Cache
}

func newHashSet() *hashSet {
	return &hashSet{c: cache.New(cache.NoExpiration, 0)}
}

func (s *hashSet) Has(hash string) bool {
	_, ok := s.c.Get(hash)
	return ok
}

func (s *hashSet) Add(hash string) {
	s.c.Set(hash, struct{}{}, cache.NoExpiration)
}

func (s *hashSet) Len() int {
	return s.c.ItemCount()
}

// nameSet is an add-only set of strings that remembers insertion order.
type nameSet struct {
	seen  map[string]struct{}
	order []string
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]struct{})}
}

// Add inserts name and reports whether it was new.
func (s *nameSet) Add(name string) bool {
	if _, ok := s.seen[name]; ok {
		return false
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
	return true
}

func (s *nameSet) Has(name string) bool {
	_, ok := s.seen[name]
	return ok
}

func (s *nameSet) Len() int {
	return len(s.order)
}

// Ordered returns the names in insertion order.
func (s *nameSet) Ordered() []string {
	return slices.Clone(s.order)
}

// Sorted returns the names in lexicographic order.
func (s *nameSet) Sorted() []string {
	names := slices.Clone(s.order)
	slices.Sort(names)
	return names
}
