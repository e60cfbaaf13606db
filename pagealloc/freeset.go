package pagealloc

import "slices"

// FreeSet is an ascending set of reclaimed page numbers.
type FreeSet struct {
	pages []int64
}

// NewFreeSet returns a set holding pages. Duplicates are dropped.
func NewFreeSet(pages ...int64) *FreeSet {
	s := &FreeSet{}
	s.Add(pages...)
	return s
}

// Add inserts pages, keeping the set sorted. Pages already present are ignored.
func (s *FreeSet) Add(pages ...int64) {
	for _, p := range pages {
		i, found := slices.BinarySearch(s.pages, p)
		if found {
			continue
		}
		s.pages = slices.Insert(s.pages, i, p)
	}
}

// PopMin removes and returns the smallest page.
func (s *FreeSet) PopMin() (int64, bool) {
	if len(s.pages) == 0 {
		return 0, false
	}
	p := s.pages[0]
	s.pages = s.pages[1:]
	return p, true
}

// Contains reports whether page is in the set.
func (s *FreeSet) Contains(page int64) bool {
	_, found := slices.BinarySearch(s.pages, page)
	return found
}

// Len returns the number of free pages.
func (s *FreeSet) Len() int {
	return len(s.pages)
}

// Pages returns a sorted copy of the set.
func (s *FreeSet) Pages() []int64 {
	return slices.Clone(s.pages)
}

// Clear empties the set.
func (s *FreeSet) Clear() {
	s.pages = nil
}
