// Package pagealloc implements the page allocation policy of the disk node store, free of any file I/O.
//
// A payload of n bytes needs ceil(n/pageSize) pages. Pages are chosen, in order of preference, from
// the payload's previous page list, then the smallest free page, then a brand new page at the end of
// the file. Previously owned pages the new payload does not need are returned to the free set.
package pagealloc

import (
	"fmt"
	"slices"
)

// Allocator hands out page numbers of a single paged file.
// It is not safe for concurrent use; the owning storage serializes access.
type Allocator struct {
	pageSize int
	nextPage int64
	free     *FreeSet
}

// New returns an allocator for pages of pageSize bytes, where nextPage is the first never used
// page and free lists reclaimed pages below it.
func New(pageSize int, nextPage int64, free []int64) (*Allocator, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if nextPage < 0 {
		return nil, fmt.Errorf("next page must not be negative, got %d", nextPage)
	}
	for _, p := range free {
		if p < 0 || p >= nextPage {
			return nil, fmt.Errorf("free page %d outside of [0, %d)", p, nextPage)
		}
	}
	return &Allocator{
		pageSize: pageSize,
		nextPage: nextPage,
		free:     NewFreeSet(free...),
	}, nil
}

// PageSize returns the fixed page size.
func (a *Allocator) PageSize() int {
	return a.pageSize
}

// NextPage returns the first page number never handed out.
func (a *Allocator) NextPage() int64 {
	return a.nextPage
}

// FreePages returns the reclaimed pages in ascending order.
func (a *Allocator) FreePages() []int64 {
	return a.free.Pages()
}

// FreeCount returns the number of reclaimed pages.
func (a *Allocator) FreeCount() int {
	return a.free.Len()
}

// IsFree reports whether page is in the free set.
func (a *Allocator) IsFree(page int64) bool {
	return a.free.Contains(page)
}

// PagesFor returns how many pages a payload of length bytes occupies.
func (a *Allocator) PagesFor(length int) int {
	if length <= 0 {
		return 0
	}
	return (length + a.pageSize - 1) / a.pageSize
}

// Assign picks the pages for a payload of length bytes whose previous incarnation owned old.
// The returned list reuses a prefix of old, then free pages, then new ones. The caller must pass
// the same old list to Commit once the payload is written, or Rollback on failure.
func (a *Allocator) Assign(old []int64, length int) []int64 {
	need := a.PagesFor(length)
	pages := make([]int64, 0, need)
	reuse := min(need, len(old))
	pages = append(pages, old[:reuse]...)
	for len(pages) < need {
		if p, ok := a.free.PopMin(); ok {
			pages = append(pages, p)
			continue
		}
		pages = append(pages, a.nextPage)
		a.nextPage++
	}
	return pages
}

// Commit releases the pages of old that assigned did not reuse.
func (a *Allocator) Commit(old, assigned []int64) {
	if len(old) > len(assigned) {
		a.free.Add(old[len(assigned):]...)
	}
}

// Rollback returns the pages of assigned that did not come from old. New pages taken at the end of
// the file are released to the free set rather than un-allocated.
func (a *Allocator) Rollback(old, assigned []int64) {
	for _, p := range assigned {
		if !slices.Contains(old, p) {
			a.free.Add(p)
		}
	}
}

// Release returns pages to the free set.
func (a *Allocator) Release(pages []int64) {
	a.free.Add(pages...)
}

// Reset forgets every allocation.
func (a *Allocator) Reset() {
	a.nextPage = 0
	a.free.Clear()
}
