package pagealloc

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

type memPages struct {
	pageSize int
	pages    map[int64][]byte
	failOn   int64
}

func newMemPages(pageSize int) *memPages {
	return &memPages{pageSize: pageSize, pages: make(map[int64][]byte), failOn: -1}
}

func (m *memPages) WritePage(page int64, buf []byte) error {
	if page == m.failOn {
		return errors.New("induced write failure")
	}
	m.pages[page] = bytes.Clone(buf)
	return nil
}

func (m *memPages) ReadPage(page int64, buf []byte) error {
	p, ok := m.pages[page]
	if !ok {
		return errors.New("page never written")
	}
	copy(buf, p)
	return nil
}

func TestFreeSetOrdering(t *testing.T) {
	s := NewFreeSet(7, 3, 9, 3)
	s.Add(1, 9)
	if got := s.Pages(); !slices.Equal(got, []int64{1, 3, 7, 9}) {
		t.Fatalf("got %v, expected [1 3 7 9]", got)
	}
	for _, want := range []int64{1, 3, 7, 9} {
		p, ok := s.PopMin()
		if !ok || p != want {
			t.Fatalf("PopMin got %d,%v expected %d", p, ok, want)
		}
	}
	if _, ok := s.PopMin(); ok {
		t.Error("PopMin on empty set succeeded")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0, 0, nil); err == nil {
		t.Error("expected error on zero page size")
	}
	if _, err := New(100, 2, []int64{2}); err == nil {
		t.Error("expected error on free page beyond next page")
	}
	if _, err := New(100, -1, nil); err == nil {
		t.Error("expected error on negative next page")
	}
}

func TestPagesFor(t *testing.T) {
	a, _ := New(100, 0, nil)
	cases := map[int]int{0: 0, 1: 1, 100: 1, 101: 2, 250: 3, 300: 3}
	for length, want := range cases {
		if got := a.PagesFor(length); got != want {
			t.Errorf("PagesFor(%d) got %d, expected %d", length, got, want)
		}
	}
}

// Mirrors the reference scenario: 250 bytes, shrink to 50, then a 300 byte newcomer.
func TestAssignScenario(t *testing.T) {
	a, _ := New(100, 0, nil)

	first := a.Assign(nil, 250)
	a.Commit(nil, first)
	if !slices.Equal(first, []int64{0, 1, 2}) {
		t.Fatalf("first got %v", first)
	}

	shrunk := a.Assign(first, 50)
	a.Commit(first, shrunk)
	if !slices.Equal(shrunk, []int64{0}) {
		t.Fatalf("shrunk got %v", shrunk)
	}
	if got := a.FreePages(); !slices.Equal(got, []int64{1, 2}) {
		t.Fatalf("free got %v", got)
	}

	other := a.Assign(nil, 300)
	a.Commit(nil, other)
	if !slices.Equal(other, []int64{1, 2, 3}) {
		t.Fatalf("other got %v", other)
	}
	if a.FreeCount() != 0 || a.NextPage() != 4 {
		t.Errorf("free %v next %d", a.FreePages(), a.NextPage())
	}
}

func TestAssignGrowKeepsOldPrefix(t *testing.T) {
	a, _ := New(10, 5, []int64{1, 3})
	got := a.Assign([]int64{4, 0}, 45)
	if !slices.Equal(got, []int64{4, 0, 1, 3, 5}) {
		t.Fatalf("got %v", got)
	}
	if a.NextPage() != 6 {
		t.Errorf("next page %d", a.NextPage())
	}
}

func TestRollbackReturnsOnlyNewPages(t *testing.T) {
	a, _ := New(10, 3, []int64{1})
	old := []int64{0}
	got := a.Assign(old, 30)
	a.Rollback(old, got)
	if want := []int64{1, 3}; !slices.Equal(a.FreePages(), want) {
		t.Errorf("free got %v, expected %v", a.FreePages(), want)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	m := newMemPages(8)
	a, _ := New(8, 0, nil)
	payload := []byte("the quick brown fox jumps")
	pages := a.Assign(nil, len(payload))
	scratch := make([]byte, 8)
	if err := WritePayload(m, 8, pages, payload, scratch); err != nil {
		t.Fatal(err)
	}
	if len(m.pages) != 4 {
		t.Fatalf("wrote %d pages, expected 4", len(m.pages))
	}
	for _, p := range m.pages {
		if len(p) != 8 {
			t.Fatalf("page write of %d bytes, expected full page", len(p))
		}
	}
	got, err := ReadPayload(m, 8, pages, len(payload), scratch)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q", got)
	}
}

func TestPayloadEmpty(t *testing.T) {
	m := newMemPages(8)
	scratch := make([]byte, 8)
	if err := WritePayload(m, 8, nil, nil, scratch); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPayload(m, 8, nil, 0, scratch)
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestPayloadWriteFailure(t *testing.T) {
	m := newMemPages(4)
	m.failOn = 1
	if err := WritePayload(m, 4, []int64{0, 1}, []byte("abcdefg"), make([]byte, 4)); err == nil {
		t.Error("expected induced failure")
	}
	if err := WritePayload(m, 4, []int64{0}, []byte("abcdefg"), make([]byte, 4)); err == nil {
		t.Error("expected page count mismatch error")
	}
}
