package cache

import (
	"slices"
	"testing"
)

func TestLRUOrdering(t *testing.T) {
	c := NewLRU[int, string](3)
	c.Set(1, "a")
	c.Set(2, "b")
	c.Set(3, "c")
	if !c.IsFull() {
		t.Fatal("expected full cache")
	}
	if got := c.Keys(); !slices.Equal(got, []int{3, 2, 1}) {
		t.Fatalf("keys got %v", got)
	}
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Fatalf("Get(1) got %q,%v", v, ok)
	}
	if k, _, _ := c.Oldest(); k != 2 {
		t.Errorf("oldest got %d, expected 2", k)
	}
	c.Set(3, "cc")
	if got := c.Keys(); !slices.Equal(got, []int{3, 1, 2}) {
		t.Errorf("keys after update got %v", got)
	}
	if v, _ := c.Peek(3); v != "cc" {
		t.Errorf("Peek(3) got %q", v)
	}
}

func TestLRUPeekDoesNotBump(t *testing.T) {
	c := NewLRU[int, int](2)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Peek(1)
	if k, _, _ := c.Oldest(); k != 1 {
		t.Errorf("oldest got %d, expected 1", k)
	}
}

func TestLRUDeleteAndClear(t *testing.T) {
	c := NewLRU[string, int](0)
	if c.Capacity() != 1 {
		t.Fatalf("capacity got %d", c.Capacity())
	}
	c.Set("x", 1)
	if !c.Delete("x") || c.Delete("x") {
		t.Error("Delete did not report presence correctly")
	}
	if _, _, ok := c.Oldest(); ok {
		t.Error("Oldest on empty cache reported an entry")
	}
	c.Set("y", 2)
	c.Clear()
	if c.Count() != 0 || c.Contains("y") {
		t.Error("Clear left entries behind")
	}
}

func TestLRUEvictionLoop(t *testing.T) {
	c := NewLRU[int, int](4)
	for i := 0; i < 10; i++ {
		if c.IsFull() {
			k, _, _ := c.Oldest()
			c.Delete(k)
		}
		c.Set(i, i)
	}
	if got := c.Keys(); !slices.Equal(got, []int{9, 8, 7, 6}) {
		t.Errorf("keys got %v", got)
	}
}
