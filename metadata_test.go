package nodestore

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMetadataFeatureTypes(t *testing.T) {
	var m Metadata
	if len(m.FeatureTypes()) != 0 {
		t.Fatal("zero value metadata should be empty")
	}
	roads := FeatureType{
		Name: QualifiedName{Namespace: "topp", Local: "roads"},
		Schema: Schema{
			GeometryAttribute: "geom",
			Attributes: []AttributeDescriptor{
				{Name: "geom", Binding: "MultiLineString"},
				{Name: "name", Binding: "String", Nillable: true},
			},
		},
	}
	states := FeatureType{Name: QualifiedName{Namespace: "topp", Local: "states"}}
	m.AddFeatureType(states)
	m.AddFeatureType(roads)
	m.AddFeatureType(roads)

	got := m.FeatureTypes()
	if len(got) != 2 || !got[0].Equal(roads) || !got[1].Equal(states) {
		t.Errorf("unexpected feature types %+v", got)
	}
	if s := roads.Schema.Spec(); s != "*geom:MultiLineString,name:String" {
		t.Errorf("unexpected schema spec %q", s)
	}
	if roads.Name.String() != "topp:roads" {
		t.Errorf("unexpected name %s", roads.Name)
	}
	m.ClearFeatureTypes()
	if len(m.FeatureTypes()) != 0 {
		t.Error("ClearFeatureTypes left entries")
	}
}

func TestMetadataBounds(t *testing.T) {
	var m Metadata
	if m.Bounds() != nil {
		t.Fatal("bounds should start unset")
	}
	b := NewEnvelope(1, 2, 3, 4)
	m.SetBounds(&b)
	b.MinX = 100
	got := m.Bounds()
	if got == nil || got.MinX != 1 {
		t.Fatalf("SetBounds should copy, got %v", got)
	}
	got.MaxX = 100
	if m.Bounds().MaxX != 3 {
		t.Error("Bounds should return a copy")
	}
	m.ClearBounds()
	if m.Bounds() != nil {
		t.Error("ClearBounds left bounds set")
	}
}

func TestMetadataConcurrentAccess(t *testing.T) {
	var m Metadata
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.AddFeatureType(FeatureType{Name: QualifiedName{Local: fmt.Sprintf("t%d", i)}})
				e := NewEnvelope(0, 0, float64(j), float64(j))
				m.SetBounds(&e)
				m.FeatureTypes()
				m.Bounds()
			}
		}(i)
	}
	wg.Wait()
	if len(m.FeatureTypes()) != 8 {
		t.Errorf("expected 8 feature types, got %d", len(m.FeatureTypes()))
	}
}

func TestEnvelope(t *testing.T) {
	a := NewEnvelope(0, 0, 2, 2)
	b := NewEnvelope(1, 1, 3, 3)
	c := NewEnvelope(5, 5, 6, 6)
	if !a.Intersects(b) || a.Intersects(c) {
		t.Error("Intersects is off")
	}
	if !a.Intersects(NewEnvelope(2, 2, 4, 4)) {
		t.Error("touching edges should intersect")
	}
	if u := a.Union(c); u != NewEnvelope(0, 0, 6, 6) {
		t.Errorf("unexpected union %v", u)
	}
	if !a.Union(c).Contains(b) || a.Contains(b) {
		t.Error("Contains is off")
	}
	empty := NewEnvelope(1, 1, 0, 0)
	if !empty.IsEmpty() || empty.Area() != 0 || empty.Union(a) != a || a.Union(empty) != a {
		t.Error("empty envelope handling is off")
	}
	if a.Area() != 4 {
		t.Errorf("area got %v", a.Area())
	}
}

func TestErrors(t *testing.T) {
	id := NewNodeID()
	err := fmt.Errorf("remove: %w", NodeNotFound(id))
	if CodeOf(err) != InvalidArgument || !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("unexpected %v", err)
	}
	var e Error
	if !errors.As(err, &e) || e.UserData != id {
		t.Error("user data should carry the id")
	}
	if !errors.Is(Disposed(), ErrDisposed) || CodeOf(Disposed()) != StorageDisposed {
		t.Error("Disposed is off")
	}
	if CodeOf(errors.New("plain")) != Unknown || CodeOf(nil) != Unknown {
		t.Error("plain errors carry no code")
	}
}

func TestNodeID(t *testing.T) {
	a := NewNodeID()
	p, err := ParseNodeID(a.String())
	if err != nil || p != a {
		t.Fatalf("ParseNodeID round trip failed: %v", err)
	}
	if _, err := ParseNodeID("not-an-id"); err == nil {
		t.Error("expected parse failure")
	}
	if !NilNodeID.IsNil() || a.IsNil() {
		t.Error("IsNil is off")
	}
	if a.Compare(a) != 0 || NilNodeID.Compare(a) != -1 || a.Compare(NilNodeID) != 1 {
		t.Error("Compare is off")
	}
}
