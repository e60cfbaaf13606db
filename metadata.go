package nodestore

import (
	"slices"
	"strings"
	"sync"
)

// Metadata holds the feature types and bounding region attached to a storage. It is
// independent of node storage and safe for concurrent use. Backends embed it by value.
type Metadata struct {
	mu           sync.RWMutex
	featureTypes map[QualifiedName]FeatureType
	bounds       *Envelope
}

// FeatureTypes returns the registered feature types sorted by qualified name.
func (m *Metadata) FeatureTypes() []FeatureType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := make([]FeatureType, 0, len(m.featureTypes))
	for _, ft := range m.featureTypes {
		r = append(r, ft)
	}
	slices.SortFunc(r, func(a, b FeatureType) int {
		if c := strings.Compare(a.Name.Namespace, b.Name.Namespace); c != 0 {
			return c
		}
		return strings.Compare(a.Name.Local, b.Name.Local)
	})
	return r
}

// AddFeatureType registers ft, replacing any feature type with the same name.
func (m *Metadata) AddFeatureType(ft FeatureType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.featureTypes == nil {
		m.featureTypes = make(map[QualifiedName]FeatureType)
	}
	m.featureTypes[ft.Name] = ft
}

// ClearFeatureTypes forgets all feature types.
func (m *Metadata) ClearFeatureTypes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.featureTypes = nil
}

// Bounds returns a copy of the bounding region, nil when unset.
func (m *Metadata) Bounds() *Envelope {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.bounds == nil {
		return nil
	}
	b := *m.bounds
	return &b
}

// SetBounds replaces the bounding region. Passing nil clears it.
func (m *Metadata) SetBounds(b *Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b == nil {
		m.bounds = nil
		return
	}
	c := *b
	m.bounds = &c
}

// ClearBounds unsets the bounding region.
func (m *Metadata) ClearBounds() {
	m.SetBounds(nil)
}
