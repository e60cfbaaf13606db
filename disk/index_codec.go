package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/encoding"
)

const (
	indexMagic   = "NSIX"
	indexVersion = 1
	checksumSize = 8
)

// entry maps a node to the pages that hold its serialized bytes.
type entry struct {
	id     nodestore.NodeID
	length int
	pages  []int64
}

// indexSnapshot is everything the index file persists.
type indexSnapshot struct {
	pageSize     int
	nextPage     int64
	free         []int64
	entries      []*entry
	bounds       *nodestore.Envelope
	featureTypes []nodestore.FeatureType
}

func encodeIndex(s *indexSnapshot) []byte {
	w := encoding.NewWriter(64 + len(s.free)*8 + len(s.entries)*40)
	w.PutRaw([]byte(indexMagic))
	w.PutUint16(indexVersion)
	w.PutInt32(int32(s.pageSize))
	w.PutInt64(s.nextPage)

	w.PutUint32(uint32(len(s.free)))
	for _, p := range s.free {
		w.PutInt64(p)
	}

	entries := slices.Clone(s.entries)
	slices.SortFunc(entries, func(a, b *entry) int { return a.id.Compare(b.id) })
	w.PutUint32(uint32(len(entries)))
	for _, e := range entries {
		w.PutRaw(e.id[:])
		w.PutInt64(int64(e.length))
		w.PutUint32(uint32(len(e.pages)))
		for _, p := range e.pages {
			w.PutInt64(p)
		}
	}

	w.PutBool(s.bounds != nil)
	if s.bounds != nil {
		w.PutFloat64(s.bounds.MinX)
		w.PutFloat64(s.bounds.MinY)
		w.PutFloat64(s.bounds.MaxX)
		w.PutFloat64(s.bounds.MaxY)
	}

	w.PutUint32(uint32(len(s.featureTypes)))
	for _, ft := range s.featureTypes {
		w.PutString(ft.Name.Namespace)
		w.PutString(ft.Name.Local)
		w.PutString(ft.Schema.GeometryAttribute)
		w.PutUint32(uint32(len(ft.Schema.Attributes)))
		for _, a := range ft.Schema.Attributes {
			w.PutString(a.Name)
			w.PutString(a.Binding)
			w.PutBool(a.Nillable)
		}
	}

	w.PutUint64(xxhash.Sum64(w.Data()))
	return w.Data()
}

func indexError(format string, args ...any) error {
	return nodestore.Error{Code: nodestore.DecodeFailure, Err: fmt.Errorf("index: "+format, args...)}
}

// verifyIndex checks the framing and checksum only.
func verifyIndex(data []byte) error {
	if len(data) < len(indexMagic)+2+checksumSize {
		return indexError("%d bytes is too short", len(data))
	}
	if !bytes.Equal(data[:len(indexMagic)], []byte(indexMagic)) {
		return indexError("bad magic %q", data[:len(indexMagic)])
	}
	body := data[:len(data)-checksumSize]
	want := binary.LittleEndian.Uint64(data[len(body):])
	if got := xxhash.Sum64(body); got != want {
		return indexError("checksum mismatch, got %x want %x", got, want)
	}
	return nil
}

func decodeIndex(data []byte) (*indexSnapshot, error) {
	if err := verifyIndex(data); err != nil {
		return nil, err
	}
	r := encoding.NewReader(data[len(indexMagic) : len(data)-checksumSize])
	if v := r.Uint16(); v != indexVersion {
		return nil, indexError("unsupported version %d", v)
	}
	s := &indexSnapshot{
		pageSize: int(r.Int32()),
		nextPage: r.Int64(),
	}

	s.free = make([]int64, r.Count(8))
	for i := range s.free {
		s.free[i] = r.Int64()
	}

	s.entries = make([]*entry, r.Count(16+8+4))
	for i := range s.entries {
		e := &entry{}
		copy(e.id[:], r.Raw(16))
		e.length = int(r.Int64())
		e.pages = make([]int64, r.Count(8))
		for j := range e.pages {
			e.pages[j] = r.Int64()
		}
		s.entries[i] = e
	}

	if r.Bool() {
		s.bounds = &nodestore.Envelope{
			MinX: r.Float64(),
			MinY: r.Float64(),
			MaxX: r.Float64(),
			MaxY: r.Float64(),
		}
	}

	s.featureTypes = make([]nodestore.FeatureType, r.Count(3*4+4))
	for i := range s.featureTypes {
		ft := &s.featureTypes[i]
		ft.Name.Namespace = r.String()
		ft.Name.Local = r.String()
		ft.Schema.GeometryAttribute = r.String()
		if n := r.Count(4 + 4 + 1); n > 0 {
			ft.Schema.Attributes = make([]nodestore.AttributeDescriptor, n)
			for j := range ft.Schema.Attributes {
				ft.Schema.Attributes[j] = nodestore.AttributeDescriptor{
					Name:     r.String(),
					Binding:  r.String(),
					Nillable: r.Bool(),
				}
			}
		}
	}

	if err := r.Err(); err != nil {
		return nil, indexError("%v", err)
	}
	if r.Remaining() != 0 {
		return nil, indexError("%d trailing bytes", r.Remaining())
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// validate checks that every page below nextPage is either owned by exactly one entry or free.
func (s *indexSnapshot) validate() error {
	if s.pageSize <= 0 {
		return indexError("page size %d", s.pageSize)
	}
	if s.nextPage < 0 {
		return indexError("next page %d", s.nextPage)
	}
	seen := make(map[int64]struct{}, min(s.nextPage, 1<<16))
	claim := func(p int64) error {
		if p < 0 || p >= s.nextPage {
			return indexError("page %d outside [0, %d)", p, s.nextPage)
		}
		if _, ok := seen[p]; ok {
			return indexError("page %d claimed twice", p)
		}
		seen[p] = struct{}{}
		return nil
	}
	for _, p := range s.free {
		if err := claim(p); err != nil {
			return err
		}
	}
	ids := make(map[nodestore.NodeID]struct{}, len(s.entries))
	for _, e := range s.entries {
		if _, ok := ids[e.id]; ok {
			return indexError("node %s listed twice", e.id)
		}
		ids[e.id] = struct{}{}
		if e.length < 0 || (e.length+s.pageSize-1)/s.pageSize != len(e.pages) {
			return indexError("node %s has %d bytes on %d pages", e.id, e.length, len(e.pages))
		}
		for _, p := range e.pages {
			if err := claim(p); err != nil {
				return err
			}
		}
	}
	if int64(len(seen)) != s.nextPage {
		return indexError("%d of %d pages accounted for", len(seen), s.nextPage)
	}
	return nil
}
