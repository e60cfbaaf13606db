package nodestore

import (
	"fmt"
	"math"
)

// Envelope is an axis aligned 2D bounding box.
type Envelope struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewEnvelope creates a new Envelope.
func NewEnvelope(minX, minY, maxX, maxY float64) Envelope {
	return Envelope{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// IsEmpty reports whether the envelope encloses no area at all (min greater than max on either axis).
func (e Envelope) IsEmpty() bool {
	return e.MinX > e.MaxX || e.MinY > e.MaxY
}

// Area returns the area of the envelope, zero for an empty one.
func (e Envelope) Area() float64 {
	if e.IsEmpty() {
		return 0
	}
	return (e.MaxX - e.MinX) * (e.MaxY - e.MinY)
}

// Intersects reports whether the two envelopes overlap, touching edges included.
func (e Envelope) Intersects(other Envelope) bool {
	return e.MinX <= other.MaxX && e.MaxX >= other.MinX &&
		e.MinY <= other.MaxY && e.MaxY >= other.MinY
}

// Contains reports whether other lies completely inside e.
func (e Envelope) Contains(other Envelope) bool {
	return e.MinX <= other.MinX && e.MaxX >= other.MaxX &&
		e.MinY <= other.MinY && e.MaxY >= other.MaxY
}

// Union returns the smallest envelope enclosing both.
func (e Envelope) Union(other Envelope) Envelope {
	if e.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return e
	}
	return Envelope{
		MinX: math.Min(e.MinX, other.MinX),
		MinY: math.Min(e.MinY, other.MinY),
		MaxX: math.Max(e.MaxX, other.MaxX),
		MaxY: math.Max(e.MaxY, other.MaxY),
	}
}

func (e Envelope) String() string {
	return fmt.Sprintf("[(%.6f, %.6f), (%.6f, %.6f)]", e.MinX, e.MinY, e.MaxX, e.MaxY)
}
