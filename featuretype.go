package nodestore

import "strings"

// QualifiedName is a namespace qualified feature type name.
type QualifiedName struct {
	Namespace string
	Local     string
}

func (q QualifiedName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return q.Namespace + ":" + q.Local
}

// AttributeDescriptor describes one attribute of a feature schema.
type AttributeDescriptor struct {
	Name string
	// Binding names the value type, e.g. "String", "Integer", "Point", "MultiPolygon".
	Binding  string
	Nillable bool
}

// Schema describes the attributes of a feature type.
type Schema struct {
	// GeometryAttribute names the default geometry attribute, if any.
	GeometryAttribute string
	Attributes        []AttributeDescriptor
}

// Spec renders the schema in the compact "name:Binding,..." form. The default geometry is prefixed with '*'.
func (s Schema) Spec() string {
	var sb strings.Builder
	for i, a := range s.Attributes {
		if i > 0 {
			sb.WriteByte(',')
		}
		if a.Name == s.GeometryAttribute {
			sb.WriteByte('*')
		}
		sb.WriteString(a.Name)
		sb.WriteByte(':')
		sb.WriteString(a.Binding)
	}
	return sb.String()
}

// FeatureType is the feature type metadata a storage records next to its nodes.
type FeatureType struct {
	Name   QualifiedName
	Schema Schema
}

// Equal compares two feature types by value.
func (f FeatureType) Equal(o FeatureType) bool {
	if f.Name != o.Name || f.Schema.GeometryAttribute != o.Schema.GeometryAttribute ||
		len(f.Schema.Attributes) != len(o.Schema.Attributes) {
		return false
	}
	for i := range f.Schema.Attributes {
		if f.Schema.Attributes[i] != o.Schema.Attributes[i] {
			return false
		}
	}
	return true
}
