package restapi

import (
	"github.com/sharedcode/nodestore"
)

// Node is the JSON form of a node. Byte fields travel base64 encoded.
type Node struct {
	ID      string  `json:"id"`
	Level   uint32  `json:"level"`
	Entries []Entry `json:"entries,omitempty"`
	Payload []byte  `json:"payload,omitempty"`
}

type Entry struct {
	Bounds Envelope `json:"bounds"`
	Child  string   `json:"child,omitempty"`
	Data   []byte   `json:"data,omitempty"`
}

type Envelope struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

type FeatureType struct {
	Namespace         string      `json:"namespace"`
	Local             string      `json:"local" binding:"required"`
	GeometryAttribute string      `json:"geometry_attribute,omitempty"`
	Attributes        []Attribute `json:"attributes,omitempty"`
	// Spec is the compact "*geom:Point,name:String" form, output only.
	Spec string `json:"spec,omitempty"`
}

type Attribute struct {
	Name     string `json:"name" binding:"required"`
	Binding  string `json:"binding"`
	Nillable bool   `json:"nillable"`
}

func toNode(n *nodestore.Node) Node {
	r := Node{
		ID:      n.ID.String(),
		Level:   n.Level,
		Payload: n.Payload,
	}
	for _, e := range n.Entries {
		je := Entry{
			Bounds: Envelope(e.Bounds),
			Data:   e.Data,
		}
		if !e.Child.IsNil() {
			je.Child = e.Child.String()
		}
		r.Entries = append(r.Entries, je)
	}
	return r
}

func fromNode(id nodestore.NodeID, n Node) (*nodestore.Node, error) {
	r := &nodestore.Node{
		ID:      id,
		Level:   n.Level,
		Payload: n.Payload,
	}
	for _, je := range n.Entries {
		e := nodestore.Entry{
			Bounds: nodestore.Envelope(je.Bounds),
			Data:   je.Data,
		}
		if je.Child != "" {
			child, err := nodestore.ParseNodeID(je.Child)
			if err != nil {
				return nil, err
			}
			e.Child = child
		}
		r.Entries = append(r.Entries, e)
	}
	return r, nil
}

func toFeatureType(ft nodestore.FeatureType) FeatureType {
	r := FeatureType{
		Namespace:         ft.Name.Namespace,
		Local:             ft.Name.Local,
		GeometryAttribute: ft.Schema.GeometryAttribute,
		Spec:              ft.Schema.Spec(),
	}
	for _, a := range ft.Schema.Attributes {
		r.Attributes = append(r.Attributes, Attribute(a))
	}
	return r
}

func fromFeatureType(ft FeatureType) nodestore.FeatureType {
	r := nodestore.FeatureType{
		Name: nodestore.QualifiedName{Namespace: ft.Namespace, Local: ft.Local},
		Schema: nodestore.Schema{
			GeometryAttribute: ft.GeometryAttribute,
		},
	}
	for _, a := range ft.Attributes {
		r.Schema.Attributes = append(r.Schema.Attributes, nodestore.AttributeDescriptor(a))
	}
	return r
}
