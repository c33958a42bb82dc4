package geometry

import "fmt"

// Ref identifies a sub-element by its owning object's name and a
// type-prefixed 1-based element name, e.g. {"Obstacle", "Face3"}. Refs
// are stored in user configuration and resolved lazily against a
// Document, since the referenced object may be edited or deleted
// between meshing passes.
type Ref struct {
	Container  string
	SubElement string
}

func (r Ref) String() string {
	return r.Container + ":" + r.SubElement
}

// UnresolvedRefError reports a reference whose container or sub-element
// no longer resolves to live geometry.
type UnresolvedRefError struct {
	Ref    Ref
	Reason string
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("reference %s not found - %s", e.Ref, e.Reason)
}

// Document is an explicit registry of named shapes, standing in for the
// host CAD document. All reference resolution takes a *Document; nothing
// reads ambient global state, so tests can run against in-memory
// fixtures.
type Document struct {
	shapes map[string]*Shape
	order  []string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{shapes: make(map[string]*Shape)}
}

// Add registers a shape under its name, replacing any previous shape
// with the same name.
func (d *Document) Add(s *Shape) {
	if _, ok := d.shapes[s.Name]; !ok {
		d.order = append(d.order, s.Name)
	}
	d.shapes[s.Name] = s
}

// Remove deletes the named shape.
func (d *Document) Remove(name string) {
	if _, ok := d.shapes[name]; !ok {
		return
	}
	delete(d.shapes, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Shape returns the named shape.
func (d *Document) Shape(name string) (*Shape, bool) {
	s, ok := d.shapes[name]
	return s, ok
}

// Names returns shape names in insertion order.
func (d *Document) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Resolve resolves a reference to its live element. A missing container
// or sub-element yields an *UnresolvedRefError; the caller decides
// whether to drop the reference with a warning or abort.
func (d *Document) Resolve(ref Ref) (*Element, error) {
	s, ok := d.shapes[ref.Container]
	if !ok {
		return nil, &UnresolvedRefError{Ref: ref, Reason: "object may have been deleted"}
	}
	elem, err := s.Element(ref.SubElement)
	if err != nil {
		return nil, &UnresolvedRefError{Ref: ref, Reason: "element may have been deleted"}
	}
	return elem, nil
}
