package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape is a named container of geometric elements, the unit a mesh is
// generated from. Element slices are indexed from zero internally;
// externally elements are addressed by 1-based type-prefixed names such
// as "Face3" or "Solid1", matching the convention of the CAD kernels the
// mesh tools interoperate with.
type Shape struct {
	Name string
	Type ShapeType // Solid, CompSolid or Compound for typical parts

	Faces    []*Element
	Solids   []*Element
	Edges    []*Element
	Vertices []*Element

	// SourceFile optionally records the CAD file this shape was
	// exported from (BREP/STEP), merged by the gmsh geometry script.
	SourceFile string
}

// ElementName formats the external 1-based identifier for an element of
// the given type at 0-based index i, e.g. ElementName(Face, 2) == "Face3".
func ElementName(t ShapeType, i int) string {
	return t.String() + strconv.Itoa(i+1)
}

// parseElementName splits a type-prefixed identifier like "Face3" into
// its shape type and 0-based index.
func parseElementName(name string) (ShapeType, int, error) {
	for t := Compound; ; t-- {
		s := t.String()
		if strings.HasPrefix(name, s) {
			idx, err := strconv.Atoi(name[len(s):])
			if err != nil || idx < 1 {
				return 0, 0, fmt.Errorf("malformed element name %q", name)
			}
			return t, idx - 1, nil
		}
		if t == Vertex {
			break
		}
	}
	return 0, 0, fmt.Errorf("malformed element name %q", name)
}

// Element returns the sub-element addressed by a 1-based type-prefixed
// name such as "Face3". Solid names index the shape's solid list, which
// general sub-element lookups in CAD kernels typically do not cover.
func (s *Shape) Element(name string) (*Element, error) {
	t, idx, err := parseElementName(name)
	if err != nil {
		return nil, err
	}
	var list []*Element
	switch t {
	case Solid, CompSolid:
		list = s.Solids
	case Face, Shell:
		list = s.Faces
	case Edge, Wire:
		list = s.Edges
	case Vertex:
		list = s.Vertices
	default:
		return nil, fmt.Errorf("element name %q: %s elements cannot be addressed", name, t)
	}
	if idx >= len(list) {
		return nil, fmt.Errorf("shape %q has no element %q", s.Name, name)
	}
	return list[idx], nil
}

// BoundingBox returns the axis-aligned bounding box over all face
// vertices of the shape.
func (s *Shape) BoundingBox() (min, max Vec) {
	min = Vec{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = Vec{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, f := range s.Faces {
		for _, v := range f.Vertices {
			min.X = math.Min(min.X, v.X)
			min.Y = math.Min(min.Y, v.Y)
			min.Z = math.Min(min.Z, v.Z)
			max.X = math.Max(max.X, v.X)
			max.Y = math.Max(max.Y, v.Y)
			max.Z = math.Max(max.Z, v.Z)
		}
	}
	return min, max
}

// CharacteristicLength returns the diagonal length of the bounding box.
func (s *Shape) CharacteristicLength() float64 {
	min, max := s.BoundingBox()
	return max.Sub(min).Norm()
}

// IsInside reports whether p lies inside the shape, tested by casting a
// ray in +x against the face tessellations. minDistance additionally
// requires p to be at least that far from every facet, so that a point
// chosen inside cannot sit in a sliver between mesh and geometry.
func (s *Shape) IsInside(p Vec, minDistance float64) bool {
	crossings := 0
	for _, f := range s.Faces {
		for _, tri := range f.Triangles {
			if minDistance > 0 && pointTriangleDistance(p, tri) < minDistance {
				return false
			}
			if rayIntersectsTriangle(p, tri) {
				crossings++
			}
		}
	}
	return crossings%2 == 1
}

// rayIntersectsTriangle tests a ray from p in the +x direction against
// tri (Moller-Trumbore).
func rayIntersectsTriangle(p Vec, tri Triangle) bool {
	const eps = 1e-12
	dir := Vec{1, 0, 0}
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	h := dir.Cross(e2)
	a := e1.Dot(h)
	if math.Abs(a) < eps {
		return false
	}
	f := 1.0 / a
	sv := p.Sub(tri[0])
	u := f * sv.Dot(h)
	if u < 0 || u > 1 {
		return false
	}
	q := sv.Cross(e1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}
	return f*e2.Dot(q) > eps
}

// pointTriangleDistance returns the distance from p to the closest
// point on the triangle.
func pointTriangleDistance(p Vec, tri Triangle) float64 {
	n := tri.Normal()
	planeDist := p.Sub(tri[0]).Dot(n)
	proj := p.Sub(n.Scale(planeDist))

	// Barycentric test of the projected point.
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	w := proj.Sub(tri[0])
	d11 := e1.Dot(e1)
	d12 := e1.Dot(e2)
	d22 := e2.Dot(e2)
	dw1 := w.Dot(e1)
	dw2 := w.Dot(e2)
	denom := d11*d22 - d12*d12
	if denom != 0 {
		u := (d22*dw1 - d12*dw2) / denom
		v := (d11*dw2 - d12*dw1) / denom
		if u >= 0 && v >= 0 && u+v <= 1 {
			return math.Abs(planeDist)
		}
	}

	// Projection outside: closest point lies on an edge.
	d := pointSegmentDistance(p, tri[0], tri[1])
	d = math.Min(d, pointSegmentDistance(p, tri[1], tri[2]))
	return math.Min(d, pointSegmentDistance(p, tri[2], tri[0]))
}

// pointSegmentDistance returns the distance from p to segment ab.
func pointSegmentDistance(p, a, b Vec) float64 {
	ab := b.Sub(a)
	t := p.Sub(a).Dot(ab)
	if l2 := ab.Dot(ab); l2 > 0 {
		t = math.Max(0, math.Min(1, t/l2))
	} else {
		t = 0
	}
	return p.Sub(a.Add(ab.Scale(t))).Norm()
}
