// Package match implements geometric identity matching between CAD
// shapes. Mesh generation re-derives a part's boundary faces in
// arbitrary order, so named references into the original geometry must
// be re-associated with the generated faces by geometry alone: center
// of mass, area and vertex positions, compared with the shared tolerant
// predicates from the compare package. Attaching refinement regions or
// boundary layers to the wrong face is a silent physical-simulation
// bug, which is why every candidate found by the cheap centroid filter
// is re-verified with full geometric equality.
package match

import (
	"fmt"

	"github.com/cartmesh/cartmesh/compare"
	"github.com/cartmesh/cartmesh/geometry"
)

// UnsupportedShapeError reports an element kind that has no well-defined
// identity within a target shape. Compound identity is ambiguous by
// construction, so lookups of Compound elements fail loudly rather than
// reporting "not found".
type UnsupportedShapeError struct {
	Type geometry.ShapeType
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("%s elements cannot be located within a shape", e.Type)
}

// SameGeometry reports whether two elements are the same geometric
// entity. Vertex counts must agree and be nonzero; centers of mass and
// areas must be tolerantly equal; and every vertex of a must have a
// tolerantly equal vertex in b. Vertex order is irrelevant and
// duplicated vertices are permitted, since tessellations of the same
// face can differ in both.
func SameGeometry(a, b *geometry.Element) bool {
	if len(a.Vertices) != len(b.Vertices) || len(a.Vertices) == 0 {
		return false
	}
	ca, cb := a.CenterOfMass, b.CenterOfMass
	if !compare.FloatEqual(ca.X, cb.X) ||
		!compare.FloatEqual(ca.Y, cb.Y) ||
		!compare.FloatEqual(ca.Z, cb.Z) {
		return false
	}
	if !compare.FloatEqual(a.Area, b.Area) {
		return false
	}
	matched := 0
	for _, va := range a.Vertices {
		for _, vb := range b.Vertices {
			if compare.FloatEqual(va.X, vb.X) &&
				compare.FloatEqual(va.Y, vb.Y) &&
				compare.FloatEqual(va.Z, vb.Z) {
				matched++
				break
			}
		}
	}
	return matched == len(a.Vertices)
}

// FindElement locates elem within target by geometric identity and
// returns its 1-based type-prefixed identifier ("Face3", "Solid1").
// The scan list is chosen by elem's own shape type: solids are searched
// among the target's solids, faces and shells among its faces, edges
// and wires among its edges, vertices among its vertices. An empty
// string with nil error means no element matched, which is a normal
// outcome the caller may handle by dropping the reference with a
// warning.
func FindElement(target *geometry.Shape, elem *geometry.Element) (string, error) {
	var list []*geometry.Element
	switch elem.Type {
	case geometry.Solid, geometry.CompSolid:
		list = target.Solids
	case geometry.Face, geometry.Shell:
		list = target.Faces
	case geometry.Edge, geometry.Wire:
		list = target.Edges
	case geometry.Vertex:
		list = target.Vertices
	case geometry.Compound:
		return "", &UnsupportedShapeError{Type: elem.Type}
	default:
		return "", &UnsupportedShapeError{Type: elem.Type}
	}
	for i, candidate := range list {
		if SameGeometry(candidate, elem) {
			return geometry.ElementName(elem.Type, i), nil
		}
	}
	return "", nil
}
