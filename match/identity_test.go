package match

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartmesh/cartmesh/geometry"
)

// permuted returns a copy of elem with its vertex list rotated and
// reversed, simulating a re-tessellation that reorders vertices.
func permuted(elem *geometry.Element) *geometry.Element {
	n := len(elem.Vertices)
	verts := make([]geometry.Vec, 0, n)
	for i := n - 1; i >= 0; i-- {
		verts = append(verts, elem.Vertices[(i+2)%n])
	}
	cp := *elem
	cp.Vertices = verts
	return &cp
}

func TestFindElementRoundTrip(t *testing.T) {
	box := geometry.MakeBox("part", geometry.Vec{X: 0, Y: 0, Z: 0}, 2, 3, 4)
	for i, f := range box.Faces {
		name, err := FindElement(box, permuted(f))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Face%d", i+1), name)
	}
}

func TestFindElementIdempotent(t *testing.T) {
	box := geometry.MakeBox("part", geometry.Vec{X: 0, Y: 0, Z: 0}, 1, 1, 1)
	first, err := FindElement(box, box.Faces[3])
	require.NoError(t, err)
	second, err := FindElement(box, box.Faces[3])
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFindElementSolid(t *testing.T) {
	box := geometry.MakeBox("part", geometry.Vec{X: 0, Y: 0, Z: 0}, 1, 2, 3)
	name, err := FindElement(box, box.Solids[0])
	require.NoError(t, err)
	assert.Equal(t, "Solid1", name)
}

func TestFindElementEdgeAndVertex(t *testing.T) {
	box := geometry.MakeBox("part", geometry.Vec{X: 0, Y: 0, Z: 0}, 1, 2, 3)

	name, err := FindElement(box, box.Edges[4])
	require.NoError(t, err)
	assert.Equal(t, "Edge5", name)

	name, err = FindElement(box, box.Vertices[7])
	require.NoError(t, err)
	assert.Equal(t, "Vertex8", name)
}

func TestFindElementNoMatch(t *testing.T) {
	box := geometry.MakeBox("part", geometry.Vec{X: 0, Y: 0, Z: 0}, 1, 1, 1)
	other := geometry.MakeBox("other", geometry.Vec{X: 10, Y: 10, Z: 10}, 1, 1, 1)

	name, err := FindElement(box, other.Faces[0])
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestFindElementCompoundUnsupported(t *testing.T) {
	box := geometry.MakeBox("part", geometry.Vec{X: 0, Y: 0, Z: 0}, 1, 1, 1)
	comp := &geometry.Element{
		Type:         geometry.Compound,
		CenterOfMass: geometry.Vec{X: 0.5, Y: 0.5, Z: 0.5},
		Vertices:     []geometry.Vec{{X: 0, Y: 0, Z: 0}},
	}

	_, err := FindElement(box, comp)
	var unsupported *UnsupportedShapeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, geometry.Compound, unsupported.Type)
}

func TestSameGeometryToleratesDuplicateVertices(t *testing.T) {
	f, err := geometry.NewPlanarFace([]geometry.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}})
	require.NoError(t, err)

	// Same face with one vertex duplicated in place of another
	// occurrence pattern: counts still equal, all of f's vertices
	// present.
	dup := *f
	dup.Vertices = []geometry.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}}
	assert.True(t, SameGeometry(f, &dup))
}

func TestSameGeometryRejects(t *testing.T) {
	a, err := geometry.NewPlanarFace([]geometry.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}})
	require.NoError(t, err)

	// Same centroid and vertex count, different area.
	b := *a
	b.Area = a.Area * 2
	assert.False(t, SameGeometry(a, &b))

	// Different centroid.
	c := *a
	c.CenterOfMass = a.CenterOfMass.Add(geometry.Vec{X: 0.1, Y: 0, Z: 0})
	assert.False(t, SameGeometry(a, &c))

	// Different vertex count.
	d, err := geometry.NewPlanarFace([]geometry.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0.5, Y: 1, Z: 0}})
	require.NoError(t, err)
	assert.False(t, SameGeometry(a, d))

	// No vertices at all never matches.
	e1 := &geometry.Element{Type: geometry.Face}
	e2 := &geometry.Element{Type: geometry.Face}
	assert.False(t, SameGeometry(e1, e2))
}

func TestSameGeometrySymmetric(t *testing.T) {
	box := geometry.MakeBox("part", geometry.Vec{X: 0, Y: 0, Z: 0}, 2, 3, 4)
	for _, f := range box.Faces {
		p := permuted(f)
		assert.Equal(t, SameGeometry(f, p), SameGeometry(p, f))
	}
}
