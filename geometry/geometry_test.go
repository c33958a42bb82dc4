package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeBoxElements(t *testing.T) {
	b := MakeBox("box", Vec{0, 0, 0}, 2, 3, 4)

	assert.Len(t, b.Faces, 6)
	assert.Len(t, b.Edges, 12)
	assert.Len(t, b.Vertices, 8)
	require.Len(t, b.Solids, 1)

	solid := b.Solids[0]
	assert.Equal(t, Vec{1, 1.5, 2}, solid.CenterOfMass)
	assert.InDelta(t, 2*(2*3+3*4+2*4), solid.Area, 1e-12)

	// Face areas: two of each of 2x3, 3x4, 2x4.
	var total float64
	for _, f := range b.Faces {
		total += f.Area
		assert.Len(t, f.Vertices, 4)
		assert.Len(t, f.Triangles, 2)
	}
	assert.InDelta(t, solid.Area, total, 1e-12)
}

func TestBoundingBoxAndCharacteristicLength(t *testing.T) {
	b := MakeBox("box", Vec{-1, -2, -3}, 2, 4, 6)
	min, max := b.BoundingBox()
	assert.Equal(t, Vec{-1, -2, -3}, min)
	assert.Equal(t, Vec{1, 2, 3}, max)
	assert.InDelta(t, math.Sqrt(4+16+36), b.CharacteristicLength(), 1e-12)
}

func TestElementNameRoundTrip(t *testing.T) {
	b := MakeBox("box", Vec{0, 0, 0}, 1, 1, 1)

	f, err := b.Element("Face3")
	require.NoError(t, err)
	assert.Same(t, b.Faces[2], f)

	s, err := b.Element("Solid1")
	require.NoError(t, err)
	assert.Same(t, b.Solids[0], s)

	e, err := b.Element("Edge12")
	require.NoError(t, err)
	assert.Same(t, b.Edges[11], e)

	v, err := b.Element("Vertex8")
	require.NoError(t, err)
	assert.Same(t, b.Vertices[7], v)

	_, err = b.Element("Face7")
	assert.Error(t, err)
	_, err = b.Element("Bogus1")
	assert.Error(t, err)
	_, err = b.Element("Face0")
	assert.Error(t, err)
}

func TestDocumentResolve(t *testing.T) {
	doc := NewDocument()
	doc.Add(MakeBox("part", Vec{0, 0, 0}, 1, 1, 1))

	elem, err := doc.Resolve(Ref{Container: "part", SubElement: "Face1"})
	require.NoError(t, err)
	assert.Equal(t, Face, elem.Type)

	_, err = doc.Resolve(Ref{Container: "gone", SubElement: "Face1"})
	var unresolved *UnresolvedRefError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "gone", unresolved.Ref.Container)

	_, err = doc.Resolve(Ref{Container: "part", SubElement: "Face9"})
	require.ErrorAs(t, err, &unresolved)
}

func TestDocumentRemove(t *testing.T) {
	doc := NewDocument()
	doc.Add(MakeBox("a", Vec{0, 0, 0}, 1, 1, 1))
	doc.Add(MakeBox("b", Vec{2, 0, 0}, 1, 1, 1))
	doc.Remove("a")
	assert.Equal(t, []string{"b"}, doc.Names())
	_, ok := doc.Shape("a")
	assert.False(t, ok)
}

func TestPlaneNormal(t *testing.T) {
	f, err := NewPlanarFace([]Vec{{0, 0, 5}, {2, 0, 5}, {2, 3, 5}, {0, 3, 5}})
	require.NoError(t, err)

	n, flatness, err := f.PlaneNormal()
	require.NoError(t, err)
	assert.InDelta(t, 0, flatness, 1e-12)
	// Normal is +/- z.
	assert.InDelta(t, 1, math.Abs(n.Z), 1e-12)
	assert.InDelta(t, 0, n.X, 1e-12)
	assert.InDelta(t, 0, n.Y, 1e-12)
	assert.True(t, f.IsPlanar())
}

func TestIsPlanarRejectsWarpedQuad(t *testing.T) {
	f, err := NewPlanarFace([]Vec{{0, 0, 0}, {1, 0, 0}, {1, 1, 0.5}, {0, 1, 0}})
	require.NoError(t, err)
	assert.False(t, f.IsPlanar())
}

func TestPlanarFaceProperties(t *testing.T) {
	// 2x1 rectangle centered at (1, 0, 0).
	f, err := NewPlanarFace([]Vec{{0, -0.5, 0}, {2, -0.5, 0}, {2, 0.5, 0}, {0, 0.5, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, f.Area, 1e-12)
	assert.InDelta(t, 1.0, f.CenterOfMass.X, 1e-12)
	assert.InDelta(t, 0.0, f.CenterOfMass.Y, 1e-12)

	_, err = NewPlanarFace([]Vec{{0, 0, 0}, {1, 0, 0}})
	assert.Error(t, err)
}

func TestIsInside(t *testing.T) {
	b := MakeBox("box", Vec{0, 0, 0}, 1, 1, 1)
	assert.True(t, b.IsInside(Vec{0.5, 0.3, 0.4}, 0))
	assert.False(t, b.IsInside(Vec{1.5, 0.3, 0.4}, 0))
	assert.False(t, b.IsInside(Vec{-0.1, 0.3, 0.4}, 0))

	// Near-boundary point rejected when a clearance is required.
	assert.True(t, b.IsInside(Vec{0.95, 0.3, 0.4}, 0))
	assert.False(t, b.IsInside(Vec{0.95, 0.3, 0.4}, 0.2))
}
