package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NewPlanarFace builds a face element from an ordered polygon boundary.
// Area, center of mass and tessellation come from a triangle fan, which
// is exact for convex polygons. At least three vertices are required.
func NewPlanarFace(verts []Vec) (*Element, error) {
	if len(verts) < 3 {
		return nil, fmt.Errorf("planar face needs at least 3 vertices, got %d", len(verts))
	}
	var (
		tris     []Triangle
		area     float64
		centroid Vec
	)
	for i := 1; i < len(verts)-1; i++ {
		t := Triangle{verts[0], verts[i], verts[i+1]}
		a := t.Area()
		tris = append(tris, t)
		area += a
		centroid = centroid.Add(t.Centroid().Scale(a))
	}
	if area <= 0 {
		return nil, fmt.Errorf("planar face is degenerate (zero area)")
	}
	centroid = centroid.Scale(1 / area)

	vv := make([]Vec, len(verts))
	copy(vv, verts)
	return &Element{
		Type:         Face,
		CenterOfMass: centroid,
		Area:         area,
		Vertices:     vv,
		Triangles:    tris,
	}, nil
}

// NewVertex builds a vertex element at p.
func NewVertex(p Vec) *Element {
	return &Element{Type: Vertex, CenterOfMass: p, Vertices: []Vec{p}}
}

// NewEdge builds an edge element between two points.
func NewEdge(a, b Vec) *Element {
	return &Element{
		Type:         Edge,
		CenterOfMass: a.Add(b).Scale(0.5),
		Vertices:     []Vec{a, b},
	}
}

// PlaneNormal fits a plane to the element's vertices and returns its
// unit normal, found as the singular vector of the centered vertex
// matrix with the smallest singular value. It also reports the flatness
// ratio (smallest over largest singular value); a planar face has a
// ratio near zero.
func (e *Element) PlaneNormal() (normal Vec, flatness float64, err error) {
	if len(e.Vertices) < 3 {
		return Vec{}, 0, fmt.Errorf("plane fit needs at least 3 vertices, got %d", len(e.Vertices))
	}
	var c Vec
	for _, v := range e.Vertices {
		c = c.Add(v)
	}
	c = c.Scale(1 / float64(len(e.Vertices)))

	a := mat.NewDense(len(e.Vertices), 3, nil)
	for i, v := range e.Vertices {
		a.SetRow(i, []float64{v.X - c.X, v.Y - c.Y, v.Z - c.Z})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return Vec{}, 0, fmt.Errorf("plane fit: SVD failed to factorize %d vertices", len(e.Vertices))
	}
	var v mat.Dense
	svd.VTo(&v)
	s := svd.Values(nil)

	normal = Vec{v.At(0, 2), v.At(1, 2), v.At(2, 2)}
	if s[0] > 0 {
		flatness = s[2] / s[0]
	}
	return normal, flatness, nil
}

// IsPlanar reports whether all vertices lie on a common plane to within
// relative tolerance 1e-8 of the element extent.
func (e *Element) IsPlanar() bool {
	if len(e.Vertices) <= 3 {
		return true
	}
	_, flatness, err := e.PlaneNormal()
	if err != nil {
		return false
	}
	return flatness < 1e-8
}
