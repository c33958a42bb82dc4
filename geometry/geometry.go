// Package geometry defines the boundary-representation data model consumed
// by the matching engine and the mesh case builders: shapes, their
// sub-elements (faces, solids, edges, vertices) and the per-element
// quantities used for geometric identity (center of mass, area, vertex
// positions). Shapes live in an explicit Document registry; there is no
// ambient "active document" state.
package geometry

import "math"

// Vec is a point or direction in 3D space. Coordinates are in the CAD
// model's native units (millimetres).
type Vec struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec) Add(w Vec) Vec { return Vec{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec) Sub(w Vec) Vec { return Vec{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns s*v.
func (v Vec) Scale(s float64) Vec { return Vec{s * v.X, s * v.Y, s * v.Z} }

// Dot returns the dot product v . w.
func (v Vec) Dot(w Vec) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product v x w.
func (v Vec) Cross(w Vec) Vec {
	return Vec{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalized returns v scaled to unit length. The zero vector is
// returned unchanged.
func (v Vec) Normalized() Vec {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// ShapeType identifies the kind of a geometric element.
type ShapeType uint8

const (
	Vertex ShapeType = iota
	Edge
	Wire
	Face
	Shell
	Solid
	CompSolid
	Compound
)

var shapeTypeNames = [...]string{
	Vertex:    "Vertex",
	Edge:      "Edge",
	Wire:      "Wire",
	Face:      "Face",
	Shell:     "Shell",
	Solid:     "Solid",
	CompSolid: "CompSolid",
	Compound:  "Compound",
}

func (t ShapeType) String() string {
	if int(t) < len(shapeTypeNames) {
		return shapeTypeNames[t]
	}
	return "Unknown"
}

// Triangle is a single tessellation facet of a face.
type Triangle [3]Vec

// Normal returns the unit normal of the triangle.
func (t Triangle) Normal() Vec {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Normalized()
}

// Area returns the area of the triangle.
func (t Triangle) Area() float64 {
	return 0.5 * t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Norm()
}

// Centroid returns the centroid of the triangle.
func (t Triangle) Centroid() Vec {
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3.0)
}

// Element is a single geometric sub-element of a shape. Matching treats
// elements purely by geometry: two elements with the same center of
// mass, area and vertex set are the same element regardless of which
// shape they were extracted from.
type Element struct {
	Type         ShapeType
	CenterOfMass Vec
	Area         float64 // meaningful for Face, Shell and Solid elements
	Vertices     []Vec   // at least one for any matchable element

	// Triangles is the tessellation of a face element, used for STL
	// export and inside-point testing. Empty for non-face elements.
	Triangles []Triangle
}
