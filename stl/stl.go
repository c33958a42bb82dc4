// Package stl writes the ASCII STL surface files consumed by cfMesh and
// snappyHexMesh. The part surface is written as a multi-solid file with
// one named solid per boundary face, which is how the meshers are told
// about per-face patches; refinement-region surfaces are written as
// separate single- or multi-solid files.
package stl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cartmesh/cartmesh/geometry"
)

// WriteSolid writes the triangles as one named "solid ... endsolid"
// block, with coordinates multiplied by scale (mm to m conversion for
// OpenFOAM-family tools).
func WriteSolid(w io.Writer, name string, tris []geometry.Triangle, scale float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for _, tri := range tris {
		n := tri.Normal()
		fmt.Fprintf(bw, " facet normal %g %g %g\n", n.X, n.Y, n.Z)
		fmt.Fprintf(bw, "  outer loop\n")
		for _, v := range tri {
			fmt.Fprintf(bw, "    vertex %g %g %g\n", scale*v.X, scale*v.Y, scale*v.Z)
		}
		fmt.Fprintf(bw, "  endloop\n")
		fmt.Fprintf(bw, " endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// WriteShapeSurface writes a shape's full boundary as a multi-solid STL
// with one solid per face, named face0, face1, ... in face enumeration
// order. The names double as the mesher's patch names, so ordering must
// be stable across passes.
func WriteShapeSurface(w io.Writer, shape *geometry.Shape, scale float64) error {
	for i, f := range shape.Faces {
		if len(f.Triangles) == 0 {
			return fmt.Errorf("face %d of shape %q has no tessellation", i, shape.Name)
		}
		if err := WriteSolid(w, fmt.Sprintf("face%d", i), f.Triangles, scale); err != nil {
			return err
		}
	}
	return nil
}

// WriteElements writes the tessellations of the given elements as one
// multi-solid STL. Names must parallel elems.
func WriteElements(w io.Writer, names []string, elems []*geometry.Element, scale float64) error {
	if len(names) != len(elems) {
		return fmt.Errorf("names/elements length mismatch: %d vs %d", len(names), len(elems))
	}
	for i, e := range elems {
		if len(e.Triangles) == 0 {
			return fmt.Errorf("element %q has no tessellation", names[i])
		}
		if err := WriteSolid(w, names[i], e.Triangles, scale); err != nil {
			return err
		}
	}
	return nil
}
