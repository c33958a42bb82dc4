package stl

import (
	"fmt"
	"io"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/cartmesh/cartmesh/geometry"
)

// Primitive refinement-region solids (internal refinement volumes) are
// defined as signed distance fields and tessellated with marching
// cubes, rather than requiring the user to model helper geometry in the
// CAD document.

// defaultRegionCells controls marching cubes resolution for region
// surfaces. Region volumes only steer refinement, so a moderate
// resolution suffices.
const defaultRegionCells = 80

// BoxRegion returns an axis-aligned box SDF with minimum corner min and
// edge lengths (dx, dy, dz).
func BoxRegion(min geometry.Vec, dx, dy, dz float64) (sdf.SDF3, error) {
	s, err := sdf.Box3D(v3.Vec{X: dx, Y: dy, Z: dz}, 0)
	if err != nil {
		return nil, fmt.Errorf("box region: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{X: min.X + dx/2, Y: min.Y + dy/2, Z: min.Z + dz/2})
	return sdf.Transform3D(s, m), nil
}

// SphereRegion returns a sphere SDF centered at c.
func SphereRegion(c geometry.Vec, radius float64) (sdf.SDF3, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sphere region: %w", err)
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: c.X, Y: c.Y, Z: c.Z})), nil
}

// CylinderRegion returns a z-aligned cylinder SDF centered at c.
func CylinderRegion(c geometry.Vec, height, radius float64) (sdf.SDF3, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("cylinder region: %w", err)
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: c.X, Y: c.Y, Z: c.Z})), nil
}

// RegionTriangles tessellates an SDF region surface with marching
// cubes. cells <= 0 selects the default resolution.
func RegionTriangles(s sdf.SDF3, cells int) []geometry.Triangle {
	if cells <= 0 {
		cells = defaultRegionCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	tris := render.ToTriangles(s, renderer)

	out := make([]geometry.Triangle, len(tris))
	for i, tri := range tris {
		for j := 0; j < 3; j++ {
			out[i][j] = geometry.Vec{X: tri[j].X, Y: tri[j].Y, Z: tri[j].Z}
		}
	}
	return out
}

// WriteRegionSurface tessellates an SDF region and writes it as a named
// STL solid.
func WriteRegionSurface(w io.Writer, name string, s sdf.SDF3, cells int, scale float64) error {
	tris := RegionTriangles(s, cells)
	if len(tris) == 0 {
		return fmt.Errorf("region %q tessellated to an empty surface", name)
	}
	return WriteSolid(w, name, tris, scale)
}
