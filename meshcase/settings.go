// Package meshcase assembles mesh case directories for the external
// meshing utilities (cfMesh's cartesianMesh, snappyHexMesh and gmsh)
// from a geometry document, mesh settings and refinement definitions.
package meshcase

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"

	"github.com/cartmesh/cartmesh/geometry"
)

// Utility selects the external mesher the case is written for.
type Utility string

const (
	UtilityGmsh   Utility = "gmsh"
	UtilityCfMesh Utility = "cfMesh"
	UtilitySnappy Utility = "snappyHexMesh"
)

// Scale converts geometry coordinates (mm) to case coordinates (m).
const Scale = 0.001

// Settings holds the per-case mesh parameters. Lengths are in mm, the
// unit of the geometry document; they are scaled on output.
type Settings struct {
	Utility   Utility
	CaseName  string
	OutputDir string

	// Dimension is 2 or 3. A 2D case requires exactly two bounding
	// planes.
	Dimension      int
	BoundingPlanes []geometry.Ref

	// CharacteristicLengthMax is the base cell size. Zero selects 2%
	// of the part's bounding box diagonal.
	CharacteristicLengthMax float64

	// STLLinearDeflection is the surface triangulation tolerance
	// recorded in the case for regeneration of the part surface.
	STLLinearDeflection float64

	// CellsBetweenLevels smooths refinement transitions
	// (snappyHexMesh only).
	CellsBetweenLevels int

	// EdgeRefinement scales cell size along feature edges.
	EdgeRefinement float64

	// PointInMesh locates the meshed region for snappyHexMesh, in mm.
	// Nil selects automatic detection.
	PointInMesh *geometry.Vec

	NumberOfProcesses int
}

// normalize fills defaults against the meshed part and returns
// warnings for values that were adjusted.
func (s *Settings) normalize(part *geometry.Shape) []string {
	var warnings []string
	if s.Utility == "" {
		s.Utility = UtilityCfMesh
	}
	if s.CaseName == "" {
		s.CaseName = "meshCase"
	}
	if s.Dimension == 0 {
		s.Dimension = 3
	}
	if s.Dimension != 2 && s.Dimension != 3 {
		warnings = append(warnings, fmt.Sprintf("element dimension %d not supported, using 3", s.Dimension))
		s.Dimension = 3
	}
	if s.CharacteristicLengthMax <= 0 {
		s.CharacteristicLengthMax = 0.02 * part.CharacteristicLength()
		warnings = append(warnings,
			fmt.Sprintf("using characteristic length %g mm (2%% of bounding box diagonal)",
				s.CharacteristicLengthMax))
	}
	if s.STLLinearDeflection <= 0 {
		s.STLLinearDeflection = 1.0
	}
	if s.CellsBetweenLevels <= 0 {
		s.CellsBetweenLevels = 3
	}
	if s.EdgeRefinement <= 0 {
		s.EdgeRefinement = 1.0
	}
	if s.NumberOfProcesses < 1 {
		s.NumberOfProcesses = 1
	}
	return warnings
}

// Refinement defines a mesh refinement applied to referenced faces or
// to a primitive volume region.
type Refinement struct {
	Name string

	// Refs are the faces or solids the refinement applies to.
	Refs []geometry.Ref

	// RelativeLength scales the base cell size; clamped to
	// [0.001, 1].
	RelativeLength float64

	// RefinementThickness extends the refined zone away from the
	// surface, in mm.
	RefinementThickness float64

	// Boundary layer parameters. A refinement adds layers when
	// NumberLayers > 1 and it is not internal.
	NumberLayers     int
	ExpansionRatio   float64
	FirstLayerHeight float64

	// Internal marks a volume refinement rather than a surface one.
	Internal bool

	// Baffle marks the referenced faces as zero-thickness walls
	// (snappyHexMesh only).
	Baffle bool

	// Region optionally defines the refinement volume as a signed
	// distance field instead of referencing document geometry.
	Region sdf.SDF3
}

// Normalize clamps out-of-range parameters and returns a warning for
// each adjustment.
func (r *Refinement) Normalize() []string {
	var warnings []string
	if r.RelativeLength < 0.001 {
		warnings = append(warnings,
			fmt.Sprintf("refinement %s: relative length %g below minimum, clamped to 0.001", r.Name, r.RelativeLength))
		r.RelativeLength = 0.001
	}
	if r.RelativeLength > 1 {
		warnings = append(warnings,
			fmt.Sprintf("refinement %s: relative length %g above maximum, clamped to 1", r.Name, r.RelativeLength))
		r.RelativeLength = 1
	}
	if r.NumberLayers > 1 {
		if r.ExpansionRatio < 1.0 {
			warnings = append(warnings,
				fmt.Sprintf("refinement %s: expansion ratio %g below minimum, clamped to 1.0", r.Name, r.ExpansionRatio))
			r.ExpansionRatio = 1.0
		}
		if r.ExpansionRatio > 1.2 {
			warnings = append(warnings,
				fmt.Sprintf("refinement %s: expansion ratio %g above maximum, clamped to 1.2", r.Name, r.ExpansionRatio))
			r.ExpansionRatio = 1.2
		}
	}
	return warnings
}

// HasLayers reports whether the refinement defines a boundary layer.
func (r *Refinement) HasLayers() bool {
	return r.NumberLayers > 1 && !r.Internal
}

// RelLenToRefinementLevel converts a relative length to the refinement
// level halving the cell size that many times, rounding up.
func RelLenToRefinementLevel(relLen float64) int {
	if relLen >= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(1 / relLen)))
}
