package meshcase

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartmesh/cartmesh/geometry"
	"github.com/cartmesh/cartmesh/meshio"
	"github.com/cartmesh/cartmesh/stl"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// boxDoc returns a document holding a 10x10x10 mm box named Part.
func boxDoc() *geometry.Document {
	doc := geometry.NewDocument()
	doc.Add(geometry.MakeBox("Part", geometry.Vec{}, 10, 10, 10))
	return doc
}

func newTestBuilder(t *testing.T, doc *geometry.Document, s Settings, refs []Refinement) *Builder {
	t.Helper()
	if s.OutputDir == "" {
		s.OutputDir = t.TempDir()
	}
	b, err := NewBuilder(doc, "Part", s, refs, quietLog())
	require.NoError(t, err)
	return b
}

func TestNewBuilderDefaults(t *testing.T) {
	b := newTestBuilder(t, boxDoc(), Settings{}, nil)

	// 2% of the bounding box diagonal of a 10 mm cube.
	assert.InDelta(t, 0.02*10*1.7320508, b.clMax, 1e-6)
	assert.Equal(t, UtilityCfMesh, b.settings.Utility)
	assert.Equal(t, 3, b.settings.Dimension)
	assert.Equal(t, "meshCase", b.settings.CaseName)
}

func TestNewBuilderMissingPart(t *testing.T) {
	_, err := NewBuilder(geometry.NewDocument(), "Part", Settings{}, nil, quietLog())
	assert.ErrorContains(t, err, "not found")
}

func TestProcessDimension3DRejectsPlanes(t *testing.T) {
	b := newTestBuilder(t, boxDoc(), Settings{
		Dimension:      3,
		BoundingPlanes: []geometry.Ref{{Container: "Part", SubElement: "Face1"}},
	}, nil)
	assert.ErrorContains(t, b.processDimension(), "2D")
}

func TestProcessDimension2D(t *testing.T) {
	// Box Face1 (z=0) and Face2 (z=10) are parallel with equal area.
	b := newTestBuilder(t, boxDoc(), Settings{
		Dimension: 2,
		BoundingPlanes: []geometry.Ref{
			{Container: "Part", SubElement: "Face1"},
			{Container: "Part", SubElement: "Face2"},
		},
	}, nil)
	require.NoError(t, b.processDimension())
	require.NotNil(t, b.twoD)
	assert.InDelta(t, 10.0, b.twoD.Thickness, 1e-9)
}

func TestProcessDimension2DErrors(t *testing.T) {
	doc := boxDoc()

	// Only one plane.
	b := newTestBuilder(t, doc, Settings{
		Dimension:      2,
		BoundingPlanes: []geometry.Ref{{Container: "Part", SubElement: "Face1"}},
	}, nil)
	assert.ErrorContains(t, b.processDimension(), "exactly 2")

	// Perpendicular planes: Face1 (z normal) vs Face3 (y normal).
	b = newTestBuilder(t, doc, Settings{
		Dimension: 2,
		BoundingPlanes: []geometry.Ref{
			{Container: "Part", SubElement: "Face1"},
			{Container: "Part", SubElement: "Face3"},
		},
	}, nil)
	assert.ErrorContains(t, b.processDimension(), "parallel")

	// Parallel but different area.
	small, err := geometry.MakePlate("Small",
		geometry.Vec{X: 0, Y: 0, Z: 20}, geometry.Vec{X: 5, Y: 0, Z: 20}, geometry.Vec{X: 5, Y: 5, Z: 20}, geometry.Vec{X: 0, Y: 5, Z: 20})
	require.NoError(t, err)
	doc.Add(small)
	b = newTestBuilder(t, doc, Settings{
		Dimension: 2,
		BoundingPlanes: []geometry.Ref{
			{Container: "Part", SubElement: "Face1"},
			{Container: "Small", SubElement: "Face1"},
		},
	}, nil)
	assert.ErrorContains(t, b.processDimension(), "same area")

	// Deleted container.
	b = newTestBuilder(t, doc, Settings{
		Dimension: 2,
		BoundingPlanes: []geometry.Ref{
			{Container: "Gone", SubElement: "Face1"},
			{Container: "Part", SubElement: "Face2"},
		},
	}, nil)
	assert.ErrorContains(t, b.processDimension(), "not found")
}

func TestWriteCaseCfMesh(t *testing.T) {
	refs := []Refinement{{
		Name:           "layers",
		Refs:           []geometry.Ref{{Container: "Part", SubElement: "Face1"}},
		RelativeLength: 0.5,
		NumberLayers:   4,
		ExpansionRatio: 1.15,
	}}
	b := newTestBuilder(t, boxDoc(), Settings{Utility: UtilityCfMesh}, refs)
	require.NoError(t, b.WriteCase())

	dict, err := os.ReadFile(filepath.Join(b.Paths().System, "meshDict"))
	require.NoError(t, err)
	assert.Contains(t, string(dict), "maxCellSize")
	assert.Contains(t, string(dict), `surfaceFile "constant/triSurface/Part.stl"`)
	assert.Contains(t, string(dict), `"face0"`)
	assert.Contains(t, string(dict), "nLayers 4;")
	assert.Contains(t, string(dict), "thicknessRatio 1.15;")

	// Part surface exported with per-face solids.
	surf, err := os.ReadFile(filepath.Join(b.Paths().TriSurface, "Part.stl"))
	require.NoError(t, err)
	assert.Contains(t, string(surf), "solid face0")
	assert.Contains(t, string(surf), "solid face5")

	// Run script is executable.
	st, err := os.Stat(filepath.Join(b.Paths().Root, "Allmesh"))
	require.NoError(t, err)
	assert.NotZero(t, st.Mode()&0o111)
	script, err := os.ReadFile(filepath.Join(b.Paths().Root, "Allmesh"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "cartesianMesh")
}

func TestWriteCaseCfMeshLayerOverlapKeepsFirst(t *testing.T) {
	// Two layer groups both reference Face1; the face keeps the first.
	refs := []Refinement{
		{
			Name:           "near",
			Refs:           []geometry.Ref{{Container: "Part", SubElement: "Face1"}},
			RelativeLength: 0.5,
			NumberLayers:   4,
			ExpansionRatio: 1.1,
		},
		{
			Name:           "far",
			Refs:           []geometry.Ref{{Container: "Part", SubElement: "Face1"}},
			RelativeLength: 0.5,
			NumberLayers:   7,
			ExpansionRatio: 1.1,
		},
	}
	b := newTestBuilder(t, boxDoc(), Settings{Utility: UtilityCfMesh}, refs)
	require.NoError(t, b.SetupCaseDir())
	require.NoError(t, b.processRefinements())

	require.Len(t, b.layerPatches, 1)
	assert.Equal(t, "face0", b.layerPatches[0].Patch)
	assert.Equal(t, 4, b.layerPatches[0].Refinement.NumberLayers)
}

func TestWriteCaseSnappy(t *testing.T) {
	region, err := stl.SphereRegion(geometry.Vec{X: 5, Y: 5, Z: 5}, 3)
	require.NoError(t, err)
	refs := []Refinement{
		{
			Name:           "wake",
			Refs:           []geometry.Ref{{Container: "Part", SubElement: "Face2"}},
			RelativeLength: 0.25,
		},
		{
			Name:           "core",
			RelativeLength: 0.5,
			Internal:       true,
			Region:         region,
		},
	}
	inside := geometry.Vec{X: 5, Y: 5, Z: 5}
	b := newTestBuilder(t, boxDoc(), Settings{
		Utility:     UtilitySnappy,
		PointInMesh: &inside,
	}, refs)
	require.NoError(t, b.WriteCase())

	snappy, err := os.ReadFile(filepath.Join(b.Paths().System, "snappyHexMeshDict"))
	require.NoError(t, err)
	assert.Contains(t, string(snappy), "locationInMesh (0.005 0.005 0.005);")
	assert.Contains(t, string(snappy), "level (2 2);") // relLen 0.25
	assert.Contains(t, string(snappy), "mode inside;")

	_, err = os.Stat(filepath.Join(b.Paths().System, "blockMeshDict"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(b.Paths().TriSurface, "wake.stl"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(b.Paths().TriSurface, "core.stl"))
	assert.NoError(t, err)
}

func TestDetectInsidePoint(t *testing.T) {
	b := newTestBuilder(t, boxDoc(), Settings{Utility: UtilitySnappy}, nil)
	p, err := b.DetectInsidePoint()
	require.NoError(t, err)
	assert.True(t, b.part.IsInside(p, 0), "detected point %v should be inside", p)
}

func TestWriteCaseGmshReassociation(t *testing.T) {
	doc := boxDoc()
	part, _ := doc.Shape("Part")

	// A helper object whose only face coincides with the part's Face3.
	v := part.Faces[2].Vertices
	helper, err := geometry.MakePlate("Helper", v[0], v[1], v[2], v[3])
	require.NoError(t, err)
	doc.Add(helper)

	refs := []Refinement{{
		Name:           "fine",
		RelativeLength: 0.1,
		Refs: []geometry.Ref{
			{Container: "Helper", SubElement: "Face1"}, // re-associated to Part's Face3
			{Container: "Part", SubElement: "Face5"},   // direct
			{Container: "Part", SubElement: "Face5"},   // duplicate, dropped
			{Container: "Gone", SubElement: "Face1"},   // unresolved, dropped
		},
	}}
	b := newTestBuilder(t, doc, Settings{Utility: UtilityGmsh, CaseName: "box"}, refs)
	require.NoError(t, b.WriteCase())

	assert.Len(t, b.elementLengths, 2)
	assert.Contains(t, b.elementLengths, "Face3")
	assert.Contains(t, b.elementLengths, "Face5")
	assert.InDelta(t, 0.1*b.clMax, b.elementLengths["Face3"], 1e-12)

	geo, err := os.ReadFile(filepath.Join(b.Paths().Gmsh, "box.geo"))
	require.NoError(t, err)
	assert.Contains(t, string(geo), "Characteristic Length { PointsOf{ Surface{3}; } }")
	assert.Contains(t, string(geo), "Mesh 3;")
	assert.Contains(t, string(geo), "Mesh.CharacteristicLengthMax")
}

func TestDecomposeParDictWritten(t *testing.T) {
	b := newTestBuilder(t, boxDoc(), Settings{
		Utility:           UtilityCfMesh,
		NumberOfProcesses: 4,
	}, nil)
	require.NoError(t, b.WriteCase())

	dict, err := os.ReadFile(filepath.Join(b.Paths().System, "decomposeParDict"))
	require.NoError(t, err)
	assert.Contains(t, string(dict), "numberOfSubdomains 4;")

	script, err := os.ReadFile(filepath.Join(b.Paths().Root, "Allmesh"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "decomposePar")
}

func TestRefinementNormalize(t *testing.T) {
	r := Refinement{Name: "r", RelativeLength: 0.0001, NumberLayers: 3, ExpansionRatio: 1.5}
	warnings := r.Normalize()
	assert.Len(t, warnings, 2)
	assert.Equal(t, 0.001, r.RelativeLength)
	assert.Equal(t, 1.2, r.ExpansionRatio)

	r = Refinement{Name: "r", RelativeLength: 2}
	r.Normalize()
	assert.Equal(t, 1.0, r.RelativeLength)
}

func TestRelLenToRefinementLevel(t *testing.T) {
	assert.Equal(t, 0, RelLenToRefinementLevel(1))
	assert.Equal(t, 1, RelLenToRefinementLevel(0.5))
	assert.Equal(t, 2, RelLenToRefinementLevel(0.25))
	assert.Equal(t, 3, RelLenToRefinementLevel(0.2))
	assert.Equal(t, 10, RelLenToRefinementLevel(0.001))
}

func TestPlanDecomposition(t *testing.T) {
	info := &meshio.Info{File: "case.msh", NumVertices: 27, NumCells: 10}
	layout, err := PlanDecomposition(info, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 3}, layout.Counts())

	_, err = PlanDecomposition(&meshio.Info{File: "empty.msh"}, 2)
	assert.Error(t, err)
}
