// Package meshio reads generated mesh files back in and summarizes
// them, so a meshing run can be sanity-checked before the case moves
// on to decomposition and solving.
package meshio

import (
	"fmt"
	"sort"

	"github.com/notargets/gocfd/DG3D/mesh"
	"github.com/notargets/gocfd/DG3D/mesh/readers"
)

// Info summarizes a mesh file.
type Info struct {
	File          string
	FormatVersion string

	NumElements int
	NumVertices int
	NumFaces    int
	Dimension   int

	// Counts of volume cells and all elements by type name.
	NumCells   int
	TypeCounts map[string]int

	// Boundary patch names found in the file, sorted.
	BoundaryPatches []string
}

// ReadInfo loads a mesh file (.msh, .neu or .su2) and summarizes it.
func ReadInfo(path string) (*Info, error) {
	m, err := readers.ReadMeshFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh %s: %w", path, err)
	}
	return infoFromMesh(m, path), nil
}

func infoFromMesh(m *mesh.Mesh, path string) *Info {
	info := &Info{
		File:          path,
		FormatVersion: m.FormatVersion,
		NumElements:   m.NumElements,
		NumVertices:   m.NumVertices,
		NumFaces:      m.NumFaces,
		Dimension:     m.GetMeshDimension(),
		TypeCounts:    make(map[string]int),
	}
	for _, t := range m.ElementTypes {
		info.TypeCounts[t.String()]++
		if t.GetDimension() == 3 {
			info.NumCells++
		}
	}
	for name := range m.BoundaryElements {
		info.BoundaryPatches = append(info.BoundaryPatches, name)
	}
	for _, name := range m.BoundaryTags {
		if !contains(info.BoundaryPatches, name) {
			info.BoundaryPatches = append(info.BoundaryPatches, name)
		}
	}
	sort.Strings(info.BoundaryPatches)
	return info
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Check validates the summary against what a volume meshing run must
// produce.
func (i *Info) Check() error {
	if i.NumVertices == 0 {
		return fmt.Errorf("mesh %s has no vertices", i.File)
	}
	if i.NumCells == 0 {
		return fmt.Errorf("mesh %s contains no volume cells", i.File)
	}
	return nil
}

// String renders a short report.
func (i *Info) String() string {
	s := fmt.Sprintf("%s: %d vertices, %d elements (%d cells), dimension %d",
		i.File, i.NumVertices, i.NumElements, i.NumCells, i.Dimension)
	if len(i.BoundaryPatches) > 0 {
		s += fmt.Sprintf(", patches %v", i.BoundaryPatches)
	}
	return s
}
