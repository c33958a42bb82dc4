package meshcase

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/cartmesh/cartmesh/geometry"
)

// snappyBufferCells is the number of background cells the block mesh
// extends beyond the geometry bounding box on every side.
const snappyBufferCells = 5

// dictData is the render context shared by all dictionary templates.
type dictData struct {
	CaseName string
	PartName string
	Utility  Utility

	// Cell sizing in case units (m).
	ClMax              float64
	EdgeRefinement     float64
	CellsBetweenLevels int
	NumberOfProcesses  int

	TwoD         *twoDInfo
	ObjectRefs   []objectRefinement
	LayerPatches []layerPatch
	SurfaceRefs  []surfaceRefinement

	// ElementLengths lists gmsh per-entity sizes in case units,
	// sorted by name for stable output.
	ElementLengths []elementLength

	InsidePoint geometry.Vec

	// GeoFile is the geometry file the gmsh script merges, relative
	// to the gmsh directory.
	GeoFile string

	// Background block mesh extents and cell counts.
	BlockMin, BlockMax geometry.Vec
	BlockCells         [3]int
}

type elementLength struct {
	Name   string
	Entity string
	Length float64
}

// geoEntity maps an element name like "Face3" to the gmsh selector for
// the same entity, "Surface{3}".
func geoEntity(name string) string {
	for prefix, entity := range map[string]string{
		"Face": "Surface", "Edge": "Line", "Solid": "Volume", "Vertex": "Point",
	} {
		if strings.HasPrefix(name, prefix) {
			return entity + "{" + name[len(prefix):] + "}"
		}
	}
	return ""
}

func (b *Builder) dictData() *dictData {
	d := &dictData{
		CaseName:           b.settings.CaseName,
		PartName:           b.partName,
		Utility:            b.settings.Utility,
		ClMax:              b.clMax * Scale,
		EdgeRefinement:     b.settings.EdgeRefinement,
		CellsBetweenLevels: b.settings.CellsBetweenLevels,
		NumberOfProcesses:  b.settings.NumberOfProcesses,
		TwoD:               b.twoD,
		ObjectRefs:         b.objectRefs,
		LayerPatches:       b.layerPatches,
		SurfaceRefs:        b.surfaceRefs,
		InsidePoint:        b.insidePoint.Scale(Scale),
	}
	if b.part.SourceFile != "" {
		d.GeoFile = filepath.Base(b.part.SourceFile)
	} else {
		d.GeoFile = "../constant/triSurface/" + b.partName + ".stl"
	}

	for name, l := range b.elementLengths {
		if ent := geoEntity(name); ent != "" {
			d.ElementLengths = append(d.ElementLengths, elementLength{
				Name: name, Entity: ent, Length: l * Scale,
			})
		}
	}
	sort.Slice(d.ElementLengths, func(i, j int) bool {
		return d.ElementLengths[i].Name < d.ElementLengths[j].Name
	})

	min, max := b.part.BoundingBox()
	cell := d.ClMax
	buffer := snappyBufferCells * cell
	d.BlockMin = min.Scale(Scale).Sub(geometry.Vec{X: buffer, Y: buffer, Z: buffer})
	d.BlockMax = max.Scale(Scale).Add(geometry.Vec{X: buffer, Y: buffer, Z: buffer})
	ext := d.BlockMax.Sub(d.BlockMin)
	d.BlockCells = [3]int{
		int(math.Ceil(ext.X / cell)),
		int(math.Ceil(ext.Y / cell)),
		int(math.Ceil(ext.Z / cell)),
	}
	return d
}

const foamHeader = `/*--------------------------------*- C++ -*----------------------------------*/
FoamFile
{
    version     2.0;
    format      ascii;
    class       dictionary;
    object      {{.Object}};
}
// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //

`

const meshDictTemplate = `maxCellSize {{.ClMax}};

surfaceFile "constant/triSurface/{{.PartName}}.stl";

{{if .ObjectRefs}}objectRefinements
{
{{range .ObjectRefs}}    "{{.Name}}"
    {
        cellSize {{scaled .CellSize}};
{{if gt .Thickness 0.0}}        refinementThickness {{scaled .Thickness}};
{{end}}    }
{{end}}}
{{end}}
{{if .LayerPatches}}boundaryLayers
{
    patchBoundaryLayers
    {
{{range .LayerPatches}}        "{{.Patch}}"
        {
            nLayers {{.Refinement.NumberLayers}};
            thicknessRatio {{.Refinement.ExpansionRatio}};
{{if gt .Refinement.FirstLayerHeight 0.0}}            maxFirstLayerThickness {{scaled .Refinement.FirstLayerHeight}};
{{end}}        }
{{end}}    }
}
{{end}}`

const blockMeshDictTemplate = `convertToMeters 1;

vertices
(
    ({{.BlockMin.X}} {{.BlockMin.Y}} {{.BlockMin.Z}})
    ({{.BlockMax.X}} {{.BlockMin.Y}} {{.BlockMin.Z}})
    ({{.BlockMax.X}} {{.BlockMax.Y}} {{.BlockMin.Z}})
    ({{.BlockMin.X}} {{.BlockMax.Y}} {{.BlockMin.Z}})
    ({{.BlockMin.X}} {{.BlockMin.Y}} {{.BlockMax.Z}})
    ({{.BlockMax.X}} {{.BlockMin.Y}} {{.BlockMax.Z}})
    ({{.BlockMax.X}} {{.BlockMax.Y}} {{.BlockMax.Z}})
    ({{.BlockMin.X}} {{.BlockMax.Y}} {{.BlockMax.Z}})
);

blocks
(
    hex (0 1 2 3 4 5 6 7) ({{index .BlockCells 0}} {{index .BlockCells 1}} {{index .BlockCells 2}}) simpleGrading (1 1 1)
);

edges ();

boundary
(
    background
    {
        type patch;
        faces
        (
            (0 3 2 1)
            (4 5 6 7)
            (0 1 5 4)
            (1 2 6 5)
            (2 3 7 6)
            (3 0 4 7)
        );
    }
);

mergePatchPairs ();
`

const snappyDictTemplate = `castellatedMesh true;
snap true;
addLayers false;

geometry
{
    {{.PartName}}
    {
        type triSurfaceMesh;
        file "{{.PartName}}.stl";
    }
{{range .SurfaceRefs}}    {{.Name}}
    {
        type triSurfaceMesh;
        file "{{.STLFile}}";
    }
{{end}}}

castellatedMeshControls
{
    maxLocalCells 1000000;
    maxGlobalCells 8000000;
    minRefinementCells 10;
    nCellsBetweenLevels {{.CellsBetweenLevels}};

    features ();

    refinementSurfaces
    {
        {{.PartName}}
        {
            level (0 0);
        }
{{range .SurfaceRefs}}{{if not .Internal}}        {{.Name}}
        {
            level ({{.Level}} {{.Level}});
{{if .Baffle}}            faceType baffle;
{{end}}        }
{{end}}{{end}}    }

    refinementRegions
    {
{{range .SurfaceRefs}}{{if .Internal}}        {{.Name}}
        {
            mode inside;
            levels ((1e15 {{.Level}}));
        }
{{end}}{{end}}    }

    locationInMesh ({{.InsidePoint.X}} {{.InsidePoint.Y}} {{.InsidePoint.Z}});
    allowFreeStandingZoneFaces true;
}

snapControls
{
    nSmoothPatch 3;
    tolerance 2.0;
    nSolveIter 30;
    nRelaxIter 5;
}

addLayersControls
{
    relativeSizes true;
    layers {}
    expansionRatio 1.0;
    finalLayerThickness 0.3;
    minThickness 0.1;
    nGrow 0;
    featureAngle 60;
    nRelaxIter 3;
}

meshQualityControls
{
    #includeEtc "caseDicts/meshQualityDict"
    nSmoothScale 4;
    errorReduction 0.75;
}

mergeTolerance 1e-6;
`

const geoTemplate = `// Mesh sizing and generation script
Merge "{{.GeoFile}}";

// Characteristic lengths
Mesh.CharacteristicLengthMax = {{.ClMax}};
{{range .ElementLengths}}Characteristic Length { PointsOf{ {{.Entity}}; } } = {{.Length}}; // {{.Name}}
{{end}}
Mesh.Algorithm = 6;
Mesh.Algorithm3D = 1;
Mesh.OptimizeNetgen = 1;

Mesh {{if .TwoD}}2{{else}}3{{end}};
Save "{{.CaseName}}.msh";
`

const decomposeParDictTemplate = `numberOfSubdomains {{.NumberOfProcesses}};

method scotch;
`

const allmeshTemplate = `#!/bin/bash
cd "${0%/*}" || exit 1

runCommand()
{
    sol=$(basename -- "$1")
    sol="${sol%.*}"
    if [ -f log."$sol" ]; then rm log."$sol"; fi
    "$@" 1> >(tee -a log."$sol") 2> >(tee -a log."$sol" >&2)
    err=$?
    if [ ! $err -eq 0 ]; then exit $err; fi
}

{{if eq .Utility "gmsh"}}runCommand gmsh - gmsh/{{.CaseName}}.geo
runCommand gmshToFoam gmsh/{{.CaseName}}.msh
{{else if eq .Utility "cfMesh"}}{{if .TwoD}}runCommand cartesian2DMesh
{{else}}runCommand cartesianMesh
{{end}}{{else}}runCommand blockMesh
runCommand snappyHexMesh -overwrite
{{end}}{{if gt .NumberOfProcesses 1}}runCommand decomposePar
{{end}}`

var dictFuncs = template.FuncMap{
	"scaled": func(v float64) float64 { return v * Scale },
}

func renderTemplate(name, text string, data any) (string, error) {
	t, err := template.New(name).Funcs(dictFuncs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %s template: %w", name, err)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}

func (b *Builder) writeDict(dir, object, tmpl string, data *dictData) error {
	header, err := renderTemplate("header", foamHeader, struct{ Object string }{object})
	if err != nil {
		return err
	}
	body, err := renderTemplate(object, tmpl, data)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, object), []byte(header+body), 0o644)
}

// writeDictionaries emits the utility dictionaries, the decomposition
// dictionary and the Allmesh run script.
func (b *Builder) writeDictionaries() error {
	data := b.dictData()

	switch b.settings.Utility {
	case UtilityCfMesh:
		if err := b.writeDict(b.paths.System, "meshDict", meshDictTemplate, data); err != nil {
			return err
		}
	case UtilitySnappy:
		if err := b.writeDict(b.paths.System, "blockMeshDict", blockMeshDictTemplate, data); err != nil {
			return err
		}
		if err := b.writeDict(b.paths.System, "snappyHexMeshDict", snappyDictTemplate, data); err != nil {
			return err
		}
	case UtilityGmsh:
		geo, err := renderTemplate("geo", geoTemplate, data)
		if err != nil {
			return err
		}
		geoPath := filepath.Join(b.paths.Gmsh, b.settings.CaseName+".geo")
		if err := os.WriteFile(geoPath, []byte(geo), 0o644); err != nil {
			return err
		}
	}

	if b.settings.NumberOfProcesses > 1 {
		if err := b.writeDict(b.paths.System, "decomposeParDict", decomposeParDictTemplate, data); err != nil {
			return err
		}
	}

	script, err := renderTemplate("Allmesh", allmeshTemplate, data)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(b.paths.Root, "Allmesh"), []byte(script), 0o755)
}
