package meshcase

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/cartmesh/cartmesh/compare"
	"github.com/cartmesh/cartmesh/geometry"
	"github.com/cartmesh/cartmesh/match"
	"github.com/cartmesh/cartmesh/stl"
)

// CasePaths is the on-disk layout of a mesh case.
type CasePaths struct {
	Root       string
	Constant   string
	PolyMesh   string
	TriSurface string
	System     string
	Gmsh       string
}

func casePaths(outputDir, caseName string) CasePaths {
	root := filepath.Join(outputDir, caseName)
	constant := filepath.Join(root, "constant")
	return CasePaths{
		Root:       root,
		Constant:   constant,
		PolyMesh:   filepath.Join(constant, "polyMesh"),
		TriSurface: filepath.Join(constant, "triSurface"),
		System:     filepath.Join(root, "system"),
		Gmsh:       filepath.Join(root, "gmsh"),
	}
}

// layerPatch ties a boundary layer definition to a part surface patch.
type layerPatch struct {
	Patch      string
	Refinement *Refinement
}

// surfaceRefinement is a snappyHexMesh refinement surface.
type surfaceRefinement struct {
	Name     string
	STLFile  string
	Level    int
	Internal bool
	Baffle   bool
}

// objectRefinement is a cfMesh object refinement.
type objectRefinement struct {
	Name      string
	CellSize  float64
	Thickness float64
}

// twoDInfo describes a validated 2D case.
type twoDInfo struct {
	Normal    geometry.Vec
	Thickness float64
	Planes    [2]geometry.Ref
}

// Builder assembles one mesh case from a document. Construct with
// NewBuilder, then call WriteCase.
type Builder struct {
	doc      *geometry.Document
	partName string
	part     *geometry.Shape
	settings Settings
	refs     []Refinement
	log      *slog.Logger

	paths CasePaths
	clMax float64

	// populated by the process steps
	elementLengths map[string]float64
	layerPatches   []layerPatch
	objectRefs     []objectRefinement
	surfaceRefs    []surfaceRefinement
	twoD           *twoDInfo
	insidePoint    geometry.Vec
}

// NewBuilder validates inputs and prepares a builder. partName must
// resolve in doc; refinement and settings adjustments are logged as
// warnings.
func NewBuilder(doc *geometry.Document, partName string, settings Settings, refinements []Refinement, log *slog.Logger) (*Builder, error) {
	if log == nil {
		log = slog.Default()
	}
	part, ok := doc.Shape(partName)
	if !ok {
		return nil, fmt.Errorf("shape %q not found in document", partName)
	}
	if len(part.Faces) == 0 {
		return nil, fmt.Errorf("shape %q has no faces to mesh", partName)
	}
	for _, w := range settings.normalize(part) {
		log.Warn(w)
	}
	refs := make([]Refinement, len(refinements))
	copy(refs, refinements)
	for i := range refs {
		for _, w := range refs[i].Normalize() {
			log.Warn(w)
		}
	}
	return &Builder{
		doc:            doc,
		partName:       partName,
		part:           part,
		settings:       settings,
		refs:           refs,
		log:            log,
		paths:          casePaths(settings.OutputDir, settings.CaseName),
		clMax:          settings.CharacteristicLengthMax,
		elementLengths: make(map[string]float64),
	}, nil
}

// Paths returns the case directory layout.
func (b *Builder) Paths() CasePaths { return b.paths }

// SetupCaseDir purges and recreates the case directory tree.
func (b *Builder) SetupCaseDir() error {
	if err := os.RemoveAll(b.paths.Root); err != nil {
		return fmt.Errorf("purging case directory: %w", err)
	}
	dirs := []string{b.paths.Constant, b.paths.PolyMesh, b.paths.TriSurface, b.paths.System}
	if b.settings.Utility == UtilityGmsh {
		dirs = append(dirs, b.paths.Gmsh)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating case directory: %w", err)
		}
	}
	return nil
}

// relative area mismatch allowed between the two bounding planes of a
// 2D case.
const boundingPlaneAreaTol = 1e-6

// processDimension validates the dimension settings. A 2D case needs
// exactly two parallel planar bounding planes of matching area; a 3D
// case must not define any.
func (b *Builder) processDimension() error {
	planes := b.settings.BoundingPlanes
	if b.settings.Dimension == 3 {
		if len(planes) > 0 {
			return fmt.Errorf("bounding planes can only be used with 2D mesh")
		}
		return nil
	}
	if len(planes) != 2 {
		return fmt.Errorf("2D mesh requires exactly 2 bounding planes, got %d", len(planes))
	}

	elems := make([]*geometry.Element, 2)
	normals := make([]geometry.Vec, 2)
	for i, ref := range planes {
		elem, err := b.doc.Resolve(ref)
		if err != nil {
			return fmt.Errorf("bounding plane %s: %w", ref, err)
		}
		if !elem.IsPlanar() {
			return fmt.Errorf("bounding plane %s is not planar", ref)
		}
		n, _, err := elem.PlaneNormal()
		if err != nil {
			return fmt.Errorf("bounding plane %s: %w", ref, err)
		}
		elems[i] = elem
		normals[i] = n
	}

	if len(elems[0].Vertices) != len(elems[1].Vertices) {
		return fmt.Errorf("the two bounding planes do not have the same vertex count")
	}
	if !compare.FloatEqual(math.Abs(normals[0].Dot(normals[1])), 1) {
		return fmt.Errorf("the two bounding planes are not parallel")
	}
	if elems[0].Area <= 0 ||
		math.Abs(elems[0].Area-elems[1].Area)/elems[0].Area >= boundingPlaneAreaTol {
		return fmt.Errorf("the two bounding planes do not have the same area")
	}

	sep := elems[1].CenterOfMass.Sub(elems[0].CenterOfMass)
	b.twoD = &twoDInfo{
		Normal:    normals[0],
		Thickness: math.Abs(sep.Dot(normals[0])),
		Planes:    [2]geometry.Ref{planes[0], planes[1]},
	}
	return nil
}

// processRefinements maps refinement references onto the meshed part
// using the matching appropriate to the selected utility.
func (b *Builder) processRefinements() error {
	switch b.settings.Utility {
	case UtilityGmsh:
		return b.processGmshRefinements()
	case UtilityCfMesh:
		return b.processCfMeshRefinements()
	case UtilitySnappy:
		return b.processSnappyRefinements()
	default:
		return fmt.Errorf("unknown mesh utility %q", b.settings.Utility)
	}
}

// processGmshRefinements builds the per-element characteristic length
// map. References into other document objects are re-associated to the
// meshed part by geometric identity; references that no longer match
// are dropped with a warning.
func (b *Builder) processGmshRefinements() error {
	for i := range b.refs {
		r := &b.refs[i]
		if r.Internal {
			b.log.Warn("internal refinements are not supported by gmsh", "refinement", r.Name)
			continue
		}
		for _, ref := range r.Refs {
			name := ref.SubElement
			if ref.Container != b.partName {
				elem, err := b.doc.Resolve(ref)
				if err != nil {
					b.log.Warn("reference no longer resolves - ignoring", "ref", ref.String(), "err", err)
					continue
				}
				found, err := match.FindElement(b.part, elem)
				if err != nil {
					return fmt.Errorf("refinement %s: %w", r.Name, err)
				}
				if found == "" {
					b.log.Warn("element not found in mesh part - ignoring", "ref", ref.String(), "part", b.partName)
					continue
				}
				name = found
			} else if _, err := b.part.Element(name); err != nil {
				b.log.Warn("element no longer exists - ignoring", "ref", ref.String(), "err", err)
				continue
			}
			if _, dup := b.elementLengths[name]; dup {
				b.log.Warn("element already added to a refinement - ignoring", "element", name)
				continue
			}
			b.elementLengths[name] = b.clMax * r.RelativeLength
		}
	}
	return nil
}

// processCfMeshRefinements gathers object refinements and matches
// boundary layer face groups onto the part surface in bulk. A part
// face claimed by more than one layer group keeps the first and logs
// the overlap.
func (b *Builder) processCfMeshRefinements() error {
	var groups [][]geometry.Ref
	var layered []*Refinement
	for i := range b.refs {
		r := &b.refs[i]
		b.objectRefs = append(b.objectRefs, objectRefinement{
			Name:      r.Name,
			CellSize:  b.clMax * r.RelativeLength,
			Thickness: r.RefinementThickness,
		})
		if r.HasLayers() {
			groups = append(groups, r.Refs)
			layered = append(layered, r)
		}
	}
	if len(groups) == 0 {
		return nil
	}

	matches, unresolved := match.MatchFacesToShape(b.doc, groups, b.part)
	for _, err := range unresolved {
		b.log.Warn("boundary layer reference no longer resolves - ignoring", "err", err)
	}
	for faceIdx, claims := range matches {
		if len(claims) == 0 {
			continue
		}
		patch := fmt.Sprintf("face%d", faceIdx)
		if len(claims) > 1 {
			b.log.Warn("face already added to another boundary layer region - keeping the first",
				"patch", patch, "ref", claims[1].Ref.String())
		}
		b.layerPatches = append(b.layerPatches, layerPatch{
			Patch:      patch,
			Refinement: layered[claims[0].Group],
		})
	}
	return nil
}

// processSnappyRefinements computes refinement levels and writes the
// per-refinement surface STLs.
func (b *Builder) processSnappyRefinements() error {
	for i := range b.refs {
		r := &b.refs[i]
		level := RelLenToRefinementLevel(r.RelativeLength)
		stlFile := r.Name + ".stl"

		if r.Region != nil {
			if err := b.writeRegionSTL(stlFile, r); err != nil {
				return err
			}
		} else {
			wrote, err := b.writeRefSTL(stlFile, r)
			if err != nil {
				return err
			}
			if !wrote {
				b.log.Warn("refinement has no resolvable references - skipping", "refinement", r.Name)
				continue
			}
		}
		b.surfaceRefs = append(b.surfaceRefs, surfaceRefinement{
			Name:     r.Name,
			STLFile:  stlFile,
			Level:    level,
			Internal: r.Internal,
			Baffle:   r.Baffle,
		})
	}
	return nil
}

func (b *Builder) writeRegionSTL(name string, r *Refinement) error {
	f, err := os.Create(filepath.Join(b.paths.TriSurface, name))
	if err != nil {
		return fmt.Errorf("refinement %s: %w", r.Name, err)
	}
	defer f.Close()
	if err := stl.WriteRegionSurface(f, r.Name, r.Region, 0, Scale); err != nil {
		return fmt.Errorf("refinement %s: %w", r.Name, err)
	}
	return nil
}

// writeRefSTL writes the referenced faces of one refinement as a
// single STL solid. It returns false when nothing resolved.
func (b *Builder) writeRefSTL(name string, r *Refinement) (bool, error) {
	var tris []geometry.Triangle
	for _, ref := range r.Refs {
		elem, err := b.doc.Resolve(ref)
		if err != nil {
			b.log.Warn("refinement reference no longer resolves - ignoring", "ref", ref.String(), "err", err)
			continue
		}
		if len(elem.Triangles) == 0 {
			b.log.Warn("referenced element has no tessellation - ignoring", "ref", ref.String())
			continue
		}
		tris = append(tris, elem.Triangles...)
	}
	if len(tris) == 0 {
		return false, nil
	}
	f, err := os.Create(filepath.Join(b.paths.TriSurface, name))
	if err != nil {
		return false, fmt.Errorf("refinement %s: %w", r.Name, err)
	}
	defer f.Close()
	if err := stl.WriteSolid(f, r.Name, tris, Scale); err != nil {
		return false, fmt.Errorf("refinement %s: %w", r.Name, err)
	}
	return true, nil
}

// WritePartFile writes the part surface as a multi-solid STL with one
// patch per face.
func (b *Builder) WritePartFile() error {
	f, err := os.Create(filepath.Join(b.paths.TriSurface, b.partName+".stl"))
	if err != nil {
		return fmt.Errorf("writing part surface: %w", err)
	}
	defer f.Close()
	if err := stl.WriteShapeSurface(f, b.part, Scale); err != nil {
		return fmt.Errorf("writing part surface: %w", err)
	}
	return nil
}

// insidePointAttempts bounds the random search for a point inside the
// part.
const insidePointAttempts = 1000

// DetectInsidePoint finds a point inside the part for snappyHexMesh's
// locationInMesh, by random sampling of the bounding box. Sample
// acceptance requires clearance of half the sampling step from every
// surface facet, so the chosen point cannot sit in a gap thinner than
// a cell.
func (b *Builder) DetectInsidePoint() (geometry.Vec, error) {
	if b.settings.PointInMesh != nil {
		return *b.settings.PointInMesh, nil
	}
	min, max := b.part.BoundingBox()
	ext := max.Sub(min)

	step := 2.5 * b.clMax
	const safety = 2
	clearance := step / safety

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < insidePointAttempts; i++ {
		p := geometry.Vec{
			X: min.X + rng.Float64()*ext.X,
			Y: min.Y + rng.Float64()*ext.Y,
			Z: min.Z + rng.Float64()*ext.Z,
		}
		if b.part.IsInside(p, clearance) {
			return p, nil
		}
	}
	return geometry.Vec{}, errors.New("unable to find a point inside the mesh region; set it explicitly")
}

// WriteCase runs the full assembly: directory setup, dimension and
// refinement processing, surface export and dictionary generation.
func (b *Builder) WriteCase() error {
	b.log.Info("writing mesh case",
		"case", b.paths.Root, "utility", string(b.settings.Utility),
		"clMax", b.clMax, "processes", b.settings.NumberOfProcesses)

	if err := b.SetupCaseDir(); err != nil {
		return err
	}
	if err := b.processDimension(); err != nil {
		return err
	}
	if err := b.processRefinements(); err != nil {
		return err
	}
	if err := b.WritePartFile(); err != nil {
		return err
	}
	if b.settings.Utility == UtilitySnappy {
		p, err := b.DetectInsidePoint()
		if err != nil {
			return err
		}
		b.insidePoint = p
	}
	if err := b.writeDictionaries(); err != nil {
		return err
	}
	b.log.Info("mesh case written", "case", b.paths.Root)
	return nil
}
