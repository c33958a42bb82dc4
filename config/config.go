// Package config loads mesh case definitions from YAML: logging
// options, case settings, geometry fixtures and refinements. The
// geometry section builds the in-memory document the matchers and the
// case builder operate on.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	"gopkg.in/yaml.v3"

	"github.com/cartmesh/cartmesh/geometry"
	"github.com/cartmesh/cartmesh/meshcase"
	"github.com/cartmesh/cartmesh/stl"
)

// File is the top-level YAML document.
type File struct {
	Log         LogConfig          `yaml:"log"`
	Case        CaseConfig         `yaml:"case"`
	Geometry    []ShapeConfig      `yaml:"geometry"`
	Part        string             `yaml:"part"`
	RefinementConfigs []RefinementConfig `yaml:"refinements"`
}

// LogConfig selects log verbosity and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CaseConfig maps to meshcase.Settings. Lengths are in mm.
type CaseConfig struct {
	Name                    string      `yaml:"name"`
	OutputDir               string      `yaml:"output_dir"`
	Utility                 string      `yaml:"utility"`
	Dimension               int         `yaml:"dimension"`
	CharacteristicLengthMax float64     `yaml:"characteristic_length_max"`
	STLLinearDeflection     float64     `yaml:"stl_linear_deflection"`
	CellsBetweenLevels      int         `yaml:"cells_between_levels"`
	EdgeRefinement          float64     `yaml:"edge_refinement"`
	PointInMesh             *[3]float64 `yaml:"point_in_mesh"`
	Processes               int         `yaml:"processes"`
	BoundingPlanes          []string    `yaml:"bounding_planes"`
}

// ShapeConfig declares one geometry fixture. Exactly one of the
// primitive fields must be set.
type ShapeConfig struct {
	Name  string       `yaml:"name"`
	Box   *BoxConfig   `yaml:"box"`
	Plate *PlateConfig `yaml:"plate"`
}

type BoxConfig struct {
	Min  [3]float64 `yaml:"min"`
	Size [3]float64 `yaml:"size"`
}

type PlateConfig struct {
	Corners [4][3]float64 `yaml:"corners"`
}

// RefinementConfig maps to meshcase.Refinement.
type RefinementConfig struct {
	Name             string        `yaml:"name"`
	Refs             []string      `yaml:"refs"`
	RelativeLength   float64       `yaml:"relative_length"`
	Thickness        float64       `yaml:"thickness"`
	NumberLayers     int           `yaml:"number_layers"`
	ExpansionRatio   float64       `yaml:"expansion_ratio"`
	FirstLayerHeight float64       `yaml:"first_layer_height"`
	Internal         bool          `yaml:"internal"`
	Baffle           bool          `yaml:"baffle"`
	Region           *RegionConfig `yaml:"region"`
}

// RegionConfig declares a primitive refinement volume. Exactly one
// field must be set.
type RegionConfig struct {
	Box      *BoxConfig      `yaml:"box"`
	Sphere   *SphereConfig   `yaml:"sphere"`
	Cylinder *CylinderConfig `yaml:"cylinder"`
}

type SphereConfig struct {
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`
}

type CylinderConfig struct {
	Center [3]float64 `yaml:"center"`
	Height float64    `yaml:"height"`
	Radius float64    `yaml:"radius"`
}

// Load reads and validates a case file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse validates a case file from raw YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if errs, _ := f.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", joinErrors(errs))
	}
	return &f, nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the file for structural problems. Errors make the
// file unusable; warnings flag entries that will be adjusted or may
// misbehave at build time.
func (f *File) Validate() (errs []error, warnings []string) {
	if len(f.Geometry) == 0 {
		errs = append(errs, fmt.Errorf("no geometry defined"))
	}
	names := make(map[string]bool)
	for i, s := range f.Geometry {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("geometry entry %d has no name", i))
			continue
		}
		if names[s.Name] {
			errs = append(errs, fmt.Errorf("duplicate geometry name %q", s.Name))
		}
		names[s.Name] = true
		set := 0
		if s.Box != nil {
			set++
		}
		if s.Plate != nil {
			set++
		}
		if set != 1 {
			errs = append(errs, fmt.Errorf("geometry %q must define exactly one primitive", s.Name))
		}
	}

	if f.Part == "" {
		errs = append(errs, fmt.Errorf("no part selected for meshing"))
	} else if len(names) > 0 && !names[f.Part] {
		errs = append(errs, fmt.Errorf("part %q is not a defined geometry", f.Part))
	}

	switch f.Case.Utility {
	case "", string(meshcase.UtilityGmsh), string(meshcase.UtilityCfMesh), string(meshcase.UtilitySnappy):
	default:
		errs = append(errs, fmt.Errorf("unknown mesh utility %q", f.Case.Utility))
	}
	if d := f.Case.Dimension; d != 0 && d != 2 && d != 3 {
		errs = append(errs, fmt.Errorf("dimension must be 2 or 3, got %d", d))
	}

	for _, s := range f.Case.BoundingPlanes {
		if _, err := parseRef(s); err != nil {
			errs = append(errs, fmt.Errorf("bounding plane: %w", err))
		}
	}

	for _, r := range f.RefinementConfigs {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("refinement with no name"))
		}
		if len(r.Refs) == 0 && r.Region == nil {
			warnings = append(warnings, fmt.Sprintf("refinement %q has no references and no region", r.Name))
		}
		for _, s := range r.Refs {
			ref, err := parseRef(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("refinement %q: %w", r.Name, err))
				continue
			}
			if len(names) > 0 && !names[ref.Container] {
				warnings = append(warnings, fmt.Sprintf("refinement %q references unknown object %q", r.Name, ref.Container))
			}
		}
		if r.Region != nil {
			set := 0
			if r.Region.Box != nil {
				set++
			}
			if r.Region.Sphere != nil {
				set++
			}
			if r.Region.Cylinder != nil {
				set++
			}
			if set != 1 {
				errs = append(errs, fmt.Errorf("refinement %q region must define exactly one primitive", r.Name))
			}
		}
	}
	return errs, warnings
}

// parseRef parses "Container:SubElement".
func parseRef(s string) (geometry.Ref, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return geometry.Ref{}, fmt.Errorf("malformed reference %q, want \"Object:ElementName\"", s)
	}
	return geometry.Ref{Container: parts[0], SubElement: parts[1]}, nil
}

func vec(a [3]float64) geometry.Vec {
	return geometry.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// BuildDocument constructs the geometry document from the fixture
// declarations.
func (f *File) BuildDocument() (*geometry.Document, error) {
	doc := geometry.NewDocument()
	for _, s := range f.Geometry {
		switch {
		case s.Box != nil:
			doc.Add(geometry.MakeBox(s.Name, vec(s.Box.Min), s.Box.Size[0], s.Box.Size[1], s.Box.Size[2]))
		case s.Plate != nil:
			c := s.Plate.Corners
			plate, err := geometry.MakePlate(s.Name, vec(c[0]), vec(c[1]), vec(c[2]), vec(c[3]))
			if err != nil {
				return nil, fmt.Errorf("geometry %q: %w", s.Name, err)
			}
			doc.Add(plate)
		}
	}
	return doc, nil
}

// Settings converts the case section to builder settings.
func (f *File) Settings() (meshcase.Settings, error) {
	s := meshcase.Settings{
		Utility:                 meshcase.Utility(f.Case.Utility),
		CaseName:                f.Case.Name,
		OutputDir:               f.Case.OutputDir,
		Dimension:               f.Case.Dimension,
		CharacteristicLengthMax: f.Case.CharacteristicLengthMax,
		STLLinearDeflection:     f.Case.STLLinearDeflection,
		CellsBetweenLevels:      f.Case.CellsBetweenLevels,
		EdgeRefinement:          f.Case.EdgeRefinement,
		NumberOfProcesses:       f.Case.Processes,
	}
	if f.Case.PointInMesh != nil {
		p := vec(*f.Case.PointInMesh)
		s.PointInMesh = &p
	}
	for _, bp := range f.Case.BoundingPlanes {
		ref, err := parseRef(bp)
		if err != nil {
			return meshcase.Settings{}, err
		}
		s.BoundingPlanes = append(s.BoundingPlanes, ref)
	}
	return s, nil
}

// Refinements converts the refinement declarations, building region
// SDFs where declared.
func (f *File) Refinements() ([]meshcase.Refinement, error) {
	out := make([]meshcase.Refinement, 0, len(f.RefinementConfigs))
	for _, rc := range f.RefinementConfigs {
		r := meshcase.Refinement{
			Name:                rc.Name,
			RelativeLength:      rc.RelativeLength,
			RefinementThickness: rc.Thickness,
			NumberLayers:        rc.NumberLayers,
			ExpansionRatio:      rc.ExpansionRatio,
			FirstLayerHeight:    rc.FirstLayerHeight,
			Internal:            rc.Internal,
			Baffle:              rc.Baffle,
		}
		for _, s := range rc.Refs {
			ref, err := parseRef(s)
			if err != nil {
				return nil, fmt.Errorf("refinement %q: %w", rc.Name, err)
			}
			r.Refs = append(r.Refs, ref)
		}
		if rc.Region != nil {
			region, err := buildRegion(rc.Region)
			if err != nil {
				return nil, fmt.Errorf("refinement %q: %w", rc.Name, err)
			}
			r.Region = region
		}
		out = append(out, r)
	}
	return out, nil
}

func buildRegion(rc *RegionConfig) (sdf.SDF3, error) {
	switch {
	case rc.Box != nil:
		return stl.BoxRegion(vec(rc.Box.Min), rc.Box.Size[0], rc.Box.Size[1], rc.Box.Size[2])
	case rc.Sphere != nil:
		return stl.SphereRegion(vec(rc.Sphere.Center), rc.Sphere.Radius)
	case rc.Cylinder != nil:
		return stl.CylinderRegion(vec(rc.Cylinder.Center), rc.Cylinder.Height, rc.Cylinder.Radius)
	}
	return nil, fmt.Errorf("region defines no primitive")
}
