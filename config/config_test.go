package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartmesh/cartmesh/geometry"
	"github.com/cartmesh/cartmesh/meshcase"
)

const sampleYAML = `
log:
  level: debug
case:
  name: box
  output_dir: ./out
  utility: cfMesh
  dimension: 3
  characteristic_length_max: 0.5
  processes: 4
geometry:
  - name: Part
    box:
      min: [0, 0, 0]
      size: [10, 10, 10]
  - name: Lid
    plate:
      corners: [[0, 0, 10], [10, 0, 10], [10, 10, 10], [0, 10, 10]]
part: Part
refinements:
  - name: layers
    refs: ["Part:Face1", "Lid:Face1"]
    relative_length: 0.5
    number_layers: 4
    expansion_ratio: 1.1
  - name: core
    relative_length: 0.25
    internal: true
    region:
      sphere:
        center: [5, 5, 5]
        radius: 3
`

func TestParseSample(t *testing.T) {
	f, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", f.Log.Level)
	assert.Equal(t, "Part", f.Part)

	doc, err := f.BuildDocument()
	require.NoError(t, err)
	assert.Equal(t, []string{"Part", "Lid"}, doc.Names())

	part, ok := doc.Shape("Part")
	require.True(t, ok)
	assert.Len(t, part.Faces, 6)

	s, err := f.Settings()
	require.NoError(t, err)
	assert.Equal(t, meshcase.UtilityCfMesh, s.Utility)
	assert.Equal(t, 0.5, s.CharacteristicLengthMax)
	assert.Equal(t, 4, s.NumberOfProcesses)

	refs, err := f.Refinements()
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, geometry.Ref{Container: "Lid", SubElement: "Face1"}, refs[0].Refs[1])
	assert.Equal(t, 4, refs[0].NumberLayers)
	assert.NotNil(t, refs[1].Region)
	assert.True(t, refs[1].Internal)
}

func TestParseRoundTripThroughBuilder(t *testing.T) {
	f, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	doc, err := f.BuildDocument()
	require.NoError(t, err)
	s, err := f.Settings()
	require.NoError(t, err)
	s.OutputDir = t.TempDir()
	refs, err := f.Refinements()
	require.NoError(t, err)

	b, err := meshcase.NewBuilder(doc, f.Part, s, refs, nil)
	require.NoError(t, err)
	require.NoError(t, b.WriteCase())
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no geometry", "part: P\n", "no geometry"},
		{"missing part", "geometry: [{name: A, box: {size: [1, 1, 1]}}]\n", "no part selected"},
		{"unknown part", "part: B\ngeometry: [{name: A, box: {size: [1, 1, 1]}}]\n", "not a defined geometry"},
		{"bad utility", "part: A\ngeometry: [{name: A, box: {size: [1, 1, 1]}}]\ncase: {utility: meshzilla}\n", "unknown mesh utility"},
		{"bad dimension", "part: A\ngeometry: [{name: A, box: {size: [1, 1, 1]}}]\ncase: {dimension: 4}\n", "dimension"},
		{"bad ref", "part: A\ngeometry: [{name: A, box: {size: [1, 1, 1]}}]\nrefinements: [{name: r, refs: [Face1]}]\n", "malformed reference"},
		{"two primitives", "part: A\ngeometry: [{name: A, box: {size: [1, 1, 1]}, plate: {corners: [[0,0,0],[1,0,0],[1,1,0],[0,1,0]]}}]\n", "exactly one primitive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	f := &File{
		Part:     "A",
		Geometry: []ShapeConfig{{Name: "A", Box: &BoxConfig{Size: [3]float64{1, 1, 1}}}},
		RefinementConfigs: []RefinementConfig{
			{Name: "empty"},
			{Name: "dangling", Refs: []string{"Gone:Face1"}},
		},
	}
	errs, warnings := f.Validate()
	assert.Empty(t, errs)
	assert.Len(t, warnings, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("no-such-file.yaml")
	assert.Error(t, err)
}
