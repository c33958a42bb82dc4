package geometry

// MakeBox builds a solid box shape with its minimum corner at min and
// edge lengths (dx, dy, dz). It carries the full element complement a
// CAD kernel would derive for a box: 6 faces, 12 edges, 8 vertices and
// one solid element, making it the workhorse fixture for matching and
// case-writing tests as well as the primitive behind box-defined
// refinement regions.
func MakeBox(name string, min Vec, dx, dy, dz float64) *Shape {
	p := func(i, j, k int) Vec {
		return Vec{min.X + float64(i)*dx, min.Y + float64(j)*dy, min.Z + float64(k)*dz}
	}
	// Corner numbering: bit 0 = x, bit 1 = y, bit 2 = z.
	corners := []Vec{
		p(0, 0, 0), p(1, 0, 0), p(0, 1, 0), p(1, 1, 0),
		p(0, 0, 1), p(1, 0, 1), p(0, 1, 1), p(1, 1, 1),
	}

	// Faces wound counter-clockwise seen from outside.
	faceCorners := [6][4]int{
		{0, 2, 3, 1}, // z = min
		{4, 5, 7, 6}, // z = max
		{0, 1, 5, 4}, // y = min
		{2, 6, 7, 3}, // y = max
		{0, 4, 6, 2}, // x = min
		{1, 3, 7, 5}, // x = max
	}

	s := &Shape{Name: name, Type: Solid}
	for _, fc := range faceCorners {
		f, err := NewPlanarFace([]Vec{corners[fc[0]], corners[fc[1]], corners[fc[2]], corners[fc[3]]})
		if err != nil {
			// Degenerate boxes are a programming error in fixtures.
			panic(err)
		}
		s.Faces = append(s.Faces, f)
	}

	edgeCorners := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7}, // x-aligned
		{0, 2}, {1, 3}, {4, 6}, {5, 7}, // y-aligned
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // z-aligned
	}
	for _, ec := range edgeCorners {
		s.Edges = append(s.Edges, NewEdge(corners[ec[0]], corners[ec[1]]))
	}

	for _, c := range corners {
		s.Vertices = append(s.Vertices, NewVertex(c))
	}

	surface := 2 * (dx*dy + dy*dz + dx*dz)
	s.Solids = append(s.Solids, &Element{
		Type:         Solid,
		CenterOfMass: min.Add(Vec{dx / 2, dy / 2, dz / 2}),
		Area:         surface,
		Vertices:     corners,
	})
	return s
}

// MakePlate builds a shape consisting of a single rectangular planar
// face, used for 2D bounding planes. The face spans corners a, b, c, d
// in order.
func MakePlate(name string, a, b, c, d Vec) (*Shape, error) {
	f, err := NewPlanarFace([]Vec{a, b, c, d})
	if err != nil {
		return nil, err
	}
	s := &Shape{Name: name, Type: Shell, Faces: []*Element{f}}
	for _, v := range f.Vertices {
		s.Vertices = append(s.Vertices, NewVertex(v))
	}
	return s, nil
}
