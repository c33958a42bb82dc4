// Package compare provides the tolerant floating-point equality and
// ordering used throughout geometric matching. Geometry re-derived after
// meshing loses precision on file read/write, so exact comparison of
// centroids, areas and vertex positions is useless; every comparison in
// the matching pipeline goes through FloatEqual so that all call sites
// share one tolerance definition.
package compare

import "gonum.org/v1/gonum/floats/scalar"

const (
	// AbsTol absorbs noise near zero. Precision is lost on geometry
	// save/load round trips, hence larger than machine epsilon.
	AbsTol = 1e-12

	// RelTol is ten times the float64 machine epsilon.
	RelTol = 10 * 0x1p-52
)

// Ordering is the result of a tolerant three-way comparison.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	}
	return "Unknown"
}

// FloatEqual reports whether a and b are equal within an absolute or
// relative tolerance: |a-b| < AbsTol or |a-b| <= RelTol*max(|a|,|b|).
func FloatEqual(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, AbsTol, RelTol)
}

// Floats performs a three-way comparison consistent with FloatEqual.
// Equality is checked first; strict numeric order applies only when the
// values are not tolerantly equal. A naive a < b test breaks sort-based
// matching because values within tolerance would land on adjacent but
// distinct sort keys.
func Floats(a, b float64) Ordering {
	if FloatEqual(a, b) {
		return Equal
	}
	if a < b {
		return Less
	}
	return Greater
}
