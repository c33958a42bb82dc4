package match

import (
	"sort"

	"github.com/cartmesh/cartmesh/compare"
	"github.com/cartmesh/cartmesh/geometry"
)

// GroupRef ties a matched reference back to the group it came from.
// Group is the reference group's position in the caller's group list.
type GroupRef struct {
	Group int
	Ref   geometry.Ref
}

type sourceFace struct {
	elem  *geometry.Element
	group int
	ref   geometry.Ref
}

type targetFace struct {
	elem      *geometry.Element
	origIndex int
}

// centerLess orders two elements lexicographically by center of mass
// (x, then y, then z) using the tolerant three-way comparison, so that
// centers within tolerance collapse onto one sort key instead of two
// adjacent ones.
func centerLess(a, b *geometry.Element) bool {
	ca, cb := a.CenterOfMass, b.CenterOfMass
	switch compare.Floats(ca.X, cb.X) {
	case compare.Less:
		return true
	case compare.Greater:
		return false
	}
	switch compare.Floats(ca.Y, cb.Y) {
	case compare.Less:
		return true
	case compare.Greater:
		return false
	}
	return compare.Floats(ca.Z, cb.Z) == compare.Less
}

// MatchFacesToShape maps groups of face references onto the faces of a
// target shape in bulk. groups is ordered; a group's index is its
// identity in the returned GroupRefs. The result has one entry per
// target face, parallel to target.Faces, listing every reference that
// geometrically coincides with that face. Most faces belong to no
// group and get an empty entry; a face claimed by more than one
// reference keeps all of them, letting the caller detect and report
// the overlap.
//
// References that no longer resolve are skipped and returned in
// unresolved as *geometry.UnresolvedRefError values; they never abort
// matching of the remaining references.
//
// Pairwise SameGeometry over all references and faces is quadratic and
// too slow for realistic parts, so both sides are sorted by center of
// mass with the tolerant ordering and swept with two cursors. The sweep
// only nominates candidates: centroid equality is necessary but not
// sufficient, since distinct faces can share a centroid. Every
// candidate is then confirmed with full SameGeometry before being
// re-indexed to the target face's original position.
func MatchFacesToShape(doc *geometry.Document, groups [][]geometry.Ref, target *geometry.Shape) (matches [][]GroupRef, unresolved []error) {
	var src []sourceFace
	for gi, group := range groups {
		for _, ref := range group {
			elem, err := doc.Resolve(ref)
			if err != nil {
				unresolved = append(unresolved, err)
				continue
			}
			src = append(src, sourceFace{elem: elem, group: gi, ref: ref})
		}
	}

	tgt := make([]targetFace, len(target.Faces))
	for i, f := range target.Faces {
		tgt[i] = targetFace{elem: f, origIndex: i}
	}

	sort.SliceStable(src, func(a, b int) bool { return centerLess(src[a].elem, src[b].elem) })
	sort.SliceStable(tgt, func(a, b int) bool { return centerLess(tgt[a].elem, tgt[b].elem) })

	// Two-cursor sweep over the sorted lists, collecting candidate
	// source indices per (sorted) target face. A run of target faces
	// can share one approximate center of mass, and several source
	// elements can too, so when the current source element moves past
	// the end of a tie run the target cursor rewinds to the start of
	// the run for the next source element.
	candidates := make([][]int, len(tgt))
	i, j := 0, 0
	matchStart := 0
	matching := false
	for i < len(src) {
		if j >= len(tgt) {
			if !matching {
				break
			}
			// Tie run truncated by the end of the target list: the
			// next source element may still tie with the same run.
			j = matchStart
			i++
			matching = false
			continue
		}
		bc := src[i].elem.CenterOfMass
		mc := tgt[j].elem.CenterOfMass
		var cmp compare.Ordering
		if compare.FloatEqual(bc.X, mc.X) {
			if compare.FloatEqual(bc.Y, mc.Y) {
				if compare.FloatEqual(bc.Z, mc.Z) {
					candidates[j] = append(candidates[j], i)
					cmp = compare.Equal
				} else if bc.Z < mc.Z {
					cmp = compare.Less
				} else {
					cmp = compare.Greater
				}
			} else if bc.Y < mc.Y {
				cmp = compare.Less
			} else {
				cmp = compare.Greater
			}
		} else if bc.X < mc.X {
			cmp = compare.Less
		} else {
			cmp = compare.Greater
		}
		switch cmp {
		case compare.Equal:
			if !matching {
				matchStart = j
			}
			j++
			matching = true
		case compare.Less:
			i++
			if matching {
				j = matchStart
			}
			matching = false
		case compare.Greater:
			j++
			matching = false
		}
	}

	// Confirm candidates and reallocate to original face indices.
	matches = make([][]GroupRef, len(target.Faces))
	for j := range candidates {
		for _, i := range candidates[j] {
			if SameGeometry(src[i].elem, tgt[j].elem) {
				orig := tgt[j].origIndex
				matches[orig] = append(matches[orig], GroupRef{Group: src[i].group, Ref: src[i].ref})
			}
		}
	}
	return matches, unresolved
}
