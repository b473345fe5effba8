package layout

import (
	"sort"

	"github.com/wippyai/dyncast/hierarchy"
)

// analyze fills the public-path matrix and the public/ambiguous pair sets.
func (l *Layout) analyze() {
	n := len(l.subs)
	l.publicTo = make([][]bool, n)
	for i := range l.subs {
		l.publicTo[i] = l.publicAncestors(i)
	}

	type parentType struct {
		parent int
		class  *hierarchy.Class
	}
	counts := make(map[parentType]int)
	for p := 1; p < n; p++ {
		for c := 1; c < n; c++ {
			if p != c && l.publicTo[p][c] {
				l.pairs = append(l.pairs, Pair{Parent: p, Child: c})
				counts[parentType{p, l.subs[c].Class}]++
			}
		}
	}

	l.ambiguous = make(map[Pair]bool)
	for _, pc := range l.pairs {
		if counts[parentType{pc.Parent, l.subs[pc.Child].Class}] >= 2 {
			l.ambiguous[pc] = true
		}
	}
}

// publicAncestors walks up through owners, following only links the owner
// declares public, and marks every subobject reached (start included).
func (l *Layout) publicAncestors(start int) []bool {
	seen := make([]bool, len(l.subs))
	stack := []int{start}
	seen[start] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, owner := range l.subs[cur].DirectSubobjectOf {
			if seen[owner] {
				continue
			}
			if l.subs[owner].Class.HasDirectPublicBase(l.subs[cur].Class) {
				seen[owner] = true
				stack = append(stack, owner)
			}
		}
	}
	return seen
}

// HasPublicPathDownTo reports whether sub reaches ancestor through a chain of
// containing subobjects where every link is declared public. The chain is
// structural; offsets play no part, since a virtual base may sit after the
// subobjects that contain it.
func (l *Layout) HasPublicPathDownTo(sub, ancestor int) bool {
	return l.publicTo[sub][ancestor]
}

// PublicChildPairs returns every (parent, child) pair of non-root subobjects
// where parent has a public path down to child.
func (l *Layout) PublicChildPairs() []Pair {
	out := make([]Pair, len(l.pairs))
	copy(out, l.pairs)
	return out
}

// AmbiguousPublicChildPairs returns the public pairs whose parent reaches two
// or more subobjects of the child's class.
func (l *Layout) AmbiguousPublicChildPairs() []Pair {
	var out []Pair
	for _, pc := range l.pairs {
		if l.ambiguous[pc] {
			out = append(out, pc)
		}
	}
	return out
}

// IsAmbiguousPair reports whether pc is excluded from cross-casting.
func (l *Layout) IsAmbiguousPair(pc Pair) bool { return l.ambiguous[pc] }

// CrossCastPairs returns the unambiguous public pairs sorted by parent name,
// parent offset, child name, child offset.
func (l *Layout) CrossCastPairs() []Pair {
	var out []Pair
	for _, pc := range l.pairs {
		if !l.ambiguous[pc] {
			out = append(out, pc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, ci := l.subs[out[i].Parent], l.subs[out[i].Child]
		pj, cj := l.subs[out[j].Parent], l.subs[out[j].Child]
		if pi.Name() != pj.Name() {
			return pi.Name() < pj.Name()
		}
		if pi.Offset != pj.Offset {
			return pi.Offset < pj.Offset
		}
		if ci.Name() != cj.Name() {
			return ci.Name() < cj.Name()
		}
		return ci.Offset < cj.Offset
	})
	return out
}

// PublicBases returns the non-root subobjects with a public path to the root.
func (l *Layout) PublicBases() []Subobject {
	var out []Subobject
	for _, so := range l.subs[1:] {
		if l.publicTo[so.Index][0] {
			out = append(out, so)
		}
	}
	return out
}

// NonPublicBases returns the non-root subobjects without a public path to the root.
func (l *Layout) NonPublicBases() []Subobject {
	var out []Subobject
	for _, so := range l.subs[1:] {
		if !l.publicTo[so.Index][0] {
			out = append(out, so)
		}
	}
	return out
}

// UnambiguousPublicBases returns the public bases whose class occurs once,
// exactly the targets an implicit derived-to-base conversion can reach.
func (l *Layout) UnambiguousPublicBases() []Subobject {
	var out []Subobject
	for _, so := range l.PublicBases() {
		if !l.IsAmbiguousBase(so.Class) {
			out = append(out, so)
		}
	}
	return out
}
