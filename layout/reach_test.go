package layout

import (
	"testing"

	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/hierarchy"
)

func TestProtectedBaseIsNonPublic(t *testing.T) {
	h := hierarchy.New()
	a := h.MustClass("A")
	p := h.MustClass("P", hierarchy.Protected(a))

	l := mustLayout(t, abi.Itanium, p)
	if l.Size() != 24 {
		t.Errorf("size: got %d, want 24", l.Size())
	}
	if l.HasPublicPathDownTo(1, 0) {
		t.Error("protected edge must not be a public path")
	}
	if !l.HasPublicPathDownTo(1, 1) || !l.HasPublicPathDownTo(0, 0) {
		t.Error("every subobject reaches itself")
	}
	if got := l.NonPublicBases(); len(got) != 1 || got[0].Name() != "A" {
		t.Errorf("non-public bases: %+v", got)
	}
	if len(l.UnambiguousPublicBases()) != 0 {
		t.Error("no public bases expected")
	}
}

func TestPublicPathNeedsEveryLinkPublic(t *testing.T) {
	// C : public B ; B : protected A.
	h := hierarchy.New()
	a := h.MustClass("A")
	b := h.MustClass("B", hierarchy.Protected(a))
	c := h.MustClass("C", hierarchy.Public(b))

	l := mustLayout(t, abi.Itanium, c)
	// C@0, B@0, A@0
	if !l.HasPublicPathDownTo(1, 0) {
		t.Error("B is a public base of C")
	}
	if l.HasPublicPathDownTo(2, 0) || l.HasPublicPathDownTo(2, 1) {
		t.Error("A is reachable only through a protected link")
	}
	if len(l.PublicChildPairs()) != 0 {
		t.Errorf("pairs: %v", l.PublicChildPairs())
	}
}

func TestAmbiguousNonVirtualBase(t *testing.T) {
	h := hierarchy.New()
	a := h.MustClass("A")
	c1 := h.MustClass("C1", hierarchy.Public(a))
	c2 := h.MustClass("C2", hierarchy.Public(a))
	e := h.MustClass("E", hierarchy.Public(c1), hierarchy.Public(c2))

	l := mustLayout(t, abi.Itanium, e)
	checkPlacement(t, l, []placed{
		{"E", 0, false},
		{"C1", 0, false},
		{"A", 0, false},
		{"C2", 24, false},
		{"A", 24, false},
	})
	if l.Size() != 56 {
		t.Errorf("size: got %d, want 56", l.Size())
	}
	if !l.IsAmbiguousBase(a) {
		t.Error("A occurs twice")
	}
	if got := l.PublicBases(); len(got) != 4 {
		t.Errorf("public bases: got %d, want 4", len(got))
	}
	ub := l.UnambiguousPublicBases()
	if len(ub) != 2 || ub[0].Name() != "C1" || ub[1].Name() != "C2" {
		t.Errorf("unambiguous: %+v", ub)
	}
	if len(l.AmbiguousPublicChildPairs()) != 0 {
		t.Error("each A reaches a single C")
	}
}

func TestAmbiguousPairsThroughSharedVirtualBase(t *testing.T) {
	h := hierarchy.New()
	v := h.MustClass("V")
	x := h.MustClass("X", hierarchy.PublicVirtual(v))
	y1 := h.MustClass("Y1", hierarchy.Public(x))
	y2 := h.MustClass("Y2", hierarchy.Public(x))
	z := h.MustClass("Z", hierarchy.Public(y1), hierarchy.Public(y2))

	l := mustLayout(t, abi.Itanium, z)
	checkPlacement(t, l, []placed{
		{"Z", 0, false},
		{"Y1", 0, false},
		{"X", 0, false},
		{"Y2", 24, false},
		{"X", 24, false},
		{"V", 56, true},
	})
	if l.Size() != 72 {
		t.Errorf("size: got %d, want 72", l.Size())
	}

	amb := l.AmbiguousPublicChildPairs()
	if len(amb) != 2 {
		t.Fatalf("ambiguous pairs: %v", amb)
	}
	for _, pc := range amb {
		if l.Subobject(pc.Parent).Name() != "V" || l.Subobject(pc.Child).Name() != "X" {
			t.Errorf("unexpected ambiguous pair %v", pc)
		}
	}

	type edge struct {
		from string
		fo   int
		to   string
		tO   int
	}
	var got []edge
	for _, pc := range l.CrossCastPairs() {
		p, c := l.Subobject(pc.Parent), l.Subobject(pc.Child)
		got = append(got, edge{p.Name(), p.Offset, c.Name(), c.Offset})
	}
	want := []edge{
		{"V", 56, "Y1", 0},
		{"V", 56, "Y2", 24},
		{"X", 0, "Y1", 0},
		{"X", 24, "Y2", 24},
	}
	if len(got) != len(want) {
		t.Fatalf("cross-cast pairs: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d: got %v, want %v", i, got[i], want[i])
		}
	}

	ub := l.UnambiguousPublicBases()
	var names []string
	for _, so := range ub {
		names = append(names, so.Name())
	}
	if len(names) != 3 || names[0] != "Y1" || names[1] != "Y2" || names[2] != "V" {
		t.Errorf("unambiguous public bases: %v", names)
	}
}

func TestVirtualAndNonVirtualCopiesOfOneClass(t *testing.T) {
	// W : public virtual U, public virtual T ; T : public U.
	// T's non-virtual U is distinct from W's virtual U.
	h := hierarchy.New()
	u := h.MustClass("U")
	tt := h.MustClass("T", hierarchy.Public(u))
	w := h.MustClass("W", hierarchy.PublicVirtual(u), hierarchy.PublicVirtual(tt))

	l := mustLayout(t, abi.Itanium, w)
	if l.Count(u) != 2 || !l.IsAmbiguousBase(u) {
		t.Fatalf("U should occur twice:\n%s", l)
	}
	for i := 1; i < l.Len(); i++ {
		so := l.Subobject(i)
		if so.Name() == "U" && !so.Virtual {
			owner := l.Subobject(so.DirectSubobjectOf[0])
			if owner.Name() != "T" {
				t.Errorf("non-virtual U owned by %s", owner.Name())
			}
			if !l.HasPublicPathDownTo(i, 0) {
				t.Error("U inside T reaches W publicly")
			}
		}
	}
}
