package oracle

import (
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/hierarchy"
	"github.com/wippyai/dyncast/layout"
)

// BaseOffset is the expected result of converting a pointer to the complete
// object into a pointer to one of its unambiguous public bases.
type BaseOffset struct {
	Type   string
	Offset int
}

// CrossCastKey identifies a dynamic_cast performed through a subobject of
// type From at FromOffset, targeting type To.
type CrossCastKey struct {
	From       string
	To         string
	FromOffset int
}

// CrossCast is one row of the cross-cast table.
type CrossCast struct {
	CrossCastKey
	ToOffset int
}

// SelfEntry records whether the subobject of Type at Offset is a public base
// of the complete object.
type SelfEntry struct {
	Type   string
	Offset int
	Public bool
}

type selfKey struct {
	typ    string
	offset int
}

// Tables holds the three lookup tables for one class.
type Tables struct {
	layout  *layout.Layout
	bases   []BaseOffset
	cross   []CrossCast
	byCross map[CrossCastKey]int
	self    []SelfEntry
	bySelf  map[selfKey]bool
}

// ForLayout derives the tables of l's root class.
func ForLayout(l *layout.Layout) (*Tables, error) {
	t := &Tables{
		layout:  l,
		byCross: make(map[CrossCastKey]int),
		bySelf:  make(map[selfKey]bool),
	}

	for _, so := range l.UnambiguousPublicBases() {
		t.bases = append(t.bases, BaseOffset{Type: so.Name(), Offset: so.Offset})
	}

	for _, pc := range l.CrossCastPairs() {
		from, to := l.Subobject(pc.Parent), l.Subobject(pc.Child)
		key := CrossCastKey{From: from.Name(), To: to.Name(), FromOffset: from.Offset}
		if _, dup := t.byCross[key]; dup {
			return nil, t.invariant("cross cast %s@%d -> %s recorded twice", key.From, key.FromOffset, key.To)
		}
		t.byCross[key] = to.Offset
		t.cross = append(t.cross, CrossCast{CrossCastKey: key, ToOffset: to.Offset})
	}

	// Public entries first, then non-public, matching the order the harness
	// tests them in.
	for _, group := range []struct {
		subs   []layout.Subobject
		public bool
	}{
		{l.PublicBases(), true},
		{l.NonPublicBases(), false},
	} {
		for _, so := range group.subs {
			key := selfKey{so.Name(), so.Offset}
			if _, dup := t.bySelf[key]; dup {
				return nil, t.invariant("reachability of %s@%d recorded twice", so.Name(), so.Offset)
			}
			t.bySelf[key] = group.public
			t.self = append(t.self, SelfEntry{Type: so.Name(), Offset: so.Offset, Public: group.public})
		}
	}
	return t, nil
}

func (t *Tables) invariant(detail string, args ...any) *errors.Error {
	err := errors.Invariant(errors.PhaseOracle, t.Name(), detail, args...)
	err.ABI = t.layout.Target().String()
	return err
}

// Class returns the class the tables describe.
func (t *Tables) Class() *hierarchy.Class { return t.layout.Root() }

// Name returns the class name.
func (t *Tables) Name() string { return t.layout.Root().Name() }

// Layout returns the layout the tables were derived from.
func (t *Tables) Layout() *layout.Layout { return t.layout }

// Size is the complete object size.
func (t *Tables) Size() int { return t.layout.Size() }

// BaseOffsets returns the base-offset table in arena order.
func (t *Tables) BaseOffsets() []BaseOffset {
	out := make([]BaseOffset, len(t.bases))
	copy(out, t.bases)
	return out
}

// BaseOffset looks up the offset of the unambiguous public base typ.
func (t *Tables) BaseOffset(typ string) (int, bool) {
	for _, b := range t.bases {
		if b.Type == typ {
			return b.Offset, true
		}
	}
	return 0, false
}

// CrossCasts returns the cross-cast table ordered by from type, from offset,
// to type, to offset.
func (t *Tables) CrossCasts() []CrossCast {
	out := make([]CrossCast, len(t.cross))
	copy(out, t.cross)
	return out
}

// CrossCast looks up the expected target offset for key.
func (t *Tables) CrossCast(key CrossCastKey) (int, bool) {
	off, ok := t.byCross[key]
	return off, ok
}

// SelfReachability returns every recorded (type, offset) entry, public
// entries first.
func (t *Tables) SelfReachability() []SelfEntry {
	out := make([]SelfEntry, len(t.self))
	copy(out, t.self)
	return out
}

// IsPublicBase reports whether the subobject of typ at offset is a public
// base of the complete object. An unrecorded key is a model inconsistency.
func (t *Tables) IsPublicBase(typ string, offset int) (bool, error) {
	public, ok := t.bySelf[selfKey{typ, offset}]
	if !ok {
		return false, t.invariant("no subobject %s at offset %d", typ, offset)
	}
	return public, nil
}

// MustIsPublicBase is like IsPublicBase but panics on an unrecorded key.
func (t *Tables) MustIsPublicBase(typ string, offset int) bool {
	public, err := t.IsPublicBase(typ, offset)
	if err != nil {
		panic(err)
	}
	return public
}
