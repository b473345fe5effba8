package oracle

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/hierarchy"
	"github.com/wippyai/dyncast/layout"
)

func generated(seed uint64, mode abi.Mode) (*Hierarchy, error) {
	opts := hierarchy.DefaultGenerateOptions()
	opts.Seed = seed
	h, err := hierarchy.Generate(opts)
	if err != nil {
		return nil, err
	}
	return Build(h, layout.NewEngine(abi.ForMode(mode)))
}

// TestOracleProperties checks the tables against their layouts for random
// hierarchies under both ABIs.
func TestOracleProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	for _, mode := range []abi.Mode{abi.Itanium, abi.Microsoft} {
		mode := mode

		properties.Property(mode.String()+": ambiguous types never reach the cast tables", prop.ForAll(
			func(seed uint64) bool {
				o, err := generated(seed, mode)
				if err != nil {
					return false
				}
				for _, tab := range o.Tables() {
					l := tab.Layout()
					for _, b := range tab.BaseOffsets() {
						c, _ := lookup(l, b.Type)
						if c == nil || l.IsAmbiguousBase(c) {
							return false
						}
					}
					for _, pc := range l.AmbiguousPublicChildPairs() {
						p, c := l.Subobject(pc.Parent), l.Subobject(pc.Child)
						key := CrossCastKey{From: p.Name(), To: c.Name(), FromOffset: p.Offset}
						if to, ok := tab.CrossCast(key); ok && to == c.Offset {
							return false
						}
					}
				}
				return true
			},
			gen.UInt64(),
		))

		properties.Property(mode.String()+": every non-root subobject is classified once", prop.ForAll(
			func(seed uint64) bool {
				o, err := generated(seed, mode)
				if err != nil {
					return false
				}
				for _, tab := range o.Tables() {
					l := tab.Layout()
					if len(tab.SelfReachability()) != l.Len()-1 {
						return false
					}
					for _, so := range l.Subobjects()[1:] {
						public, err := tab.IsPublicBase(so.Name(), so.Offset)
						if err != nil || public != l.HasPublicPathDownTo(so.Index, 0) {
							return false
						}
					}
				}
				return true
			},
			gen.UInt64(),
		))

		properties.Property(mode.String()+": base paths end in castable classes", prop.ForAll(
			func(seed uint64) bool {
				o, err := generated(seed, mode)
				if err != nil {
					return false
				}
				for _, c := range o.Classes() {
					paths := o.BasePaths(c)
					if len(paths) == 0 || len(paths[0].Steps) != 0 {
						return false
					}
					if !o.CanDynamicCast(c, c) {
						return false
					}
				}
				return true
			},
			gen.UInt64(),
		))
	}

	properties.TestingRun(t)
}

func lookup(l *layout.Layout, name string) (*hierarchy.Class, bool) {
	for _, so := range l.Subobjects() {
		if so.Name() == name {
			return so.Class, true
		}
	}
	return nil, false
}
