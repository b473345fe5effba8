package layout

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/hierarchy"
)

// Engine computes layouts for one ABI target and memoizes them per root.
type Engine struct {
	cache  map[*hierarchy.Class]*Layout
	target abi.Target
}

// NewEngine creates an engine for target.
func NewEngine(target abi.Target) *Engine {
	return &Engine{
		cache:  make(map[*hierarchy.Class]*Layout),
		target: target,
	}
}

// Target returns the engine's ABI target.
func (e *Engine) Target() abi.Target { return e.target }

// Layout returns root's layout, computing it on first request.
func (e *Engine) Layout(root *hierarchy.Class) (*Layout, error) {
	if root == nil {
		return nil, errors.InvalidInput(errors.PhaseLayout, "nil root class")
	}
	if cached, ok := e.cache[root]; ok {
		return cached, nil
	}

	l := build(root, e.target)
	if err := l.check(); err != nil {
		return nil, err
	}
	l.analyze()
	e.cache[root] = l

	Logger().Debug("layout computed",
		zap.String("class", root.Name()),
		zap.String("abi", e.target.String()),
		zap.Int("size", l.size),
		zap.Int("subobjects", len(l.subs)),
		zap.Int("public_pairs", len(l.pairs)),
		zap.Int("ambiguous_pairs", len(l.ambiguous)))
	return l, nil
}

// Cached reports how many layouts the engine holds.
func (e *Engine) Cached() int { return len(e.cache) }

type builder struct {
	target abi.Target
	subs   []Subobject
	offset int
}

func build(root *hierarchy.Class, target abi.Target) *Layout {
	b := &builder{target: target}

	// Phase 1: the root and every non-virtual base beneath it.
	b.add(root, false, nil)
	b.placeNonVirtual(root, 0)

	// Phase 2: the root's transitive virtual bases, each once.
	for _, vb := range root.VirtualBases(target.Mode) {
		idx := b.add(vb, true, nil)
		b.placeNonVirtual(vb, idx)
	}

	b.attributeVirtualOwners()
	b.linkSuperobjects()

	l := &Layout{
		root:       root,
		target:     target,
		subs:       b.subs,
		size:       b.offset,
		classCount: make(map[*hierarchy.Class]int),
	}
	for _, so := range l.subs {
		l.classCount[so.Class]++
	}
	return l
}

func (b *builder) add(c *hierarchy.Class, virtual bool, owners []int) int {
	idx := len(b.subs)
	b.subs = append(b.subs, Subobject{
		Class:             c,
		Virtual:           virtual,
		Offset:            b.offset,
		Index:             idx,
		DirectSubobjectOf: owners,
	})
	return idx
}

// placeNonVirtual lays out c's non-virtual bases below the subobject at from,
// then reserves c's own slots. Virtual bases are deferred to the root.
func (b *builder) placeNonVirtual(c *hierarchy.Class, from int) {
	for i := 0; i < c.NumBases(); i++ {
		e := c.Base(i)
		if e.Virtual {
			continue
		}
		idx := b.add(e.Base, false, []int{from})
		b.placeNonVirtual(e.Base, idx)
	}
	b.offset += b.target.OwnSize(c.Shape())
}

// attributeVirtualOwners makes each virtual subobject a direct subobject of
// every placed subobject whose class declares it as a virtual base.
func (b *builder) attributeVirtualOwners() {
	for i := 1; i < len(b.subs); i++ {
		if !b.subs[i].Virtual {
			continue
		}
		for j := range b.subs {
			if b.subs[j].Class.HasDirectVirtualBase(b.subs[i].Class) {
				b.subs[i].DirectSubobjectOf = append(b.subs[i].DirectSubobjectOf, j)
			}
		}
	}
}

func (b *builder) linkSuperobjects() {
	for i := range b.subs {
		for _, owner := range b.subs[i].DirectSubobjectOf {
			b.subs[owner].DirectSuperobjectOf = append(b.subs[owner].DirectSuperobjectOf, i)
		}
	}
	for i := range b.subs {
		owner := b.subs[i].Class
		children := b.subs[i].DirectSuperobjectOf
		sort.SliceStable(children, func(x, y int) bool {
			ox, _ := owner.InheritanceOrderOf(b.subs[children[x]].Class)
			oy, _ := owner.InheritanceOrderOf(b.subs[children[y]].Class)
			return ox < oy
		})
	}
}

type placement struct {
	class  *hierarchy.Class
	offset int
}

// check verifies the layout invariants the oracle relies on.
func (l *Layout) check() error {
	fail := func(class string, detail string, args ...any) error {
		err := errors.Invariant(errors.PhaseLayout, class, detail, args...)
		err.Path = []string{l.root.Name()}
		err.ABI = l.target.String()
		return err
	}

	if len(l.subs) == 0 || l.subs[0].Class != l.root || l.subs[0].Offset != 0 {
		return fail(l.root.Name(), "root subobject missing from offset 0")
	}

	placed := make(map[placement]int, len(l.subs))
	virtuals := make(map[*hierarchy.Class]int)
	for i, so := range l.subs {
		key := placement{class: so.Class, offset: so.Offset}
		if prev, dup := placed[key]; dup {
			return fail(so.Name(), "subobjects %d and %d both placed at offset %d", prev, i, so.Offset)
		}
		placed[key] = i
		if so.Offset >= l.size {
			return fail(so.Name(), "offset %d beyond object size %d", so.Offset, l.size)
		}
		if so.Virtual {
			virtuals[so.Class]++
			if len(so.DirectSubobjectOf) == 0 {
				return fail(so.Name(), "virtual base has no owner")
			}
		} else if i > 0 && len(so.DirectSubobjectOf) != 1 {
			return fail(so.Name(), "non-virtual base has %d owners", len(so.DirectSubobjectOf))
		}
	}
	for c, n := range virtuals {
		if n != 1 {
			return fail(c.Name(), "virtual base placed %d times", n)
		}
	}
	return nil
}
