package hierarchy

import (
	"testing"
)

func describe(h *Hierarchy) []string {
	var out []string
	for _, c := range h.Classes() {
		s := c.Name() + ":"
		for _, e := range c.Bases() {
			s += " " + e.String()
		}
		out = append(out, s)
	}
	return out
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, 1 << 40} {
		opts := DefaultGenerateOptions()
		opts.Seed = seed

		h1, err := Generate(opts)
		if err != nil {
			t.Fatal(err)
		}
		h2, err := Generate(opts)
		if err != nil {
			t.Fatal(err)
		}
		if !equalNames(describe(h1), describe(h2)) {
			t.Errorf("seed %d: hierarchies differ", seed)
		}
	}
}

func TestGenerateShape(t *testing.T) {
	opts := DefaultGenerateOptions()
	for seed := uint64(0); seed < 50; seed++ {
		opts.Seed = seed
		h, err := Generate(opts)
		if err != nil {
			t.Fatal(err)
		}
		if h.Len() != 10 {
			t.Fatalf("got %d classes, want 10", h.Len())
		}
		for i, c := range h.Classes() {
			if i < opts.Roots && c.NumBases() != 0 {
				t.Errorf("seed %d: root %s has bases", seed, c.Name())
			}
			if c.NumBases() > opts.BaseAttempts {
				t.Errorf("seed %d: %s has %d bases", seed, c.Name(), c.NumBases())
			}
			seen := map[*Class]bool{}
			for _, e := range c.Bases() {
				if seen[e.Base] {
					t.Errorf("seed %d: %s repeats base %s", seed, c.Name(), e.Base.Name())
				}
				seen[e.Base] = true
				if e.Base.ID() >= c.ID() {
					t.Errorf("seed %d: %s derives from later class %s", seed, c.Name(), e.Base.Name())
				}
			}
		}
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	opts := DefaultGenerateOptions()
	distinct := map[string]bool{}
	for seed := uint64(1); seed <= 20; seed++ {
		opts.Seed = seed
		h, err := Generate(opts)
		if err != nil {
			t.Fatal(err)
		}
		key := ""
		for _, s := range describe(h) {
			key += s + ";"
		}
		distinct[key] = true
	}
	if len(distinct) < 2 {
		t.Error("every seed produced the same hierarchy")
	}
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	opts := DefaultGenerateOptions()
	opts.Classes = 0
	if _, err := Generate(opts); err == nil {
		t.Error("expected error for zero classes")
	}
	opts = DefaultGenerateOptions()
	opts.VirtualPercent = 101
	if _, err := Generate(opts); err == nil {
		t.Error("expected error for percent over 100")
	}
}

func TestGenerateWithoutRoots(t *testing.T) {
	opts := DefaultGenerateOptions()
	opts.Roots = 0
	opts.Seed = 7
	h, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	if h.Classes()[0].NumBases() != 0 {
		t.Error("first class cannot have bases")
	}
}

func TestRNGMatchesLrand48(t *testing.T) {
	// srand48(0); lrand48() == 366850414 on glibc.
	r := newRNG(0)
	if got := r.next31(); got != 366850414 {
		t.Errorf("got %d, want 366850414", got)
	}
}
