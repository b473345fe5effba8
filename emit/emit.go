package emit

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/dyncast"
	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/hierarchy"
	"github.com/wippyai/dyncast/oracle"
)

// Generated file names.
const (
	ThingsHeader = "things.gen.h"
	ThingsSource = "things.gen.cc"
	HarnessFile  = "harness.gen.cc"
)

// Support files the generated sources include. They are not generated and
// must be on the flattener's include path.
const (
	SupportHeader    = "dynamicast.h"
	SupportSource    = "dynamicast.cc"
	TestHarness      = "test-harness.h"
	BenchmarkHarness = "benchmark-harness.h"
)

// Flavor selects the harness driver.
type Flavor uint8

const (
	FlavorTest Flavor = iota
	FlavorBenchmark
)

func (f Flavor) String() string {
	if f == FlavorBenchmark {
		return "benchmark"
	}
	return "test"
}

// Files is one rendered model.
type Files struct {
	ThingsH   string
	ThingsCC  string
	HarnessCC string
}

// Names lists the generated files in the order they are compiled.
func (f *Files) Names() []string {
	return []string{ThingsSource, SupportSource, HarnessFile}
}

// Map returns the generated files keyed by name.
func (f *Files) Map() map[string]string {
	return map[string]string{
		ThingsHeader: f.ThingsH,
		ThingsSource: f.ThingsCC,
		HarnessFile:  f.HarnessCC,
	}
}

// WriteDir writes the generated files into dir.
func (f *Files) WriteDir(dir string) error {
	for name, content := range f.Map() {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.New(errors.PhaseEmit, errors.KindIO).
				Path(path).
				Cause(err).
				Detail("write generated source").
				Build()
		}
	}
	return nil
}

// Render emits all three files for m.
func Render(m *dyncast.Model, flavor Flavor) (*Files, error) {
	if m == nil {
		return nil, errors.InvalidInput(errors.PhaseEmit, "nil model")
	}
	return &Files{
		ThingsH:   ClassDefinitions(m),
		ThingsCC:  TypeInfo(m),
		HarnessCC: Harness(m, flavor),
	}, nil
}

// ClassDefinitions renders things.gen.h.
func ClassDefinitions(m *dyncast.Model) string {
	w := &writer{}
	o := m.Oracle()
	for _, t := range o.Tables() {
		classDefinition(w, o, t, m.Target())
		w.blank()
	}
	return w.String()
}

func classDefinition(w *writer, o *oracle.Hierarchy, t *oracle.Tables, target abi.Target) {
	c := t.Class()
	name := c.Name()

	if c.NumBases() == 0 {
		w.line("struct %s {", name)
	} else {
		bases := make([]string, 0, c.NumBases())
		for _, e := range c.Bases() {
			bases = append(bases, e.String())
		}
		w.line("struct %s : %s {", name, strings.Join(bases, ", "))
	}
	w.line("    void *%sdata;", name)
	w.line("    char *as_charptr() { return (char*)this; }")
	for _, e := range o.ConvertibleBases(c) {
		w.line("    %s", accessor(e.Base))
	}
	w.line("    %s", accessor(c))
	w.line("    virtual ~%s() {}", name)
	w.line("};")

	if target.Mode == abi.Microsoft {
		w.line("static_assert(sizeof (%s) == %d, \"unexpected sizeof\");", name, t.Size())
	} else {
		w.line("static_assert(sizeof (%s) == %d);", name, t.Size())
	}
}

func accessor(c *hierarchy.Class) string {
	return c.Name() + " *as_" + c.Name() + "() { return this; }"
}

// TypeInfo renders things.gen.cc.
func TypeInfo(m *dyncast.Model) string {
	w := &writer{}
	w.include(`"` + ThingsHeader + `"`)
	w.include(`"` + SupportHeader + `"`)
	w.include("<cassert>")
	w.include("<cstdio>")
	w.include("<typeinfo>")
	w.blank()

	tables := m.Oracle().Tables()
	for _, t := range tables {
		typeInfoDefinition(w, t)
		w.blank()
	}

	w.line("const MyTypeInfo& awkward_typeinfo_conversion(const std::type_info& ti) {")
	for _, t := range tables {
		w.line("    if (ti == typeid(%s)) return %s_typeinfo;", t.Name(), t.Name())
	}
	w.line("    assert(false);")
	w.line("}")
	return w.String()
}

func typeInfoDefinition(w *writer, t *oracle.Tables) {
	name := t.Name()

	w.line("void *%s_convertToBase(char *p, const std::type_info& to) {", name)
	for _, b := range t.BaseOffsets() {
		w.line("    if (to == typeid(%s)) return p + %d;", b.Type, b.Offset)
	}
	w.line("    return nullptr;")
	w.line("}")

	w.line("void *%s_maybeFromHasAPublicChildOfTypeTo(char *p, int offset, const std::type_info& from, const std::type_info& to) {", name)
	for _, cc := range t.CrossCasts() {
		w.line("    if (from == typeid(%s) && to == typeid(%s) && offset == %d) return p + %d;",
			cc.From, cc.To, cc.FromOffset, cc.ToOffset)
	}
	w.line("    return nullptr;")
	w.line("}")

	w.line("bool %s_isPublicBaseOfYourself(int offset, const std::type_info& from) {", name)
	for _, se := range t.SelfReachability() {
		w.line("    if (from == typeid(%s) && offset == %d) return %t;", se.Type, se.Offset, se.Public)
	}
	w.line(`    printf("unexpectedly %%d %%s\n", offset, from.name());`)
	w.line("    assert(false);")
	w.line("    return false;")
	w.line("}")

	w.line("MyTypeInfo %s_typeinfo {", name)
	w.line("    %s_convertToBase,", name)
	w.line("    %s_maybeFromHasAPublicChildOfTypeTo,", name)
	w.line("    %s_isPublicBaseOfYourself,", name)
	w.line("};")
}

// Harness renders harness.gen.cc in the given flavor.
func Harness(m *dyncast.Model, flavor Flavor) string {
	o := m.Oracle()
	w := &writer{}
	w.include(`"` + ThingsHeader + `"`)
	w.include(`"` + SupportHeader + `"`)
	if flavor == FlavorBenchmark {
		w.include(`"` + BenchmarkHarness + `"`)
	} else {
		w.include(`"` + TestHarness + `"`)
	}
	w.blank()

	if m.Target().Mode == abi.Microsoft {
		castTraits(w, o)
		w.blank()
	}

	if flavor == FlavorBenchmark {
		w.line("template<class To, class Native>")
		w.line("void benchmark_to(Native n) {")
		eachPath(o, func(expr string, _ *hierarchy.Class) {
			w.line("    run_benchmark<To>(n, %s);", expr)
		})
		w.line("}")
		w.blank()
		w.line("TEST(void)")
		for _, c := range o.Classes() {
			w.line("TEST(%s)", c.Name())
		}
		w.line("BENCHMARK_MAIN();")
		return w.String()
	}

	w.line("template<class To>")
	w.line("void test_to() {")
	eachPath(o, func(expr string, from *hierarchy.Class) {
		w.line("    test<To>(can_dynamic_cast<decltype(%s),To*>{}, %s, instance<%s>()->as_charptr(), \"%s\");",
			expr, expr, from.Name(), expr)
	})
	w.line("}")
	w.blank()
	w.line("int main() {")
	w.line("    test_to<void>();")
	for _, c := range o.Classes() {
		w.line("    test_to<%s>();", c.Name())
	}
	w.line(`    printf("%%d failures.\n", failure_count());`)
	w.line("    return failure_count() ? 1 : 0;")
	w.line("}")
	return w.String()
}

// castTraits spells out can_dynamic_cast for every class pair; the MSVC
// front end cannot deduce it by SFINAE.
func castTraits(w *writer, o *oracle.Hierarchy) {
	classes := o.Classes()
	for _, from := range classes {
		w.line("template<> struct can_dynamic_cast<%s*, void*> : std::true_type {};", from.Name())
		for _, to := range classes {
			trait := "false_type"
			if o.CanDynamicCast(from, to) {
				trait = "true_type"
			}
			w.line("template<> struct can_dynamic_cast<%s*, %s*> : std::%s {};", from.Name(), to.Name(), trait)
		}
	}
}

func eachPath(o *oracle.Hierarchy, fn func(expr string, from *hierarchy.Class)) {
	for _, c := range o.Classes() {
		for _, p := range o.BasePaths(c) {
			fn(PathExpr(p), c)
		}
	}
}

// PathExpr renders p as a chain of accessor calls on the class's instance.
func PathExpr(p oracle.Path) string {
	var b strings.Builder
	b.WriteString("instance<")
	b.WriteString(p.From.Name())
	b.WriteString(">()")
	for _, s := range p.Steps {
		b.WriteString("->as_")
		b.WriteString(s.Name())
		b.WriteString("()")
	}
	return b.String()
}
