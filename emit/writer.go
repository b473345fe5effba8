package emit

import (
	"fmt"
	"strings"
)

type writer struct {
	b strings.Builder
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *writer) blank() {
	w.b.WriteByte('\n')
}

func (w *writer) include(name string) {
	w.line("#include %s", name)
}

func (w *writer) String() string {
	return w.b.String()
}
