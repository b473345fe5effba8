package layout

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one line per subobject, "offset: Name (virtual)", followed by
// the subobjects that directly contain it.
func (l *Layout) Dump(w io.Writer) error {
	for _, so := range l.subs {
		virtual := ""
		if so.Virtual {
			virtual = " (virtual)"
		}
		if _, err := fmt.Fprintf(w, "%3d: %s%s\n", so.Offset, so.Name(), virtual); err != nil {
			return err
		}
		for _, owner := range so.DirectSubobjectOf {
			o := l.subs[owner]
			if _, err := fmt.Fprintf(w, "  direct subobject of %s (%d)\n", o.Name(), o.Offset); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Layout) String() string {
	var b strings.Builder
	_ = l.Dump(&b)
	return b.String()
}
