package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
)

const (
	colorRed   = "\033[31m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"
	colorReset = "\033[0m"
)

// UseColor decides whether output written to w should be colored.
// mode is "always", "never" or "auto"; auto colors only terminals.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Sorted returns errs ordered by file, line and column. The input is not
// modified. Ties keep their emission order.
func Sorted(errs []*DiagnosticError) []*DiagnosticError {
	items := make([]*DiagnosticError, len(errs))
	copy(items, errs)
	sort.SliceStable(items, func(i, j int) bool {
		fi, li, ci := items[i].Span.LocStart()
		fj, lj, cj := items[j].Span.LocStart()
		if fi != fj {
			return fi < fj
		}
		if li != lj {
			return li < lj
		}
		return ci < cj
	})
	return items
}

// Print writes errs to w, one per line with related locations and notes
// indented underneath.
func Print(w io.Writer, errs []*DiagnosticError, color bool) {
	for _, e := range Sorted(errs) {
		if color {
			fmt.Fprintf(w, "%s%s%s\n", colorBold+colorRed, e.Error(), colorReset)
		} else {
			fmt.Fprintln(w, e.Error())
		}
		for _, r := range e.Related {
			if color {
				fmt.Fprintf(w, "  %s--> %s%s\n", colorDim, r.PathWithLineCol(), colorReset)
			} else {
				fmt.Fprintf(w, "  --> %s\n", r.PathWithLineCol())
			}
		}
		for _, n := range e.Notes {
			fmt.Fprintf(w, "  note: %s\n", n)
		}
	}
}
