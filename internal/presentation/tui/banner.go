package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{" _         _   _   _          ", "#34d399"},
	{"| |   __ _| |_| |_(_) ___ ___ ", "#2dd4bf"},
	{"| |  / _` | __| __| |/ __/ _ \\", "#22d3ee"},
	{"| |_| (_| | |_| |_| | (_|  __/", "#38bdf8"},
	{"|____\\__,_|\\__|\\__|_|\\___\\___|", "#60a5fa"},
}

// PrintBanner writes the Lattice banner to w. Colors are dropped when w is
// not a terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w)
}
