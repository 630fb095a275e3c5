package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the fsmgen banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"   __                                 ", "#34d399"},
		{"  / _|___ _ __ ___   __ _  ___ _ __   ", "#2dd4bf"},
		{" | |_/ __| '_ ` _ \\ / _` |/ _ \\ '_ \\  ", "#22d3ee"},
		{" |  _\\__ \\ | | | | | (_| |  __/ | | | ", "#38bdf8"},
		{" |_| |___/_| |_| |_|\\__, |\\___|_| |_| ", "#60a5fa"},
		{"                    |___/             ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
