package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the FormFlow banner with a version tag.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___               ___ _", "#60a5fa"},
		{" | __|__ _ _ _ __  | __| |_____ __ __", "#818cf8"},
		{" | _/ _ \\ '_| '  \\ | _|| / _ \\ V  V /", "#a78bfa"},
		{" |_|\\___/_| |_|_|_||_| |_\\___/\\_/\\_/", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  "+version).Faint())
	fmt.Fprintln(w)
}
