package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the console banner, coloured when w is a colour terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"  ___ __  __ ___                        _   ", "#38bdf8"},
		{" | _ )  \\/  / __|  __ _ __ _ ___ _ _  | |_ ", "#22d3ee"},
		{" | _ \\ |\\/| \\__ \\ / _` / _` / -_) ' \\ |  _|", "#2dd4bf"},
		{" |___/_|  |_|___/ \\__,_\\__, \\___|_||_| \\__|", "#34d399"},
		{"                       |___/               ", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(fmt.Sprintf("  facility assistant %s. Type help for the action catalog.", version)).Faint())
	fmt.Fprintln(w)
}
