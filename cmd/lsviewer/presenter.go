package main

import (
	"fmt"
	"io"

	"github.com/cascadia-hazards/landslide-viewer/internal/download"
)

// consolePresenter renders the confirmation flow states as plain text.
type consolePresenter struct {
	out io.Writer
}

func (p *consolePresenter) Present(v download.View) {
	switch v.State {
	case download.StateCounting:
		fmt.Fprintln(p.out, v.Message)
		for _, line := range v.FilterLines {
			fmt.Fprintln(p.out, "  "+line)
		}
	case download.StateReady:
		fmt.Fprintf(p.out, "%d features match.\n", v.Count)
		if v.Severe {
			fmt.Fprintln(p.out, "!! "+v.Message)
		} else {
			fmt.Fprintln(p.out, v.Message)
		}
	case download.StateDownloading:
		fmt.Fprintln(p.out, v.Message)
	case download.StateDone:
		fmt.Fprintf(p.out, "%s (%s)\n", v.Message, v.SavedPath)
	case download.StateError:
		if v.HasCount {
			fmt.Fprintf(p.out, "Error after counting %d features: %s\n", v.Count, v.Message)
		} else {
			fmt.Fprintln(p.out, "Error:", v.Message)
		}
	}
}
