package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on", "always":
		return colorOn, nil
	case "off", "never":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// enabled resolves auto against the writer: only a terminal gets colors.
func (m colorMode) enabled(w io.Writer) bool {
	switch m {
	case colorOn:
		return true
	case colorOff:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
