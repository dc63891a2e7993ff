package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tests := map[string]string{
		"0.1.0-dev":    "0.1.0-dev",
		"1.2.3":        "1.2.3",
		"nightly":      "nightly",
		"1.2-rc.1":     "1.2-rc.1",
		"2.0.0-rc.1+b": "2.0.0-rc.1+b",
	}
	for in, want := range tests {
		if got := Colored(in); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}

	color.NoColor = false
	if got := Colored("1.2.3"); got == "1.2.3" {
		t.Errorf("expected escape codes with color enabled")
	}
}
