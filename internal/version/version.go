// Package version holds build metadata for the decy-own CLI. The variables
// can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component in its own color.
// Versions that are not dotted triples are returned unchanged.
func Colored(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	out := fmt.Sprintf("%s.%s.%s", majorColor.Sprint(parts[0]), minorColor.Sprint(parts[1]), patchColor.Sprint(parts[2]))
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
