package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// TextOptions control the text renderer.
type TextOptions struct {
	Color   bool
	Timings bool
	Body    bool // include the rewritten function body
}

type palette struct {
	header  *color.Color
	trusted *color.Color
	raw     *color.Color
	warning *color.Color
	info    *color.Color
	dim     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header:  color.New(color.Bold),
		trusted: color.New(color.FgGreen),
		raw:     color.New(color.FgYellow),
		warning: color.New(color.FgRed, color.Bold),
		info:    color.New(color.FgCyan),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.header, p.trusted, p.raw, p.warning, p.info, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteText renders summaries as aligned tables, one block per function,
// followed by batch totals.
func WriteText(w io.Writer, summaries []Summary, opts TextOptions) error {
	p := newPalette(opts.Color)
	var sb strings.Builder
	for i := range summaries {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeSummary(&sb, &summaries[i], p, opts)
	}

	t := Tally(summaries)
	fmt.Fprintf(&sb, "\n%d functions, %d pointers, %d safe, %d dangling, %d warnings\n",
		t.Functions, t.Variables, t.Trusted, t.Dangling, t.Warnings)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeSummary(sb *strings.Builder, s *Summary, p palette, opts TextOptions) {
	sb.WriteString(p.header.Sprint(s.Original))
	if s.Cached {
		sb.WriteString(p.dim.Sprint("  (cached)"))
	}
	sb.WriteString("\n")
	if s.Signature != s.Original {
		fmt.Fprintf(sb, "  => %s\n", p.trusted.Sprint(s.Signature))
	}

	if len(s.Variables) > 0 {
		nameW, kindW, typeW := len("VAR"), len("OWNERSHIP"), len("TYPE")
		for _, v := range s.Variables {
			nameW = max(nameW, runewidth.StringWidth(v.Name))
			kindW = max(kindW, runewidth.StringWidth(v.Kind))
			typeW = max(typeW, runewidth.StringWidth(v.Type))
		}
		fmt.Fprintf(sb, "  %s  %s  %s  %s  %s\n",
			runewidth.FillRight("VAR", nameW),
			runewidth.FillRight("OWNERSHIP", kindW),
			runewidth.FillRight("TYPE", typeW),
			"CONF",
			"SAFE TYPE")
		for _, v := range s.Variables {
			safe := p.raw.Sprint(v.SafeType)
			if v.Trusted {
				safe = p.trusted.Sprint(v.SafeType)
			}
			fmt.Fprintf(sb, "  %s  %s  %s  %3.0f%%  %s\n",
				runewidth.FillRight(v.Name, nameW),
				runewidth.FillRight(v.Kind, kindW),
				runewidth.FillRight(v.Type, typeW),
				v.Confidence*100,
				safe)
		}
	}

	for _, f := range s.Diagnostics {
		c := p.info
		if f.Severity != "INFO" {
			c = p.warning
		}
		fmt.Fprintf(sb, "  %s %s", c.Sprint(strings.ToLower(f.Severity)), f.Code)
		if f.Variable != "" {
			fmt.Fprintf(sb, " %s", f.Variable)
		}
		fmt.Fprintf(sb, ": %s\n", f.Message)
		for _, n := range f.Notes {
			fmt.Fprintf(sb, "      %s\n", p.dim.Sprint(n))
		}
	}

	if len(s.Relations) > 0 {
		sb.WriteString("  lifetimes:\n")
		for _, r := range s.Relations {
			fmt.Fprintf(sb, "    %s %s %s\n", r.First, p.dim.Sprint(r.Relation), r.Second)
		}
	}

	if opts.Body && s.Rust != "" {
		sb.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(s.Rust, "\n"), "\n") {
			sb.WriteString("    ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if opts.Timings && len(s.Timings.Stages) > 0 {
		parts := make([]string, 0, len(s.Timings.Stages))
		for _, st := range s.Timings.Stages {
			parts = append(parts, fmt.Sprintf("%s %.3fms", st.Name, st.DurationMS))
		}
		fmt.Fprintf(sb, "  %s\n", p.dim.Sprint(strings.Join(parts, ", ")))
	}
}
