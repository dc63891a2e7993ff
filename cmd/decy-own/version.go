package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paiml/decy-sub003/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show decy-own build information",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("full", false, "include commit and build date")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}

	payload := versionPayload{Tool: "decy-own", Version: strings.TrimSpace(version.Version)}
	if payload.Version == "" {
		payload.Version = "dev"
	}
	if full {
		payload.GitCommit = valueOrUnknown(strings.TrimSpace(version.GitCommit))
		payload.BuildDate = valueOrUnknown(strings.TrimSpace(version.BuildDate))
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
		colorValue, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
		mode, err := readColorMode(colorValue)
		if err != nil {
			return err
		}
		renderVersionPretty(cmd.OutOrStdout(), payload, mode.enabled(cmd.OutOrStdout()))
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func renderVersionPretty(out io.Writer, p versionPayload, colored bool) {
	v := p.Version
	if colored {
		v = version.Colored(v)
	}
	fmt.Fprintf(out, "%s %s\n", p.Tool, v)
	if p.GitCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", p.GitCommit)
	}
	if p.BuildDate != "" {
		fmt.Fprintf(out, "built:  %s\n", p.BuildDate)
	}
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
