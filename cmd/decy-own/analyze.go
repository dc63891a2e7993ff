package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paiml/decy-sub003/internal/config"
	"github.com/paiml/decy-sub003/internal/driver"
	"github.com/paiml/decy-sub003/internal/fixture"
	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/ownership"
	"github.com/paiml/decy-sub003/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <fixture.yaml|directory|url>",
	Short: "Infer pointer ownership and lifetimes for fixture functions",
	Long: `Load HIR fixtures, infer the ownership of every pointer, rewrite the
signatures that are safe to rewrite, and report locals that would dangle.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("config", "", "path to decy.toml (default: nearest one above the input)")
	analyzeCmd.Flags().Float64("threshold", 0, "confidence threshold in (0, 1] (default from config, 0.65)")
	analyzeCmd.Flags().String("classifier", "", "classifier (rules|ensemble)")
	analyzeCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	analyzeCmd.Flags().String("format", "text", "output format (text|yaml)")
	analyzeCmd.Flags().Bool("progress", false, "show a live progress view when stdout is a terminal")
	analyzeCmd.Flags().Bool("cache", false, "reuse cached summaries of unchanged functions")
	analyzeCmd.Flags().Bool("body", false, "print the rewritten function bodies (text format)")
	analyzeCmd.Flags().Bool("timings", false, "print per-stage timings (text format)")
	analyzeCmd.Flags().Bool("fail-on-dangling", false, "exit with status 1 when a dangling pointer is found")
}

// analyzeSettings merges decy.toml with the command line flags.
type analyzeSettings struct {
	cfg            config.Config
	format         string
	color          colorMode
	progress       bool
	body           bool
	timings        bool
	failOnDangling bool
}

func readAnalyzeSettings(cmd *cobra.Command, target string) (analyzeSettings, error) {
	var s analyzeSettings
	flags := cmd.Flags()

	explicit, err := flags.GetString("config")
	if err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	startDir := "."
	if !isURL(target) {
		startDir = target
		if info, statErr := os.Stat(target); statErr == nil && !info.IsDir() {
			startDir = filepath.Dir(target)
		}
	}
	s.cfg, err = config.Resolve(explicit, startDir)
	if err != nil {
		return s, err
	}

	if flags.Changed("threshold") {
		if s.cfg.Analysis.Threshold, err = flags.GetFloat64("threshold"); err != nil {
			return s, fmt.Errorf("failed to get threshold flag: %w", err)
		}
	}
	if flags.Changed("classifier") {
		if s.cfg.Analysis.Classifier, err = flags.GetString("classifier"); err != nil {
			return s, fmt.Errorf("failed to get classifier flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if s.cfg.Analysis.Jobs, err = flags.GetInt("jobs"); err != nil {
			return s, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("cache") {
		if s.cfg.Cache.Enabled, err = flags.GetBool("cache"); err != nil {
			return s, fmt.Errorf("failed to get cache flag: %w", err)
		}
	}
	if err := s.cfg.Validate(); err != nil {
		return s, err
	}

	if s.format, err = flags.GetString("format"); err != nil {
		return s, fmt.Errorf("failed to get format flag: %w", err)
	}
	s.format = strings.ToLower(s.format)
	switch s.format {
	case "text", "yaml":
	default:
		return s, fmt.Errorf("unsupported format %q (must be text or yaml)", s.format)
	}

	colorValue, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return s, fmt.Errorf("failed to get color flag: %w", err)
	}
	if s.color, err = readColorMode(colorValue); err != nil {
		return s, err
	}

	for name, dst := range map[string]*bool{
		"progress":         &s.progress,
		"body":             &s.body,
		"timings":          &s.timings,
		"fail-on-dangling": &s.failOnDangling,
	} {
		if *dst, err = flags.GetBool(name); err != nil {
			return s, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	return s, nil
}

func isURL(location string) bool {
	return strings.Contains(location, "://")
}

// runAnalyze loads the fixtures, runs the batch pipeline and writes the
// report. It returns errFindings when --fail-on-dangling is set and a
// dangling pointer was reported.
func runAnalyze(cmd *cobra.Command, args []string) error {
	target := args[0]
	settings, err := readAnalyzeSettings(cmd, target)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd, settings.cfg.Trace)
	if err != nil {
		return err
	}
	defer cleanup()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	ctx := cmd.Context()

	location := target
	if !isURL(location) {
		if location, err = filepath.Abs(location); err != nil {
			return fmt.Errorf("resolve %s: %w", target, err)
		}
	}
	fns, err := fixture.Load(ctx, location)
	if err != nil {
		return err
	}
	if len(fns) == 0 {
		return fmt.Errorf("%s: no functions found", target)
	}

	opts, err := driverOptions(settings.cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var summaries []report.Summary
	if settings.progress && isTerminal(os.Stdout) && out == os.Stdout {
		summaries, err = runBatchWithUI(ctx, fns, opts)
	} else {
		summaries, err = driver.Batch(ctx, fns, opts)
	}
	if err != nil {
		return err
	}

	switch settings.format {
	case "yaml":
		err = report.WriteYAML(out, summaries)
	default:
		err = report.WriteText(out, summaries, report.TextOptions{
			Color:   settings.color.enabled(out),
			Timings: settings.timings,
			Body:    settings.body,
		})
	}
	if err != nil {
		return err
	}

	if settings.failOnDangling && report.Tally(summaries).Dangling > 0 {
		return errFindings
	}
	return nil
}

func driverOptions(cfg config.Config) (driver.Options, error) {
	classifier, err := ownership.ByName(cfg.Analysis.Classifier)
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{
		Classifier: classifier,
		Threshold:  cfg.Analysis.Threshold,
		Jobs:       cfg.Analysis.Jobs,
	}
	if cfg.Cache.Enabled {
		if opts.Cache, err = driver.OpenDiskCache(cfg.Cache.Dir, "decy-own"); err != nil {
			return driver.Options{}, err
		}
	}
	return opts, nil
}

func funcNames(fns []*hir.Func) []string {
	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.Name
	}
	return names
}
