package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paiml/decy-sub003/internal/config"
	"github.com/paiml/decy-sub003/internal/trace"
)

// setupTracing builds the tracer from the config's [trace] section, with
// the --trace and --trace-output flags taking precedence, and attaches it to
// the command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command, cfg config.Trace) (func(), error) {
	root := cmd.Root()
	if root.PersistentFlags().Changed("trace") {
		v, err := root.PersistentFlags().GetString("trace")
		if err != nil {
			return nil, fmt.Errorf("failed to get trace flag: %w", err)
		}
		cfg.Level = v
	}
	if root.PersistentFlags().Changed("trace-output") {
		v, err := root.PersistentFlags().GetString("trace-output")
		if err != nil {
			return nil, fmt.Errorf("failed to get trace-output flag: %w", err)
		}
		cfg.Output = v
	}

	level, err := trace.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tc := trace.Config{Level: level, OutputPath: cfg.Output}
	if cfg.Output == "" || cfg.Output == "-" {
		tc.Output = cmd.ErrOrStderr()
	}
	tracer, err := trace.New(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	return func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
