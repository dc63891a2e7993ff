package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paiml/decy-sub003/internal/prof"
)

// setupProfiling starts the profilers named by the persistent profiling
// flags. The returned cleanup stops them and reports write failures.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = root.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Heap, err = root.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = root.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if opts.Empty() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
