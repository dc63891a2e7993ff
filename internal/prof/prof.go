// Package prof collects Go runtime profiles around a batch run.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Options names the output files. Empty paths disable that profile.
type Options struct {
	CPU   string
	Heap  string
	Trace string
}

func (o Options) Empty() bool {
	return o.CPU == "" && o.Heap == "" && o.Trace == ""
}

// Session owns the profile files opened by Start.
type Session struct {
	heap    string
	cpu     *os.File
	trace   *os.File
	stopped bool
}

// Start begins CPU profiling and runtime tracing as requested. The heap
// profile is written by Stop.
func Start(opts Options) (*Session, error) {
	s := &Session{heap: opts.Heap}
	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpu = f
	}
	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err := rtrace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.trace = f
	}
	return s, nil
}

// Stop ends the active profiles and writes the heap profile. It is safe to
// call more than once.
func (s *Session) Stop() error {
	if s == nil || s.stopped {
		return nil
	}
	s.stopped = true

	var errs []error
	if s.trace != nil {
		rtrace.Stop()
		errs = append(errs, s.trace.Close())
		s.trace = nil
	}
	errs = append(errs, s.stopCPU())
	if s.heap != "" {
		errs = append(errs, writeHeap(s.heap))
	}
	return errors.Join(errs...)
}

func (s *Session) stopCPU() error {
	if s.cpu == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpu.Close()
	s.cpu = nil
	return err
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	return nil
}
