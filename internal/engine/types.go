package engine

import (
	"context"
	"time"
)

// ExecSpec describes one external tool invocation. LogPath, when set, is the
// per-stage log sink: combined stdout+stderr of the child is streamed to it
// and the file is truncated at the start of every run.
type ExecSpec struct {
	Bin            string
	Args           []string
	Dir            string
	LogPath        string
	Timeout        time.Duration
	DisplayCommand string
}

type ExecResult struct {
	ExitCode    int
	Duration    time.Duration
	Interrupted bool
	TimedOut    bool
	LogPath     string
	Err         error
}

func (r ExecResult) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

type ExecRunner interface {
	Run(ctx context.Context, spec ExecSpec) ExecResult
}
