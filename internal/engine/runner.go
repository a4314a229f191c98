package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// SubprocessRunner executes external tools one at a time. Echo, when set,
// receives a live copy of the tool output in addition to the log file.
type SubprocessRunner struct {
	Echo io.Writer
}

func NewSubprocessRunner(echo io.Writer) *SubprocessRunner {
	return &SubprocessRunner{Echo: echo}
}

func (r *SubprocessRunner) Run(ctx context.Context, spec ExecSpec) ExecResult {
	start := time.Now()
	if spec.Bin == "" {
		return ExecResult{ExitCode: 1, Duration: time.Since(start), Err: errors.New("missing binary")}
	}

	runCtx := ctx
	cancel := func() {}
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
	}
	defer cancel()

	var sinks []io.Writer
	var logFile *os.File
	if spec.LogPath != "" {
		f, err := os.Create(spec.LogPath)
		if err != nil {
			return ExecResult{
				ExitCode: 1,
				Duration: time.Since(start),
				Err:      fmt.Errorf("create log file %s: %w", spec.LogPath, err),
			}
		}
		logFile = f
		sinks = append(sinks, f)
	}
	if r.Echo != nil {
		sinks = append(sinks, r.Echo)
	}

	cmd := exec.CommandContext(runCtx, spec.Bin, spec.Args...)
	cmd.Dir = spec.Dir
	switch len(sinks) {
	case 0:
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	case 1:
		cmd.Stdout = sinks[0]
		cmd.Stderr = sinks[0]
	default:
		sink := io.MultiWriter(sinks...)
		cmd.Stdout = sink
		cmd.Stderr = sink
	}
	configureCommandForTermination(cmd)

	err := cmd.Run()
	if logFile != nil {
		_ = logFile.Close()
	}

	result := ExecResult{
		Duration: time.Since(start),
		LogPath:  spec.LogPath,
		Err:      err,
	}
	if err == nil {
		result.ExitCode = 0
		return result
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
	}
	if runCtx.Err() == context.Canceled {
		result.Interrupted = true
		result.ExitCode = 130
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result
	}

	if errors.Is(err, exec.ErrNotFound) {
		result.ExitCode = 127
		return result
	}

	result.ExitCode = 1
	return result
}
