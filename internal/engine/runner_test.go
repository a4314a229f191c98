package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestSubprocessRunnerStreamsOutputToLogFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test is POSIX-specific")
	}

	tmp := t.TempDir()
	logPath := filepath.Join(tmp, "counter_synth.log")

	var echo bytes.Buffer
	runner := NewSubprocessRunner(&echo)
	result := runner.Run(context.Background(), ExecSpec{
		Bin:     "sh",
		Args:    []string{"-c", "echo 'Printing statistics.'; echo 'oops' >&2"},
		Dir:     tmp,
		LogPath: logPath,
	})

	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (err=%v)", result.ExitCode, result.Err)
	}
	payload, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(payload), "Printing statistics.") {
		t.Fatalf("stdout missing from log: %q", string(payload))
	}
	if !strings.Contains(string(payload), "oops") {
		t.Fatalf("stderr missing from log: %q", string(payload))
	}
	if !strings.Contains(echo.String(), "Printing statistics.") {
		t.Fatalf("echo writer missed output: %q", echo.String())
	}
}

func TestSubprocessRunnerTruncatesLogBetweenRuns(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test is POSIX-specific")
	}

	tmp := t.TempDir()
	logPath := filepath.Join(tmp, "stage.log")
	runner := NewSubprocessRunner(nil)

	for _, line := range []string{"first run", "second run"} {
		result := runner.Run(context.Background(), ExecSpec{
			Bin:     "sh",
			Args:    []string{"-c", "echo " + line},
			Dir:     tmp,
			LogPath: logPath,
		})
		if result.ExitCode != 0 {
			t.Fatalf("run failed: %v", result.Err)
		}
	}

	payload, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(payload), "first run") {
		t.Fatalf("log should be truncated per run: %q", string(payload))
	}
	if !strings.Contains(string(payload), "second run") {
		t.Fatalf("log missing latest run output: %q", string(payload))
	}
}

func TestSubprocessRunnerMapsExitCodes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test is POSIX-specific")
	}

	runner := NewSubprocessRunner(nil)

	result := runner.Run(context.Background(), ExecSpec{Bin: "sh", Args: []string{"-c", "exit 3"}})
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}

	result = runner.Run(context.Background(), ExecSpec{Bin: "definitely-not-a-real-tool-9271"})
	if result.ExitCode != 127 {
		t.Fatalf("expected exit code 127 for missing binary, got %d", result.ExitCode)
	}

	result = runner.Run(context.Background(), ExecSpec{})
	if result.ExitCode != 1 || result.Err == nil {
		t.Fatalf("expected failure for empty binary, got %+v", result)
	}
}

func TestSubprocessRunnerReportsInterrupt(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test is POSIX-specific")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	runner := NewSubprocessRunner(nil)
	result := runner.Run(ctx, ExecSpec{Bin: "sh", Args: []string{"-c", "sleep 5"}})

	if !result.Interrupted {
		t.Fatalf("expected interrupted result, got %+v", result)
	}
	if result.ExitCode != 130 {
		t.Fatalf("expected exit code 130, got %d", result.ExitCode)
	}
}

func TestSubprocessRunnerTimesOut(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test is POSIX-specific")
	}

	runner := NewSubprocessRunner(nil)
	result := runner.Run(context.Background(), ExecSpec{
		Bin:     "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 100 * time.Millisecond,
	})

	if !result.TimedOut {
		t.Fatalf("expected timed-out result, got %+v", result)
	}
	if result.ExitCode == 0 {
		t.Fatalf("expected non-zero exit code on timeout")
	}
}
