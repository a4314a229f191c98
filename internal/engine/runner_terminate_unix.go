//go:build !windows

package engine

import (
	"os/exec"
	"syscall"
)

// Stage tools like openfpga.sh fork their own children; run each invocation
// in its own process group so a kill reaches the whole tree.
func configureCommandForTermination(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process != nil && cmd.Process.Pid > 0 {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return cmd.Process.Kill()
	}
}
