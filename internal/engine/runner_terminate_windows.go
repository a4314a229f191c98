//go:build windows

package engine

import "os/exec"

func configureCommandForTermination(cmd *exec.Cmd) {}
