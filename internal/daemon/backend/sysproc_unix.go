//go:build !windows

package backend

import (
	"errors"
	"os/exec"
	"syscall"
)

// hideWindow is a no-op outside Windows.
func hideWindow(*exec.Cmd) {}

// detach puts the backend in its own process group so the whole tree can be
// signalled and terminal signals aimed at the launcher do not reach it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree kills the process group led by pid, falling back to pid alone.
func killTree(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		err = syscall.Kill(pid, syscall.SIGKILL)
	}
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
