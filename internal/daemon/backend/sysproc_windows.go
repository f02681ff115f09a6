//go:build windows

package backend

import (
	"context"
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v4/process"
)

const createNoWindow = 0x08000000

func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true, CreationFlags: createNoWindow}
}

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createNoWindow | syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killTree kills pid and every descendant, children first.
func killTree(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil
	}
	return killProcessTree(context.Background(), p)
}

func killProcessTree(ctx context.Context, p *process.Process) error {
	children, _ := p.ChildrenWithContext(ctx)
	for _, child := range children {
		_ = killProcessTree(ctx, child)
	}
	return p.KillWithContext(ctx)
}
