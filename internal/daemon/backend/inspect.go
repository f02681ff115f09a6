package backend

import (
	"context"
	"os"
	"strings"

	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// portOwner returns the PID listening on the given TCP port, or 0.
func portOwner(ctx context.Context, port int) (int32, error) {
	conns, err := psnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return 0, err
	}
	for _, c := range conns {
		if c.Status == "LISTEN" && int(c.Laddr.Port) == port && c.Pid > 0 {
			return c.Pid, nil
		}
	}
	return 0, nil
}

// pidsByName returns every process whose executable name matches name,
// ignoring case and excluding the launcher itself.
func pidsByName(ctx context.Context, name string) ([]int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	self := int32(os.Getpid())
	var pids []int32
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		n, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if strings.EqualFold(n, name) {
			pids = append(pids, p.Pid)
		}
	}
	return pids, nil
}

// killPID kills a single process by PID.
func killPID(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		// Already gone.
		return nil
	}
	return p.KillWithContext(ctx)
}
