//go:build windows

package cli

import "os"

// Windows has no SIGTERM for console-less processes.
func terminateProcess(p *os.Process) error {
	return p.Kill()
}
