package backend

import "errors"

// Launch and terminate failures. Callers wrap them with detail via %w;
// match with errors.Is.
var (
	ErrRuntimeNotFound     = errors.New("node runtime not found")
	ErrEntryPointMissing   = errors.New("backend entry point missing")
	ErrDependenciesMissing = errors.New("backend dependencies missing")
	ErrPortInUse           = errors.New("backend port already in use")
	ErrSpawnFailure        = errors.New("failed to spawn backend")
	ErrNoProcessRunning    = errors.New("no backend process running")
	ErrTerminateFailed     = errors.New("failed to terminate backend")
)

var taxonomy = []struct {
	err     error
	code    string
	message string
}{
	{ErrRuntimeNotFound, "RuntimeNotFound", "Node.js not found. Make sure the nodejs folder exists or install Node.js."},
	{ErrEntryPointMissing, "EntryPointMissing", "server.js not found. Make sure it is in the launcher folder."},
	{ErrDependenciesMissing, "DependenciesMissing", "node_modules folder not found. Run npm install first."},
	{ErrPortInUse, "PortInUse", "The server port is already in use."},
	{ErrSpawnFailure, "SpawnFailure", "The server process could not be started."},
	{ErrNoProcessRunning, "NoProcessRunning", "No server process is running."},
	{ErrTerminateFailed, "TerminateFailed", "The server process could not be stopped."},
}

// Code returns the short taxonomy code for err, "" for nil and "Unknown"
// for errors outside the taxonomy.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, t := range taxonomy {
		if errors.Is(err, t.err) {
			return t.code
		}
	}
	return "Unknown"
}

// Message returns a short user-facing explanation of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, t := range taxonomy {
		if errors.Is(err, t.err) {
			return t.message
		}
	}
	return "Unexpected error: " + err.Error()
}
