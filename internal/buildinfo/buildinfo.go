// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

var (
	Version    = "1.0.0"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent identifies launcher components in logs and RPC metadata.
func UserAgent(component string) string {
	return "mdlauncher-" + component + "/" + Version
}
