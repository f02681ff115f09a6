package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/mediadl/launcher/internal/api"
	"github.com/mediadl/launcher/internal/buildinfo"
	"github.com/mediadl/launcher/internal/config"
)

// rpcTimeout bounds CLI calls. Starting the backend includes the runtime
// version check, so it gets the same generous limit.
const rpcTimeout = 30 * time.Second

// connectDaemon establishes a gRPC connection to the running daemon.
// The returned func closes the connection.
func connectDaemon() (*api.Client, func(), error) {
	info, err := config.LoadDaemonInfo()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load daemon info: %w", err)
	}
	if info == nil {
		return nil, nil, fmt.Errorf("launcher daemon not running. Start it with 'launcher daemon start'")
	}

	conn, err := api.Dial(info.Host, info.Port, buildinfo.UserAgent("cli"))
	if err != nil {
		return nil, nil, err
	}

	return api.NewClient(conn), func() { _ = conn.Close() }, nil
}

// withDaemon starts launcherd if needed and runs fn against it.
func withDaemon(fn func(ctx context.Context, c *api.Client) error) error {
	if err := EnsureDaemon(); err != nil {
		return err
	}
	client, closeConn, err := connectDaemon()
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	return fn(ctx, client)
}
