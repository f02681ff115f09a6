package api

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial connects to launcherd at host:port using the JSON codec.
func Dial(host string, port int, userAgent string) (*grpc.ClientConn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
		grpc.WithUserAgent(userAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to launcher: %w", err)
	}
	return conn, nil
}

// Client is a typed LauncherService client.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) command(ctx context.Context, method string, in any) (*CommandResult, error) {
	out := new(CommandResult)
	if err := c.invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartServer asks the launcher to start the backend.
func (c *Client) StartServer(ctx context.Context) (*CommandResult, error) {
	return c.command(ctx, "StartServer", &Empty{})
}

// StopServer asks the launcher to stop the backend.
func (c *Client) StopServer(ctx context.Context) (*CommandResult, error) {
	return c.command(ctx, "StopServer", &Empty{})
}

// CheckStatus probes the backend.
func (c *Client) CheckStatus(ctx context.Context) (bool, error) {
	out := new(CheckStatusReply)
	if err := c.invoke(ctx, "CheckStatus", &Empty{}, out); err != nil {
		return false, err
	}
	return out.Online, nil
}

// ToggleAutoRestart enables or disables crash recovery.
func (c *Client) ToggleAutoRestart(ctx context.Context, enabled bool) (*CommandResult, error) {
	return c.command(ctx, "ToggleAutoRestart", &ToggleAutoRestartRequest{Enabled: enabled})
}

// SetDesiredRun writes the desired-run flag.
func (c *Client) SetDesiredRun(ctx context.Context, run bool) (*CommandResult, error) {
	return c.command(ctx, "SetDesiredRun", &SetDesiredRunRequest{Run: run})
}

// GetStatus returns the full supervisor view.
func (c *Client) GetStatus(ctx context.Context) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.invoke(ctx, "GetStatus", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenBrowser opens the backend URL on the launcher's desktop.
func (c *Client) OpenBrowser(ctx context.Context) (*CommandResult, error) {
	return c.command(ctx, "OpenBrowser", &Empty{})
}

// Shutdown stops launcherd.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.invoke(ctx, "Shutdown", &Empty{}, &Empty{})
}

// StatusWatcher receives liveness transitions.
type StatusWatcher struct {
	stream grpc.ClientStream
}

// Recv blocks for the next event.
func (w *StatusWatcher) Recv() (*StatusEvent, error) {
	ev := new(StatusEvent)
	if err := w.stream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// WatchStatus streams liveness transitions, starting with the current state.
// Cancel ctx to end the stream.
func (c *Client) WatchStatus(ctx context.Context, clientID string) (*StatusWatcher, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/WatchStatus", grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&WatchStatusRequest{ClientID: clientID}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &StatusWatcher{stream: stream}, nil
}
