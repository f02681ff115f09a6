package server

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mediadl/launcher/internal/api"
	"github.com/mediadl/launcher/internal/buildinfo"
	"github.com/mediadl/launcher/internal/daemon/status"
	"github.com/mediadl/launcher/internal/daemon/supervisor"
)

// LauncherService adapts supervisor commands to the gRPC API.
type LauncherService struct {
	cmds      *supervisor.Commands
	bcast     *status.Broadcaster
	startedAt time.Time
	shutdown  func()
}

// NewLauncherService creates the API implementation. shutdown is called
// (asynchronously) when a client requests launcherd to exit.
func NewLauncherService(cmds *supervisor.Commands, bcast *status.Broadcaster, shutdown func()) *LauncherService {
	return &LauncherService{
		cmds:      cmds,
		bcast:     bcast,
		startedAt: time.Now(),
		shutdown:  shutdown,
	}
}

func toResult(r supervisor.Result) *api.CommandResult {
	return &api.CommandResult{Success: r.Success, Error: r.Error, Message: r.Message}
}

func (s *LauncherService) StartServer(ctx context.Context, _ *api.Empty) (*api.CommandResult, error) {
	return toResult(s.cmds.StartServer(ctx)), nil
}

func (s *LauncherService) StopServer(ctx context.Context, _ *api.Empty) (*api.CommandResult, error) {
	return toResult(s.cmds.StopServer(ctx)), nil
}

func (s *LauncherService) CheckStatus(ctx context.Context, _ *api.Empty) (*api.CheckStatusReply, error) {
	return &api.CheckStatusReply{Online: s.cmds.CheckStatus(ctx)}, nil
}

func (s *LauncherService) ToggleAutoRestart(_ context.Context, req *api.ToggleAutoRestartRequest) (*api.CommandResult, error) {
	return toResult(s.cmds.ToggleAutoRestart(req.Enabled)), nil
}

func (s *LauncherService) SetDesiredRun(_ context.Context, req *api.SetDesiredRunRequest) (*api.CommandResult, error) {
	return toResult(s.cmds.SetDesiredRun(req.Run)), nil
}

func (s *LauncherService) OpenBrowser(context.Context, *api.Empty) (*api.CommandResult, error) {
	return toResult(s.cmds.OpenBrowser()), nil
}

func (s *LauncherService) GetStatus(ctx context.Context, _ *api.Empty) (*api.StatusReply, error) {
	st := s.cmds.Status(ctx)
	reply := &api.StatusReply{
		Online:             st.Online,
		Phase:              string(st.Phase),
		DesiredRun:         st.DesiredRun,
		AutoRestart:        st.AutoRestart,
		RestartAttempts:    int32(st.RestartAttempts),
		MaxRestartAttempts: int32(st.MaxRestartAttempts),
		LastError:          st.LastError,
		LastErrorMessage:   st.LastErrorMessage,
		BackendPid:         int32(st.PID),
		URL:                st.URL,
		DaemonVersion:      buildinfo.Version,
		DaemonPid:          int32(os.Getpid()),
		DaemonStartedAt:    timestamppb.New(s.startedAt),
	}
	if !st.BackendStartedAt.IsZero() {
		reply.BackendStartedAt = timestamppb.New(st.BackendStartedAt)
	}
	return reply, nil
}

func (s *LauncherService) Shutdown(context.Context, *api.Empty) (*api.Empty, error) {
	// Let the reply go out before tearing down.
	go func() {
		time.Sleep(100 * time.Millisecond)
		if s.shutdown != nil {
			s.shutdown()
		}
	}()
	return &api.Empty{}, nil
}

// WatchStatus streams the current liveness, then every transition.
func (s *LauncherService) WatchStatus(req *api.WatchStatusRequest, stream api.StatusStream) error {
	id := req.ClientID
	if id == "" {
		id = uuid.NewString()
	}
	// Suffix keeps two clients using the same name apart.
	id = id + "-" + uuid.NewString()[:8]

	ch := s.bcast.Subscribe(id)
	defer s.bcast.Unsubscribe(id)

	online, since := s.bcast.Snapshot()
	first := &api.StatusEvent{Online: online}
	if !since.IsZero() {
		first.At = timestamppb.New(since)
	}
	if err := stream.Send(first); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(&api.StatusEvent{Online: change.Online, At: timestamppb.New(change.At)}); err != nil {
				return err
			}
		}
	}
}
