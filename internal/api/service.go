package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "launcher.v1.LauncherService"

// ============================================================================
// Service Definition
// ============================================================================

// LauncherServer is the server interface for LauncherService.
type LauncherServer interface {
	StartServer(context.Context, *Empty) (*CommandResult, error)
	StopServer(context.Context, *Empty) (*CommandResult, error)
	CheckStatus(context.Context, *Empty) (*CheckStatusReply, error)
	ToggleAutoRestart(context.Context, *ToggleAutoRestartRequest) (*CommandResult, error)
	SetDesiredRun(context.Context, *SetDesiredRunRequest) (*CommandResult, error)
	GetStatus(context.Context, *Empty) (*StatusReply, error)
	OpenBrowser(context.Context, *Empty) (*CommandResult, error)
	Shutdown(context.Context, *Empty) (*Empty, error)
	WatchStatus(*WatchStatusRequest, StatusStream) error
}

// StatusStream is the server side of WatchStatus.
type StatusStream interface {
	Send(*StatusEvent) error
	Context() context.Context
}

func unary[Req, Resp any](name string, call func(LauncherServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LauncherServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LauncherServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type statusStream struct {
	grpc.ServerStream
}

func (s *statusStream) Send(ev *StatusEvent) error {
	return s.ServerStream.SendMsg(ev)
}

func watchStatusHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchStatusRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LauncherServer).WatchStatus(in, &statusStream{stream})
}

// ServiceDesc describes LauncherService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LauncherServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StartServer", LauncherServer.StartServer),
		unary("StopServer", LauncherServer.StopServer),
		unary("CheckStatus", LauncherServer.CheckStatus),
		unary("ToggleAutoRestart", LauncherServer.ToggleAutoRestart),
		unary("SetDesiredRun", LauncherServer.SetDesiredRun),
		unary("GetStatus", LauncherServer.GetStatus),
		unary("OpenBrowser", LauncherServer.OpenBrowser),
		unary("Shutdown", LauncherServer.Shutdown),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchStatus",
			Handler:       watchStatusHandler,
			ServerStreams: true,
		},
	},
	Metadata: "launcher/v1/launcher.proto",
}

// RegisterLauncherServer registers the LauncherServer with the gRPC server.
func RegisterLauncherServer(s grpc.ServiceRegistrar, srv LauncherServer) {
	s.RegisterService(&ServiceDesc, srv)
}
