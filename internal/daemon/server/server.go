// Package server implements launcherd's control endpoint: gRPC, grpc-web and
// Prometheus metrics multiplexed on one loopback port.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	grpcweb "github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"

	"github.com/mediadl/launcher/internal/api"
	"github.com/mediadl/launcher/internal/daemon/metrics"
	"github.com/mediadl/launcher/internal/logging"
)

// Host is the control server bind address. It never listens beyond loopback.
const Host = "127.0.0.1"

// Server is the daemon's control server.
type Server struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	listener   net.Listener
	port       int
	logger     zerolog.Logger
}

// New creates a new server listening on the specified port.
// Pass port 0 for dynamic allocation.
func New(port int, svc api.LauncherServer, webOrigins []string) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", fmt.Sprintf("%s:%d", Host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	// Get actual port if dynamically allocated
	actualPort := listener.Addr().(*net.TCPAddr).Port

	logger := logging.With("server")
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary(logger)))
	api.RegisterLauncherServer(grpcServer, svc)

	web := grpcweb.WrapServer(grpcServer, grpcweb.WithOriginFunc(originAllowed(webOrigins)))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case web.IsGrpcWebRequest(r) || web.IsAcceptableGrpcCorsRequest(r):
			web.ServeHTTP(w, r)
		case r.ProtoMajor == 2 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc"):
			grpcServer.ServeHTTP(w, r)
		default:
			mux.ServeHTTP(w, r)
		}
	})

	return &Server{
		grpcServer: grpcServer,
		httpServer: &http.Server{
			Handler:           h2c.NewHandler(handler, &http2.Server{}),
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: listener,
		port:     actualPort,
		logger:   logger,
	}, nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// String names the service in the suture tree.
func (s *Server) String() string {
	return "control-server"
}

// Serve serves requests until ctx is cancelled. A listener failure
// terminates the supervisor tree: launcherd is useless without its
// control port.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.port).Msg("Control server listening")
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return suture.ErrDoNotRestart
		}
		return fmt.Errorf("%w: control server: %v", suture.ErrTerminateSupervisorTree, err)
	}
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
	_ = s.listener.Close()
	s.grpcServer.Stop()
}

func originAllowed(origins []string) func(string) bool {
	return func(origin string) bool {
		for _, o := range origins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
			// "http://localhost" also admits any port on that host.
			if strings.HasPrefix(strings.ToLower(origin), strings.ToLower(o)+":") {
				return true
			}
		}
		return false
	}
}

func logUnary(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		ev := logger.Debug()
		if err != nil {
			ev = logger.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).Dur("took", time.Since(start)).Msg("RPC")
		return resp, err
	}
}
