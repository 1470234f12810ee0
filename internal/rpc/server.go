// Package rpc exposes the extrema engine as the gRPC service
// highlow.Extrema. Messages travel as JSON through a registered codec.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/banshee-data/highlow/internal/extrema"
	"github.com/banshee-data/highlow/internal/field"
	"github.com/banshee-data/highlow/internal/monitoring"
	"github.com/banshee-data/highlow/internal/version"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "highlow.Extrema"

// ExtremaServer is the server API of highlow.Extrema.
type ExtremaServer interface {
	Evaluate(context.Context, *EvaluateRequest) (*EvaluateResponse, error)
	Version(context.Context, *VersionRequest) (*VersionResponse, error)
}

// Ensure Server implements the service interface.
var _ ExtremaServer = (*Server)(nil)

// Server answers Evaluate calls from one engine over one field source.
type Server struct {
	engine *extrema.Engine
	source field.Source
}

// NewServer creates a server for engine reading slices from src.
func NewServer(engine *extrema.Engine, src field.Source) *Server {
	return &Server{engine: engine, source: src}
}

// Evaluate implements ExtremaServer.
func (s *Server) Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if req.Instant.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "instant is required")
	}

	rg, err := s.engine.Evaluate(req.Instant, s.source, req.Output, req.Args)
	if err != nil {
		monitoring.Opsf("[gRPC] Evaluate %s failed: %v", req.Instant.UTC().Format("2006-01-02T15:04:05Z"), err)
		return nil, toStatus(err)
	}
	return newEvaluateResponse(rg), nil
}

// Version implements ExtremaServer.
func (s *Server) Version(context.Context, *VersionRequest) (*VersionResponse, error) {
	return &VersionResponse{
		Version:   version.Version,
		GitSHA:    version.GitSHA,
		BuildTime: version.BuildTime,
	}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, extrema.ErrArgumentCount),
		errors.Is(err, extrema.ErrInvalidRange),
		errors.Is(err, extrema.ErrOutputSpec):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Register adds the Extrema service and a health service reporting it as
// serving to gs.
func Register(gs *grpc.Server, srv ExtremaServer) {
	gs.RegisterService(&serviceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
}

// Serve runs a gRPC server on lis until ctx is cancelled, then stops it
// gracefully.
func Serve(ctx context.Context, lis net.Listener, srv ExtremaServer, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	Register(gs, srv)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			gs.GracefulStop()
		case <-done:
		}
	}()

	monitoring.Opsf("[gRPC] %s listening on %s", ServiceName, lis.Addr())
	if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	monitoring.Opsf("[gRPC] %s stopped", ServiceName)
	return nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtremaServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "Version", Handler: versionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "highlow/extrema",
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EvaluateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtremaServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Evaluate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtremaServer).Evaluate(ctx, req.(*EvaluateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func versionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(VersionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtremaServer).Version(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Version"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtremaServer).Version(ctx, req.(*VersionRequest))
	}
	return interceptor(ctx, in, info, handler)
}
