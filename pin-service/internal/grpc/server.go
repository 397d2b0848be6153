package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/weiawesome/wes-io-live/pin-service/internal/domain"
	"github.com/weiawesome/wes-io-live/pin-service/internal/service"
	"github.com/weiawesome/wes-io-live/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/middleware"
)

type pinServer struct {
	pinService service.PinService
}

func (s *pinServer) NextPins(ctx context.Context, req *NextPinsRequest) (*NextPinsResponse, error) {
	count := int(req.Count)
	if count == 0 {
		count = 1
	}

	batch, err := s.pinService.NextBatch(ctx, req.StreamID, count)
	if err != nil {
		return nil, toStatus(err)
	}

	l := pkglog.Ctx(ctx)
	evt := l.Info().
		Str(pkglog.FieldStreamID, batch.StreamID).
		Int(pkglog.FieldCount, len(batch.Pins)).
		Uint64(pkglog.FieldGeneration, batch.Generation)
	if claims, ok := middleware.ClaimsFromContext(ctx); ok {
		evt = evt.Str(pkglog.FieldSubject, claims.Subject)
	}
	evt.Msg("pins issued")

	return &NextPinsResponse{
		StreamID:   batch.StreamID,
		Pins:       batch.Pins,
		Generation: batch.Generation,
	}, nil
}

func (s *pinServer) ValidatePin(ctx context.Context, req *ValidatePinRequest) (*ValidatePinResponse, error) {
	res := s.pinService.Validate(req.Pin)
	return &ValidatePinResponse{
		Valid:  res.Valid,
		Reason: res.Reason,
	}, nil
}

func (s *pinServer) StreamStatus(ctx context.Context, req *StreamStatusRequest) (*StreamStatusResponse, error) {
	st, err := s.pinService.Status(ctx, req.StreamID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &StreamStatusResponse{
		StreamID:   st.StreamID,
		Index:      st.Index,
		Generation: st.Generation,
		SpaceSize:  st.SpaceSize,
		Remaining:  st.Remaining,
		Length:     int32(st.Length),
		Alphabet:   st.Alphabet,
	}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidStreamID), errors.Is(err, service.ErrInvalidCount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrStreamNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrUnavailable), errors.Is(err, service.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Server bundles the gRPC server with its health service.
type Server struct {
	*grpc.Server
	health *health.Server
}

// NewServer builds a gRPC server exposing pin.v1.PinService, the standard
// health service and server reflection. A non-nil manager requires a bearer
// token on every pin call, with the pins:issue scope for NextPins; health
// checks stay open.
func NewServer(pinService service.PinService, manager *jwt.Manager, logger zerolog.Logger) *Server {
	unary := []grpc.UnaryServerInterceptor{pkglog.UnaryServerInterceptor(logger)}
	if manager != nil {
		unary = append(unary,
			middleware.UnaryAuthInterceptor(manager, "/grpc.health.v1.Health/"),
			middleware.UnaryScopeInterceptor(map[string]string{
				methodNextPins: domain.ScopeIssuePins,
			}),
		)
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(pkglog.StreamServerInterceptor(logger)),
	)
	RegisterPinServiceServer(s, &pinServer{pinService: pinService})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	return &Server{Server: s, health: hs}
}

// Listen opens a TCP listener for the server.
func Listen(addr string) (net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return lis, nil
}

// Shutdown marks every service NOT_SERVING and stops gracefully.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
