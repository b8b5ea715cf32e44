package gamesession

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/identity"
	"github.com/beka-birhanu/vinom-mines/service"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/beka-birhanu/vinom-mines/solver"
	"github.com/google/uuid"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	authorizationKey = "authorization"
	bearerPrefix     = "Bearer "
)

var _ GameSessionServer = &Server{}

// Config holds the collaborators of a Server.
type Config struct {
	Sessions  i.GameSessionManager
	Tokenizer i.Tokenizer
	Encoder   i.GameEncoder
	Logger    i.Logger
}

// Server serves the game session service. Every call is authenticated with the bearer
// token found in the "authorization" metadata.
type Server struct {
	sessions  i.GameSessionManager
	tokenizer i.Tokenizer
	encoder   i.GameEncoder
	logger    i.Logger
}

// NewServer creates a game session server.
func NewServer(c *Config) (*Server, error) {
	if c.Sessions == nil || c.Tokenizer == nil || c.Encoder == nil || c.Logger == nil {
		return nil, errors.New("game session server needs sessions, tokenizer, encoder and logger")
	}
	return &Server{
		sessions:  c.Sessions,
		tokenizer: c.Tokenizer,
		encoder:   c.Encoder,
		logger:    c.Logger,
	}, nil
}

// NewGame implements GameSessionServer.
func (s *Server) NewGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	var req newGameRequest
	if err := s.encoder.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	view, err := s.sessions.NewGame(ctx, userID, game.Config{Rows: req.Rows, Cols: req.Cols, Mines: req.Mines})
	return s.reply(view, err)
}

// Game implements GameSessionServer.
func (s *Server) Game(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	var req gameRequest
	gameID, err := s.gameID(in, &req, &req.GameID)
	if err != nil {
		return nil, err
	}

	view, err := s.sessions.Game(ctx, userID, gameID)
	return s.reply(view, err)
}

// Games implements GameSessionServer.
func (s *Server) Games(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	var req gamesRequest
	if err := s.encoder.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	views, err := s.sessions.Games(ctx, userID, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.reply(map[string]any{"games": views}, nil)
}

// Reveal implements GameSessionServer.
func (s *Server) Reveal(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, gameID, pos, err := s.cellCall(ctx, in)
	if err != nil {
		return nil, err
	}
	res, err := s.sessions.Reveal(ctx, userID, gameID, pos)
	return s.reply(res, err)
}

// ToggleFlag implements GameSessionServer.
func (s *Server) ToggleFlag(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, gameID, pos, err := s.cellCall(ctx, in)
	if err != nil {
		return nil, err
	}
	res, err := s.sessions.ToggleFlag(ctx, userID, gameID, pos)
	return s.reply(res, err)
}

// Hint implements GameSessionServer.
func (s *Server) Hint(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	var req gameRequest
	gameID, err := s.gameID(in, &req, &req.GameID)
	if err != nil {
		return nil, err
	}

	hint, err := s.sessions.Hint(ctx, userID, gameID)
	return s.reply(hint, err)
}

func (s *Server) cellCall(ctx context.Context, in *structpb.Struct) (uuid.UUID, uuid.UUID, field.Position, error) {
	userID, err := s.authenticate(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, field.Position{}, err
	}
	var req cellRequest
	gameID, err := s.gameID(in, &req, &req.GameID)
	if err != nil {
		return uuid.Nil, uuid.Nil, field.Position{}, err
	}
	return userID, gameID, field.Position{Row: req.Row, Col: req.Col}, nil
}

// gameID decodes in into req and parses the game id it carries in raw.
func (s *Server) gameID(in *structpb.Struct, req any, raw *string) (uuid.UUID, error) {
	if err := s.encoder.Decode(in, req); err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, err.Error())
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, fmt.Sprintf("invalid game id: %s", err))
	}
	return id, nil
}

func (s *Server) authenticate(ctx context.Context) (uuid.UUID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing metadata")
	}
	values := md.Get(authorizationKey)
	if len(values) == 0 || !strings.HasPrefix(values[0], bearerPrefix) {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing bearer token")
	}

	claims, err := s.tokenizer.Decode(strings.TrimPrefix(values[0], bearerPrefix))
	if err != nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	userID, err := identity.UserIDFromClaims(claims)
	if err != nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, err.Error())
	}
	return userID, nil
}

func (s *Server) reply(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := s.encoder.Encode(v)
	if err != nil {
		s.logger.Error(fmt.Sprintf("encoding reply: %s", err))
		return nil, status.Error(codes.Internal, "unexpected error")
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, i.ErrGameNotFound), errors.Is(err, i.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, service.ErrOutOfBounds), errors.Is(err, game.ErrInvalidConfig):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, solver.ErrRegionTooLarge):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, solver.ErrInconsistent):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "unexpected error: "+err.Error())
	}
}

// UnaryLogger logs the method, outcome and latency of every unary call.
func UnaryLogger(logger i.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := logger.With(map[string]any{
			"method":  info.FullMethod,
			"code":    status.Code(err).String(),
			"latency": time.Since(start).String(),
		})
		if err != nil {
			entry.Warning(err.Error())
		} else {
			entry.Debug("handled")
		}
		return resp, err
	}
}
