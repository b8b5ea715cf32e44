// Package gamesession exposes the game session manager over gRPC.
//
// Messages are google.protobuf.Struct values whose fields follow the JSON form of the
// HTTP API, so no generated code is needed on either side.
package gamesession

import (
	"context"

	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "mines.v1.GameSession"

// Full method names.
const (
	NewGameMethod    = "/" + ServiceName + "/NewGame"
	GameMethod       = "/" + ServiceName + "/Game"
	GamesMethod      = "/" + ServiceName + "/Games"
	RevealMethod     = "/" + ServiceName + "/Reveal"
	ToggleFlagMethod = "/" + ServiceName + "/ToggleFlag"
	HintMethod       = "/" + ServiceName + "/Hint"
)

// GameSessionServer is the server API of the game session service.
type GameSessionServer interface {
	NewGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Game(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Games(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reveal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleFlag(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Hint(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type call func(GameSessionServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, c call) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := &structpb.Struct{}
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(GameSessionServer)
		if interceptor == nil {
			return c(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return c(s, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GameSession_ServiceDesc is the grpc.ServiceDesc of the game session service.
var GameSession_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameSessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "NewGame", Handler: unaryHandler(NewGameMethod, GameSessionServer.NewGame)},
		{MethodName: "Game", Handler: unaryHandler(GameMethod, GameSessionServer.Game)},
		{MethodName: "Games", Handler: unaryHandler(GamesMethod, GameSessionServer.Games)},
		{MethodName: "Reveal", Handler: unaryHandler(RevealMethod, GameSessionServer.Reveal)},
		{MethodName: "ToggleFlag", Handler: unaryHandler(ToggleFlagMethod, GameSessionServer.ToggleFlag)},
		{MethodName: "Hint", Handler: unaryHandler(HintMethod, GameSessionServer.Hint)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mines/v1/game_session.proto",
}

// RegisterGameSessionServer registers srv on s.
func RegisterGameSessionServer(s grpc.ServiceRegistrar, srv GameSessionServer) {
	s.RegisterService(&GameSession_ServiceDesc, srv)
}

type newGameRequest struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Mines int `json:"mines"`
}

type gameRequest struct {
	GameID string `json:"gameId"`
}

type gamesRequest struct {
	Limit int `json:"limit"`
}

type cellRequest struct {
	GameID string `json:"gameId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}
