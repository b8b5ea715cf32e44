package gamesession

import (
	"context"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/google/uuid"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// WithToken returns a context whose outgoing calls carry token as bearer credentials.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, authorizationKey, bearerPrefix+token)
}

// Client calls a remote game session service. The caller is identified by the token
// attached to the context with WithToken.
type Client struct {
	cc         grpc.ClientConnInterface
	encoder    i.GameEncoder
	logger     i.Logger
	rpcTimeout time.Duration
}

// NewClient creates a game session client over cc.
func NewClient(cc grpc.ClientConnInterface, encoder i.GameEncoder, logger i.Logger, rt time.Duration) *Client {
	return &Client{
		cc:         cc,
		encoder:    encoder,
		logger:     logger,
		rpcTimeout: rt,
	}
}

// NewGame starts a game. A zero config selects the server's default board.
func (c *Client) NewGame(ctx context.Context, conf game.Config) (*i.GameView, error) {
	view := &i.GameView{}
	err := c.invoke(ctx, NewGameMethod, newGameRequest{Rows: conf.Rows, Cols: conf.Cols, Mines: conf.Mines}, view)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Game fetches a game.
func (c *Client) Game(ctx context.Context, id uuid.UUID) (*i.GameView, error) {
	view := &i.GameView{}
	if err := c.invoke(ctx, GameMethod, gameRequest{GameID: id.String()}, view); err != nil {
		return nil, err
	}
	return view, nil
}

// Games lists the caller's recent games.
func (c *Client) Games(ctx context.Context, limit int) ([]*i.GameView, error) {
	out := struct {
		Games []*i.GameView `json:"games"`
	}{}
	if err := c.invoke(ctx, GamesMethod, gamesRequest{Limit: limit}, &out); err != nil {
		return nil, err
	}
	return out.Games, nil
}

// Reveal reveals or chords a cell.
func (c *Client) Reveal(ctx context.Context, id uuid.UUID, pos field.Position) (*i.MoveResult, error) {
	return c.move(ctx, RevealMethod, id, pos)
}

// ToggleFlag flags or unflags a cell.
func (c *Client) ToggleFlag(ctx context.Context, id uuid.UUID, pos field.Position) (*i.MoveResult, error) {
	return c.move(ctx, ToggleFlagMethod, id, pos)
}

// Hint asks for the solver's analysis of a game.
func (c *Client) Hint(ctx context.Context, id uuid.UUID) (*i.Hint, error) {
	hint := &i.Hint{}
	if err := c.invoke(ctx, HintMethod, gameRequest{GameID: id.String()}, hint); err != nil {
		return nil, err
	}
	return hint, nil
}

func (c *Client) move(ctx context.Context, method string, id uuid.UUID, pos field.Position) (*i.MoveResult, error) {
	res := &i.MoveResult{}
	if err := c.invoke(ctx, method, cellRequest{GameID: id.String(), Row: pos.Row, Col: pos.Col}, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := c.encoder.Encode(req)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	out := &structpb.Struct{}
	if err := c.cc.Invoke(timeoutCtx, method, in, out); err != nil {
		c.logger.Error(fmt.Sprintf("%s failed: %s", method, err))
		return err
	}
	return c.encoder.Decode(out, resp)
}
