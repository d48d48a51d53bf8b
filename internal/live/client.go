package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"tokenscope/internal/token"
)

// Client connects to a feed server and hands the snapshot and every
// subsequent update to callbacks.
type Client struct {
	addr string
	log  *slog.Logger
	opts []grpc.DialOption
}

// NewClient creates a client targeting the given gRPC address. Extra dial
// options are appended after the insecure transport credentials.
func NewClient(addr string, log *slog.Logger, opts ...grpc.DialOption) *Client {
	return &Client{addr: addr, log: log, opts: opts}
}

// Sync connects to the feed server, calls onSnapshot once with the initial
// record set and onUpdate for every update after it. It blocks until ctx is
// cancelled or the stream ends. Callbacks run on the calling goroutine.
func (c *Client) Sync(ctx context.Context, onSnapshot func([]token.Record), onUpdate func(token.Update)) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, c.opts...)
	conn, err := grpc.NewClient(c.addr, opts...)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.addr, err)
	}
	defer conn.Close()

	stream, err := conn.NewStream(ctx, &feedServiceDesc.Streams[0], streamUpdatesMethod)
	if err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("closing send: %w", err)
	}

	c.log.Info("connected to feed stream", "addr", c.addr)

	gotSnapshot := false
	for {
		msg := new(structpb.Struct)
		err := stream.RecvMsg(msg)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receiving message: %w", err)
		}

		switch MessageType(msg) {
		case TypeSnapshot:
			recs, err := DecodeSnapshot(msg)
			if err != nil {
				return fmt.Errorf("decoding snapshot: %w", err)
			}
			gotSnapshot = true
			onSnapshot(recs)
		case TypeUpdate:
			if !gotSnapshot {
				return errors.New("update received before snapshot")
			}
			u, err := DecodeUpdate(msg)
			if err != nil {
				return fmt.Errorf("decoding update: %w", err)
			}
			onUpdate(u)
		default:
			c.log.Warn("ignoring unknown message", "type", MessageType(msg))
		}
	}
}
