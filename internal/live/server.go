package live

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const streamUpdatesMethod = "/tokenscope.Feed/StreamUpdates"

// FeedServer is the handler interface behind the tokenscope.Feed service.
type FeedServer interface {
	StreamUpdates(req *emptypb.Empty, stream grpc.ServerStream) error
}

// feedServiceDesc declares tokenscope.Feed against the protobuf well-known
// types: the request is Empty and every response is a Struct.
var feedServiceDesc = grpc.ServiceDesc{
	ServiceName: "tokenscope.Feed",
	HandlerType: (*FeedServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamUpdates",
			Handler:       streamUpdatesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "tokenscope/feed.proto",
}

func streamUpdatesHandler(srv any, stream grpc.ServerStream) error {
	req := new(emptypb.Empty)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(FeedServer).StreamUpdates(req, stream)
}

// Server implements the StreamUpdates gRPC endpoint.
type Server struct {
	model   *LiveModel
	log     *slog.Logger
	bufSize int
}

// NewServer creates a gRPC server backed by the given LiveModel.
func NewServer(model *LiveModel, log *slog.Logger) *Server {
	return &Server{model: model, log: log, bufSize: 1024}
}

// RegisterGRPC registers the server on the given gRPC server instance.
func (s *Server) RegisterGRPC(gs *grpc.Server) {
	gs.RegisterService(&feedServiceDesc, s)
}

// StreamUpdates sends a snapshot of all current records, then streams
// updates as they are applied. The stream ends when the client disconnects.
func (s *Server) StreamUpdates(_ *emptypb.Empty, stream grpc.ServerStream) error {
	// Subscribe before the snapshot so no update falls in between. An update
	// already reflected in the snapshot may be sent again; applying it twice
	// is harmless.
	subID, ch := s.model.Subscribe(s.bufSize)
	defer s.model.Unsubscribe(subID)

	if err := stream.SendMsg(EncodeSnapshot(s.model.Snapshot(), s.model.Sequence())); err != nil {
		return err
	}

	s.log.Info("grpc client subscribed", "subID", subID)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("grpc client disconnected", "subID", subID)
			return nil
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.SendMsg(EncodeUpdate(evt.Update, evt.Seq)); err != nil {
				return err
			}
		}
	}
}
