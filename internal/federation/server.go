package federation

// #region imports
import (
	"context"
	"log"

	pb "github.com/danielpatrickdp/nova/gen/federation"
	"google.golang.org/grpc"
)

// #endregion imports

// #region server

// SummarySource supplies the node's current generativity summary. The node
// publishes it as an immutable snapshot; the server only reads.
type SummarySource interface {
	Summary() Summary
}

// Server answers peer polls with this node's own summary.
type Server struct {
	pb.UnimplementedFederationServer
	source SummarySource
}

// NewServer creates the federation RPC server.
func NewServer(source SummarySource) *Server {
	return &Server{source: source}
}

// Register attaches the server to a gRPC registrar.
func (s *Server) Register(reg grpc.ServiceRegistrar) {
	pb.RegisterFederationServer(reg, s)
}

// #endregion server

// #region poll-handler

// Poll implements the Federation service: one request/response exchange.
func (s *Server) Poll(ctx context.Context, req *pb.PollRequest) (*pb.PollResponse, error) {
	own := s.source.Summary()
	log.Printf("[SYNC] answered poll from %s (their g_star=%.3f, ours=%.3f)",
		req.GetNodeId(), req.GetGStar(), own.GStar)
	return &pb.PollResponse{
		NodeId:       own.NodeID,
		GStar:        own.GStar,
		Context:      own.Context,
		ReportedAtMs: own.ReportedAt.UnixMilli(),
	}, nil
}

// #endregion poll-handler
