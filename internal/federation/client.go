package federation

// #region imports
import (
	"context"
	"fmt"
	"time"

	pb "github.com/danielpatrickdp/nova/gen/federation"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// #endregion imports

// #region interfaces

// PeerPoller is one poll-capable connection to a peer.
type PeerPoller interface {
	Poll(ctx context.Context, own Summary) (PollResult, error)
	Close() error
}

// PeerDialer opens peer connections. Injected so tests can substitute fakes.
type PeerDialer interface {
	Dial(endpoint string) (PeerPoller, error)
}

// #endregion interfaces

// #region client

// PeerClient wraps the gRPC connection to one peer.
type PeerClient struct {
	conn   *grpc.ClientConn
	client pb.FederationClient
}

// NewPeerClient connects to a peer endpoint.
func NewPeerClient(endpoint string) (*PeerClient, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", endpoint, err)
	}
	return &PeerClient{
		conn:   conn,
		client: pb.NewFederationClient(conn),
	}, nil
}

// NewPeerClientWithService creates a PeerClient with an injected service
// implementation. Used for testing without a real gRPC connection.
func NewPeerClientWithService(svc pb.FederationClient) *PeerClient {
	return &PeerClient{client: svc}
}

// Close shuts down the gRPC connection.
func (c *PeerClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion client

// #region poll

// Poll performs the request/response exchange: we identify ourselves with
// our own summary, the peer answers with theirs.
func (c *PeerClient) Poll(ctx context.Context, own Summary) (PollResult, error) {
	resp, err := c.client.Poll(ctx, &pb.PollRequest{
		NodeId: own.NodeID,
		GStar:  own.GStar,
	})
	if err != nil {
		return PollResult{}, fmt.Errorf("poll rpc: %w", err)
	}
	return PollResult{
		NodeID:     resp.GetNodeId(),
		GStar:      resp.GetGStar(),
		Context:    resp.GetContext(),
		ReportedAt: time.UnixMilli(resp.GetReportedAtMs()).UTC(),
	}, nil
}

// #endregion poll

// #region dialer

// GRPCDialer dials real peer connections.
type GRPCDialer struct{}

// Dial opens a PeerClient to the endpoint.
func (GRPCDialer) Dial(endpoint string) (PeerPoller, error) {
	return NewPeerClient(endpoint)
}

// #endregion dialer
