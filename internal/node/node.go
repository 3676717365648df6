// Package node wires the control loops together: one injectable object with
// a defined lifecycle, constructed at process start and shut down on signal.
package node

// #region imports
import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
	"github.com/danielpatrickdp/nova/internal/federation"
	"github.com/danielpatrickdp/nova/internal/generativity"
	"github.com/danielpatrickdp/nova/internal/governor"
	"github.com/danielpatrickdp/nova/internal/identity"
	"github.com/danielpatrickdp/nova/internal/metrics"
	"github.com/danielpatrickdp/nova/internal/stability"
	"github.com/danielpatrickdp/nova/internal/store"
)

// #endregion imports

// #region node-struct

// Node owns the governor loop and the sync loop. Each loop is single-threaded
// over its own state; everything cross-loop travels as an immutable snapshot.
type Node struct {
	cfg config.Config
	id  identity.Identity

	analyzer *stability.Analyzer
	gov      *governor.Governor
	engine   *generativity.Engine
	sync     *federation.Synchronizer
	remed    *federation.Remediator

	store   *store.Store       // nil disables persistence
	metrics *metrics.Collector // nil disables metrics

	// Residual / progress intake. External producers push; the governor
	// loop is the only reader.
	mu        sync.Mutex
	residuals []float64
	progress  float64

	status  atomic.Pointer[Status]
	summary atomic.Pointer[federation.Summary]

	restartCh chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New builds a node over real gRPC peer connections.
func New(cfg config.Config, id identity.Identity, st *store.Store, mc *metrics.Collector) *Node {
	return NewWithDialer(cfg, id, st, mc, federation.GRPCDialer{})
}

// NewWithDialer is New with an injected peer dialer, for tests.
func NewWithDialer(cfg config.Config, id identity.Identity, st *store.Store, mc *metrics.Collector, dialer federation.PeerDialer) *Node {
	n := &Node{
		cfg:       cfg,
		id:        id,
		analyzer:  stability.NewAnalyzer(cfg.Stability, cfg.Governor.CriticalMargin),
		gov:       governor.New(cfg.Governor),
		engine:    generativity.NewEngine(cfg.Generativity),
		store:     st,
		metrics:   mc,
		restartCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	n.summary.Store(&federation.Summary{
		NodeID:     id.NodeID,
		Context:    string(generativity.ContextSolo),
		ReportedAt: time.Now().UTC(),
	})
	n.sync = federation.NewSynchronizer(cfg.Federation, cfg.Peers, n, dialer)
	n.remed = federation.NewRemediator(cfg.Federation, n.requestSyncRestart)
	return n
}

// #endregion node-struct

// #region intake

// RecordResidual pushes one internal error/residual sample into the
// analyzer's window.
func (n *Node) RecordResidual(v float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.residuals = append(n.residuals, v)
	if max := n.cfg.Stability.ResidualWindow; len(n.residuals) > max {
		n.residuals = n.residuals[len(n.residuals)-max:]
	}
}

// RecordProgress adds completed work units to the monotonic progress counter.
func (n *Node) RecordProgress(units float64) {
	if units <= 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress += units
}

func (n *Node) residualWindow() []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]float64, len(n.residuals))
	copy(out, n.residuals)
	return out
}

func (n *Node) progressTotal() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.progress
}

// #endregion intake

// #region lifecycle

// Start launches the governor and sync loops. They exit after finishing
// their current cycle once ctx is canceled or Stop is called.
func (n *Node) Start(ctx context.Context) {
	n.wg.Add(1)
	go n.runGovernorLoop(ctx)

	if len(n.cfg.Peers) > 0 {
		n.wg.Add(1)
		go n.runSyncLoop(ctx)
	}
}

// Stop signals both loops and waits for them to finish their cycles.
func (n *Node) Stop() {
	n.closeOnce.Do(func() { close(n.done) })
	n.wg.Wait()
}

// requestSyncRestart is the remediator's bounded action: it nudges the sync
// loop to reset. Non-blocking; a pending restart is not stacked.
func (n *Node) requestSyncRestart() {
	select {
	case n.restartCh <- struct{}{}:
	default:
	}
	if n.metrics != nil {
		n.metrics.ObserveRemediation(time.Now().UTC())
	}
}

// Summary implements federation.SummarySource: the immutable summary the
// federation server answers polls with and the synchronizer attaches to
// outgoing polls.
func (n *Node) Summary() federation.Summary {
	return *n.summary.Load()
}

// #endregion lifecycle
