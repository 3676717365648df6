// Package metrics publishes the node's operational gauges and counters.
// Metric names are a stable interface for scrape-based collection; renaming
// one is a breaking change.
package metrics

// #region imports
import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #endregion imports

// #region collector

// Collector holds every exported metric. Exposition transport (HTTP handler,
// push, etc.) is the caller's concern; the collector only registers on the
// provided registry.
type Collector struct {
	stabilityMargin   prometheus.Gauge
	hopfDistance      prometheus.Gauge
	learningRate      prometheus.Gauge
	frozen            prometheus.Gauge
	generativityScore prometheus.Gauge
	novelty           prometheus.Gauge
	peerCount         prometheus.Gauge
	federated         prometheus.Gauge
	syncBackoff       prometheus.Gauge
	lastRemediation   prometheus.Gauge

	modeTransitions  *prometheus.CounterVec
	syncFailures     prometheus.Counter
	remediations     prometheus.Counter
	peerPollFailures *prometheus.CounterVec
}

// NewCollector registers all node metrics on reg under the given namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	return &Collector{
		stabilityMargin:   gauge("stability_margin", "Negative real part of the dominant eigenvalue; < 0 is unstable"),
		hopfDistance:      gauge("hopf_distance", "Distance of the nearest oscillatory mode to the imaginary axis"),
		learningRate:      gauge("learning_rate", "Current adaptive learning rate eta"),
		frozen:            gauge("frozen", "1 while the governor has frozen risky behavior"),
		generativityScore: gauge("generativity_score", "Composite G* score"),
		novelty:           gauge("novelty", "Peer diversity component of G*"),
		peerCount:         gauge("peer_count", "Trusted, recently seen peers"),
		federated:         gauge("federated", "1 in FEDERATED context, 0 in SOLO"),
		syncBackoff:       gauge("sync_backoff_seconds", "Current sync backoff interval in seconds"),
		lastRemediation:   gauge("last_remediation_timestamp_seconds", "Unix time of the last auto-remediation action"),
		modeTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mode_transitions_total",
			Help:      "Governor mode transitions by target mode",
		}, []string{"mode"}),
		syncFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_cycle_failures_total",
			Help:      "Sync cycles that crossed the failure ratio",
		}),
		remediations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remediations_total",
			Help:      "Auto-remediation actions taken",
		}),
		peerPollFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peer_poll_failures_total",
			Help:      "Per-peer poll failures",
		}, []string{"peer"}),
	}
}

// #endregion collector

// #region observers

// ObserveCycle records one governor cycle's published values.
func (c *Collector) ObserveCycle(margin, hopf, eta float64, frozen bool, gStar, novelty float64, federated bool, peerCount int) {
	c.stabilityMargin.Set(margin)
	c.hopfDistance.Set(hopf)
	c.learningRate.Set(eta)
	c.frozen.Set(boolGauge(frozen))
	c.generativityScore.Set(gStar)
	c.novelty.Set(novelty)
	c.federated.Set(boolGauge(federated))
	c.peerCount.Set(float64(peerCount))
}

// ObserveTransition counts one mode transition.
func (c *Collector) ObserveTransition(toMode string) {
	c.modeTransitions.WithLabelValues(toMode).Inc()
}

// ObserveSync records a sync cycle's backoff and failure status.
func (c *Collector) ObserveSync(backoff time.Duration, failed bool) {
	c.syncBackoff.Set(backoff.Seconds())
	if failed {
		c.syncFailures.Inc()
	}
}

// ObservePeerFailure counts one failed peer poll.
func (c *Collector) ObservePeerFailure(endpoint string) {
	c.peerPollFailures.WithLabelValues(endpoint).Inc()
}

// ObserveRemediation records one auto-remediation action.
func (c *Collector) ObserveRemediation(at time.Time) {
	c.remediations.Inc()
	c.lastRemediation.Set(float64(at.Unix()))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion observers
