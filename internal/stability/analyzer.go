package stability

// #region imports
import (
	"math"
	"math/cmplx"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
)

// #endregion imports

// #region analyzer

// marginEpsilon is subtracted from the critical margin when substituting a
// conservative snapshot, so a failed analysis always lands below it.
const marginEpsilon = 1e-6

// imagEpsilon separates real eigenvalues from complex-conjugate pairs.
const imagEpsilon = 1e-9

// Analyzer turns a residual history into stability snapshots. It never
// returns an error: insufficient data yields the neutral snapshot and a
// failed computation yields the conservative one.
type Analyzer struct {
	cfg config.StabilityConfig

	// criticalMargin is the governor's CRITICAL threshold; the conservative
	// fallback must land below it.
	criticalMargin float64

	now func() time.Time
}

// NewAnalyzer creates an analyzer. criticalMargin is the governor's CRITICAL
// threshold from the same config.
func NewAnalyzer(cfg config.StabilityConfig, criticalMargin float64) *Analyzer {
	return NewAnalyzerWithClock(cfg, criticalMargin, time.Now)
}

// NewAnalyzerWithClock is NewAnalyzer with an injected clock, for
// deterministic replay.
func NewAnalyzerWithClock(cfg config.StabilityConfig, criticalMargin float64, now func() time.Time) *Analyzer {
	return &Analyzer{cfg: cfg, criticalMargin: criticalMargin, now: now}
}

// #endregion analyzer

// #region analyze

// Analyze fits the recent residual window as an AR process and reads the
// stability margin and Hopf distance off the companion-matrix eigenvalues.
func (a *Analyzer) Analyze(residuals []float64) Snapshot {
	if len(residuals) < a.cfg.MinSamples {
		return a.neutral()
	}

	window := residuals
	if len(window) > a.cfg.ResidualWindow {
		window = window[len(window)-a.cfg.ResidualWindow:]
	}
	x := demean(window)

	phi, err := fitAR(x, a.cfg.AROrder)
	if err != nil {
		return a.conservative()
	}
	roots, err := companionRoots(phi)
	if err != nil {
		return a.conservative()
	}

	dt := a.cfg.SampleInterval
	var rho float64
	maxRe := math.Inf(-1)
	hopf := a.cfg.NeutralHopf
	for _, z := range roots {
		mag := cmplx.Abs(z)
		if mag > rho {
			rho = mag
		}
		if mag < 1e-12 {
			// A zero eigenvalue is infinitely damped; it contributes
			// nothing to the dominant rate.
			continue
		}
		// Discrete eigenvalue -> continuous rate: mu = ln(z)/dt.
		re := math.Log(mag) / dt
		if re > maxRe {
			maxRe = re
		}
		if math.Abs(imag(z)) > imagEpsilon {
			// Oscillatory pair; distance of its rate to the imaginary axis.
			if d := math.Abs(re); d < hopf {
				hopf = d
			}
		}
	}
	if math.IsInf(maxRe, -1) {
		// All eigenvalues at zero: no measurable dynamics.
		return a.neutral()
	}

	margin := -maxRe
	if math.IsNaN(margin) || math.IsNaN(hopf) {
		return a.conservative()
	}

	return Snapshot{
		Margin:         clampAbs(margin, 10),
		HopfDistance:   math.Min(math.Max(hopf, 0), a.cfg.NeutralHopf),
		SpectralRadius: rho,
		ComputedAt:     a.now(),
	}
}

// #endregion analyze

// #region fallbacks

// neutral is the cold-start snapshot: comfortably stable, no Hopf proximity.
// Downstream logic must never block waiting for enough samples.
func (a *Analyzer) neutral() Snapshot {
	return Snapshot{
		Margin:       a.cfg.NeutralMargin,
		HopfDistance: a.cfg.NeutralHopf,
		ComputedAt:   a.now(),
	}
}

// conservative is substituted when the numerics fail: a margin just below
// the CRITICAL threshold and zero Hopf distance. Fail toward caution.
func (a *Analyzer) conservative() Snapshot {
	return Snapshot{
		Margin:       a.criticalMargin - marginEpsilon,
		HopfDistance: 0,
		Degraded:     true,
		ComputedAt:   a.now(),
	}
}

// #endregion fallbacks

// #region helpers

func demean(x []float64) []float64 {
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}

func clampAbs(v, bound float64) float64 {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}

// #endregion helpers
