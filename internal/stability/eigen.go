package stability

// #region imports
import (
	"errors"
	"math"
	"math/cmplx"
)

// #endregion imports

// #region errors
var (
	errDegenerate  = errors.New("degenerate residual window")
	errNoConverge  = errors.New("root iteration did not converge")
	errBadEstimate = errors.New("non-finite coefficient estimate")
)

// #endregion errors

// #region ar-fit

// fitAR estimates AR(order) coefficients from a demeaned sample window using
// the Levinson-Durbin recursion on sample autocovariances. The companion
// matrix of the returned coefficients is the derived system matrix.
func fitAR(x []float64, order int) ([]float64, error) {
	n := len(x)
	if n <= order {
		return nil, errDegenerate
	}

	// Autocovariances r[0..order].
	r := make([]float64, order+1)
	for lag := 0; lag <= order; lag++ {
		var sum float64
		for i := lag; i < n; i++ {
			sum += x[i] * x[i-lag]
		}
		r[lag] = sum / float64(n)
	}
	if r[0] < 1e-12 {
		// Flat window: the autocovariance matrix is singular.
		return nil, errDegenerate
	}

	phi := make([]float64, order)
	prev := make([]float64, order)
	errVar := r[0]
	for k := 1; k <= order; k++ {
		acc := r[k]
		for j := 1; j < k; j++ {
			acc -= phi[j-1] * r[k-j]
		}
		if math.Abs(errVar) < 1e-15 {
			return nil, errDegenerate
		}
		kappa := acc / errVar

		copy(prev, phi)
		phi[k-1] = kappa
		for j := 1; j < k; j++ {
			phi[j-1] = prev[j-1] - kappa*prev[k-1-j]
		}
		errVar *= 1 - kappa*kappa
	}

	for _, c := range phi {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errBadEstimate
		}
	}
	return phi, nil
}

// #endregion ar-fit

// #region eigenvalues

// companionRoots returns the eigenvalues of the AR companion matrix, which
// are the roots of z^p - phi[0]*z^(p-1) - ... - phi[p-1]. Order 1 is solved
// directly; higher orders use Durand-Kerner iteration.
func companionRoots(phi []float64) ([]complex128, error) {
	p := len(phi)
	if p == 0 {
		return nil, errDegenerate
	}
	if p == 1 {
		return []complex128{complex(phi[0], 0)}, nil
	}

	// Monic coefficients c[0..p]: z^p + c[1]*z^(p-1) + ... + c[p].
	c := make([]complex128, p+1)
	c[0] = 1
	for i, f := range phi {
		c[i+1] = complex(-f, 0)
	}

	eval := func(z complex128) complex128 {
		acc := c[0]
		for i := 1; i <= p; i++ {
			acc = acc*z + c[i]
		}
		return acc
	}

	// Standard non-real, non-unit-magnitude starting points.
	roots := make([]complex128, p)
	seed := complex(0.4, 0.9)
	roots[0] = seed
	for i := 1; i < p; i++ {
		roots[i] = roots[i-1] * seed
	}

	const maxIter = 200
	const tol = 1e-12
	for iter := 0; iter < maxIter; iter++ {
		var maxDelta float64
		for i := 0; i < p; i++ {
			num := eval(roots[i])
			den := complex(1, 0)
			for j := 0; j < p; j++ {
				if j != i {
					den *= roots[i] - roots[j]
				}
			}
			if den == 0 {
				// Perturb coincident estimates and keep iterating.
				roots[i] += complex(1e-6, 1e-6)
				maxDelta = 1
				continue
			}
			delta := num / den
			roots[i] -= delta
			if d := cmplx.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < tol {
			for _, z := range roots {
				if cmplx.IsNaN(z) || cmplx.IsInf(z) {
					return nil, errNoConverge
				}
			}
			return roots, nil
		}
	}
	return nil, errNoConverge
}

// #endregion eigenvalues
