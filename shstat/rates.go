package shstat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//DecoherenceRates estimates pairwise pure-dephasing rates from a history of
//state energies, energies[t][i] being the energy of state i at frame t,
//sampled every dt. For each pair of states the energy gap fluctuation is
//autocorrelated, the second cumulant g(t) is accumulated by double
//integration of the correlogram, and the dephasing time is where exp(-g)
//falls to 1/e. A pair whose dephasing function never decays that far within
//the history falls back on the short-time Gaussian time 1/sqrt(C(0)), and a
//gap that does not fluctuate at all dephases at rate zero. The returned
//matrix is symmetric with a zero diagonal, in inverse units of dt. With
//energies in Hartree and dt in atomic time units the rates feed straight
//into DISH.
func DecoherenceRates(energies [][]float64, dt float64) (*mat.Dense, error) {
	nf := len(energies)
	if nf < 2 {
		return nil, fmt.Errorf("goHop/shstat: Dephasing rates need at least 2 frames, got %d", nf)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("goHop/shstat: Unusable time step %v", dt)
	}
	nstates := len(energies[0])
	if nstates == 0 {
		return nil, fmt.Errorf("goHop/shstat: The energy history carries no states")
	}
	for t, fr := range energies {
		if len(fr) != nstates {
			return nil, fmt.Errorf("goHop/shstat: Frame %d carries %d states, the first frame %d", t, len(fr), nstates)
		}
	}
	rates := mat.NewDense(nstates, nstates, nil)
	u := make([]float64, nf)
	for i := 0; i < nstates; i++ {
		for j := i + 1; j < nstates; j++ {
			for t := range energies {
				u[t] = energies[t][i] - energies[t][j]
			}
			r, err := dephasingRate(u, dt)
			if err != nil {
				return nil, err
			}
			rates.Set(i, j, r)
			rates.Set(j, i, r)
		}
	}
	return rates, nil
}

//dephasingRate runs the cumulant estimate on a single gap series.
func dephasingRate(u []float64, dt float64) (float64, error) {
	c, _, err := ACF(u, 0, Chemist)
	if err != nil {
		return 0, err
	}
	if c[0] <= 0 {
		return 0, nil //a rigid gap never dephases
	}
	var inner, g float64
	for k := 1; k < len(c); k++ {
		innerPrev := inner
		inner += 0.5 * (c[k-1] + c[k]) * dt
		gPrev := g
		g += 0.5 * (innerPrev + inner) * dt
		if g >= 1 {
			//linear interpolation of the 1/e crossing of exp(-g)
			tau := dt * (float64(k-1) + (1-gPrev)/(g-gPrev))
			return 1 / tau, nil
		}
	}
	return math.Sqrt(c[0]), nil
}
