/*
 * decoherence.go, part of gohop.
 *
 * Copyright 2025 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package hop

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// IDA applies the instantaneous-decoherence correction after a hop attempt
// between the surfaces from and to, with energies eOld and eNew. The amplitude
// vector always collapses; the draw decides onto which of the two surfaces.
// Upward attempts survive with the Boltzmann weight exp(-(eNew-eOld)/(KB*temp)),
// downward ones always: if draw falls under that weight the collapse is onto
// to, otherwise onto from. Returns the surface collapsed onto. IDA is
// deterministic in its inputs, the draw included.
func IDA(el *Electronic, from, to int, eOld, eNew, temp, draw float64) (int, error) {
	if el == nil {
		return -1, CError{ErrNilElectronic, []string{"IDA"}}
	}
	if from < 0 || from >= el.States() || to < 0 || to >= el.States() {
		return -1, CError{ErrStateOutOfRange, []string{"IDA"}}
	}
	bf := 1.0
	if gap := eNew - eOld; gap > 0 {
		bf = boltzFactor(gap, temp)
	}
	target := from
	if draw < bf {
		target = to
	}
	el.Collapse(target)
	return target, nil
}

// Timers tracks, per electronic state, the time elapsed since the last collapse
// and the decoherence time sampled for the state. A state whose elapsed time
// exceeds its sampled time is due for a decoherence event.
type Timers struct {
	elapsed []float64
	sampled []float64
}

// NewTimers returns Timers for the given number of states, with zero elapsed
// times and effectively infinite sampled times until the first Resample.
// It panics on a non-positive number of states.
func NewTimers(states int) *Timers {
	if states <= 0 {
		panic("goHop: Timers need a positive number of states")
	}
	T := new(Timers)
	T.elapsed = make([]float64, states)
	T.sampled = make([]float64, states)
	for i := range T.sampled {
		T.sampled[i] = foreverCoherent
	}
	return T
}

// States returns the number of states tracked.
func (T *Timers) States() int {
	return len(T.elapsed)
}

// Advance adds dt to every elapsed-time accumulator.
func (T *Timers) Advance(dt float64) {
	for i := range T.elapsed {
		T.elapsed[i] += dt
	}
}

// Reset zeroes every elapsed-time accumulator. To be called on any collapse,
// forced or not.
func (T *Timers) Reset() {
	for i := range T.elapsed {
		T.elapsed[i] = 0
	}
}

// Elapsed returns the time accumulated by the state i since the last collapse.
func (T *Timers) Elapsed(i int) float64 {
	return T.elapsed[i]
}

// Sampled returns the decoherence time currently sampled for the state i.
func (T *Timers) Sampled(i int) float64 {
	return T.sampled[i]
}

// Expired returns whether the state i is due for a decoherence event.
func (T *Timers) Expired(i int) bool {
	return T.elapsed[i] >= T.sampled[i]
}

// Resample draws a new decoherence time for every state from an exponential
// distribution with the characteristic times taus, using one uniform draw in
// [0,1) per state: sampled_i = -tau_i*ln(1-draw_i).
func (T *Timers) Resample(taus, draws []float64) error {
	if len(taus) != len(T.sampled) || len(draws) != len(T.sampled) {
		return CError{ErrStatesMismatch, []string{"Resample"}}
	}
	for i, tau := range taus {
		T.sampled[i] = -tau * math.Log(1-draws[i])
	}
	return nil
}

// Restore sets every elapsed-time accumulator to elapsed and the sampled
// decoherence times to sampled, for resuming a run from stored state. The
// accumulators advance and reset together, so a single elapsed value covers
// them all.
func (T *Timers) Restore(elapsed float64, sampled []float64) error {
	if len(sampled) != len(T.sampled) {
		return CError{ErrStatesMismatch, []string{"Restore"}}
	}
	for i := range T.elapsed {
		T.elapsed[i] = elapsed
	}
	copy(T.sampled, sampled)
	return nil
}

// CoherenceIntervals returns the characteristic decoherence time of each state:
// the inverse of the population-weighted sum of its dephasing rates against all
// other states, tau_i = 1/sum_j pop_j*rates_ij. A state nothing dephases gets
// an effectively infinite time. The rates matrix comes from the dephasing
// analysis of the simulation (see the shstat package).
func CoherenceIntervals(el *Electronic, rates *mat.Dense) ([]float64, error) {
	if el == nil {
		return nil, CError{ErrNilElectronic, []string{"CoherenceIntervals"}}
	}
	if rates == nil {
		return nil, CError{"goHop: Nil rates matrix given", []string{"CoherenceIntervals"}}
	}
	n := el.States()
	r, c := rates.Dims()
	if r != n || c != n {
		return nil, CError{ErrStatesMismatch, []string{"CoherenceIntervals"}}
	}
	taus := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			sum += el.Population(j) * rates.At(i, j)
		}
		if sum > 0 {
			taus[i] = 1 / sum
		} else {
			taus[i] = foreverCoherent
		}
	}
	return taus, nil
}

// DISH applies the decoherence-induced surface hopping correction. If the
// coherence timer of the occupied surface has not expired nothing happens.
// If it has, a forced decision is made with the two draws: with probability
// equal to the occupied surface's population (tested against draw1) the
// amplitudes collapse onto it; otherwise the occupation is reassigned among
// all states with weights given by their populations, gated for upward moves
// by accessibility (zero weight when the gap exceeds the kinetic energy ekin)
// and, if the options ask for it, by the Boltzmann factor. draw2 picks the
// state from those weights. Any collapse zeroes every elapsed-time
// accumulator. Returns the occupied surface after the decision; the caller
// owns the momentum adjustment if that surface changed, and the Resample of
// the timers.
func DISH(el *Electronic, tm *Timers, vib *Vibronic, ekin, draw1, draw2 float64, opts ...*ProbOptions) (int, error) {
	if el == nil {
		return -1, CError{ErrNilElectronic, []string{"DISH"}}
	}
	if tm == nil {
		return -1, CError{"goHop: Nil timers given", []string{"DISH"}}
	}
	if vib == nil {
		return -1, CError{ErrNilVibronic, []string{"DISH"}}
	}
	if el.States() != tm.States() || el.States() != vib.States() {
		return -1, CError{ErrStatesMismatch, []string{"DISH"}}
	}
	a := el.Active()
	if !tm.Expired(a) {
		return a, nil
	}
	if draw1 < el.Population(a) {
		el.Collapse(a)
		tm.Reset()
		return a, nil
	}
	o := resolveOptions(opts)
	n := el.States()
	ea := vib.Energy(a)
	w := make([]float64, n)
	total := 0.0
	for j := 0; j < n; j++ {
		wj := el.Population(j)
		if gap := vib.Energy(j) - ea; gap > 0 {
			if gap > ekin {
				wj = 0 //not reachable with the kinetic energy at hand
			} else if o.Boltzmann {
				wj *= boltzFactor(gap, o.Temperature)
			}
		}
		w[j] = wj
		total += wj
	}
	target := a
	if total > 0 {
		acc := 0.0
		for j, wj := range w {
			acc += wj / total
			if draw2 < acc {
				target = j
				break
			}
		}
	}
	el.Collapse(target)
	tm.Reset()
	return target, nil
}
