/*
 * probability.go, part of gohop.
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

import "gonum.org/v1/gonum/mat"

// ProbOptions carries the optional knobs of the probability builders.
type ProbOptions struct {
	Boltzmann   bool    //multiply upward transitions by the detailed-balance factor
	Temperature float64 //in K, used only when Boltzmann is true
}

//the options actually used when the caller gives none.
var defaultProbOptions = ProbOptions{Boltzmann: false, Temperature: 300}

func resolveOptions(opts []*ProbOptions) *ProbOptions {
	if len(opts) > 0 && opts[0] != nil {
		return opts[0]
	}
	o := defaultProbOptions
	return &o
}

// ProbMatrix is an NxN matrix of switching probabilities for one timestep:
// the element i,j is the probability of hopping from surface i to surface j.
// Every element is in [0,1]. The raw scheme formulas can produce negative
// values; those are floored to 0 and the row is NOT renormalized afterwards.
// That artifact comes with the algorithms and is kept on purpose.
type ProbMatrix struct {
	states int
	g      *mat.Dense
}

// States returns the number of electronic states.
func (P *ProbMatrix) States() int {
	return P.states
}

// At returns the probability of switching from surface i to surface j.
func (P *ProbMatrix) At(i, j int) float64 {
	return P.g.At(i, j)
}

// Row returns the probability row for the surface i. If dest is given and
// large enough it is used to avoid allocation.
func (P *ProbMatrix) Row(i int, dest ...[]float64) []float64 {
	d := getCopySlice(P.states, dest...)
	return mat.Row(d, i, P.g)
}

// Probabilities builds the hopping probability matrix for one timestep under the
// scheme given. FSSH and GFSH use the vibronic snapshot and the timestep dt;
// MSSH ignores both (and the options) and just mirrors the instantaneous
// populations. The ESH scheme needs aggregates over the whole ensemble and is
// built through ESHMatrix instead; asking for it here is an error, as is any
// dimension mismatch between the electronic state and the snapshot.
func Probabilities(s Scheme, el *Electronic, vib *Vibronic, dt float64, opts ...*ProbOptions) (*ProbMatrix, error) {
	if el == nil {
		return nil, CError{ErrNilElectronic, []string{"Probabilities"}}
	}
	if vib == nil {
		return nil, CError{ErrNilVibronic, []string{"Probabilities"}}
	}
	if el.States() != vib.States() {
		return nil, CError{ErrStatesMismatch, []string{"Probabilities"}}
	}
	o := resolveOptions(opts)
	switch s {
	case FSSH:
		return fssh(el, vib, dt, o), nil
	case GFSH:
		return gfsh(el, vib, dt, o), nil
	case MSSH:
		return mssh(el), nil
	case ESH:
		return nil, CError{ErrEnsembleScheme, []string{"Probabilities"}}
	}
	return nil, CError{"goHop: Unknown probability scheme", []string{"Probabilities"}}
}

//fssh builds the fewest-switches probabilities: the flux out of the occupied
//surface i into j over the step, relative to the population of i,
//g_ij = -2*dt*Re(rho_ij*Hvib_ji)/rho_ii. Negative raw values mean population
//flowing into i from j, so they floor to 0.
func fssh(el *Electronic, vib *Vibronic, dt float64, o *ProbOptions) *ProbMatrix {
	n := el.States()
	P := &ProbMatrix{states: n, g: mat.NewDense(n, n, nil)}
	for i := 0; i < n; i++ {
		pii := el.Population(i)
		sum := 0.0
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			gij := 0.0
			if pii > 0 {
				gij = -2 * dt * real(el.Rho(i, j)*vib.At(j, i)) / pii
			}
			gij = gate(gij, i, j, vib, o)
			P.g.Set(i, j, gij)
			sum += gij
		}
		P.g.Set(i, i, complement(sum))
	}
	return P
}

//gfsh builds the global-flux probabilities. The population change of each state
//over the step comes from the diagonal of the Liouville equation,
//dp_j = 2*dt*sum_k Im(Hvib_jk*rho_kj). States with dp<0 are donors; a donor i
//sends to each gaining state j a share of its loss proportional to j's gain:
//g_ij = dp_j*dp_i/(rho_ii*norm), with norm the total loss over all donors.
func gfsh(el *Electronic, vib *Vibronic, dt float64, o *ProbOptions) *ProbMatrix {
	n := el.States()
	P := &ProbMatrix{states: n, g: mat.NewDense(n, n, nil)}
	dp := make([]float64, n)
	norm := 0.0
	for j := 0; j < n; j++ {
		s := 0.0
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			s += imag(vib.At(j, k) * el.Rho(k, j))
		}
		dp[j] = 2 * dt * s
		if dp[j] < 0 {
			norm += dp[j]
		}
	}
	for i := 0; i < n; i++ {
		pii := el.Population(i)
		sum := 0.0
		if dp[i] < 0 && pii > 0 && norm < 0 {
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				gij := 0.0
				if dp[j] > 0 {
					gij = dp[j] * dp[i] / (pii * norm)
				}
				gij = gate(gij, i, j, vib, o)
				P.g.Set(i, j, gij)
				sum += gij
			}
		}
		P.g.Set(i, i, complement(sum))
	}
	return P
}

//mssh makes every row the population vector: each surface is a destination in
//proportion to its instantaneous population, with no memory of the current
//surface. Meant for comparison runs, not production dynamics.
func mssh(el *Electronic) *ProbMatrix {
	n := el.States()
	P := &ProbMatrix{states: n, g: mat.NewDense(n, n, nil)}
	pops := el.Populations()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			P.g.Set(i, j, pops[j])
		}
	}
	return P
}

// ESHMatrix builds the single probability matrix shared by every trajectory of
// an ensemble-scheme step, from the ensemble-averaged populations and their
// change over the step. Donor rows split their loss among gaining states with
// the same flux-sharing rule as GFSH, g_ij = dpops_j*dpops_i/(pops_i*norm),
// with norm the total averaged loss. There is no Boltzmann gate at this level:
// uphill hops are left for the per-trajectory momentum rescaling to refuse.
func ESHMatrix(pops, dpops []float64) (*ProbMatrix, error) {
	n := len(pops)
	if n == 0 || n != len(dpops) {
		return nil, CError{ErrStatesMismatch, []string{"ESHMatrix"}}
	}
	P := &ProbMatrix{states: n, g: mat.NewDense(n, n, nil)}
	norm := 0.0
	for _, dp := range dpops {
		if dp < 0 {
			norm += dp
		}
	}
	for i := 0; i < n; i++ {
		sum := 0.0
		if dpops[i] < 0 && pops[i] > 0 && norm < 0 {
			for j := 0; j < n; j++ {
				if j == i || dpops[j] <= 0 {
					continue
				}
				gij := dpops[j] * dpops[i] / (pops[i] * norm)
				if gij > 1 {
					gij = 1
				}
				P.g.Set(i, j, gij)
				sum += gij
			}
		}
		P.g.Set(i, i, complement(sum))
	}
	return P, nil
}

//gate floors a raw probability at 0, applies the Boltzmann factor to upward
//transitions if asked to, and caps the result at 1.
func gate(g float64, i, j int, vib *Vibronic, o *ProbOptions) float64 {
	if g < 0 {
		return 0
	}
	if o.Boltzmann {
		if de := vib.Energy(j) - vib.Energy(i); de > 0 {
			g *= boltzFactor(de, o.Temperature)
		}
	}
	if g > 1 {
		return 1
	}
	return g
}

//complement is the stay probability left for the diagonal. When the gated
//outgoing sum exceeds 1 the diagonal bottoms out at 0 instead of the row
//being renormalized.
func complement(sum float64) float64 {
	d := 1 - sum
	if d < 0 {
		return 0
	}
	return d
}
