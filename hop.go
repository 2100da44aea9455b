/*
 * hop.go, part of gohop.
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

import "math"

// KB is the Boltzmann constant in atomic units (Hartree/K).
const KB = 3.166811563e-6

//Boltzmann factors with arguments beyond this are rounded down to zero.
const maxBoltzArg = 50.0

//Characteristic time assigned to a state that nothing dephases. Kept as a plain
//large number rather than +Inf so it survives serialization and arithmetic.
const foreverCoherent = 1.0e+100

// Representation labels the electronic basis a simulation works in. It is decided
// once per run and dispatched at the Rescale/Probabilities boundary, never
// re-checked inside the algorithms.
type Representation int

const (
	Diabatic Representation = iota
	Adiabatic
)

func (r Representation) String() string {
	switch r {
	case Diabatic:
		return "diabatic"
	case Adiabatic:
		return "adiabatic"
	}
	return "unknown"
}

// Scheme selects the algorithm used to build hopping probabilities.
// ESH needs populations from every trajectory in an ensemble, so it is
// implemented by the ensemble package on top of the builders here.
type Scheme int

const (
	FSSH Scheme = iota
	GFSH
	MSSH
	ESH
)

func (s Scheme) String() string {
	switch s {
	case FSSH:
		return "fssh"
	case GFSH:
		return "gfsh"
	case MSSH:
		return "mssh"
	case ESH:
		return "esh"
	}
	return "unknown"
}

//boltzFactor is the detailed-balance factor for a transition going up in energy
//by gap (gap>0), at temperature temp (K). A non-positive temperature suppresses
//upward transitions completely.
func boltzFactor(gap, temp float64) float64 {
	if temp <= 0 {
		return 0
	}
	arg := gap / (KB * temp)
	if arg > maxBoltzArg {
		return 0
	}
	return math.Exp(-arg)
}

//getCopySlice returns dest[0] adjusted to size N if given and large enough,
//or a newly allocated slice otherwise.
func getCopySlice(N int, dest ...[]float64) []float64 {
	var d []float64
	if len(dest) > 0 && len(dest[0]) >= N {
		d = dest[0][:N]
	} else {
		d = make([]float64, N)
	}
	return d
}
