/*
 * electronic.go, part of gohop.
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
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Electronic holds the quantum side of a trajectory: the complex amplitudes over the
// electronic states and the index of the currently occupied surface. The amplitude
// vector is assumed normalized to 1 in probability. The decision functions never
// renormalize it on read; the only place where normalization is imposed is an
// explicit Collapse.
type Electronic struct {
	coeffs []complex128
	active int
}

// NewElectronic returns an Electronic built from a copy of the given amplitudes,
// occupying the surface active.
func NewElectronic(coeffs []complex128, active int) (*Electronic, error) {
	if len(coeffs) == 0 {
		return nil, CError{"goHop: Empty amplitude vector given", []string{"NewElectronic"}}
	}
	if active < 0 || active >= len(coeffs) {
		return nil, CError{ErrStateOutOfRange, []string{"NewElectronic"}}
	}
	E := new(Electronic)
	E.coeffs = make([]complex128, len(coeffs))
	copy(E.coeffs, coeffs)
	E.active = active
	return E, nil
}

// NewPure returns an Electronic with states states and all the amplitude
// on the surface state, which is also the occupied one.
func NewPure(states, state int) (*Electronic, error) {
	if states <= 0 {
		return nil, CError{"goHop: Non-positive number of electronic states given", []string{"NewPure"}}
	}
	if state < 0 || state >= states {
		return nil, CError{ErrStateOutOfRange, []string{"NewPure"}}
	}
	E := new(Electronic)
	E.coeffs = make([]complex128, states)
	E.coeffs[state] = 1
	E.active = state
	return E, nil
}

// States returns the number of electronic states.
func (E *Electronic) States() int {
	return len(E.coeffs)
}

// Active returns the index of the currently occupied surface.
func (E *Electronic) Active() int {
	return E.active
}

// SetActive marks the surface state as occupied. It panics if state is out of
// range, as that can only come from a programming error.
func (E *Electronic) SetActive(state int) {
	if state < 0 || state >= len(E.coeffs) {
		panic(ErrStateOutOfRange)
	}
	E.active = state
}

// Coeff returns the amplitude of the state i.
func (E *Electronic) Coeff(i int) complex128 {
	return E.coeffs[i]
}

// SetCoeff sets the amplitude of the state i. It is meant for the amplitude
// propagator; the decision functions only read amplitudes.
func (E *Electronic) SetCoeff(i int, c complex128) {
	E.coeffs[i] = c
}

// Population returns the probability |c_i|^2 of the state i.
func (E *Electronic) Population(i int) float64 {
	re := real(E.coeffs[i])
	im := imag(E.coeffs[i])
	return re*re + im*im
}

// Populations returns the populations of all states. If dest is given and large
// enough it is used to avoid allocation.
func (E *Electronic) Populations(dest ...[]float64) []float64 {
	d := getCopySlice(len(E.coeffs), dest...)
	for i := range E.coeffs {
		d[i] = E.Population(i)
	}
	return d
}

// Norm returns the total probability carried by the amplitude vector.
// It should be 1 up to the propagator's integration error.
func (E *Electronic) Norm() float64 {
	n := 0.0
	for i := range E.coeffs {
		n += E.Population(i)
	}
	return n
}

// Rho returns the density-matrix element rho_ij = c_i * conj(c_j).
func (E *Electronic) Rho(i, j int) complex128 {
	return E.coeffs[i] * cmplx.Conj(E.coeffs[j])
}

// Density returns the full density matrix rho = c c^dagger.
func (E *Electronic) Density() *mat.CDense {
	n := len(E.coeffs)
	rho := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rho.Set(i, j, E.Rho(i, j))
		}
	}
	return rho
}

// Collapse moves all the amplitude onto the state given, which also becomes the
// occupied surface. The phase of the state is kept; if the state had no amplitude
// at all, it gets a real amplitude of 1. This is the only operation that imposes
// normalization.
func (E *Electronic) Collapse(state int) {
	if state < 0 || state >= len(E.coeffs) {
		panic(ErrStateOutOfRange)
	}
	c := E.coeffs[state]
	mod := cmplx.Abs(c)
	for i := range E.coeffs {
		E.coeffs[i] = 0
	}
	if mod > 0 {
		E.coeffs[state] = c / complex(mod, 0) //keep the phase the state had
	} else {
		E.coeffs[state] = 1
	}
	E.active = state
}

// Copy returns a deep copy of the Electronic.
func (E *Electronic) Copy() *Electronic {
	C := new(Electronic)
	C.coeffs = make([]complex128, len(E.coeffs))
	copy(C.coeffs, E.coeffs)
	C.active = E.active
	return C
}

// Normalize rescales the amplitudes so the total probability is exactly 1.
// It is a tool for the amplitude propagator, which owns normalization drift;
// the decision functions never call it.
func (E *Electronic) Normalize() {
	n := E.Norm()
	if n <= 0 {
		return
	}
	s := complex(1/math.Sqrt(n), 0)
	for i := range E.coeffs {
		E.coeffs[i] *= s
	}
}
