/*
 * vibronic.go, part of gohop.
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

// Vibronic is a snapshot of the vibronic Hamiltonian for one timestep: an NxN
// complex matrix with state energies in the diagonal and couplings off it.
// Optionally it carries separate adiabatic energies and, per nuclear degree of
// freedom, a real derivative-coupling matrix. A snapshot is assembled by the
// Hamiltonian evaluator and then treated as read-only by everything here.
type Vibronic struct {
	states int
	hvib   *mat.CDense
	eadi   []float64    //nil unless SetAdiabaticEnergies was called
	dc     []*mat.Dense //nil unless SetCouplings was called; one NxN matrix per DOF
}

// NewVibronic returns a snapshot built from a copy of the given matrix,
// which must be square.
func NewVibronic(hvib *mat.CDense) (*Vibronic, error) {
	if hvib == nil {
		return nil, CError{ErrNilVibronic, []string{"NewVibronic"}}
	}
	r, c := hvib.Dims()
	if r != c {
		return nil, CError{"goHop: The vibronic Hamiltonian must be square", []string{"NewVibronic"}}
	}
	V := new(Vibronic)
	V.states = r
	V.hvib = mat.NewCDense(r, c, nil)
	V.hvib.Copy(hvib)
	return V, nil
}

// SetAdiabaticEnergies attaches the adiabatic state energies to the snapshot.
// It is part of the assembly of the snapshot, to be called before it is used.
func (V *Vibronic) SetAdiabaticEnergies(energies []float64) error {
	if len(energies) != V.states {
		return CError{ErrStatesMismatch, []string{"SetAdiabaticEnergies"}}
	}
	V.eadi = make([]float64, len(energies))
	copy(V.eadi, energies)
	return nil
}

// SetCouplings attaches the derivative-coupling matrices, one NxN real matrix per
// nuclear degree of freedom, to the snapshot. Like SetAdiabaticEnergies, it is
// part of the assembly of the snapshot.
func (V *Vibronic) SetCouplings(dc []*mat.Dense) error {
	for _, m := range dc {
		if m == nil {
			return CError{"goHop: Nil derivative-coupling matrix given", []string{"SetCouplings"}}
		}
		r, c := m.Dims()
		if r != V.states || c != V.states {
			return CError{ErrStatesMismatch, []string{"SetCouplings"}}
		}
	}
	V.dc = dc
	return nil
}

// States returns the number of electronic states in the snapshot.
func (V *Vibronic) States() int {
	return V.states
}

// At returns the vibronic Hamiltonian element i,j.
func (V *Vibronic) At(i, j int) complex128 {
	return V.hvib.At(i, j)
}

// Energy returns the energy of the state i: the adiabatic energy if the snapshot
// carries them, the real part of the diagonal vibronic element otherwise.
func (V *Vibronic) Energy(i int) float64 {
	if V.eadi != nil {
		return V.eadi[i]
	}
	return real(V.hvib.At(i, i))
}

// HasCouplings returns whether the snapshot carries derivative couplings.
func (V *Vibronic) HasCouplings() bool {
	return V.dc != nil
}

// DOFs returns the number of nuclear degrees of freedom the couplings cover,
// 0 if there are none.
func (V *Vibronic) DOFs() int {
	return len(V.dc)
}

// CouplingVector returns the derivative-coupling direction between the states
// from and to: one real number per nuclear degree of freedom. If dest is given
// and large enough it is used to avoid allocation.
func (V *Vibronic) CouplingVector(from, to int, dest ...[]float64) ([]float64, error) {
	if V.dc == nil {
		return nil, CError{ErrNoCouplings, []string{"CouplingVector"}}
	}
	if from < 0 || from >= V.states || to < 0 || to >= V.states {
		return nil, CError{ErrStateOutOfRange, []string{"CouplingVector"}}
	}
	d := getCopySlice(len(V.dc), dest...)
	for k, m := range V.dc {
		d[k] = m.At(from, to)
	}
	return d, nil
}
