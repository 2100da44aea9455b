/*
 * energy.go, part of gohop.
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

package ensemble

import hop "github.com/rmera/gohop"

// PotentialEnergy returns the electronic potential energy of one snapshot
// under the mixing convention given: the energy of the occupied surface, or
// the expectation value of the vibronic Hamiltonian over the amplitudes.
func PotentialEnergy(el *hop.Electronic, vib *hop.Vibronic, mix Mixing) float64 {
	if mix == MeanField {
		e := 0.0
		n := el.States()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				e += real(vib.At(i, j) * el.Rho(j, i))
			}
		}
		return e
	}
	return vib.Energy(el.Active())
}

// KineticEnergy returns the nuclear kinetic energy of the trajectory.
func (T *Trajectory) KineticEnergy() float64 {
	return T.nuc.KineticEnergy()
}

// PotentialEnergy returns the electronic potential energy of the trajectory
// at its latest snapshot.
func (T *Trajectory) PotentialEnergy(mix Mixing) float64 {
	return PotentialEnergy(T.el, T.vib, mix)
}

// TotalEnergy returns the total energy of the trajectory at its latest
// snapshot.
func (T *Trajectory) TotalEnergy(mix Mixing) float64 {
	return T.KineticEnergy() + T.PotentialEnergy(mix)
}

// Energies returns the per-trajectory averages of the kinetic and potential
// energy, and the total as the sum of the two averages.
func (E *Ensemble) Energies() (ekin, epot, etot float64) {
	for _, T := range E.trajs {
		ekin += T.KineticEnergy()
		epot += T.PotentialEnergy(E.set.Mixing)
	}
	k := float64(len(E.trajs))
	ekin /= k
	epot /= k
	return ekin, epot, ekin + epot
}
