/*
 * integrate.go, part of gohop.
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

//halfKick advances the momenta half a step under the current forces.
func halfKick(nuc *hop.Nuclear, dt float64) {
	for k := range nuc.Mom {
		nuc.Mom[k] += 0.5 * dt * nuc.Frc[k]
	}
}

//drift advances the coordinates a full step at the current momenta.
func drift(nuc *hop.Nuclear, dt float64) {
	for k := range nuc.Pos {
		nuc.Pos[k] += dt * nuc.Mom[k] * nuc.InvM[k]
	}
}

//propagate advances the amplitudes one timestep dt of i*dc/dt = Hvib*c under
//the frozen snapshot, split into nsub fourth order Runge-Kutta substeps, and
//restores the norm the integrator lost.
func propagate(el *hop.Electronic, vib *hop.Vibronic, dt float64, nsub int) {
	if nsub < 1 {
		nsub = 1
	}
	n := el.States()
	c := make([]complex128, n)
	for i := range c {
		c[i] = el.Coeff(i)
	}
	k1 := make([]complex128, n)
	k2 := make([]complex128, n)
	k3 := make([]complex128, n)
	k4 := make([]complex128, n)
	tmp := make([]complex128, n)
	deriv := func(y, k []complex128) {
		for i := 0; i < n; i++ {
			s := complex(0, 0)
			for j := 0; j < n; j++ {
				s += vib.At(i, j) * y[j]
			}
			k[i] = -1i * s
		}
	}
	h := complex(dt/float64(nsub), 0)
	for s := 0; s < nsub; s++ {
		deriv(c, k1)
		for i := range tmp {
			tmp[i] = c[i] + h/2*k1[i]
		}
		deriv(tmp, k2)
		for i := range tmp {
			tmp[i] = c[i] + h/2*k2[i]
		}
		deriv(tmp, k3)
		for i := range tmp {
			tmp[i] = c[i] + h*k3[i]
		}
		deriv(tmp, k4)
		for i := range c {
			c[i] += h / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
		}
	}
	for i := range c {
		el.SetCoeff(i, c[i])
	}
	el.Normalize()
}
