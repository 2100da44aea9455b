/*
 * doc.go, part of gohop.
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

/*Package hop implements the decision engine for trajectory surface-hopping
simulations of non-adiabatic molecular dynamics.



	**goHop Capabilities**


    Builds per-timestep hopping probability matrices under the fewest-switches
	(FSSH), global-flux (GFSH) and multi-state (MSSH) schemes, with an optional
	Boltzmann detailed-balance correction for upward transitions. The
	ensemble-averaged scheme (ESH) is built on top of these by the ensemble
	subpackage.

    Selects the destination surface by cumulative-probability sampling from a
	probability row and an externally supplied uniform draw.

    Rescales nuclear momenta on a hop so that total energy is conserved, either
	along the derivative-coupling direction (adiabatic representation) or
	uniformly (diabatic representation), and reports frustrated hops when the
	kinetic energy along the relevant direction cannot cover the gap, with an
	optional momentum-reversal policy.

    Applies decoherence corrections: instantaneous decoherence after attempted
	hops (IDA) and decoherence-induced surface hopping (DISH) with per-state
	coherence timers.

The package works in atomic units throughout: energies in Hartree, time in
atomic time units, masses in electron masses.

All randomness is consumed, never produced. Every stochastic decision takes
the uniform draws it needs as explicit arguments, so a caller that fixes its
draw sequence gets fully reproducible dynamics, also across goroutines.
The subpackages provide the collaborators a complete simulation needs (model
Hamiltonians, the trajectory/ensemble driver, trajectory storage, statistics,
plots and a run archive) but the decision functions in this package only ever
see plain data: amplitudes, one vibronic snapshot, momenta and draws in,
probabilities, outcomes and mutated momenta out.

Matrices are gonum (gonum.org/v1/gonum/mat) throughout; complex matrices use
mat.CDense.

goHop is developed at the Universidad de Santiago de Chile (USACH).*/
package hop
