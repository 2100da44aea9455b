/*
 * trajectory.go, part of gohop.
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

import (
	"fmt"
	"math/rand"

	hop "github.com/rmera/gohop"
	"github.com/rmera/gohop/model"
)

// A Trajectory couples one electronic amplitude vector to one classical
// nuclear configuration moving on a model surface. The random stream, the
// coherence clocks and the step bookkeeping belong to the trajectory, so an
// ensemble can run its members concurrently without any shared mutable state.
type Trajectory struct {
	el         *hop.Electronic
	nuc        *hop.Nuclear
	mod        *model.Model
	vib        *hop.Vibronic
	tm         *hop.Timers
	rng        *rand.Rand
	id         int
	hops       int
	frustrated int
}

// NewTrajectory builds a trajectory from a model and its initial electronic
// and nuclear state. Each trajectory needs its own Model value: the model
// caches per-geometry results, so sharing one across trajectories would race.
func NewTrajectory(m *model.Model, el *hop.Electronic, nuc *hop.Nuclear) (*Trajectory, error) {
	if m == nil || el == nil || nuc == nil {
		return nil, fmt.Errorf("A trajectory needs a model, amplitudes and a nuclear state")
	}
	if el.States() != m.States() {
		return nil, fmt.Errorf("The amplitude vector spans %d states but the model has %d", el.States(), m.States())
	}
	if nuc.DOFs() != m.DOFs() {
		return nil, fmt.Errorf("The nuclear state has %d degrees of freedom but the model has %d", nuc.DOFs(), m.DOFs())
	}
	return &Trajectory{el: el, nuc: nuc, mod: m, tm: hop.NewTimers(el.States())}, nil
}

// Electronic returns the amplitude vector of the trajectory.
func (T *Trajectory) Electronic() *hop.Electronic {
	return T.el
}

// Nuclear returns the nuclear state of the trajectory.
func (T *Trajectory) Nuclear() *hop.Nuclear {
	return T.nuc
}

// Model returns the electronic structure model of the trajectory.
func (T *Trajectory) Model() *model.Model {
	return T.mod
}

// Vibronic returns the vibronic snapshot of the latest step, nil before the
// trajectory joins an ensemble.
func (T *Trajectory) Vibronic() *hop.Vibronic {
	return T.vib
}

// ID returns the index of the trajectory within its ensemble.
func (T *Trajectory) ID() int {
	return T.id
}

// Hops returns how many times the trajectory changed surface, frustrated
// attempts not included.
func (T *Trajectory) Hops() int {
	return T.hops
}

// Frustrated returns how many hop attempts the momenta refused.
func (T *Trajectory) Frustrated() int {
	return T.frustrated
}

//prepare evaluates the model at the current coordinates and rebuilds the
//forces and the vibronic snapshot. Called on construction by the ensemble and
//again after a restored checkpoint.
func (T *Trajectory) prepare(set *Settings) error {
	if err := T.mod.SetCoords(T.nuc.Pos); err != nil {
		return err
	}
	if _, err := model.Forces(T.mod, set.Representation, T.el.Active(), T.nuc.Frc); err != nil {
		return err
	}
	vib, err := model.Snapshot(T.mod, set.Representation, T.nuc.Mom, T.nuc.InvM)
	if err != nil {
		return err
	}
	T.vib = vib
	return nil
}

//advance moves the trajectory one velocity Verlet step, then propagates the
//amplitudes on the updated Hamiltonian. The hop decision is left to the
//caller; the snapshot of the step stays on the trajectory for it.
func (T *Trajectory) advance(set *Settings) error {
	halfKick(T.nuc, set.Dt)
	drift(T.nuc, set.Dt)
	if err := T.mod.SetCoords(T.nuc.Pos); err != nil {
		return err
	}
	if _, err := model.Forces(T.mod, set.Representation, T.el.Active(), T.nuc.Frc); err != nil {
		return err
	}
	halfKick(T.nuc, set.Dt)
	vib, err := model.Snapshot(T.mod, set.Representation, T.nuc.Mom, T.nuc.InvM)
	if err != nil {
		return err
	}
	T.vib = vib
	propagate(T.el, vib, set.Dt, set.Substeps)
	return nil
}

//decide runs the per-trajectory hop decision, building the probability row
//from the trajectory's own state.
func (T *Trajectory) decide(set *Settings) error {
	g, err := hop.Probabilities(set.Scheme, T.el, T.vib, set.Dt, set.probOptions())
	if err != nil {
		return err
	}
	return T.attempt(set, g.Row(T.el.Active()))
}

//attempt selects a destination from the probability row with the trajectory's
//own draw and carries the hop through rescaling and the configured
//decoherence correction. The row can come from the trajectory itself or, for
//the ensemble scheme, from the shared matrix.
func (T *Trajectory) attempt(set *Settings, row []float64) error {
	from := T.el.Active()
	to := hop.SelectHop(from, row, T.rng.Float64())
	if to == from {
		return T.decohere(set)
	}
	if set.Decoherence == IDA {
		st, err := hop.IDA(T.el, from, to, T.vib.Energy(from), T.vib.Energy(to), set.Temperature, T.rng.Float64())
		if err != nil {
			return err
		}
		if st != to {
			//the attempt decohered back onto the occupied surface
			return T.decohere(set)
		}
	}
	out, err := hop.Rescale(set.Representation, T.nuc, T.vib, from, to, set.ReverseFrustrated)
	if err != nil {
		return err
	}
	switch out.Kind {
	case hop.Accepted:
		T.el.SetActive(to)
		T.hops++
		if set.Decoherence == DISH {
			T.el.Collapse(to)
			T.tm.Reset()
		}
		//the next half kick must feel the new surface
		if _, err := model.Forces(T.mod, set.Representation, to, T.nuc.Frc); err != nil {
			return err
		}
	case hop.Frustrated:
		T.frustrated++
		if set.Decoherence == IDA {
			//IDA had already collapsed onto the destination; the momenta
			//refused it, so the coherence dies on the occupied surface
			T.el.Collapse(from)
		}
	}
	return T.decohere(set)
}

//decohere runs the per-step DISH bookkeeping: the clocks advance by the
//step, the decoherence times are redrawn from the instantaneous populations,
//and an expired clock on the occupied surface forces a decision, with its
//momentum adjustment. Redrawing every step matters: a collapse leaves the
//state pure and its characteristic times infinite, so times drawn only at
//collapses would never expire again. A no-op under the other corrections.
func (T *Trajectory) decohere(set *Settings) error {
	if set.Decoherence != DISH {
		return nil
	}
	T.tm.Advance(set.Dt)
	if err := T.resample(set); err != nil {
		return err
	}
	before := T.el.Active()
	if !T.tm.Expired(before) {
		return nil
	}
	st, err := hop.DISH(T.el, T.tm, T.vib, T.nuc.KineticEnergy(), T.rng.Float64(), T.rng.Float64(), set.probOptions())
	if err != nil {
		return err
	}
	if st != before {
		gap := T.vib.Energy(st) - T.vib.Energy(before)
		out, err := hop.RescaleDiabatic(T.nuc, gap, before, st, false)
		if err != nil {
			return err
		}
		if out.Kind == hop.Accepted {
			T.hops++
			if _, err := model.Forces(T.mod, set.Representation, st, T.nuc.Frc); err != nil {
				return err
			}
		} else {
			//gap exactly equal to the kinetic energy; undo the reassignment
			T.el.Collapse(before)
		}
	}
	return nil
}

//resample draws fresh decoherence times from the dephasing rates and the
//current populations.
func (T *Trajectory) resample(set *Settings) error {
	taus, err := hop.CoherenceIntervals(T.el, set.Rates)
	if err != nil {
		return err
	}
	draws := make([]float64, len(taus))
	for i := range draws {
		draws[i] = T.rng.Float64()
	}
	return T.tm.Resample(taus, draws)
}
