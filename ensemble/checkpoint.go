/*
 * checkpoint.go, part of gohop.
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
	"io"
	"math/rand"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

//checkpointTraj is the stored mutable state of one trajectory. The forces
//and the vibronic snapshot are not stored; the model rebuilds them from the
//coordinates on Load.
type checkpointTraj struct {
	Active     int
	Re         []float64
	Im         []float64
	Pos        []float64
	Mom        []float64
	InvM       []float64
	Elapsed    float64
	Sampled    []float64
	Hops       int
	Frustrated int
}

type checkpointData struct {
	Steps  int
	Time   float64
	States int
	DOFs   int
	Trajs  []checkpointTraj
}

// Save writes a binary snapshot of the ensemble's mutable state, from which
// Load on an ensemble built over the same models and settings resumes the
// run.
func (E *Ensemble) Save(w io.Writer) error {
	chk := checkpointData{
		Steps:  E.steps,
		Time:   E.time,
		States: E.States(),
		DOFs:   E.DOFs(),
		Trajs:  make([]checkpointTraj, len(E.trajs)),
	}
	for i, T := range E.trajs {
		ct := &chk.Trajs[i]
		n := T.el.States()
		ct.Active = T.el.Active()
		ct.Re = make([]float64, n)
		ct.Im = make([]float64, n)
		ct.Sampled = make([]float64, n)
		for j := 0; j < n; j++ {
			c := T.el.Coeff(j)
			ct.Re[j] = real(c)
			ct.Im[j] = imag(c)
			ct.Sampled[j] = T.tm.Sampled(j)
		}
		ct.Elapsed = T.tm.Elapsed(0)
		ct.Pos = append([]float64{}, T.nuc.Pos...)
		ct.Mom = append([]float64{}, T.nuc.Mom...)
		ct.InvM = append([]float64{}, T.nuc.InvM...)
		ct.Hops = T.hops
		ct.Frustrated = T.frustrated
	}
	return msgpack.NewEncoder(w).Encode(&chk)
}

// Load restores a snapshot written by Save into an ensemble built over the
// same models and settings. The random streams cannot be stored, so each
// trajectory is reseeded deterministically from the seed, the stored step
// count and its index: a resumed run is reproducible, but does not retrace
// the draws an uninterrupted run would have made.
func (E *Ensemble) Load(r io.Reader) error {
	var chk checkpointData
	if err := msgpack.NewDecoder(r).Decode(&chk); err != nil {
		return err
	}
	if len(chk.Trajs) != len(E.trajs) {
		return fmt.Errorf("The snapshot holds %d trajectories, the ensemble %d", len(chk.Trajs), len(E.trajs))
	}
	n := E.States()
	if chk.States != n || chk.DOFs != E.DOFs() {
		return fmt.Errorf("The snapshot does not match the dimensions of the ensemble")
	}
	for i, T := range E.trajs {
		ct := &chk.Trajs[i]
		if len(ct.Re) != n || len(ct.Im) != n || len(ct.Sampled) != n ||
			len(ct.Pos) != len(T.nuc.Pos) || len(ct.Mom) != len(T.nuc.Mom) || len(ct.InvM) != len(T.nuc.InvM) {
			return fmt.Errorf("Trajectory %d of the snapshot is malformed", i)
		}
		if ct.Active < 0 || ct.Active >= n {
			return fmt.Errorf("Trajectory %d of the snapshot occupies a surface out of range", i)
		}
		for j := 0; j < n; j++ {
			T.el.SetCoeff(j, complex(ct.Re[j], ct.Im[j]))
		}
		T.el.SetActive(ct.Active)
		copy(T.nuc.Pos, ct.Pos)
		copy(T.nuc.Mom, ct.Mom)
		copy(T.nuc.InvM, ct.InvM)
		if err := T.tm.Restore(ct.Elapsed, ct.Sampled); err != nil {
			return err
		}
		T.hops = ct.Hops
		T.frustrated = ct.Frustrated
		T.rng = rand.New(rand.NewSource(E.set.Seed + int64(chk.Steps)*int64(len(E.trajs)) + int64(i)))
		if err := T.prepare(E.set); err != nil {
			return err
		}
	}
	E.steps = chk.Steps
	E.time = chk.Time
	E.log.Info().Int("step", E.steps).Float64("time", E.time).Msg("checkpoint restored")
	return nil
}

// SaveFile writes the Save snapshot to the named file.
func (E *Ensemble) SaveFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := E.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile restores the snapshot in the named file.
func (E *Ensemble) LoadFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return E.Load(f)
}
