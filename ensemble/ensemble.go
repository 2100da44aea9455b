/*
 * ensemble.go, part of gohop.
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
	"runtime"
	"sync"

	hop "github.com/rmera/gohop"
	"github.com/rmera/gohop/model"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// Decoherence selects the correction applied to the amplitudes, which stay
// fully coherent otherwise.
type Decoherence int

const (
	//NoCorrection leaves the amplitudes alone between hops.
	NoCorrection Decoherence = iota
	//IDA collapses the amplitudes at every hop attempt, onto the destination
	//if the attempt survives its thermal gate and onto the occupied surface
	//if not.
	IDA
	//DISH collapses the amplitudes whenever a stochastic coherence clock runs
	//out, possibly reassigning the occupied surface. Needs the dephasing
	//rates in the Settings.
	DISH
)

func (d Decoherence) String() string {
	switch d {
	case NoCorrection:
		return "none"
	case IDA:
		return "IDA"
	case DISH:
		return "DISH"
	}
	return "unknown"
}

// Mixing selects how the electronic potential energy of a trajectory is
// booked. The forces always come from the occupied surface.
type Mixing int

const (
	//ActiveSurface books the energy of the occupied surface.
	ActiveSurface Mixing = iota
	//MeanField books the expectation value of the vibronic Hamiltonian over
	//the amplitudes.
	MeanField
)

func (m Mixing) String() string {
	if m == MeanField {
		return "mean-field"
	}
	return "active-surface"
}

// Settings collects everything that shapes a run. The zero value is not
// usable; start from DefaultSettings and adjust.
type Settings struct {
	Scheme            hop.Scheme
	Representation    hop.Representation
	Dt                float64 //timestep, atomic units
	Substeps          int     //amplitude substeps per nuclear step
	Boltzmann         bool    //weight uphill hop probabilities by the Boltzmann factor
	Temperature       float64 //K, for the Boltzmann factor and the IDA gate
	Decoherence       Decoherence
	ReverseFrustrated bool //flip the momentum along the coupling on frustrated hops
	Mixing            Mixing
	Seed              int64      //base seed; trajectory i draws from Seed+i
	Workers           int        //trajectories integrated concurrently; <1 means one per CPU
	Rates             *mat.Dense //dephasing rates for DISH, from shstat.DecoherenceRates
}

// DefaultSettings returns fewest-switches hopping in the adiabatic
// representation, with a 1 atomic-unit timestep, 10 amplitude substeps and no
// decoherence correction.
func DefaultSettings() *Settings {
	return &Settings{
		Scheme:         hop.FSSH,
		Representation: hop.Adiabatic,
		Dt:             1.0,
		Substeps:       10,
		Temperature:    300,
		Seed:           1,
		Workers:        runtime.NumCPU(),
	}
}

func (s *Settings) probOptions() *hop.ProbOptions {
	return &hop.ProbOptions{Boltzmann: s.Boltzmann, Temperature: s.Temperature}
}

// An Ensemble runs a swarm of trajectories in lockstep, one shared clock and
// one Settings over all of them.
type Ensemble struct {
	trajs []*Trajectory
	set   *Settings
	log   zerolog.Logger
	steps int
	time  float64
}

// New builds an ensemble over the trajectories given, assigns each one its
// own deterministic random stream and evaluates the initial forces. A nil
// set means DefaultSettings. Trajectories must agree on the numbers of
// states and degrees of freedom, and cannot share a model.
func New(set *Settings, trajs []*Trajectory) (*Ensemble, error) {
	if set == nil {
		set = DefaultSettings()
	}
	if len(trajs) == 0 {
		return nil, fmt.Errorf("An ensemble needs at least one trajectory")
	}
	if set.Dt <= 0 {
		return nil, fmt.Errorf("The timestep must be positive, got %v", set.Dt)
	}
	if set.Decoherence == DISH && set.Rates == nil {
		return nil, fmt.Errorf("DISH needs the dephasing rates in the settings")
	}
	states := trajs[0].el.States()
	dofs := trajs[0].nuc.DOFs()
	seen := make(map[*model.Model]bool, len(trajs))
	for i, T := range trajs {
		if T.el.States() != states || T.nuc.DOFs() != dofs {
			return nil, fmt.Errorf("Trajectory %d does not match the dimensions of the first one", i)
		}
		if seen[T.mod] {
			return nil, fmt.Errorf("Trajectory %d shares its model with an earlier one", i)
		}
		seen[T.mod] = true
		T.id = i
		T.rng = rand.New(rand.NewSource(set.Seed + int64(i)))
		if err := T.prepare(set); err != nil {
			return nil, err
		}
	}
	return &Ensemble{trajs: trajs, set: set, log: zerolog.Nop()}, nil
}

// SetLogger directs the ensemble's progress events to the logger given.
// Nothing is logged without it.
func (E *Ensemble) SetLogger(l zerolog.Logger) {
	E.log = l.With().Str("component", "ensemble").Logger()
}

// Size returns the number of trajectories.
func (E *Ensemble) Size() int {
	return len(E.trajs)
}

// States returns the number of electronic states.
func (E *Ensemble) States() int {
	return E.trajs[0].el.States()
}

// DOFs returns the number of nuclear degrees of freedom per trajectory.
func (E *Ensemble) DOFs() int {
	return E.trajs[0].nuc.DOFs()
}

// Steps returns how many steps the ensemble has taken.
func (E *Ensemble) Steps() int {
	return E.steps
}

// Time returns the simulated time, in the units of the timestep.
func (E *Ensemble) Time() float64 {
	return E.time
}

// Settings returns the settings of the run. Changing them mid-run is not
// supported.
func (E *Ensemble) Settings() *Settings {
	return E.set
}

// Trajectory returns the i-th trajectory. It panics if i is out of range.
func (E *Ensemble) Trajectory(i int) *Trajectory {
	return E.trajs[i]
}

// Populations returns the ensemble-averaged electronic populations. If dest
// is given and large enough it is used to avoid allocation.
func (E *Ensemble) Populations(dest ...[]float64) []float64 {
	d := sliceFor(E.States(), dest...)
	E.average(d)
	return d
}

// SurfaceFractions returns the fraction of trajectories occupying each
// surface, the surface-hopping estimate of the populations. If dest is given
// and large enough it is used to avoid allocation.
func (E *Ensemble) SurfaceFractions(dest ...[]float64) []float64 {
	d := sliceFor(E.States(), dest...)
	for i := range d {
		d[i] = 0
	}
	for _, T := range E.trajs {
		d[T.el.Active()]++
	}
	k := float64(len(E.trajs))
	for i := range d {
		d[i] /= k
	}
	return d
}

// Step advances every trajectory one timestep and runs the hop decisions.
func (E *Ensemble) Step() error {
	var err error
	if E.set.Scheme == hop.ESH {
		err = E.stepESH()
	} else {
		err = E.each(func(T *Trajectory) error {
			if err := T.advance(E.set); err != nil {
				return err
			}
			return T.decide(E.set)
		})
	}
	if err != nil {
		return err
	}
	E.steps++
	E.time += E.set.Dt
	E.log.Debug().Int("step", E.steps).Float64("time", E.time).Msg("step done")
	return nil
}

//stepESH advances the ensemble under the shared-matrix scheme: every
//trajectory moves and propagates first, then a single probability matrix is
//built from the ensemble-averaged population change over the step, and then
//every trajectory decides against the row of its own occupied surface.
func (E *Ensemble) stepESH() error {
	n := E.States()
	old := make([]float64, n)
	cur := make([]float64, n)
	E.average(old)
	if err := E.each(func(T *Trajectory) error { return T.advance(E.set) }); err != nil {
		return err
	}
	E.average(cur)
	dp := make([]float64, n)
	for i := range dp {
		dp[i] = cur[i] - old[i]
	}
	g, err := hop.ESHMatrix(cur, dp)
	if err != nil {
		return err
	}
	return E.each(func(T *Trajectory) error { return T.attempt(E.set, g.Row(T.el.Active())) })
}

// Run advances the ensemble nsteps timesteps.
func (E *Ensemble) Run(nsteps int) error {
	for i := 0; i < nsteps; i++ {
		if err := E.Step(); err != nil {
			E.log.Error().Err(err).Int("step", E.steps).Msg("run aborted")
			return err
		}
	}
	hops := 0
	frustrated := 0
	for _, T := range E.trajs {
		hops += T.hops
		frustrated += T.frustrated
	}
	ekin, epot, etot := E.Energies()
	E.log.Info().Int("steps", E.steps).Float64("time", E.time).
		Int("hops", hops).Int("frustrated", frustrated).
		Float64("ekin", ekin).Float64("epot", epot).Float64("etot", etot).
		Msg("run finished")
	return nil
}

//average accumulates the ensemble-averaged populations into dest.
func (E *Ensemble) average(dest []float64) {
	for i := range dest {
		dest[i] = 0
	}
	for _, T := range E.trajs {
		for i := range dest {
			dest[i] += T.el.Population(i)
		}
	}
	k := float64(len(E.trajs))
	for i := range dest {
		dest[i] /= k
	}
}

//each runs f over every trajectory, spread over the configured workers. One
//worker touches each trajectory per call, so per-trajectory state needs no
//locking. The first error found is returned.
func (E *Ensemble) each(f func(*Trajectory) error) error {
	w := E.set.Workers
	if w < 1 {
		w = runtime.NumCPU()
	}
	if w > len(E.trajs) {
		w = len(E.trajs)
	}
	jobs := make(chan *Trajectory, len(E.trajs))
	errs := make([]error, len(E.trajs))
	var wg sync.WaitGroup
	for i := 0; i < w; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for T := range jobs {
				errs[T.id] = f(T)
			}
		}()
	}
	for _, T := range E.trajs {
		jobs <- T
	}
	close(jobs)
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

//sliceFor returns dest[0] adjusted to size n if given and large enough, or a
//newly allocated slice otherwise.
func sliceFor(n int, dest ...[]float64) []float64 {
	if len(dest) > 0 && len(dest[0]) >= n {
		return dest[0][:n]
	}
	return make([]float64, n)
}
