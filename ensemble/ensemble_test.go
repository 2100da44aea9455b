package ensemble

import (
	"bytes"
	"io"
	"testing"

	hop "github.com/rmera/gohop"
	"github.com/rmera/gohop/model"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

//tullySwarm builds k trajectories on Tully's first model, all starting on the
//ground surface at x with momentum p and a mass of 2000 atomic units.
func tullySwarm(Te *testing.T, k int, x, p float64) []*Trajectory {
	Te.Helper()
	trajs := make([]*Trajectory, k)
	for i := range trajs {
		el, err := hop.NewPure(2, 0)
		if err != nil {
			Te.Fatal(err)
		}
		nuc, err := hop.NewNuclear([]float64{x}, []float64{p}, []float64{1.0 / 2000})
		if err != nil {
			Te.Fatal(err)
		}
		T, err := NewTrajectory(model.NewTullyI(), el, nuc)
		if err != nil {
			Te.Fatal(err)
		}
		trajs[i] = T
	}
	return trajs
}

func TestNewTrajectoryValidation(Te *testing.T) {
	el, err := hop.NewPure(2, 0)
	if err != nil {
		Te.Fatal(err)
	}
	nuc, err := hop.NewNuclear([]float64{0}, []float64{1}, []float64{1})
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := NewTrajectory(nil, el, nuc); err == nil {
		Te.Errorf("nil model accepted")
	}
	el3, err := hop.NewPure(3, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := NewTrajectory(model.NewTullyI(), el3, nuc); err == nil {
		Te.Errorf("state count mismatch accepted")
	}
	nuc2, err := hop.NewNuclear([]float64{0, 0}, []float64{1, 1}, []float64{1, 1})
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := NewTrajectory(model.NewTullyI(), el, nuc2); err == nil {
		Te.Errorf("degree-of-freedom mismatch accepted")
	}
}

func TestNewValidation(Te *testing.T) {
	if _, err := New(DefaultSettings(), nil); err == nil {
		Te.Errorf("empty ensemble accepted")
	}
	set := DefaultSettings()
	set.Dt = 0
	if _, err := New(set, tullySwarm(Te, 1, -4, 15)); err == nil {
		Te.Errorf("zero timestep accepted")
	}
	set = DefaultSettings()
	set.Decoherence = DISH
	if _, err := New(set, tullySwarm(Te, 1, -4, 15)); err == nil {
		Te.Errorf("DISH without dephasing rates accepted")
	}
	//two trajectories over one model would race on its caches
	m := model.NewTullyI()
	trajs := make([]*Trajectory, 2)
	for i := range trajs {
		el, err := hop.NewPure(2, 0)
		if err != nil {
			Te.Fatal(err)
		}
		nuc, err := hop.NewNuclear([]float64{-4}, []float64{15}, []float64{1.0 / 2000})
		if err != nil {
			Te.Fatal(err)
		}
		trajs[i], err = NewTrajectory(m, el, nuc)
		if err != nil {
			Te.Fatal(err)
		}
	}
	if _, err := New(DefaultSettings(), trajs); err == nil {
		Te.Errorf("shared model accepted")
	}
}

//Far from the crossing the coupling is negligible: the surfaces keep their
//populations and velocity Verlet keeps the total energy.
func TestEnergyConservation(Te *testing.T) {
	set := DefaultSettings()
	set.Dt = 5
	set.Workers = 1
	E, err := New(set, tullySwarm(Te, 1, -8, 10))
	if err != nil {
		Te.Fatal(err)
	}
	_, _, e0 := E.Energies()
	if err := E.Run(200); err != nil {
		Te.Fatal(err)
	}
	_, _, e1 := E.Energies()
	if !close2(e1, e0, 1e-6) {
		Te.Errorf("total energy drifted from %v to %v", e0, e1)
	}
	if E.Steps() != 200 || !close2(E.Time(), 1000, 1e-9) {
		Te.Errorf("clock bookkeeping: %d steps, time %v", E.Steps(), E.Time())
	}
	T := E.Trajectory(0)
	if T.Electronic().Population(0) < 0.9999 {
		Te.Errorf("population leaked without coupling: %v", T.Electronic().Population(0))
	}
	if T.Hops() != 0 {
		Te.Errorf("hopped %d times with no amplitude to hop on", T.Hops())
	}
	//a nearly pure state books the same energy under either convention
	if !close2(T.PotentialEnergy(MeanField), T.PotentialEnergy(ActiveSurface), 1e-4) {
		Te.Errorf("mean-field energy %v far from the active surface's %v",
			T.PotentialEnergy(MeanField), T.PotentialEnergy(ActiveSurface))
	}
}

//A trajectory shot through the avoided crossing must transfer part of its
//amplitude to the upper surface and conserve the total energy through
//whatever hops take place. The amplitudes do not depend on the draws, only
//the occupied surface does.
func TestScatteringTransfer(Te *testing.T) {
	set := DefaultSettings()
	set.Seed = 7
	set.Workers = 1
	E, err := New(set, tullySwarm(Te, 1, -4, 15))
	if err != nil {
		Te.Fatal(err)
	}
	_, _, e0 := E.Energies()
	if err := E.Run(1500); err != nil {
		Te.Fatal(err)
	}
	T := E.Trajectory(0)
	if x := T.Nuclear().Pos[0]; x < 4 {
		Te.Fatalf("trajectory did not clear the crossing, x = %v", x)
	}
	p1 := T.Electronic().Population(1)
	if p1 < 0.01 || p1 > 0.9 {
		Te.Errorf("upper-surface amplitude after one passage: %v", p1)
	}
	_, _, e1 := E.Energies()
	if !close2(e1, e0, 5e-4) {
		Te.Errorf("total energy drifted from %v to %v", e0, e1)
	}
	fr := E.SurfaceFractions()
	if !close2(fr[0]+fr[1], 1, 1e-12) {
		Te.Errorf("surface fractions sum to %v", fr[0]+fr[1])
	}
}

//Same seed, same swarm: the run must retrace itself draw by draw, whatever
//the worker count.
func TestDeterminism(Te *testing.T) {
	run := func(workers int) *Ensemble {
		set := DefaultSettings()
		set.Seed = 42
		set.Workers = workers
		E, err := New(set, tullySwarm(Te, 6, -4, 12))
		if err != nil {
			Te.Fatal(err)
		}
		if err := E.Run(400); err != nil {
			Te.Fatal(err)
		}
		return E
	}
	a := run(1)
	b := run(3)
	for i := 0; i < a.Size(); i++ {
		ta, tb := a.Trajectory(i), b.Trajectory(i)
		if ta.Nuclear().Pos[0] != tb.Nuclear().Pos[0] || ta.Nuclear().Mom[0] != tb.Nuclear().Mom[0] {
			Te.Errorf("trajectory %d diverged in phase space", i)
		}
		if ta.Electronic().Active() != tb.Electronic().Active() {
			Te.Errorf("trajectory %d diverged in occupied surface", i)
		}
		if ta.Electronic().Coeff(0) != tb.Electronic().Coeff(0) || ta.Electronic().Coeff(1) != tb.Electronic().Coeff(1) {
			Te.Errorf("trajectory %d diverged in amplitudes", i)
		}
		if ta.Hops() != tb.Hops() || ta.Frustrated() != tb.Frustrated() {
			Te.Errorf("trajectory %d diverged in hop counts", i)
		}
	}
}

func TestESHRun(Te *testing.T) {
	set := DefaultSettings()
	set.Scheme = hop.ESH
	set.Seed = 11
	set.Workers = 4
	E, err := New(set, tullySwarm(Te, 8, -4, 15))
	if err != nil {
		Te.Fatal(err)
	}
	E.SetLogger(zerolog.New(io.Discard))
	if err := E.Run(600); err != nil {
		Te.Fatal(err)
	}
	pops := E.Populations()
	if !close2(pops[0]+pops[1], 1, 1e-9) {
		Te.Errorf("averaged populations sum to %v", pops[0]+pops[1])
	}
	fr := E.SurfaceFractions()
	if !close2(fr[0]+fr[1], 1, 1e-12) {
		Te.Errorf("surface fractions sum to %v", fr[0]+fr[1])
	}
}

func TestIDARun(Te *testing.T) {
	set := DefaultSettings()
	set.Decoherence = IDA
	set.Boltzmann = true
	set.Seed = 3
	set.Workers = 2
	E, err := New(set, tullySwarm(Te, 4, -4, 15))
	if err != nil {
		Te.Fatal(err)
	}
	_, _, e0 := E.Energies()
	if err := E.Run(800); err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < E.Size(); i++ {
		el := E.Trajectory(i).Electronic()
		if !close2(el.Norm(), 1, 1e-9) {
			Te.Errorf("trajectory %d lost normalization: %v", i, el.Norm())
		}
	}
	_, _, e1 := E.Energies()
	if !close2(e1, e0, 5e-4) {
		Te.Errorf("total energy drifted from %v to %v", e0, e1)
	}
}

//With dephasing rates far above the step rate the clocks fire as soon as any
//coherence builds, so the amplitudes end the run nearly collapsed. A fully
//coherent run through the same crossing would keep a fifth or so of the
//amplitude off the occupied surface.
func TestDISHRun(Te *testing.T) {
	set := DefaultSettings()
	set.Decoherence = DISH
	set.Rates = mat.NewDense(2, 2, []float64{0, 50, 50, 0})
	set.Seed = 5
	set.Workers = 2
	E, err := New(set, tullySwarm(Te, 4, -4, 15))
	if err != nil {
		Te.Fatal(err)
	}
	if err := E.Run(800); err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < E.Size(); i++ {
		el := E.Trajectory(i).Electronic()
		if el.Population(el.Active()) < 0.95 {
			Te.Errorf("trajectory %d kept coherence under constant collapse: %v",
				i, el.Population(el.Active()))
		}
		if !close2(el.Norm(), 1, 1e-9) {
			Te.Errorf("trajectory %d lost normalization: %v", i, el.Norm())
		}
	}
}

func TestCheckpointRoundtrip(Te *testing.T) {
	set := DefaultSettings()
	set.Seed = 9
	set.Workers = 2
	a, err := New(set, tullySwarm(Te, 3, -4, 15))
	if err != nil {
		Te.Fatal(err)
	}
	if err := a.Run(50); err != nil {
		Te.Fatal(err)
	}
	var buf bytes.Buffer
	if err := a.Save(&buf); err != nil {
		Te.Fatal(err)
	}
	b, err := New(set, tullySwarm(Te, 3, -4, 15))
	if err != nil {
		Te.Fatal(err)
	}
	if err := b.Load(&buf); err != nil {
		Te.Fatal(err)
	}
	if b.Steps() != a.Steps() || b.Time() != a.Time() {
		Te.Errorf("clock not restored: %d steps, time %v", b.Steps(), b.Time())
	}
	for i := 0; i < a.Size(); i++ {
		ta, tb := a.Trajectory(i), b.Trajectory(i)
		if ta.Nuclear().Pos[0] != tb.Nuclear().Pos[0] || ta.Nuclear().Mom[0] != tb.Nuclear().Mom[0] {
			Te.Errorf("trajectory %d phase space not restored", i)
		}
		if ta.Electronic().Coeff(0) != tb.Electronic().Coeff(0) ||
			ta.Electronic().Coeff(1) != tb.Electronic().Coeff(1) {
			Te.Errorf("trajectory %d amplitudes not restored", i)
		}
		if ta.Electronic().Active() != tb.Electronic().Active() {
			Te.Errorf("trajectory %d occupied surface not restored", i)
		}
		if ta.Hops() != tb.Hops() {
			Te.Errorf("trajectory %d hop count not restored", i)
		}
	}
	//the restored ensemble must be able to keep going
	if err := b.Run(20); err != nil {
		Te.Fatal(err)
	}
	//a snapshot does not fit an ensemble of another size
	var buf2 bytes.Buffer
	if err := a.Save(&buf2); err != nil {
		Te.Fatal(err)
	}
	c, err := New(set, tullySwarm(Te, 2, -4, 15))
	if err != nil {
		Te.Fatal(err)
	}
	if err := c.Load(&buf2); err == nil {
		Te.Errorf("size mismatch accepted")
	}
}
