package hop

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestIDA(Te *testing.T) {
	//downhill attempts always collapse onto the destination
	el, err := NewElectronic([]complex128{complex(0.6, 0), complex(0, 0.8)}, 0)
	if err != nil {
		Te.Fatal(err)
	}
	st, err := IDA(el, 0, 1, 0.10, 0.02, 300, 0.999999)
	if err != nil {
		Te.Fatal(err)
	}
	if st != 1 || el.Active() != 1 {
		Te.Errorf("downhill IDA: got state %d", st)
	}
	if !close2(el.Population(1), 1.0, 1e-12) || !close2(el.Norm(), 1.0, 1e-12) {
		Te.Errorf("IDA left a partial collapse: %v", el.Populations())
	}
	//uphill with gap = KB*T*ln(2): the attempt survives exactly half the draws
	gap := KB * 300 * math.Ln2
	up := func(draw float64) int {
		el2, err := NewElectronic([]complex128{complex(0.6, 0), complex(0, 0.8)}, 0)
		if err != nil {
			Te.Fatal(err)
		}
		st, err := IDA(el2, 0, 1, 0.0, gap, 300, draw)
		if err != nil {
			Te.Fatal(err)
		}
		return st
	}
	if up(0.49) != 1 {
		Te.Errorf("uphill IDA under the threshold did not hop")
	}
	if up(0.51) != 0 {
		Te.Errorf("uphill IDA over the threshold hopped")
	}
	//purity: identical inputs give identical outputs
	if up(0.3) != up(0.3) {
		Te.Errorf("IDA is not deterministic")
	}
}

func TestTimers(Te *testing.T) {
	tm := NewTimers(3)
	tm.Advance(0.5)
	tm.Advance(0.5)
	for i := 0; i < 3; i++ {
		if !close2(tm.Elapsed(i), 1.0, 1e-15) {
			Te.Errorf("elapsed time of state %d: %v", i, tm.Elapsed(i))
		}
		if tm.Expired(i) {
			Te.Errorf("state %d expired before any Resample", i)
		}
	}
	//a draw of 1-1/e makes the sampled time equal the characteristic time
	draw := 1 - 1/math.E
	taus := []float64{2, 4, 8}
	if err := tm.Resample(taus, []float64{draw, draw, draw}); err != nil {
		Te.Fatal(err)
	}
	for i, tau := range taus {
		if !close2(tm.Sampled(i), tau, 1e-12) {
			Te.Errorf("sampled time of state %d: got %v want %v", i, tm.Sampled(i), tau)
		}
	}
	tm.Advance(2.5)
	if !tm.Expired(0) || tm.Expired(1) || tm.Expired(2) {
		Te.Errorf("expiry bookkeeping wrong: %v %v %v", tm.Expired(0), tm.Expired(1), tm.Expired(2))
	}
	tm.Reset()
	for i := 0; i < 3; i++ {
		if tm.Elapsed(i) != 0 {
			Te.Errorf("state %d kept %v after Reset", i, tm.Elapsed(i))
		}
	}
	if err := tm.Resample([]float64{1}, []float64{0.5}); err == nil {
		Te.Errorf("short tau vector accepted")
	}
}

func TestTimersRestore(Te *testing.T) {
	tm := NewTimers(2)
	tm.Advance(3.0)
	if err := tm.Restore(0.7, []float64{2.5, 3.5}); err != nil {
		Te.Fatal(err)
	}
	for i, want := range []float64{2.5, 3.5} {
		if tm.Elapsed(i) != 0.7 {
			Te.Errorf("elapsed time of state %d after Restore: %v", i, tm.Elapsed(i))
		}
		if tm.Sampled(i) != want {
			Te.Errorf("sampled time of state %d after Restore: got %v want %v", i, tm.Sampled(i), want)
		}
	}
	if err := tm.Restore(0, []float64{1}); err == nil {
		Te.Errorf("short sampled vector accepted")
	}
}

func TestCoherenceIntervals(Te *testing.T) {
	el, err := NewElectronic([]complex128{complex(0.5, 0), complex(math.Sqrt(0.75), 0)}, 0)
	if err != nil {
		Te.Fatal(err)
	}
	rates := mat.NewDense(2, 2, []float64{0, 4, 2, 0})
	taus, err := CoherenceIntervals(el, rates)
	if err != nil {
		Te.Fatal(err)
	}
	if !close2(taus[0], 1.0/3.0, 1e-12) {
		Te.Errorf("tau_0: got %v want 1/3", taus[0])
	}
	if !close2(taus[1], 2.0, 1e-12) {
		Te.Errorf("tau_1: got %v want 2", taus[1])
	}
	//no dephasing, no decoherence
	quiet := mat.NewDense(2, 2, nil)
	taus, err = CoherenceIntervals(el, quiet)
	if err != nil {
		Te.Fatal(err)
	}
	if taus[0] < 1e90 || taus[1] < 1e90 {
		Te.Errorf("zero rates gave finite coherence times: %v", taus)
	}
	if _, err := CoherenceIntervals(el, mat.NewDense(3, 3, nil)); err == nil {
		Te.Errorf("mismatched rates matrix accepted")
	}
}

func dishState(Te *testing.T) (*Electronic, *Timers) {
	el, err := NewElectronic([]complex128{complex(0.3, 0), complex(math.Sqrt(0.91), 0)}, 0)
	if err != nil {
		Te.Fatal(err)
	}
	tm := NewTimers(2)
	if err := tm.Resample([]float64{0.5, foreverCoherent}, []float64{1 - 1/math.E, 0.5}); err != nil {
		Te.Fatal(err)
	}
	tm.Advance(1.0) //now the occupied surface is past its sampled time
	return el, tm
}

func dishSnapshot(Te *testing.T, e1 float64) *Vibronic {
	h := mat.NewCDense(2, 2, []complex128{0, 0, 0, complex(e1, 0)})
	vib, err := NewVibronic(h)
	if err != nil {
		Te.Fatal(err)
	}
	return vib
}

func TestDISHCollapseOntoActive(Te *testing.T) {
	el, tm := dishState(Te)
	vib := dishSnapshot(Te, -0.01)
	//draw1 under the occupied population (0.09) collapses onto it
	st, err := DISH(el, tm, vib, 0.5, 0.05, 0.99)
	if err != nil {
		Te.Fatal(err)
	}
	if st != 0 || el.Active() != 0 {
		Te.Errorf("forced collapse went to state %d", st)
	}
	if !close2(el.Population(0), 1.0, 1e-12) {
		Te.Errorf("populations after forced collapse: %v", el.Populations())
	}
	//every accumulator must be exactly zero after any collapse
	for i := 0; i < tm.States(); i++ {
		if tm.Elapsed(i) != 0 {
			Te.Errorf("accumulator %d not reset: %v", i, tm.Elapsed(i))
		}
	}
}

func TestDISHReassign(Te *testing.T) {
	el, tm := dishState(Te)
	vib := dishSnapshot(Te, -0.01) //downhill target, no gating
	st, err := DISH(el, tm, vib, 0.5, 0.5, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	//weights are the populations [0.09, 0.91]; draw2=0.5 lands on state 1
	if st != 1 || el.Active() != 1 {
		Te.Errorf("reassignment went to state %d", st)
	}
	if !close2(el.Population(1), 1.0, 1e-12) {
		Te.Errorf("populations after reassignment: %v", el.Populations())
	}
	for i := 0; i < tm.States(); i++ {
		if tm.Elapsed(i) != 0 {
			Te.Errorf("accumulator %d not reset: %v", i, tm.Elapsed(i))
		}
	}
}

func TestDISHEnergyGate(Te *testing.T) {
	el, tm := dishState(Te)
	vib := dishSnapshot(Te, 0.5) //uphill by 0.5 with only 0.1 of kinetic energy
	st, err := DISH(el, tm, vib, 0.1, 0.5, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	//state 1 is unreachable, so the only weight left is the occupied surface
	if st != 0 || el.Active() != 0 {
		Te.Errorf("gated reassignment went to state %d", st)
	}
	if !close2(el.Population(0), 1.0, 1e-12) {
		Te.Errorf("populations after gated reassignment: %v", el.Populations())
	}
}

func TestDISHQuietTimer(Te *testing.T) {
	el, err := NewElectronic([]complex128{complex(0.3, 0), complex(math.Sqrt(0.91), 0)}, 0)
	if err != nil {
		Te.Fatal(err)
	}
	tm := NewTimers(2) //sampled times effectively infinite
	tm.Advance(1e6)
	vib := dishSnapshot(Te, -0.01)
	st, err := DISH(el, tm, vib, 0.5, 0.0, 0.0)
	if err != nil {
		Te.Fatal(err)
	}
	if st != 0 {
		Te.Errorf("DISH acted with an unexpired timer")
	}
	if !close2(el.Norm(), 1.0, 1e-12) || close2(el.Population(0), 1.0, 1e-12) {
		Te.Errorf("DISH touched the amplitudes with an unexpired timer: %v", el.Populations())
	}
}
