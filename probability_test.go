package hop

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

//amplitudes chosen so the density matrix has rho_00=0.7 and rho_01=0.1+0.1i
//exactly. The vector is not normalized; the builders take it as given.
func referenceState(Te *testing.T, flipped bool) *Electronic {
	s := complex(math.Sqrt(0.7), 0)
	c1 := complex(0.1, -0.1) / s
	if flipped {
		c1 = -c1
	}
	el, err := NewElectronic([]complex128{s, c1}, 0)
	if err != nil {
		Te.Fatal(err)
	}
	return el
}

func referenceSnapshot(Te *testing.T, e1 float64) *Vibronic {
	h := mat.NewCDense(2, 2, []complex128{
		0, complex(0.01, 0),
		complex(0.01, 0), complex(e1, 0),
	})
	vib, err := NewVibronic(h)
	if err != nil {
		Te.Fatal(err)
	}
	return vib
}

//The raw fewest-switches value for this state and snapshot,
//-2*0.1*Re((0.1+0.1i)*0.01)/0.7, is negative, so the probability must floor
//to exactly 0 with no renormalization of the row.
func TestFSSHClosedForm(Te *testing.T) {
	el := referenceState(Te, false)
	vib := referenceSnapshot(Te, 0.05)
	P, err := Probabilities(FSSH, el, vib, 0.1)
	if err != nil {
		Te.Fatal(err)
	}
	want := math.Max(0, -2*0.1*0.1*0.01/0.7)
	if P.At(0, 1) != want {
		Te.Errorf("FSSH g_01: got %v want %v", P.At(0, 1), want)
	}
	if P.At(0, 0) != 1 {
		Te.Errorf("FSSH g_00: got %v want 1", P.At(0, 0))
	}
}

//With the sign of the coherence flipped the same formula gives the positive
//value 2*0.1*0.001/0.7, which must come out exactly.
func TestFSSHPositiveFlux(Te *testing.T) {
	el := referenceState(Te, true)
	vib := referenceSnapshot(Te, 0.05)
	P, err := Probabilities(FSSH, el, vib, 0.1)
	if err != nil {
		Te.Fatal(err)
	}
	want := 2 * 0.1 * 0.001 / 0.7
	if !close2(P.At(0, 1), want, 1e-15) {
		Te.Errorf("FSSH g_01: got %v want %v", P.At(0, 1), want)
	}
	if !close2(P.At(0, 0)+P.At(0, 1), 1.0, 1e-15) {
		Te.Errorf("FSSH row 0 does not sum to 1: %v", P.At(0, 0)+P.At(0, 1))
	}
	row := P.Row(0)
	if len(row) != 2 || !close2(row[1], want, 1e-15) {
		Te.Errorf("Row accessor disagrees with At: %v", row)
	}
}

func TestFSSHRowsInRange(Te *testing.T) {
	el, err := NewElectronic([]complex128{complex(0.5, 0.3), complex(-0.2, 0.6), complex(0.4, -0.1)}, 0)
	if err != nil {
		Te.Fatal(err)
	}
	h := mat.NewCDense(3, 3, []complex128{
		complex(0.00, 0), complex(0.010, -0.002), complex(0.003, 0.001),
		complex(0.010, 0.002), complex(0.03, 0), complex(-0.005, 0.004),
		complex(0.003, -0.001), complex(-0.005, -0.004), complex(0.08, 0),
	})
	vib, err := NewVibronic(h)
	if err != nil {
		Te.Fatal(err)
	}
	P, err := Probabilities(FSSH, el, vib, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		sum := 0.0
		for j := 0; j < 3; j++ {
			g := P.At(i, j)
			if g < 0 || g > 1 {
				Te.Errorf("g_%d%d = %v out of [0,1]", i, j, g)
			}
			sum += g
		}
		if sum > 1+1e-12 {
			Te.Errorf("row %d sums to %v", i, sum)
		}
	}
}

//A surface with no population sends nothing anywhere.
func TestFSSHEmptySurface(Te *testing.T) {
	el, err := NewPure(2, 0)
	if err != nil {
		Te.Fatal(err)
	}
	vib := referenceSnapshot(Te, 0.05)
	P, err := Probabilities(FSSH, el, vib, 0.1)
	if err != nil {
		Te.Fatal(err)
	}
	if P.At(1, 0) != 0 || P.At(1, 1) != 1 {
		Te.Errorf("empty surface row: [%v %v] want [0 1]", P.At(1, 0), P.At(1, 1))
	}
}

//Amplitudes [sqrt(0.8), i*sqrt(0.2)] under a real off-diagonal coupling move
//population from state 1 to state 0: dp_0 = 2*dt*V*a*b = -dp_1. The donor row
//must carry g_10 = dp_0/rho_11 and the gaining row must be the identity.
//The same state gives a zero fewest-switches flux (the coherence is purely
//imaginary), so the two schemes are checked against each other.
func TestGFSH(Te *testing.T) {
	a := math.Sqrt(0.8)
	b := math.Sqrt(0.2)
	el, err := NewElectronic([]complex128{complex(a, 0), complex(0, b)}, 1)
	if err != nil {
		Te.Fatal(err)
	}
	vib := referenceSnapshot(Te, 0.05)
	dt := 0.1
	P, err := Probabilities(GFSH, el, vib, dt)
	if err != nil {
		Te.Fatal(err)
	}
	dp0 := 2 * dt * 0.01 * a * b
	want := dp0 / (b * b)
	if !close2(P.At(1, 0), want, 1e-12) {
		Te.Errorf("GFSH g_10: got %v want %v", P.At(1, 0), want)
	}
	if !close2(P.At(1, 1), 1-want, 1e-12) {
		Te.Errorf("GFSH g_11: got %v want %v", P.At(1, 1), 1-want)
	}
	if P.At(0, 1) != 0 || P.At(0, 0) != 1 {
		Te.Errorf("GFSH gaining row is not the identity: [%v %v]", P.At(0, 0), P.At(0, 1))
	}
	F, err := Probabilities(FSSH, el, vib, dt)
	if err != nil {
		Te.Fatal(err)
	}
	if F.At(1, 0) != 0 {
		Te.Errorf("FSSH sees a flux the coherence cannot carry: %v", F.At(1, 0))
	}
}

//MSSH rows are the population vector, so they sum to the total population,
//not to 1, and ignore the snapshot altogether.
func TestMSSH(Te *testing.T) {
	el := referenceState(Te, false)
	vib := referenceSnapshot(Te, 0.05)
	P, err := Probabilities(MSSH, el, vib, 0.1)
	if err != nil {
		Te.Fatal(err)
	}
	total := el.Norm()
	for i := 0; i < 2; i++ {
		sum := 0.0
		for j := 0; j < 2; j++ {
			if !close2(P.At(i, j), el.Population(j), 1e-15) {
				Te.Errorf("MSSH g_%d%d: got %v want %v", i, j, P.At(i, j), el.Population(j))
			}
			sum += P.At(i, j)
		}
		if !close2(sum, total, 1e-12) {
			Te.Errorf("MSSH row %d sums to %v, want the total population %v", i, sum, total)
		}
	}
}

//With the gap set to KB*T*ln(2) the detailed-balance factor is exactly 1/2.
func TestBoltzmannFactor(Te *testing.T) {
	el := referenceState(Te, true)
	gap := KB * 300 * math.Ln2
	vib := referenceSnapshot(Te, gap)
	plain, err := Probabilities(FSSH, el, vib, 0.1)
	if err != nil {
		Te.Fatal(err)
	}
	weighted, err := Probabilities(FSSH, el, vib, 0.1, &ProbOptions{Boltzmann: true, Temperature: 300})
	if err != nil {
		Te.Fatal(err)
	}
	if !close2(weighted.At(0, 1), 0.5*plain.At(0, 1), 1e-12) {
		Te.Errorf("Boltzmann factor: got %v want %v", weighted.At(0, 1), 0.5*plain.At(0, 1))
	}
	//downhill transitions are never weighted
	if weighted.At(1, 0) != plain.At(1, 0) {
		Te.Errorf("downhill transition was weighted: %v vs %v", weighted.At(1, 0), plain.At(1, 0))
	}
}

func TestProbabilitiesErrors(Te *testing.T) {
	el := referenceState(Te, false)
	h3 := mat.NewCDense(3, 3, nil)
	vib3, err := NewVibronic(h3)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := Probabilities(FSSH, el, vib3, 0.1); err == nil {
		Te.Errorf("dimension mismatch accepted")
	}
	vib := referenceSnapshot(Te, 0.05)
	if _, err := Probabilities(ESH, el, vib, 0.1); err == nil {
		Te.Errorf("ESH accepted at the trajectory level")
	}
	if _, err := Probabilities(FSSH, nil, vib, 0.1); err == nil {
		Te.Errorf("nil electronic state accepted")
	}
}

//Donors split their averaged loss among the gaining states in proportion to
//each gain, exactly as GFSH does per trajectory.
func TestESHMatrix(Te *testing.T) {
	g, err := ESHMatrix([]float64{0.5, 0.3, 0.2}, []float64{-0.06, 0.04, 0.02})
	if err != nil {
		Te.Fatal(err)
	}
	if !close2(g.At(0, 1), 0.08, 1e-12) || !close2(g.At(0, 2), 0.04, 1e-12) {
		Te.Errorf("donor row: got %v, %v want 0.08, 0.04", g.At(0, 1), g.At(0, 2))
	}
	if !close2(g.At(0, 0), 0.88, 1e-12) {
		Te.Errorf("donor diagonal: got %v want 0.88", g.At(0, 0))
	}
	//gainers keep their trajectories put
	for _, i := range []int{1, 2} {
		if g.At(i, i) != 1 {
			Te.Errorf("gainer row %d diagonal: got %v want 1", i, g.At(i, i))
		}
		for j := 0; j < 3; j++ {
			if j != i && g.At(i, j) != 0 {
				Te.Errorf("gainer row %d has off-diagonal weight at %d", i, j)
			}
		}
	}
	//a static ensemble stays put
	g, err = ESHMatrix([]float64{0.5, 0.5}, []float64{0, 0})
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if g.At(i, i) != 1 {
			Te.Errorf("static ensemble moves from surface %d", i)
		}
	}
	if _, err := ESHMatrix([]float64{0.5, 0.5}, []float64{0.1}); err == nil {
		Te.Errorf("mismatched lengths accepted")
	}
	if _, err := ESHMatrix(nil, nil); err == nil {
		Te.Errorf("empty populations accepted")
	}
}
