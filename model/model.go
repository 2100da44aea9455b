package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// A Surface is the analytic part of a model Hamiltonian: it fills the
// diabatic potential matrix and its gradient with respect to each nuclear
// degree of freedom, at the given coordinates. Implementations do not cache
// anything; that is the Model's job.
type Surface interface {
	States() int
	DOFs() int
	Fill(x []float64, h *mat.SymDense, dh []*mat.SymDense)
}

// A Model wraps a Surface with lazy, cached evaluation. SetCoords marks every
// cached quantity stale; the first read after that recomputes what it needs
// (adiabatic reads imply the diabatic computation) and later reads serve the
// cache. Matrices handed out by the accessors are owned by the Model and must
// be treated as read-only; they stay valid after the next SetCoords, as each
// recomputation builds fresh ones.
type Model struct {
	surf  Surface
	x     []float64
	diaOK bool
	adiOK bool
	hdia  *mat.SymDense
	dhdia []*mat.SymDense
	eadi  []float64
	evec  *mat.Dense
	prev  *mat.Dense
	dc    []*mat.Dense
	grad  *mat.Dense
}

// New returns a Model over the given surface, with no coordinates set yet.
// It panics if the surface is nil or reports a senseless size.
func New(s Surface) *Model {
	if s == nil {
		panic("goHop/model: nil Surface given to New")
	}
	if s.States() < 2 || s.DOFs() < 1 {
		panic(fmt.Sprintf("goHop/model: a Surface needs at least 2 states and 1 degree of freedom, got %d and %d", s.States(), s.DOFs()))
	}
	return &Model{surf: s}
}

// States returns the number of electronic states of the underlying surface.
func (M *Model) States() int {
	return M.surf.States()
}

// DOFs returns the number of nuclear degrees of freedom of the underlying
// surface.
func (M *Model) DOFs() int {
	return M.surf.DOFs()
}

// SetCoords sets the nuclear coordinates and marks all cached results stale.
func (M *Model) SetCoords(x []float64) error {
	if len(x) != M.surf.DOFs() {
		return fmt.Errorf("goHop/model: got %d coordinates for %d degrees of freedom", len(x), M.surf.DOFs())
	}
	if M.x == nil {
		M.x = make([]float64, len(x))
	}
	copy(M.x, x)
	M.diaOK = false
	M.adiOK = false
	return nil
}

// Coords returns a copy of the current nuclear coordinates, or nil if none
// have been set.
func (M *Model) Coords() []float64 {
	if M.x == nil {
		return nil
	}
	x := make([]float64, len(M.x))
	copy(x, M.x)
	return x
}

func (M *Model) computeDiabatic() error {
	if M.diaOK {
		return nil
	}
	if M.x == nil {
		return fmt.Errorf("goHop/model: no coordinates set")
	}
	n := M.surf.States()
	d := M.surf.DOFs()
	h := mat.NewSymDense(n, nil)
	dh := make([]*mat.SymDense, d)
	for k := range dh {
		dh[k] = mat.NewSymDense(n, nil)
	}
	M.surf.Fill(M.x, h, dh)
	M.hdia = h
	M.dhdia = dh
	M.diaOK = true
	return nil
}

func (M *Model) computeAdiabatic() error {
	if M.adiOK {
		return nil
	}
	if err := M.computeDiabatic(); err != nil {
		return err
	}
	var eig mat.EigenSym
	if !eig.Factorize(M.hdia, true) {
		return fmt.Errorf("goHop/model: eigendecomposition failed at coordinates %v", M.x)
	}
	M.eadi = eig.Values(nil)
	evec := new(mat.Dense)
	eig.VectorsTo(evec)
	M.alignGauge(evec)
	M.evec = evec
	M.prev = evec
	n := M.surf.States()
	d := M.surf.DOFs()
	M.grad = mat.NewDense(n, d, nil)
	M.dc = make([]*mat.Dense, d)
	for k := 0; k < d; k++ {
		var t, w mat.Dense
		t.Mul(M.dhdia[k], M.evec)
		w.Mul(M.evec.T(), &t)
		dck := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			M.grad.Set(i, k, w.At(i, i))
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				//a degenerate pair carries no defined coupling direction
				if de := M.eadi[j] - M.eadi[i]; de != 0 {
					dck.Set(i, j, w.At(i, j)/de)
				}
			}
		}
		M.dc[k] = dck
	}
	M.adiOK = true
	return nil
}

// alignGauge flips the sign of any eigenvector whose overlap with its
// counterpart at the previously diagonalized geometry is negative, so the
// couplings stay continuous along a trajectory.
func (M *Model) alignGauge(evec *mat.Dense) {
	if M.prev == nil {
		return
	}
	r, c := evec.Dims()
	pr, pc := M.prev.Dims()
	if r != pr || c != pc {
		return
	}
	for j := 0; j < c; j++ {
		dot := 0.0
		for i := 0; i < r; i++ {
			dot += evec.At(i, j) * M.prev.At(i, j)
		}
		if dot < 0 {
			for i := 0; i < r; i++ {
				evec.Set(i, j, -evec.At(i, j))
			}
		}
	}
}

// Diabatic returns the diabatic potential matrix at the current coordinates.
func (M *Model) Diabatic() (*mat.SymDense, error) {
	if err := M.computeDiabatic(); err != nil {
		return nil, err
	}
	return M.hdia, nil
}

// DiabaticGradients returns the gradient of the diabatic potential matrix,
// one matrix per nuclear degree of freedom.
func (M *Model) DiabaticGradients() ([]*mat.SymDense, error) {
	if err := M.computeDiabatic(); err != nil {
		return nil, err
	}
	return M.dhdia, nil
}

// Adiabatic returns the adiabatic energies at the current coordinates, in
// ascending order.
func (M *Model) Adiabatic() ([]float64, error) {
	if err := M.computeAdiabatic(); err != nil {
		return nil, err
	}
	return M.eadi, nil
}

// Vectors returns the adiabatic eigenvectors as columns, in the order of the
// energies returned by Adiabatic.
func (M *Model) Vectors() (*mat.Dense, error) {
	if err := M.computeAdiabatic(); err != nil {
		return nil, err
	}
	return M.evec, nil
}

// Couplings returns the derivative-coupling matrices, one antisymmetric NxN
// matrix per nuclear degree of freedom, with d_ij = <i|dH/dx|j>/(E_j-E_i).
func (M *Model) Couplings() ([]*mat.Dense, error) {
	if err := M.computeAdiabatic(); err != nil {
		return nil, err
	}
	return M.dc, nil
}

// Gradients returns the gradient of the given adiabatic surface with respect
// to each nuclear degree of freedom, as a fresh slice. It panics if the state
// is out of range.
func (M *Model) Gradients(state int) ([]float64, error) {
	if state < 0 || state >= M.surf.States() {
		panic("goHop/model: state out of range in Gradients")
	}
	if err := M.computeAdiabatic(); err != nil {
		return nil, err
	}
	return mat.Row(nil, state, M.grad), nil
}
