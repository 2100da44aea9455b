package model

import (
	"fmt"

	hop "github.com/rmera/gohop"
	"gonum.org/v1/gonum/mat"
)

// Snapshot assembles the vibronic Hamiltonian at the model's current
// coordinates, in the requested representation. Diabatic snapshots carry the
// raw potential matrix. Adiabatic snapshots carry the energies on the
// diagonal and -i*sum_k p_k*invm_k*d_ij,k off it, plus the energies and
// coupling matrices as side data for the rescaling step; mom and invm are
// only read in that case and must span the model's degrees of freedom.
func Snapshot(M *Model, rep hop.Representation, mom, invm []float64) (*hop.Vibronic, error) {
	if M == nil {
		return nil, fmt.Errorf("goHop/model: nil Model given to Snapshot")
	}
	n := M.States()
	switch rep {
	case hop.Diabatic:
		h, err := M.Diabatic()
		if err != nil {
			return nil, err
		}
		ch := mat.NewCDense(n, n, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				ch.Set(i, j, complex(h.At(i, j), 0))
			}
		}
		return hop.NewVibronic(ch)
	case hop.Adiabatic:
		if len(mom) != M.DOFs() || len(invm) != M.DOFs() {
			return nil, fmt.Errorf("goHop/model: momentum and inverse-mass vectors must span %d degrees of freedom", M.DOFs())
		}
		e, err := M.Adiabatic()
		if err != nil {
			return nil, err
		}
		dc, err := M.Couplings()
		if err != nil {
			return nil, err
		}
		ch := mat.NewCDense(n, n, nil)
		for i := 0; i < n; i++ {
			ch.Set(i, i, complex(e[i], 0))
			for j := i + 1; j < n; j++ {
				s := 0.0
				for k := range mom {
					s += mom[k] * invm[k] * dc[k].At(i, j)
				}
				//the lower triangle mirrors the upper; the antisymmetry of
				//dc holds only to rounding, but Hvib must be Hermitian exactly
				ch.Set(i, j, complex(0, -s))
				ch.Set(j, i, complex(0, s))
			}
		}
		vib, err := hop.NewVibronic(ch)
		if err != nil {
			return nil, err
		}
		if err := vib.SetAdiabaticEnergies(e); err != nil {
			return nil, err
		}
		if err := vib.SetCouplings(dc); err != nil {
			return nil, err
		}
		return vib, nil
	}
	return nil, fmt.Errorf("goHop/model: unknown representation %v", rep)
}

// Forces returns the force on each nuclear degree of freedom with the system
// on the given surface: minus the adiabatic energy gradient, or minus the
// gradient of the occupied diagonal element in the diabatic representation.
// An optional destination slice avoids the allocation.
func Forces(M *Model, rep hop.Representation, state int, dest ...[]float64) ([]float64, error) {
	if M == nil {
		return nil, fmt.Errorf("goHop/model: nil Model given to Forces")
	}
	if state < 0 || state >= M.States() {
		panic("goHop/model: state out of range in Forces")
	}
	d := M.DOFs()
	var f []float64
	if len(dest) > 0 && dest[0] != nil {
		if len(dest[0]) != d {
			return nil, fmt.Errorf("goHop/model: destination slice spans %d degrees of freedom, want %d", len(dest[0]), d)
		}
		f = dest[0]
	} else {
		f = make([]float64, d)
	}
	switch rep {
	case hop.Adiabatic:
		g, err := M.Gradients(state)
		if err != nil {
			return nil, err
		}
		for k := range f {
			f[k] = -g[k]
		}
	case hop.Diabatic:
		dh, err := M.DiabaticGradients()
		if err != nil {
			return nil, err
		}
		for k := range f {
			f[k] = -dh[k].At(state, state)
		}
	default:
		return nil, fmt.Errorf("goHop/model: unknown representation %v", rep)
	}
	return f, nil
}
