package hop

// Nuclear holds the classical side of a trajectory, one entry per nuclear degree
// of freedom. The rescalers mutate Mom in place; positions and forces belong to
// the integrator.
type Nuclear struct {
	Pos  []float64 //positions
	Mom  []float64 //conjugate momenta
	InvM []float64 //inverse masses
	Frc  []float64 //forces
}

// NewNuclear returns a Nuclear built from copies of the given positions, momenta
// and inverse masses, which must have the same length. Forces start at zero.
func NewNuclear(pos, mom, invm []float64) (*Nuclear, error) {
	if len(pos) == 0 {
		return nil, CError{"goHop: Empty position vector given", []string{"NewNuclear"}}
	}
	if len(pos) != len(mom) || len(pos) != len(invm) {
		return nil, CError{ErrDOFMismatch, []string{"NewNuclear"}}
	}
	N := new(Nuclear)
	N.Pos = make([]float64, len(pos))
	N.Mom = make([]float64, len(mom))
	N.InvM = make([]float64, len(invm))
	N.Frc = make([]float64, len(pos))
	copy(N.Pos, pos)
	copy(N.Mom, mom)
	copy(N.InvM, invm)
	return N, nil
}

// DOFs returns the number of nuclear degrees of freedom.
func (N *Nuclear) DOFs() int {
	return len(N.Pos)
}

// KineticEnergy returns 1/2 sum_k p_k^2/m_k.
func (N *Nuclear) KineticEnergy() float64 {
	ke := 0.0
	for k, p := range N.Mom {
		ke += 0.5 * p * p * N.InvM[k]
	}
	return ke
}

// Copy returns a deep copy of the Nuclear.
func (N *Nuclear) Copy() *Nuclear {
	C := new(Nuclear)
	C.Pos = make([]float64, len(N.Pos))
	C.Mom = make([]float64, len(N.Mom))
	C.InvM = make([]float64, len(N.InvM))
	C.Frc = make([]float64, len(N.Frc))
	copy(C.Pos, N.Pos)
	copy(C.Mom, N.Mom)
	copy(C.InvM, N.InvM)
	copy(C.Frc, N.Frc)
	return C
}
