package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//The three canonical one-dimensional, two-state scattering models of
//Tully (J. Chem. Phys. 93, 1061, 1990). All parameters and coordinates
//are in atomic units.

// TullyI is the simple avoided crossing.
type TullyI struct {
	A, B, C, D float64
}

// NewTullyI returns a Model over the simple avoided crossing with the
// original parameters.
func NewTullyI() *Model {
	return New(&TullyI{A: 0.01, B: 1.6, C: 0.005, D: 1.0})
}

func (t *TullyI) States() int { return 2 }
func (t *TullyI) DOFs() int   { return 1 }

func (t *TullyI) Fill(x []float64, h *mat.SymDense, dh []*mat.SymDense) {
	r := x[0]
	v11 := t.A * (1 - math.Exp(-t.B*r))
	if r < 0 {
		v11 = -t.A * (1 - math.Exp(t.B*r))
	}
	v12 := t.C * math.Exp(-t.D*r*r)
	h.SetSym(0, 0, v11)
	h.SetSym(1, 1, -v11)
	h.SetSym(0, 1, v12)
	g11 := t.A * t.B * math.Exp(-t.B*math.Abs(r))
	g12 := -2 * t.C * t.D * r * math.Exp(-t.D*r*r)
	dh[0].SetSym(0, 0, g11)
	dh[0].SetSym(1, 1, -g11)
	dh[0].SetSym(0, 1, g12)
}

// TullyII is the dual avoided crossing.
type TullyII struct {
	A, B, C, D, E0 float64
}

// NewTullyII returns a Model over the dual avoided crossing with the
// original parameters.
func NewTullyII() *Model {
	return New(&TullyII{A: 0.10, B: 0.28, C: 0.015, D: 0.06, E0: 0.05})
}

func (t *TullyII) States() int { return 2 }
func (t *TullyII) DOFs() int   { return 1 }

func (t *TullyII) Fill(x []float64, h *mat.SymDense, dh []*mat.SymDense) {
	r := x[0]
	v22 := -t.A*math.Exp(-t.B*r*r) + t.E0
	v12 := t.C * math.Exp(-t.D*r*r)
	h.SetSym(0, 0, 0)
	h.SetSym(1, 1, v22)
	h.SetSym(0, 1, v12)
	g22 := 2 * t.A * t.B * r * math.Exp(-t.B*r*r)
	g12 := -2 * t.C * t.D * r * math.Exp(-t.D*r*r)
	dh[0].SetSym(0, 0, 0)
	dh[0].SetSym(1, 1, g22)
	dh[0].SetSym(0, 1, g12)
}

// TullyIII is the extended coupling with reflection.
type TullyIII struct {
	A, B, C float64
}

// NewTullyIII returns a Model over the extended-coupling model with the
// original parameters.
func NewTullyIII() *Model {
	return New(&TullyIII{A: 6e-4, B: 0.10, C: 0.90})
}

func (t *TullyIII) States() int { return 2 }
func (t *TullyIII) DOFs() int   { return 1 }

func (t *TullyIII) Fill(x []float64, h *mat.SymDense, dh []*mat.SymDense) {
	r := x[0]
	v12 := t.B * math.Exp(t.C*r)
	if r >= 0 {
		v12 = t.B * (2 - math.Exp(-t.C*r))
	}
	h.SetSym(0, 0, t.A)
	h.SetSym(1, 1, -t.A)
	h.SetSym(0, 1, v12)
	g12 := t.B * t.C * math.Exp(-t.C*math.Abs(r))
	dh[0].SetSym(0, 0, 0)
	dh[0].SetSym(1, 1, 0)
	dh[0].SetSym(0, 1, g12)
}
