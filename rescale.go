/*
 * rescale.go, part of gohop.
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

package hop

import "math"

// Rescale adjusts the nuclear momenta so total energy is conserved through the
// proposed hop, dispatching once on the representation: along the
// derivative-coupling direction between the two surfaces in the adiabatic case,
// uniformly over all momenta in the diabatic case. The snapshot supplies the
// energies (and, in the adiabatic case, the couplings). On a frustrated hop the
// momenta are left alone unless reverse is set, in which case the component
// along the rescaling direction flips sign.
func Rescale(rep Representation, nuc *Nuclear, vib *Vibronic, from, to int, reverse bool) (Outcome, error) {
	if nuc == nil {
		return Outcome{}, CError{ErrNilNuclear, []string{"Rescale"}}
	}
	if vib == nil {
		return Outcome{}, CError{ErrNilVibronic, []string{"Rescale"}}
	}
	if from < 0 || from >= vib.States() || to < 0 || to >= vib.States() {
		return Outcome{}, CError{ErrStateOutOfRange, []string{"Rescale"}}
	}
	gap := vib.Energy(to) - vib.Energy(from)
	switch rep {
	case Adiabatic:
		d, err := vib.CouplingVector(from, to)
		if err != nil {
			return Outcome{}, errDecorate(err, "Rescale")
		}
		out, err := RescaleAdiabatic(nuc, gap, d, from, to, reverse)
		if err != nil {
			return out, errDecorate(err, "Rescale")
		}
		return out, nil
	case Diabatic:
		out, err := RescaleDiabatic(nuc, gap, from, to, reverse)
		if err != nil {
			return out, errDecorate(err, "Rescale")
		}
		return out, nil
	}
	return Outcome{}, CError{"goHop: Unknown representation", []string{"Rescale"}}
}

// RescaleAdiabatic conserves total energy through a hop with gap = E_to - E_from
// by moving the momenta along the coupling direction d (one entry per nuclear
// degree of freedom): p_k -> p_k - gamma*d_k, with gamma the smaller-magnitude
// root of (1/2 sum_k d_k^2/m_k)*gamma^2 - (sum_k p_k d_k/m_k)*gamma + gap = 0.
// A negative discriminant means the kinetic energy along d cannot cover the
// gap: the hop is frustrated and, if reverse is set, the momentum component
// along d flips sign (gamma = b/a), keeping its magnitude.
func RescaleAdiabatic(nuc *Nuclear, gap float64, d []float64, from, to int, reverse bool) (Outcome, error) {
	if nuc == nil {
		return Outcome{}, CError{ErrNilNuclear, []string{"RescaleAdiabatic"}}
	}
	if len(d) != nuc.DOFs() {
		return Outcome{}, CError{ErrDOFMismatch, []string{"RescaleAdiabatic"}}
	}
	out := Outcome{From: from, To: to, Final: from}
	a := 0.0
	b := 0.0
	for k, dk := range d {
		a += 0.5 * dk * dk * nuc.InvM[k]
		b += nuc.Mom[k] * dk * nuc.InvM[k]
	}
	if a == 0 {
		//A null coupling direction can neither absorb nor supply energy,
		//and gives no direction to reverse either.
		if gap == 0 {
			out.Kind = Accepted
			out.Final = to
			return out, nil
		}
		out.Kind = Frustrated
		return out, nil
	}
	disc := b*b - 4*a*gap
	if disc < 0 {
		out.Kind = Frustrated
		if reverse {
			gamma := b / a
			for k, dk := range d {
				nuc.Mom[k] -= gamma * dk
			}
			out.Reversed = true
		}
		return out, nil
	}
	var gamma float64
	if b < 0 {
		gamma = (b + math.Sqrt(disc)) / (2 * a)
	} else {
		gamma = (b - math.Sqrt(disc)) / (2 * a)
	}
	for k, dk := range d {
		nuc.Mom[k] -= gamma * dk
	}
	out.Kind = Accepted
	out.Final = to
	return out, nil
}

// RescaleDiabatic conserves total energy through a hop with gap = E_to - E_from
// by scaling every momentum by the single factor sqrt(T_f/T_i), where T_i is
// the kinetic energy before the hop and T_f = T_i - gap what must remain after
// it. If T_f is not positive the hop is frustrated and, if reverse is set,
// every momentum flips sign.
func RescaleDiabatic(nuc *Nuclear, gap float64, from, to int, reverse bool) (Outcome, error) {
	if nuc == nil {
		return Outcome{}, CError{ErrNilNuclear, []string{"RescaleDiabatic"}}
	}
	out := Outcome{From: from, To: to, Final: from}
	ti := nuc.KineticEnergy()
	if ti <= 0 {
		//Nothing to trade against the gap. Still frozen nuclei can change
		//surface between degenerate states.
		if gap == 0 {
			out.Kind = Accepted
			out.Final = to
			return out, nil
		}
		out.Kind = Frustrated
		return out, nil
	}
	tf := ti - gap
	if tf > 0 {
		scl := math.Sqrt(tf / ti)
		for k := range nuc.Mom {
			nuc.Mom[k] *= scl
		}
		out.Kind = Accepted
		out.Final = to
		return out, nil
	}
	out.Kind = Frustrated
	if reverse {
		for k := range nuc.Mom {
			nuc.Mom[k] = -nuc.Mom[k]
		}
		out.Reversed = true
	}
	return out, nil
}
