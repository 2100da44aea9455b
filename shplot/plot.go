/*
 * plot.go, part of gohop.
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

//Package shplot renders the usual pictures of a surface-hopping run, state
//populations and ensemble energies against time, to whatever format the
//filename extension selects.
package shplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var palette = []color.RGBA{
	{R: 0xc0, A: 0xff},
	{B: 0xc0, A: 0xff},
	{G: 0xa0, A: 0xff},
	{R: 0xc0, B: 0xc0, A: 0xff},
	{R: 0xe0, G: 0x90, A: 0xff},
	{G: 0xa0, B: 0xc0, A: 0xff},
}

func shade(i int) color.RGBA {
	return palette[i%len(palette)]
}

//axis returns the abscissas for n frames, counting frames from zero when
//none are given.
func axis(steps []float64, n int) ([]float64, error) {
	if steps == nil {
		steps = make([]float64, n)
		for i := range steps {
			steps[i] = float64(i)
		}
		return steps, nil
	}
	if len(steps) != n {
		return nil, fmt.Errorf("Got %d abscissas for %d frames", len(steps), n)
	}
	return steps, nil
}

//Populations draws one line per electronic state from a history of
//population frames, pops[t][i] being the population of state i at frame t,
//and saves the picture to filename. The abscissas can be nil, in which case
//frames are counted from zero.
func Populations(steps []float64, pops [][]float64, filename string) error {
	if len(pops) == 0 {
		return fmt.Errorf("Given no population frames to plot")
	}
	nstates := len(pops[0])
	if nstates == 0 {
		return fmt.Errorf("Given population frames with no states")
	}
	for i, fr := range pops {
		if len(fr) != nstates {
			return fmt.Errorf("Population frame %d carries %d states, the first frame %d", i, len(fr), nstates)
		}
	}
	steps, err := axis(steps, len(pops))
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "State populations"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Population"
	//Constant axes
	p.Y.Min = 0
	p.Y.Max = 1
	p.Add(plotter.NewGrid())
	for st := 0; st < nstates; st++ {
		pts := make(plotter.XYs, len(pops))
		for t := range pops {
			pts[t].X = steps[t]
			pts[t].Y = pops[t][st]
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.Color = shade(st)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("S%d", st), l)
	}
	return p.Save(15*vg.Centimeter, 10*vg.Centimeter, filename)
}

//Energies draws the kinetic, potential and total energy of a run against
//time and saves the picture to filename. The abscissas can be nil, in which
//case frames are counted from zero.
func Energies(steps []float64, ekin, epot []float64, filename string) error {
	if len(ekin) == 0 || len(ekin) != len(epot) {
		return fmt.Errorf("Got %d kinetic and %d potential energies", len(ekin), len(epot))
	}
	steps, err := axis(steps, len(ekin))
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Ensemble energies"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Energy (Hartree)"
	p.Add(plotter.NewGrid())
	series := []struct {
		name string
		data func(t int) float64
	}{
		{"kinetic", func(t int) float64 { return ekin[t] }},
		{"potential", func(t int) float64 { return epot[t] }},
		{"total", func(t int) float64 { return ekin[t] + epot[t] }},
	}
	for si, s := range series {
		pts := make(plotter.XYs, len(ekin))
		for t := range ekin {
			pts[t].X = steps[t]
			pts[t].Y = s.data(t)
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.Color = shade(si)
		p.Add(l)
		p.Legend.Add(s.name, l)
	}
	return p.Save(15*vg.Centimeter, 10*vg.Centimeter, filename)
}
