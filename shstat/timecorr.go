package shstat

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

//Convention selects the normalization of the correlation sums.
type Convention int

const (
	//Chemist divides the lag-h sum by N-h, the less biased option.
	Chemist Convention = iota
	//Statistician divides every lag by N, trading bias for lower variance.
	Statistician
)

func (C Convention) String() string {
	switch C {
	case Chemist:
		return "chemist"
	case Statistician:
		return "statistician"
	}
	return "unknown convention"
}

func (C Convention) factor(n, lag int) float64 {
	if C == Chemist {
		return 1.0 / float64(n-lag)
	}
	return 1.0 / float64(n)
}

//ACF computes the autocorrelation of the series up to maxLag, centering the
//data first. It returns the raw and the normalized correlograms. A maxLag
//outside [1,len(data)) means every available lag. A series with no variance
//returns the raw values twice, as there is nothing to normalize against.
func ACF(data []float64, maxLag int, conv Convention) (raw, norm []float64, err error) {
	n := len(data)
	if n < 2 {
		return nil, nil, fmt.Errorf("goHop/shstat: Autocorrelation needs at least 2 points, got %d", n)
	}
	if maxLag <= 0 || maxLag >= n {
		maxLag = n - 1
	}
	mean := stat.Mean(data, nil)
	c := make([]float64, n)
	for i, v := range data {
		c[i] = v - mean
	}
	raw = make([]float64, maxLag+1)
	for h := 0; h <= maxLag; h++ {
		var total float64
		for t := 0; t < n-h; t++ {
			total += c[t] * c[t+h]
		}
		raw[h] = total * conv.factor(n, h)
	}
	norm = make([]float64, len(raw))
	if math.Abs(raw[0]) > 0 {
		for i, v := range raw {
			norm[i] = v / raw[0]
		}
	} else {
		copy(norm, raw)
	}
	return raw, norm, nil
}

//CrossACF computes the cross-correlation of two series of equal length
//through the FFT, padding to twice the length so the correlation is linear
//rather than circular. Lag h correlates the first series at time t+h against
//the second at time t. Centering and the lag range work as in ACF; the
//normalized correlogram is scaled by the geometric mean of the two zero-lag
//variances, so correlating a series against itself reproduces ACF exactly.
func CrossACF(a, b []float64, maxLag int, conv Convention) (raw, norm []float64, err error) {
	n := len(a)
	if n != len(b) {
		return nil, nil, fmt.Errorf("goHop/shstat: Cross-correlation needs series of equal length, got %d and %d", n, len(b))
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("goHop/shstat: Cross-correlation needs at least 2 points, got %d", n)
	}
	if maxLag <= 0 || maxLag >= n {
		maxLag = n - 1
	}
	amean := stat.Mean(a, nil)
	bmean := stat.Mean(b, nil)
	apad := make([]complex128, 2*n)
	bpad := make([]complex128, 2*n)
	var va, vb float64
	for i := 0; i < n; i++ {
		da := a[i] - amean
		db := b[i] - bmean
		va += da * da
		vb += db * db
		apad[i] = complex(da, 0)
		bpad[i] = complex(db, 0)
	}
	va /= float64(n)
	vb /= float64(n)
	f := fourier.NewCmplxFFT(len(apad))
	f.Coefficients(apad, apad)
	f.Coefficients(bpad, bpad)
	cmplxMulConj(apad, bpad)
	f.Sequence(apad, apad)
	sc := 1.0 / float64(len(apad)) //normalization of the FFT
	raw = make([]float64, maxLag+1)
	for h := 0; h <= maxLag; h++ {
		raw[h] = real(apad[h]) * sc * conv.factor(n, h)
	}
	norm = make([]float64, len(raw))
	if den := math.Sqrt(va * vb); den > 0 {
		for i, v := range raw {
			norm[i] = v / den
		}
	} else {
		copy(norm, raw)
	}
	return raw, norm, nil
}

func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("goHop/shstat: Conjugate multiplication needs slices of equal length, got %d and %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

//Spectrum computes the cosine transform of a correlogram sampled every dt,
//on a frequency grid from 0 up to wspan in steps of dw. Frequencies come out
//in radians per unit of dt, which in atomic units makes them energies too.
//Feeding the normalized autocorrelation gives the usual influence spectrum.
func Spectrum(acf []float64, wspan, dw, dt float64) (ws, spec []float64, err error) {
	if len(acf) == 0 {
		return nil, nil, fmt.Errorf("goHop/shstat: An empty correlogram has no spectrum")
	}
	if dw <= 0 || dt <= 0 || wspan < dw {
		return nil, nil, fmt.Errorf("goHop/shstat: Unusable spectral grid: span %v, step %v, time step %v", wspan, dw, dt)
	}
	npoints := int(wspan / dw)
	ws = make([]float64, npoints)
	spec = make([]float64, npoints)
	for iw := 0; iw < npoints; iw++ {
		w := float64(iw) * dw
		s := acf[0]
		for it := 1; it < len(acf); it++ {
			s += 2 * math.Cos(w*float64(it)*dt) * acf[it]
		}
		ws[iw] = w
		spec[iw] = s * dt
	}
	return ws, spec, nil
}
