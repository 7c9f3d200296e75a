package processor

import "math"

// biquad is a direct-form-I second-order IIR section. Coefficients are
// normalised by a0 at construction time.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// process runs one sample through the section.
func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// The constructors below use the RBJ Audio EQ Cookbook formulas. The
// shelving filters use shelf slope S=1.

func newHighpass(sampleRate, freq, q float64) *biquad {
	cs, alpha := trig(sampleRate, freq, q)
	b0 := (1 + cs) / 2
	b1 := -(1 + cs)
	b2 := (1 + cs) / 2
	a0 := 1 + alpha
	a1 := -2 * cs
	a2 := 1 - alpha
	return normalise(b0, b1, b2, a0, a1, a2)
}

func newLowpass(sampleRate, freq, q float64) *biquad {
	cs, alpha := trig(sampleRate, freq, q)
	b0 := (1 - cs) / 2
	b1 := 1 - cs
	b2 := (1 - cs) / 2
	a0 := 1 + alpha
	a1 := -2 * cs
	a2 := 1 - alpha
	return normalise(b0, b1, b2, a0, a1, a2)
}

func newPeaking(sampleRate, freq, q, gainDB float64) *biquad {
	a := math.Pow(10, gainDB/40)
	cs, alpha := trig(sampleRate, freq, q)
	b0 := 1 + alpha*a
	b1 := -2 * cs
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cs
	a2 := 1 - alpha/a
	return normalise(b0, b1, b2, a0, a1, a2)
}

func newNotch(sampleRate, freq, q float64) *biquad {
	cs, alpha := trig(sampleRate, freq, q)
	b0 := 1.0
	b1 := -2 * cs
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cs
	a2 := 1 - alpha
	return normalise(b0, b1, b2, a0, a1, a2)
}

func newLowShelf(sampleRate, freq, gainDB float64) *biquad {
	a := math.Pow(10, gainDB/40)
	omega := 2 * math.Pi * freq / sampleRate
	sn, cs := math.Sin(omega), math.Cos(omega)
	alpha := sn / 2 * math.Sqrt2 // S=1
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cs + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cs)
	b2 := a * ((a + 1) - (a-1)*cs - beta)
	a0 := (a + 1) + (a-1)*cs + beta
	a1 := -2 * ((a - 1) + (a+1)*cs)
	a2 := (a + 1) + (a-1)*cs - beta
	return normalise(b0, b1, b2, a0, a1, a2)
}

func newHighShelf(sampleRate, freq, gainDB float64) *biquad {
	a := math.Pow(10, gainDB/40)
	omega := 2 * math.Pi * freq / sampleRate
	sn, cs := math.Sin(omega), math.Cos(omega)
	alpha := sn / 2 * math.Sqrt2 // S=1
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cs + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cs)
	b2 := a * ((a + 1) + (a-1)*cs - beta)
	a0 := (a + 1) - (a-1)*cs + beta
	a1 := 2 * ((a - 1) - (a+1)*cs)
	a2 := (a + 1) - (a-1)*cs - beta
	return normalise(b0, b1, b2, a0, a1, a2)
}

func trig(sampleRate, freq, q float64) (cs, alpha float64) {
	omega := 2 * math.Pi * freq / sampleRate
	cs = math.Cos(omega)
	alpha = math.Sin(omega) / (2 * q)
	return cs, alpha
}

func normalise(b0, b1, b2, a0, a1, a2 float64) *biquad {
	return &biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}
