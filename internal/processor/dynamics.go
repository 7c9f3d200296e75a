package processor

import "math"

// compressor is a feed-forward soft-knee dynamics processor with
// attack/release envelope smoothing in the dB domain. The same primitive
// covers the voice compressor, the gentle noise gate and the safety limiter;
// only the parameters differ.
type compressor struct {
	thresholdDB float64
	kneeDB      float64
	ratio       float64

	attackCoef  float64
	releaseCoef float64
	envDB       float64 // smoothed input level estimate

	// ceiling is the absolute output clamp of a zero-knee limiter. A soft
	// knee leaves it at 0 and the stage never clips.
	ceiling float64
}

// envFloorDB is where the level envelope starts and bottoms out.
const envFloorDB = -120.0

func newCompressor(sampleRate, thresholdDB, kneeDB, ratio, attackMs, releaseMs float64) *compressor {
	c := &compressor{
		thresholdDB: thresholdDB,
		kneeDB:      kneeDB,
		ratio:       ratio,
		attackCoef:  smoothingCoef(attackMs, sampleRate),
		releaseCoef: smoothingCoef(releaseMs, sampleRate),
		envDB:       envFloorDB,
	}
	if kneeDB == 0 {
		c.ceiling = DbToLinear(thresholdDB)
	}
	return c
}

// smoothingCoef converts a time constant in milliseconds to a per-sample
// one-pole smoothing coefficient.
func smoothingCoef(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 0
	}
	return math.Exp(-1.0 / (ms / 1000.0 * sampleRate))
}

// process runs one sample through the compressor.
func (c *compressor) process(x float64) float64 {
	levelDB := LinearToDb(math.Abs(x))
	if levelDB < envFloorDB {
		levelDB = envFloorDB
	}

	// One-pole envelope: attack when the signal rises, release when it
	// falls back under the envelope.
	coef := c.attackCoef
	if levelDB < c.envDB {
		coef = c.releaseCoef
	}
	c.envDB = coef*c.envDB + (1-coef)*levelDB

	// A zero-knee limiter must not let an onset through while the envelope
	// is still attacking, so its gain tracks whichever of the envelope and
	// the instantaneous level is hotter.
	ctrlDB := c.envDB
	if c.ceiling > 0 && levelDB > ctrlDB {
		ctrlDB = levelDB
	}

	y := x * DbToLinear(c.curve(ctrlDB)-ctrlDB)
	if c.ceiling > 0 {
		// Brickwall: the finite ratio still leaves a fraction of the
		// overshoot above threshold, so clamp the residue.
		y = math.Max(-c.ceiling, math.Min(c.ceiling, y))
	}
	return y
}

// curve is the static compression curve: identity below the knee,
// ratio-reduced above it, with a quadratic interpolation across the knee
// width. A zero knee gives the hard corner used by the limiter.
func (c *compressor) curve(inDB float64) float64 {
	half := c.kneeDB / 2
	switch {
	case inDB <= c.thresholdDB-half:
		return inDB
	case inDB >= c.thresholdDB+half:
		return c.thresholdDB + (inDB-c.thresholdDB)/c.ratio
	default:
		over := inDB - c.thresholdDB + half
		return inDB + (1/c.ratio-1)*over*over/(2*c.kneeDB)
	}
}
