package nova

import "math"

// Rate holds the timing constants of one servicing rate. The engine keeps two
// of them: the full (audio) rate and the buffer rate derived from it.
type Rate struct {
	SampleRate       float64
	SampleDur        float64
	BufDuration      float64
	BufRate          float64
	SlopeFactor      float64
	RadiansPerSample float64
	BufLength        int
	FilterLoops      int
	FilterRemain     int
	FilterSlope      float64
}

// NewRate computes the timing constants for a rate running at sampleRate and
// processing bufLength samples per call.
func NewRate(sampleRate float64, bufLength int) Rate {
	r := Rate{
		SampleRate:       sampleRate,
		SampleDur:        1 / sampleRate,
		BufDuration:      float64(bufLength) / sampleRate,
		BufRate:          sampleRate / float64(bufLength),
		SlopeFactor:      1 / float64(bufLength),
		RadiansPerSample: 2 * math.Pi / sampleRate,
		BufLength:        bufLength,
		FilterLoops:      bufLength / 3,
		FilterRemain:     bufLength % 3,
	}
	if r.FilterLoops != 0 {
		r.FilterSlope = 1 / float64(r.FilterLoops)
	}
	return r
}
