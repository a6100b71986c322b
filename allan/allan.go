// Package allan implements a streaming estimator of frequency stability
// over integer lag τ. Input values are fractional seconds; callers
// holding nanosecond durations convert by dividing by 1e9 before
// recording, since this package only ever sees seconds.
package allan

import "math"

// Accumulator estimates the Allan deviation for every τ in [1, maxTau]
// from a single streamed sequence of second-denominated samples, using the
// classic non-overlapping two-sample estimator:
//
//	AVAR(τ) = 1 / (2·(M-1)) · Σ (ȳ_{k+1}(τ) − ȳ_k(τ))²
//	ADEV(τ) = sqrt(AVAR(τ))
//
// where ȳ_k(τ) is the average of τ consecutive input samples. Each τ keeps
// O(1) state: the running block sum/count, the previous block's average,
// and a running sum and count of squared first differences — so the
// whole accumulator is O(maxTau) memory and O(maxTau) work per sample.
type Accumulator struct {
	maxTau int
	taus   []tauState
}

type tauState struct {
	blockSum   float64
	blockCount int

	havePrev bool
	prevAvg  float64

	diffSqSum float64
	diffCount int64
}

// New returns an Accumulator tracking τ = 1..maxTau.
func New(maxTau int) *Accumulator {
	if maxTau < 1 {
		maxTau = 1
	}
	return &Accumulator{
		maxTau: maxTau,
		taus:   make([]tauState, maxTau),
	}
}

// Record feeds one sample, in seconds, into every τ's block accumulator.
func (a *Accumulator) Record(seconds float64) {
	for tau := 1; tau <= a.maxTau; tau++ {
		s := &a.taus[tau-1]
		s.blockSum += seconds
		s.blockCount++
		if s.blockCount < tau {
			continue
		}

		avg := s.blockSum / float64(tau)
		s.blockSum = 0
		s.blockCount = 0

		if s.havePrev {
			d := avg - s.prevAvg
			s.diffSqSum += d * d
			s.diffCount++
		}
		s.prevAvg = avg
		s.havePrev = true
	}
}

// Deviation returns the current ADEV estimate at the given τ and whether
// enough data has accumulated to produce one. Callers publishing Meters
// should substitute 0.0 when ok is false.
func (a *Accumulator) Deviation(tau int) (float64, bool) {
	if tau < 1 || tau > a.maxTau {
		return 0, false
	}
	s := &a.taus[tau-1]
	if s.diffCount == 0 {
		return 0, false
	}
	avar := s.diffSqSum / (2 * float64(s.diffCount))
	return math.Sqrt(avar), true
}

// MaxTau returns the configured maximum lag.
func (a *Accumulator) MaxTau() int {
	return a.maxTau
}
