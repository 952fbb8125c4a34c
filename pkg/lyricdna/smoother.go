package lyricdna

// smoothFactor is the per-frame low-pass coefficient for the render position.
const smoothFactor = 0.25

// smoother is a first-order low-pass filter over the virtual clock's output.
// It only shapes intra-word animation progress; line and word selection always
// use the unsmoothed position so selection never lags.
type smoother struct {
	pos    float64
	primed bool
}

// prime resets the filter to track v with no start-up lag. Called whenever
// the clock itself is (re)initialized.
func (s *smoother) prime(v float64) {
	s.pos = v
	s.primed = true
}

func (s *smoother) advance(v float64) float64 {
	if !s.primed {
		s.prime(v)
		return s.pos
	}
	s.pos += (v - s.pos) * smoothFactor
	return s.pos
}
