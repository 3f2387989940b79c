package weather

import (
	"math"
	"sync"
)

// MMToInch converts millimetres to inches.
const MMToInch = 0.0393701

// RainCollector identifies the tipping-bucket size of the rain gauge.
type RainCollector int

const (
	RainCollector001In  RainCollector = 1 // 0.01 in per tip
	RainCollector02mm   RainCollector = 2 // 0.2 mm per tip
	RainCollector01In   RainCollector = 3 // 0.1 in per tip
	RainCollector0001mm RainCollector = 4 // 0.001 mm per tip
)

var rainCollectorScale = map[RainCollector]float64{
	RainCollector001In:  0.01,
	RainCollector02mm:   0.2 * MMToInch,
	RainCollector01In:   0.1,
	RainCollector0001mm: 0.001 * MMToInch,
}

// Valid reports whether c is a known collector type.
func (c RainCollector) Valid() bool {
	_, ok := rainCollectorScale[c]
	return ok
}

// ScaleFactor returns inches per tip. Unknown collectors use type 1.
func (c RainCollector) ScaleFactor() float64 {
	if f, ok := rainCollectorScale[c]; ok {
		return f
	}
	return rainCollectorScale[RainCollector001In]
}

// ScaleRain converts a tip count to inches.
func ScaleRain(v, factor float64) float64 {
	return v * factor
}

// RainState turns a periodically resetting cumulative rain counter into
// per-cycle deltas. It must see exactly one value per poll cycle, in order.
type RainState struct {
	mu   sync.Mutex
	last float64
	set  bool
}

// Track returns the rain that fell since the previous call. The first call
// returns 0. A value below the previous one means the counter restarted, and
// the whole value is returned. NaN and infinities are ignored and yield 0.
func (s *RainState) Track(scaled float64) float64 {
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		s.last = scaled
		s.set = true
	} else if scaled < s.last {
		s.last = 0
	}
	delta := scaled - s.last
	s.last = scaled
	return delta
}

// Baseline returns the last cumulative value seen, if any.
func (s *RainState) Baseline() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.set
}

// Apply runs the post-processing step selected by kind. With a nil rain state
// PostTrackTotalRain returns the scaled value untracked.
func Apply(kind PostProcess, v, rainFactor float64, rain *RainState) float64 {
	switch kind {
	case PostScaleRain:
		return ScaleRain(v, rainFactor)
	case PostTrackTotalRain:
		if rain == nil {
			return ScaleRain(v, rainFactor)
		}
		return rain.Track(ScaleRain(v, rainFactor))
	default:
		return v
	}
}
