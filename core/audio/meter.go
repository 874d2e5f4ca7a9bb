package audio

import (
	"math"
	"sync/atomic"
)

// Meter is a single-writer, multi-reader loudness snapshot. Writers are the
// capture or playback stage that owns the meter; readers may poll at any rate
// without synchronization.
type Meter struct {
	bits atomic.Uint64
}

func (m *Meter) Set(level float64) {
	m.bits.Store(math.Float64bits(level))
}

func (m *Meter) Reset() {
	m.bits.Store(0)
}

func (m *Meter) Level() float64 {
	return math.Float64frombits(m.bits.Load())
}
