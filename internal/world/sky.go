package world

const (
	sunFloatPeriod = 20
	sunFramePeriod = 6
	sunStates      = 4
)

// Sky holds the sun animation counters. It has no effect on the simulation.
type Sky struct {
	FloatState int
	Frame      int
}

func newSky() Sky {
	return Sky{Frame: 1}
}

func (s *Sky) advance(ticks uint64) {
	if ticks%sunFloatPeriod == 0 {
		s.FloatState = (s.FloatState + 1) % sunStates
	}
	if ticks%sunFramePeriod == 0 {
		s.Frame = (s.Frame + 1) % sunStates
	}
}

// SunBob is the vertical pixel offset of the sun for the float state.
func (s Sky) SunBob() int {
	switch s.FloatState {
	case 1:
		return -1
	case 3:
		return 1
	default:
		return 0
	}
}
