package alias

// Tracker keeps each pool's idle-frame counter across compiles,
// mirroring the materialization manager's idle-counter pattern: a
// pool referenced by the current frame's plan resets to zero, one
// not referenced ages by one frame, and a pool idle beyond
// retireIdleFrames is released.
type Tracker struct {
	retireIdleFrames uint32
	idle             map[int]uint32
}

// NewTracker creates a pool-retirement tracker with the configured
// idle-frame threshold (clamped to at least one frame).
func NewTracker(retireIdleFrames uint32) *Tracker {
	if retireIdleFrames == 0 {
		retireIdleFrames = 1
	}
	return &Tracker{retireIdleFrames: retireIdleFrames, idle: make(map[int]uint32)}
}

// Observe folds one frame's plan into the tracker and returns the
// pool ids that should be released this frame.
func (t *Tracker) Observe(plan *Plan) (released []int) {
	referenced := make(map[int]bool, len(plan.Pools))
	for _, p := range plan.Pools {
		referenced[p.ID] = true
		if _, ok := t.idle[p.ID]; !ok {
			t.idle[p.ID] = 0
		}
	}

	for id := range t.idle {
		if referenced[id] {
			t.idle[id] = 0
			continue
		}
		t.idle[id]++
		if t.idle[id] >= t.retireIdleFrames {
			released = append(released, id)
			delete(t.idle, id)
		}
	}
	return released
}
