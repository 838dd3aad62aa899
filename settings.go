package rendergraph

import (
	"sync"

	"github.com/gogpu/rendergraph/alias"
)

// Values is an immutable snapshot of a Settings instance's fields,
// named for the external interfaces table.
type Values struct {
	NumFramesInFlight             uint32
	UseAsyncCompute                bool
	AutoAliasMode                  alias.Mode
	AutoAliasPackingStrategy       alias.PackingStrategy
	AutoAliasLogExclusionReasons   bool
	AutoAliasPoolRetireIdleFrames  uint32
	AutoAliasPoolGrowthHeadroom    float64
}

// Settings holds the process-wide, last-wins configuration a Graph
// reads from on every compile. It is owned by the Graph instance that
// created it (there is no package-level global); concurrent Get/Set
// calls are serialized by a single mutex per §9 design notes.
type Settings struct {
	mu sync.RWMutex
	v  Values
}

// DefaultSettings returns the documented defaults from §6.
func DefaultSettings() *Settings {
	return &Settings{v: Values{
		NumFramesInFlight:            3,
		UseAsyncCompute:              false,
		AutoAliasMode:                alias.Off,
		AutoAliasPackingStrategy:     alias.GreedySweepLine,
		AutoAliasLogExclusionReasons: false,
		AutoAliasPoolRetireIdleFrames: 120,
		AutoAliasPoolGrowthHeadroom:   1.5,
	}}
}

// Snapshot returns a copy of the current settings, safe to read
// without holding any lock afterward.
func (s *Settings) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *Settings) SetNumFramesInFlight(n uint32) {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	s.v.NumFramesInFlight = n
	s.mu.Unlock()
}

func (s *Settings) SetUseAsyncCompute(enabled bool) {
	s.mu.Lock()
	s.v.UseAsyncCompute = enabled
	s.mu.Unlock()
}

func (s *Settings) SetAutoAliasMode(mode alias.Mode) {
	s.mu.Lock()
	s.v.AutoAliasMode = mode
	s.mu.Unlock()
}

func (s *Settings) SetAutoAliasPackingStrategy(strategy alias.PackingStrategy) {
	s.mu.Lock()
	s.v.AutoAliasPackingStrategy = strategy
	s.mu.Unlock()
}

func (s *Settings) SetAutoAliasLogExclusionReasons(enabled bool) {
	s.mu.Lock()
	s.v.AutoAliasLogExclusionReasons = enabled
	s.mu.Unlock()
}

func (s *Settings) SetAutoAliasPoolRetireIdleFrames(frames uint32) {
	if frames < 1 {
		frames = 1
	}
	s.mu.Lock()
	s.v.AutoAliasPoolRetireIdleFrames = frames
	s.mu.Unlock()
}

func (s *Settings) SetAutoAliasPoolGrowthHeadroom(headroom float64) {
	if headroom < 1.0 {
		headroom = 1.0
	}
	s.mu.Lock()
	s.v.AutoAliasPoolGrowthHeadroom = headroom
	s.mu.Unlock()
}
