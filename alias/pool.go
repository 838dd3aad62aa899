package alias

import "math"

// commitPools computes each pool's required and reserved byte counts
// from its placements: required is the peak concurrent footprint,
// reserved is required scaled by growthHeadroom.
func commitPools(placements []placementCandidate, growthHeadroom float64) []Pool {
	required := make(map[int]uint64)
	for _, p := range placements {
		if end := p.offset + p.size; end > required[p.pool] {
			required[p.pool] = end
		}
	}

	maxPool := -1
	for id := range required {
		if id > maxPool {
			maxPool = id
		}
	}

	pools := make([]Pool, 0, maxPool+1)
	for id := 0; id <= maxPool; id++ {
		req := required[id]
		reserved := uint64(math.Ceil(float64(req) * growthHeadroom))
		pools = append(pools, Pool{ID: id, RequiredBytes: req, ReservedBytes: reserved})
	}
	return pools
}
