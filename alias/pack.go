package alias

import "sort"

// placementCandidate is one candidate's assigned pool and byte offset
// before pool sizes are committed.
type placementCandidate struct {
	resource  Candidate
	pool      int
	offset    uint64
	size      uint64
	firstUse  int
	lastUse   int
	alignment uint64
}

func alignUp(v, align uint64) uint64 {
	if align <= 1 {
		return v
	}
	if rem := v % align; rem != 0 {
		v += align - rem
	}
	return v
}

// poolOccupant is one placement already committed into a pool, kept
// for overlap testing against new candidates.
type poolOccupant struct {
	offset, size       uint64
	firstUse, lastUse  int
}

// packGreedySweepLine walks candidates in start-time order (already
// sorted by the caller) and places each into the lowest free
// byte-offset of the first pool it fits, extending or opening a pool
// when none do.
func packGreedySweepLine(candidates []Candidate) []placementCandidate {
	var pools [][]poolOccupant
	var out []placementCandidate

	for _, c := range candidates {
		size := c.SizeBytes
		align := c.Alignment
		if align == 0 {
			align = 1
		}

		placedPool := -1
		var placedOffset uint64

		for pi, occ := range pools {
			offset, ok := lowestFreeOffset(occ, c.FirstUse, c.LastUse, size, align)
			if ok {
				placedPool = pi
				placedOffset = offset
				break
			}
		}

		if placedPool < 0 {
			placedPool = len(pools)
			placedOffset = 0
			pools = append(pools, nil)
		}

		pools[placedPool] = append(pools[placedPool], poolOccupant{
			offset: placedOffset, size: size, firstUse: c.FirstUse, lastUse: c.LastUse,
		})
		out = append(out, placementCandidate{
			resource: c, pool: placedPool, offset: placedOffset, size: size,
			firstUse: c.FirstUse, lastUse: c.LastUse, alignment: align,
		})
	}
	return out
}

// lowestFreeOffset finds the smallest aligned offset at which a
// [firstUse,lastUse]-lived allocation of size bytes fits without
// overlapping any time-overlapping occupant already in the pool.
func lowestFreeOffset(occ []poolOccupant, firstUse, lastUse int, size, align uint64) (uint64, bool) {
	var blocking []poolOccupant
	for _, o := range occ {
		if intervalsOverlap(o.firstUse, o.lastUse, firstUse, lastUse) {
			blocking = append(blocking, o)
		}
	}
	sort.Slice(blocking, func(i, j int) bool { return blocking[i].offset < blocking[j].offset })

	candidate := uint64(0)
	for _, b := range blocking {
		aligned := alignUp(candidate, align)
		if aligned+size <= b.offset {
			return aligned, true
		}
		if b.offset+b.size > candidate {
			candidate = b.offset + b.size
		}
	}
	return alignUp(candidate, align), true
}

func intervalsOverlap(aFirst, aLast, bFirst, bLast int) bool {
	return aFirst <= bLast && bFirst <= aLast
}

// packBranchAndBound explores assignments of candidates to a bounded
// number of pools, keeping the one with minimum total pooled bytes,
// falling back to the greedy result once the node budget is spent.
// The search order itself follows the same start-time sort as the
// greedy strategy, so the fallback is simply "stop early".
func packBranchAndBound(candidates []Candidate, budget int) []placementCandidate {
	if budget <= 0 {
		return packGreedySweepLine(candidates)
	}

	best := packGreedySweepLine(candidates)
	bestCost := totalPooledBytes(best)

	nodesExplored := 0
	var search func(start int, pools [][]poolOccupant, placed []placementCandidate) bool
	search = func(start int, pools [][]poolOccupant, placed []placementCandidate) bool {
		if nodesExplored >= budget {
			return false // exhausted: caller keeps current best
		}
		if start == len(candidates) {
			cost := totalPooledBytesFromPools(pools)
			if cost < bestCost {
				bestCost = cost
				best = append([]placementCandidate(nil), placed...)
			}
			return true
		}
		c := candidates[start]
		align := c.Alignment
		if align == 0 {
			align = 1
		}

		// Option A: try each existing pool.
		for pi := range pools {
			nodesExplored++
			offset, ok := lowestFreeOffset(pools[pi], c.FirstUse, c.LastUse, c.SizeBytes, align)
			if !ok {
				continue
			}
			pools[pi] = append(pools[pi], poolOccupant{offset: offset, size: c.SizeBytes, firstUse: c.FirstUse, lastUse: c.LastUse})
			placed = append(placed, placementCandidate{resource: c, pool: pi, offset: offset, size: c.SizeBytes, firstUse: c.FirstUse, lastUse: c.LastUse, alignment: align})
			if !search(start+1, pools, placed) {
				return false
			}
			placed = placed[:len(placed)-1]
			pools[pi] = pools[pi][:len(pools[pi])-1]
		}

		// Option B: open a new pool.
		nodesExplored++
		pools = append(pools, []poolOccupant{{offset: 0, size: c.SizeBytes, firstUse: c.FirstUse, lastUse: c.LastUse}})
		placed = append(placed, placementCandidate{resource: c, pool: len(pools) - 1, offset: 0, size: c.SizeBytes, firstUse: c.FirstUse, lastUse: c.LastUse, alignment: align})
		ok := search(start+1, pools, placed)
		pools = pools[:len(pools)-1]
		return ok
	}
	search(0, nil, nil)

	return best
}

func totalPooledBytes(placements []placementCandidate) uint64 {
	peaks := make(map[int]uint64)
	for _, p := range placements {
		end := p.offset + p.size
		if end > peaks[p.pool] {
			peaks[p.pool] = end
		}
	}
	var total uint64
	for _, v := range peaks {
		total += v
	}
	return total
}

func totalPooledBytesFromPools(pools [][]poolOccupant) uint64 {
	var total uint64
	for _, occ := range pools {
		var peak uint64
		for _, o := range occ {
			if end := o.offset + o.size; end > peak {
				peak = end
			}
		}
		total += peak
	}
	return total
}
