// Package terrain is a concrete, height-stepping implementation of
// blockpath's Terrain and FinePathFinder collaborators: a chunked store
// of per-square blocking-height ranges, queried by representative
// surface rather than by full 3-D occupancy.
package terrain

import "sort"

// Texture identifies a blocking range's material; move profiles use it
// both as a speed modifier lookup and as an ignorable-for-headroom flag.
type Texture uint32

// TextureMask is a 64-texture bitset, used by move profiles to mark
// textures that don't count against standing headroom (e.g. foliage).
type TextureMask uint64

func (m TextureMask) Has(t Texture) bool { return (m & (1 << (uint64(t) & 63))) != 0 }

// HeightScale converts a Range's Begin/End units (1/20th of a world
// unit) to world-space height.
const HeightScale = 20

// Range is a half-open blocking interval [Begin, End) in 1/20th-unit steps.
type Range struct {
	Begin uint16
	End   uint16
}

// RichRange is one blocking interval plus the material it's made of.
type RichRange struct {
	Range
	Texture Texture
}

// Column holds every blocking interval recorded at one fine square,
// always kept normalized (sorted, merged, non-overlapping) by Normalize.
type Column struct {
	raw []RichRange
}

func NewColumn(ranges ...RichRange) *Column {
	c := &Column{raw: append([]RichRange(nil), ranges...)}
	c.Normalize()
	return c
}

// Normalize sorts raw by End and merges adjacent-or-overlapping same-texture
// intervals, the invariant every other Column method relies on.
func (c *Column) Normalize() {
	if len(c.raw) <= 1 {
		return
	}
	sort.SliceStable(c.raw, func(i, j int) bool {
		if c.raw[i].End == c.raw[j].End {
			return c.raw[i].Begin < c.raw[j].Begin
		}
		return c.raw[i].End < c.raw[j].End
	})
	merged := c.raw[:0]
	for _, rr := range c.raw {
		n := len(merged)
		if n == 0 {
			merged = append(merged, rr)
			continue
		}
		last := &merged[n-1]
		if last.Texture == rr.Texture && rr.Begin <= last.End {
			if rr.End > last.End {
				last.End = rr.End
			}
			if rr.Begin < last.Begin {
				last.Begin = rr.Begin
			}
			continue
		}
		merged = append(merged, rr)
	}
	c.raw = merged
}

// findBestSupport finds a walkable surface from h20: the highest surface
// between h20 and h20+maxStepUp20, or failing that the highest down-step,
// each gated on having headClear20 of clearance above it once ignore's
// textures are discounted.
func (c *Column) findBestSupport(h20 uint16, maxStepUp20, headClear20 uint16, ignore TextureMask) (topEnd uint16, ok bool) {
	if len(c.raw) == 0 {
		return 0, false
	}
	c.Normalize()

	upper := uint32(h20) + uint32(maxStepUp20)
	idx := sort.Search(len(c.raw), func(i int) bool {
		return uint32(c.raw[i].End) > upper
	})
	for i := idx - 1; i >= 0; i-- {
		e := c.raw[i].End
		if e < h20 {
			break
		}
		if c.hasHeadroomAbove(i, e, headClear20, ignore) {
			return e, true
		}
	}

	idx2 := sort.Search(len(c.raw), func(i int) bool {
		return c.raw[i].End >= h20
	})
	for i := idx2 - 1; i >= 0; i-- {
		e := c.raw[i].End
		if c.hasHeadroomAbove(i, e, headClear20, ignore) {
			return e, true
		}
	}
	return 0, false
}

// hasHeadroomAbove requires at least headClear20 of clear space above
// the surface at raw[i].End before the next non-ignored blocking range,
// or no further blocking range at all.
func (c *Column) hasHeadroomAbove(i int, end, headClear20 uint16, ignore TextureMask) bool {
	for j := i + 1; j < len(c.raw); j++ {
		if ignore.Has(c.raw[j].Texture) {
			continue
		}
		delta := int32(c.raw[j].Begin) - int32(end)
		return delta >= int32(headClear20)
	}
	return true
}

// textureAt returns the texture of the interval ending at end, if any —
// used to look up the surface material once findBestSupport has located it.
func (c *Column) textureAt(end uint16) (Texture, bool) {
	for _, rr := range c.raw {
		if rr.End == end {
			return rr.Texture, true
		}
	}
	return 0, false
}
