package broll

import (
	"sort"

	"github.com/vpetrenko/cutplan/internal/domain/usage"
	"github.com/vpetrenko/cutplan/internal/types"
)

// Options controls slot sizing and the camera-diversity constraint. The
// enhanced preset only changes these numbers, never the algorithm.
type Options struct {
	// MinShot is the smallest slot worth cutting to; the final slot of a
	// section may be shorter when less narration remains.
	MinShot float64
	// MaxShot caps a single B-roll shot so no filler lingers.
	MaxShot float64
	// GapTolerance is the residual tail a section may leave unfilled.
	GapTolerance float64
	// DiversityStrict forbids repeating the previous slot's clip even after
	// the camera constraint has been relaxed.
	DiversityStrict bool
}

// Allocator fills the B-roll track section by section. It is stateful on
// purpose: the diversity constraint and least-recently-used ordering span
// section boundaries, and all usage writes go through the shared tracker in
// section order.
type Allocator struct {
	clips      []types.Clip
	tr         *usage.Tracker
	opt        Options
	prevCamera string
	prevClip   string
	lastUsed   map[string]int
	slot       int
}

func New(clips []types.Clip, tr *usage.Tracker, opt Options) *Allocator {
	sorted := make([]types.Clip, len(clips))
	copy(sorted, clips)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Allocator{
		clips:    sorted,
		tr:       tr,
		opt:      opt,
		lastUsed: make(map[string]int),
	}
}

// FillSection covers [start, end) on the B-roll track with a greedy cursor.
// It returns the placed items and, when supply runs out, the span left
// uncovered.
func (a *Allocator) FillSection(sec types.Section, start, end float64) ([]types.PlanItem, *types.Span) {
	var items []types.PlanItem
	cursor := start

	// The epsilon swallows float residue so a fully covered section never
	// loops on a zero-length slot.
	const eps = 1e-9
	for end-cursor > a.opt.GapTolerance+eps {
		remaining := end - cursor
		need := remaining
		if need > a.opt.MaxShot {
			need = a.opt.MaxShot
		}
		// The closing slot may undercut MinShot as long as it leaves at most
		// a tolerated tail.
		minNeed := a.opt.MinShot
		if tail := remaining - a.opt.GapTolerance; tail < minNeed {
			minNeed = tail
		}

		clip, span, ok := a.pick(minNeed, true)
		if !ok {
			// Diversity left nothing; relax it before giving up.
			clip, span, ok = a.pick(minNeed, false)
		}
		if !ok {
			gap := types.Span{Start: cursor, End: end}
			return items, &gap
		}

		length := span.Duration()
		if length > need {
			length = need
		}
		item := types.PlanItem{
			Kind:     types.KindBroll,
			ClipID:   clip.ID,
			SrcIn:    span.Start,
			SrcOut:   span.Start + length,
			DstStart: cursor,
			DstEnd:   cursor + length,
			Track:    2,
			Section:  sec.Label,
		}
		a.tr.Record(clip.ID, types.Span{Start: item.SrcIn, End: item.SrcOut})
		items = append(items, item)

		cursor = item.DstEnd
		a.prevCamera = clip.Camera
		a.prevClip = clip.ID
		a.lastUsed[clip.ID] = a.slot
		a.slot++
	}
	return items, nil
}

// pick returns the best candidate clip and the source span to cut from.
// Preference order: largest remaining unused contiguous range, then least
// recently used, then lowest clip id.
func (a *Allocator) pick(minNeed float64, diversity bool) (types.Clip, types.Span, bool) {
	var (
		best     types.Clip
		bestSpan types.Span
		found    bool
	)
	better := func(c types.Clip, largest float64) bool {
		bl := a.tr.LargestUnused(best.ID, best.Duration).Duration()
		if largest != bl {
			return largest > bl
		}
		cu, bu := a.slotOf(c.ID), a.slotOf(best.ID)
		if cu != bu {
			return cu < bu
		}
		return c.ID < best.ID
	}

	for _, c := range a.clips {
		if diversity && a.prevCamera != "" && c.Camera == a.prevCamera {
			continue
		}
		if !diversity && a.opt.DiversityStrict && c.ID == a.prevClip {
			continue
		}
		largest := a.tr.LargestUnused(c.ID, c.Duration).Duration()
		if largest < minNeed || largest <= 0 {
			continue
		}
		span, ok := a.cutSpan(c, minNeed)
		if !ok {
			continue
		}
		if !found || better(c, largest) {
			best, bestSpan, found = c, span, true
		}
	}
	return best, bestSpan, found
}

// cutSpan picks the earliest unused span long enough for the slot.
func (a *Allocator) cutSpan(c types.Clip, minNeed float64) (types.Span, bool) {
	for _, sp := range a.tr.UnusedRanges(c.ID, c.Duration) {
		if sp.Duration() >= minNeed {
			return sp, true
		}
	}
	return types.Span{}, false
}

func (a *Allocator) slotOf(clipID string) int {
	if s, ok := a.lastUsed[clipID]; ok {
		return s
	}
	return -1
}
