package primary

import (
	"math"

	"github.com/vpetrenko/cutplan/internal/types"
)

// Options controls trimming of primary items. Pads extend each cut past the
// segment boundaries without ever crossing clip bounds.
type Options struct {
	Preroll  float64
	Postroll float64
}

// Result is the primary track for one section, with destination offsets
// relative to the section start. Gaps lists narration spans no clip could
// cover; the engine turns those into diagnostics.
type Result struct {
	Items    []types.PlanItem
	Gaps     []types.Span
	Duration float64
}

// Select builds the ordered primary items covering a section's narration.
// Cut points always land on segment boundaries (plus pad), never inside a
// segment. When several synced camera angles cover the same instant, the
// tightest segment wins; ties go to the lowest camera tag, then clip id, so
// selection is reproducible.
func Select(sec types.Section, clips map[string]types.Clip, opt Options) Result {
	var res Result
	cursor := 0.0

	for _, g := range groupAngles(sec.Segments, clips) {
		seg := chooseAngle(g, clips)
		clip, ok := clips[seg.ClipID]
		if !ok {
			// Narration exists but the manifest has no covering clip.
			res.Gaps = append(res.Gaps, types.Span{Start: cursor, End: cursor + seg.Duration()})
			cursor += seg.Duration()
			continue
		}

		srcIn := math.Max(0, seg.Start-opt.Preroll)
		srcOut := math.Min(clip.Duration, seg.End+opt.Postroll)

		if n := len(res.Items); n > 0 {
			last := &res.Items[n-1]
			if last.ClipID == seg.ClipID && srcIn <= last.SrcOut {
				// Pads bridged the silence between two cuts of the same
				// clip; keep it one continuous item.
				if srcOut > last.SrcOut {
					last.SrcOut = srcOut
					last.DstEnd = last.DstStart + (last.SrcOut - last.SrcIn)
					cursor = last.DstEnd
				}
				continue
			}
		}

		item := types.PlanItem{
			Kind:     types.KindPrimary,
			ClipID:   seg.ClipID,
			SrcIn:    srcIn,
			SrcOut:   srcOut,
			DstStart: cursor,
			DstEnd:   cursor + (srcOut - srcIn),
			Track:    1,
			Section:  sec.Label,
		}
		res.Items = append(res.Items, item)
		cursor = item.DstEnd
	}

	res.Duration = cursor
	return res
}

// groupAngles clusters consecutive segments that cover the same narration
// instant on different synced cameras. Segments without absolute timestamps
// never cluster; each stands alone.
func groupAngles(segs []types.Segment, clips map[string]types.Clip) [][]types.Segment {
	var groups [][]types.Segment
	var cur []types.Segment
	curEnd := math.Inf(-1)

	for _, seg := range segs {
		as, ae, synced := absSpan(seg, clips)
		if len(cur) > 0 && synced && as < curEnd {
			cur = append(cur, seg)
			if ae > curEnd {
				curEnd = ae
			}
			continue
		}
		if len(cur) > 0 {
			groups = append(groups, cur)
		}
		cur = []types.Segment{seg}
		if synced {
			curEnd = ae
		} else {
			curEnd = math.Inf(-1)
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func absSpan(seg types.Segment, clips map[string]types.Clip) (start, end float64, ok bool) {
	clip, found := clips[seg.ClipID]
	if !found || !clip.Synced {
		return 0, 0, false
	}
	return clip.AbsStart + seg.Start, clip.AbsStart + seg.End, true
}

// chooseAngle picks the segment with the least silence padding around the
// shared narration, i.e. the shortest one.
func chooseAngle(group []types.Segment, clips map[string]types.Clip) types.Segment {
	best := group[0]
	for _, seg := range group[1:] {
		switch {
		case seg.Duration() < best.Duration():
			best = seg
		case seg.Duration() == best.Duration():
			bc, sc := camera(best, clips), camera(seg, clips)
			if sc < bc || (sc == bc && seg.ClipID < best.ClipID) {
				best = seg
			}
		}
	}
	return best
}

func camera(seg types.Segment, clips map[string]types.Clip) string {
	return clips[seg.ClipID].Camera
}
