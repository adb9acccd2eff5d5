package usage

import (
	"sort"

	"github.com/vpetrenko/cutplan/internal/types"
)

// Tracker records which half-open source ranges of each clip the plan has
// consumed. One Tracker belongs to one generation pass; the primary selector
// and the B-roll allocator share it, writing in fixed section order, so no
// locking is needed.
type Tracker struct {
	used map[string][]types.Span
}

func NewTracker() *Tracker {
	return &Tracker{used: make(map[string][]types.Span)}
}

// Record marks [s.Start, s.End) of the clip consumed. Overlapping or
// adjacent records coalesce into one span.
func (t *Tracker) Record(clipID string, s types.Span) {
	if s.End <= s.Start {
		return
	}
	spans := append(t.used[clipID], s)
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.Start <= last.End {
			if sp.End > last.End {
				last.End = sp.End
			}
			continue
		}
		merged = append(merged, sp)
	}
	t.used[clipID] = merged
}

// Available reports whether [s.Start, s.End) overlaps nothing recorded.
func (t *Tracker) Available(clipID string, s types.Span) bool {
	for _, sp := range t.used[clipID] {
		if sp.Start < s.End && s.Start < sp.End {
			return false
		}
	}
	return true
}

// Used returns the consumed spans of a clip, sorted and coalesced. The
// returned slice is a copy.
func (t *Tracker) Used(clipID string) []types.Span {
	spans := t.used[clipID]
	out := make([]types.Span, len(spans))
	copy(out, spans)
	return out
}

// UsedTotal returns the total consumed duration of a clip.
func (t *Tracker) UsedTotal(clipID string) float64 {
	var total float64
	for _, sp := range t.used[clipID] {
		total += sp.Duration()
	}
	return total
}

// UnusedRanges returns the complement of the recorded spans against
// [0, duration), in order.
func (t *Tracker) UnusedRanges(clipID string, duration float64) []types.Span {
	var out []types.Span
	cursor := 0.0
	for _, sp := range t.used[clipID] {
		if sp.Start > cursor {
			out = append(out, types.Span{Start: cursor, End: sp.Start})
		}
		if sp.End > cursor {
			cursor = sp.End
		}
	}
	if cursor < duration {
		out = append(out, types.Span{Start: cursor, End: duration})
	}
	return out
}

// LargestUnused returns the longest unconsumed span of the clip, or a zero
// span when the clip is exhausted. Ties resolve to the earliest span.
func (t *Tracker) LargestUnused(clipID string, duration float64) types.Span {
	var best types.Span
	for _, sp := range t.UnusedRanges(clipID, duration) {
		if sp.Duration() > best.Duration() {
			best = sp
		}
	}
	return best
}

// Report summarizes usage against a manifest: per-clip consumed ranges, the
// clips never touched, and the consumed share of all footage.
func (t *Tracker) Report(m types.Manifest) types.UsageReport {
	rep := types.UsageReport{Used: make(map[string][]types.Span)}
	var consumed float64
	for _, c := range m.Clips {
		spans := t.Used(c.ID)
		if len(spans) == 0 {
			rep.UnusedClips = append(rep.UnusedClips, c.ID)
			continue
		}
		rep.Used[c.ID] = spans
		consumed += t.UsedTotal(c.ID)
	}
	sort.Strings(rep.UnusedClips)
	if total := m.TotalDuration(); total > 0 {
		rep.CoverageRatio = consumed / total
	}
	return rep
}
