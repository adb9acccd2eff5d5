package transcript

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vpetrenko/cutplan/internal/types"
)

// Options controls normalization of raw provider output.
type Options struct {
	// MergeGap is the maximum silence between two fragments that still get
	// merged into one segment (same speaker, or no speaker on either side).
	MergeGap float64
	// MinDuration is the noise floor: shorter segments are dropped unless
	// the clip would end up with none at all.
	MinDuration float64
}

// MalformedError reports a transcript whose offsets cannot be trusted. The
// affected clip is excluded from sectioning but stays usable as B-roll.
type MalformedError struct {
	ClipID string
	Start  float64
	End    float64
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed transcript for clip %s: segment [%.3f, %.3f)", e.ClipID, e.Start, e.End)
}

// Normalize turns noisy provider fragments into the canonical segment stream
// for one clip: sorted by start, adjacent fragments merged across small
// silences, noise below the duration floor dropped.
//
// A clip duration of +Inf disables the upper offset bound; the engine uses
// that for transcripts referencing clips the manifest does not know about.
func Normalize(clip types.Clip, raw []types.RawSegment, opt Options) ([]types.Segment, error) {
	for _, r := range raw {
		if r.Start < 0 || r.Start >= r.End {
			return nil, &MalformedError{ClipID: clip.ID, Start: r.Start, End: r.End}
		}
		if !math.IsInf(clip.Duration, 1) && r.End > clip.Duration {
			return nil, &MalformedError{ClipID: clip.ID, Start: r.Start, End: r.End}
		}
	}

	segs := make([]types.Segment, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		segs = append(segs, types.Segment{
			ClipID:  clip.ID,
			Start:   r.Start,
			End:     r.End,
			Text:    text,
			Speaker: strings.TrimSpace(r.Speaker),
		})
	}
	if len(segs) == 0 {
		return nil, nil
	}

	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	// Merge pass. Overlapping fragments count as a zero gap, which also
	// restores the non-overlap invariant for noisy providers.
	merged := segs[:1]
	for _, s := range segs[1:] {
		last := &merged[len(merged)-1]
		gap := s.Start - last.End
		if gap <= opt.MergeGap && sameSpeaker(last.Speaker, s.Speaker) {
			if s.End > last.End {
				last.End = s.End
			}
			last.Text = last.Text + " " + s.Text
			continue
		}
		if s.Start < last.End {
			// Overlap across speakers: clamp rather than merge.
			s.Start = last.End
			if s.Start >= s.End {
				continue
			}
		}
		merged = append(merged, s)
	}

	out := merged[:0:0]
	for _, s := range merged {
		if s.Duration() >= opt.MinDuration {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		// Everything fell under the noise floor; keep the longest fragment
		// so the clip still contributes narration.
		longest := merged[0]
		for _, s := range merged[1:] {
			if s.Duration() > longest.Duration() {
				longest = s
			}
		}
		out = append(out, longest)
	}
	return out, nil
}

func sameSpeaker(a, b string) bool {
	if a == "" && b == "" {
		return true
	}
	return a != "" && a == b
}
