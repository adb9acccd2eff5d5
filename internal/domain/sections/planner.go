package sections

import (
	"fmt"

	"github.com/vpetrenko/cutplan/internal/types"
)

// Options controls where section breaks land.
type Options struct {
	// BreakThreshold is the silence gap that forces a new section on its own.
	BreakThreshold float64
	// TargetLength caps accumulated narration per section; exceeding it makes
	// the planner look for the nearest good gap to break at.
	TargetLength float64
	// Scorer rates topic continuity; nil falls back to LexicalScorer.
	Scorer Scorer
}

// Continuity below this, combined with a meaningful gap, reads as a topic
// change even when the silence alone would not force a break.
const lowContinuity = 0.1

// stretch allowed past TargetLength when the next gap is the better break
// point.
const targetSlack = 1.5

// Plan groups the global segment timeline into ordered narrative sections.
// gaps[i] is the silence before segment i as computed by the caller from
// clip metadata (gaps[0] is ignored). Every segment lands in exactly one
// section; a single unbroken narration collapses to one section.
func Plan(segs []types.Segment, gaps []float64, opt Options) []types.Section {
	if len(segs) == 0 {
		return nil
	}
	scorer := opt.Scorer
	if scorer == nil {
		scorer = LexicalScorer{}
	}

	var out []types.Section
	cur := types.Section{Segments: []types.Segment{segs[0]}}
	accumulated := segs[0].Duration()
	speakerTime := map[string]float64{segs[0].Speaker: segs[0].Duration()}
	prevSpeakers := map[string]struct{}{}

	flush := func() {
		out = append(out, cur)
		cur = types.Section{}
		accumulated = 0
		prevSpeakers = map[string]struct{}{}
		for sp := range speakerTime {
			prevSpeakers[sp] = struct{}{}
		}
		speakerTime = map[string]float64{}
	}

	for i := 1; i < len(segs); i++ {
		seg := segs[i]
		prev := segs[i-1]
		gap := gaps[i]

		breakHere := false
		switch {
		case gap >= opt.BreakThreshold:
			breakHere = true
		case gap >= opt.BreakThreshold/2 && scorer.Continuity(prev, seg) < lowContinuity:
			breakHere = true
		case speakerBreak(speakerTime, prevSpeakers, seg.Speaker):
			breakHere = true
		case accumulated+seg.Duration() > opt.TargetLength:
			// Over target: break at the larger of this gap and the next one.
			nextGap := -1.0
			if i+1 < len(gaps) {
				nextGap = gaps[i+1]
			}
			if nextGap > gap && accumulated+seg.Duration() <= opt.TargetLength*targetSlack {
				breakHere = false
			} else {
				breakHere = true
			}
		}

		if breakHere {
			flush()
		}
		cur.Segments = append(cur.Segments, seg)
		accumulated += seg.Duration()
		speakerTime[seg.Speaker] += seg.Duration()
	}
	out = append(out, cur)

	for i := range out {
		out[i].Label = fmt.Sprintf("S%02d", i+1)
		out[i].Role = role(i, len(out))
		out[i].ContinuousCoverage = true
	}
	return out
}

// speakerBreak fires when a labeled speaker differs from the section's
// dominant speaker and has not appeared recently (this section or the one
// before it). Established back-and-forth dialogue does not fragment sections;
// a genuinely new voice does.
func speakerBreak(speakerTime map[string]float64, prevSpeakers map[string]struct{}, speaker string) bool {
	if speaker == "" {
		return false
	}
	if _, seen := speakerTime[speaker]; seen {
		return false
	}
	if _, seen := prevSpeakers[speaker]; seen {
		return false
	}
	dominant := ""
	var max float64
	for sp, d := range speakerTime {
		if sp != "" && d > max {
			dominant, max = sp, d
		}
	}
	return dominant != "" && dominant != speaker
}

func role(i, n int) string {
	switch {
	case n == 1:
		return "body"
	case i == 0:
		return "intro"
	case i == n-1:
		return "closing"
	default:
		return "body"
	}
}
