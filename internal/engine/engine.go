package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vpetrenko/cutplan/internal/domain/broll"
	"github.com/vpetrenko/cutplan/internal/domain/primary"
	"github.com/vpetrenko/cutplan/internal/domain/sections"
	"github.com/vpetrenko/cutplan/internal/domain/transcript"
	"github.com/vpetrenko/cutplan/internal/domain/usage"
	"github.com/vpetrenko/cutplan/internal/types"
)

// ErrEmptyInput means there is nothing to plan from: no clips in the
// manifest or no transcripts at all.
var ErrEmptyInput = errors.New("empty input: need at least one clip and one transcript")

// Deps are the engine's pluggable collaborators.
type Deps struct {
	// Scorer rates topic continuity for section breaks; nil uses the
	// deterministic lexical scorer.
	Scorer sections.Scorer
	// Log receives progress and diagnostics; nil disables logging.
	Log *zap.SugaredLogger
}

type Engine struct {
	cfg    Config
	scorer sections.Scorer
	log    *zap.SugaredLogger
}

func New(cfg Config, d Deps) Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return Engine{cfg: cfg, scorer: d.Scorer, log: log}
}

// Generate runs one full planning pass: segment, section, cut, fill, account.
// Inputs are fully materialized before the call; the pass does no I/O. A
// failed pass returns no partial plan. Identical inputs and config produce
// an identical plan, id included.
func (e Engine) Generate(ctx context.Context, m types.Manifest, transcripts map[string][]types.RawSegment) (types.EditPlan, error) {
	if err := e.cfg.Validate(); err != nil {
		return types.EditPlan{}, err
	}
	if len(m.Clips) == 0 || len(transcripts) == 0 {
		return types.EditPlan{}, ErrEmptyInput
	}

	var diags []types.Diagnostic

	clipByID := make(map[string]types.Clip, len(m.Clips))
	for _, c := range m.Clips {
		clipByID[c.ID] = c
	}

	// Normalize every transcript. Clips with malformed transcripts drop out
	// of sectioning but stay eligible as B-roll; transcripts for clips the
	// manifest does not know about stay in, so missing coverage surfaces as
	// a diagnostic instead of vanishing.
	segsByClip := make(map[string][]types.Segment, len(transcripts))
	topt := transcript.Options{
		MergeGap:    e.cfg.SilenceMergeGap.Seconds(),
		MinDuration: e.cfg.MinSegmentDuration.Seconds(),
	}
	ids := make([]string, 0, len(transcripts))
	for id := range transcripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		raw := transcripts[id]
		clip, known := clipByID[id]
		if !known {
			clip = types.Clip{ID: id, Duration: math.Inf(1)}
		}
		segs, err := transcript.Normalize(clip, raw, topt)
		if err != nil {
			var me *transcript.MalformedError
			if errors.As(err, &me) {
				e.log.Warnw("transcript degraded to b-roll only", "clip", id, "err", err)
				diags = append(diags, types.Diagnostic{
					Kind:    types.DiagMalformedTranscript,
					ClipID:  id,
					Start:   me.Start,
					End:     me.End,
					Message: err.Error(),
				})
				continue
			}
			return types.EditPlan{}, fmt.Errorf("normalize transcript %s: %w", id, err)
		}
		if len(segs) > 0 {
			segsByClip[id] = segs
		}
	}

	globalSegs, gaps := e.globalTimeline(m, segsByClip)
	secs := sections.Plan(globalSegs, gaps, sections.Options{
		BreakThreshold: e.cfg.BreakThreshold.Seconds(),
		TargetLength:   e.cfg.SectionTargetLength.Seconds(),
		Scorer:         e.scorer,
	})
	e.log.Infow("sections planned", "sections", len(secs), "segments", len(globalSegs))

	// Primary selection per section is pure and independent once boundaries
	// are fixed, so it fans out. All usage-tracker writes happen afterwards
	// in section order to keep allocation deterministic.
	results := make([]primary.Result, len(secs))
	popt := primary.Options{
		Preroll:  e.cfg.PrerollPad.Seconds(),
		Postroll: e.cfg.PostrollPad.Seconds(),
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := range secs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = primary.Select(secs[i], clipByID, popt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.EditPlan{}, err
	}

	tracker := usage.NewTracker()
	alloc := broll.New(m.Clips, tracker, broll.Options{
		MinShot:         e.cfg.MinShotDuration.Seconds(),
		MaxShot:         e.cfg.MaxShotDuration.Seconds(),
		GapTolerance:    e.cfg.GapTolerance.Seconds(),
		DiversityStrict: e.cfg.DiversityStrict,
	})

	var items []types.PlanItem
	cursor := 0.0
	for i := range secs {
		res := results[i]
		secs[i].Start = cursor
		secs[i].End = cursor + res.Duration

		for _, it := range res.Items {
			it.DstStart += cursor
			it.DstEnd += cursor
			tracker.Record(it.ClipID, types.Span{Start: it.SrcIn, End: it.SrcOut})
			items = append(items, it)
		}
		for _, gp := range res.Gaps {
			diags = append(diags, types.Diagnostic{
				Kind:    types.DiagNoCoverage,
				Section: secs[i].Label,
				Start:   cursor + gp.Start,
				End:     cursor + gp.End,
				Message: fmt.Sprintf("no clip covers narration in section %s", secs[i].Label),
			})
		}

		if secs[i].ContinuousCoverage {
			bitems, gap := alloc.FillSection(secs[i], secs[i].Start, secs[i].End)
			items = append(items, bitems...)
			if gap != nil {
				diags = append(diags, types.Diagnostic{
					Kind:    types.DiagBrollExhausted,
					Section: secs[i].Label,
					Start:   gap.Start,
					End:     gap.End,
					Message: fmt.Sprintf("b-roll supply exhausted in section %s", secs[i].Label),
				})
			}
		}
		cursor = secs[i].End
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DstStart != items[j].DstStart {
			return items[i].DstStart < items[j].DstStart
		}
		return items[i].Track < items[j].Track
	})

	p := types.EditPlan{
		Mode:          e.cfg.Mode,
		ID:            planID(m, transcripts, e.cfg),
		Sections:      secs,
		Items:         items,
		TotalDuration: cursor,
		Diagnostics:   diags,
	}
	e.log.Infow("plan generated",
		"mode", p.Mode,
		"sections", len(p.Sections),
		"items", len(p.Items),
		"duration", p.TotalDuration,
		"diagnostics", len(p.Diagnostics),
	)
	return p, nil
}

// globalTimeline flattens per-clip segments into one ordered stream and
// computes the silence before each segment. Inside a clip the gap is plain
// offset math; across synced clips it comes from absolute timestamps; an
// unsynced clip boundary counts as a full break.
func (e Engine) globalTimeline(m types.Manifest, segsByClip map[string][]types.Segment) ([]types.Segment, []float64) {
	ordered := make([]types.Clip, len(m.Clips))
	copy(ordered, m.Clips)
	types.SortClips(ordered)

	// Transcripts for clips outside the manifest go last, in id order.
	var unknown []string
	for id := range segsByClip {
		if _, ok := m.Clip(id); !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		ordered = append(ordered, types.Clip{ID: id, Duration: math.Inf(1)})
	}

	var (
		segs     []types.Segment
		gaps     []float64
		prevSeg  types.Segment
		prevClip types.Clip
		have     bool
	)
	for _, clip := range ordered {
		for _, seg := range segsByClip[clip.ID] {
			gap := 0.0
			switch {
			case !have:
			case prevSeg.ClipID == seg.ClipID:
				gap = seg.Start - prevSeg.End
			case prevClip.Synced && clip.Synced:
				gap = (clip.AbsStart + seg.Start) - (prevClip.AbsStart + prevSeg.End)
				if gap < 0 {
					gap = 0
				}
			default:
				// No way to measure silence across the boundary; treat it
				// as a section break.
				gap = e.cfg.BreakThreshold.Seconds()
			}
			segs = append(segs, seg)
			gaps = append(gaps, gap)
			prevSeg, prevClip, have = seg, clip, true
		}
	}
	return segs, gaps
}

// planID derives a stable identifier from everything that shapes the plan,
// so reruns over identical inputs emit byte-identical documents.
func planID(m types.Manifest, transcripts map[string][]types.RawSegment, cfg Config) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(m.Clips)
	_ = enc.Encode(transcripts) // map keys marshal sorted
	_ = enc.Encode(cfg)
	return uuid.NewSHA1(uuid.NameSpaceOID, h.Sum(nil)).String()
}
