package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vpetrenko/cutplan/internal/types"
)

func threeClipManifest() types.Manifest {
	return types.Manifest{Clips: []types.Clip{
		{ID: "A", Camera: "cam1", Duration: 10},
		{ID: "B", Camera: "cam1", Duration: 10},
		{ID: "C", Camera: "cam2", Duration: 10},
	}}
}

func helloTranscripts() map[string][]types.RawSegment {
	return map[string][]types.RawSegment{
		"A": {{Start: 1.0, End: 8.0, Text: "hello world"}},
	}
}

func generate(t *testing.T, m types.Manifest, tr map[string][]types.RawSegment, cfg Config) types.EditPlan {
	t.Helper()
	p, err := New(cfg, Deps{}).Generate(context.Background(), m, tr)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return p
}

func TestGenerate_SingleNarratedClipWithBroll(t *testing.T) {
	p := generate(t, threeClipManifest(), helloTranscripts(), DefaultConfig(types.ModeBasic))

	if len(p.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(p.Sections))
	}
	sec := p.Sections[0]
	if sec.Start != 0 || sec.End != 7 {
		t.Fatalf("section = [%v, %v], want [0, 7]", sec.Start, sec.End)
	}

	var primaries, brolls []types.PlanItem
	for _, it := range p.Items {
		switch it.Kind {
		case types.KindPrimary:
			primaries = append(primaries, it)
		case types.KindBroll:
			brolls = append(brolls, it)
		}
	}
	if len(primaries) != 1 {
		t.Fatalf("expected 1 primary item, got %d", len(primaries))
	}
	pr := primaries[0]
	if pr.ClipID != "A" || pr.SrcIn != 1.0 || pr.SrcOut != 8.0 || pr.Track != 1 {
		t.Fatalf("unexpected primary item: %+v", pr)
	}

	// B-roll fills [0, 7] with no hole, drawn from the fresh clips, and the
	// odd camera out sits next to a cam1 neighbor.
	cursor := 0.0
	for _, it := range brolls {
		if it.Track != 2 {
			t.Fatalf("broll on track %d", it.Track)
		}
		if it.DstStart != cursor {
			t.Fatalf("broll hole before %+v (cursor %v)", it, cursor)
		}
		if it.ClipID == "A" {
			t.Fatalf("broll should come from unused clips, got %s", it.ClipID)
		}
		cursor = it.DstEnd
	}
	if cursor != 7 {
		t.Fatalf("broll coverage ends at %v, want 7", cursor)
	}
	if brolls[len(brolls)-1].ClipID != "C" {
		t.Fatalf("diversity should place C next to a cam1 neighbor, got %s", brolls[len(brolls)-1].ClipID)
	}
	if len(p.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", p.Diagnostics)
	}
	if p.TotalDuration != 7 {
		t.Fatalf("total duration = %v, want 7", p.TotalDuration)
	}
}

func TestGenerate_SilenceGapSplitsSections(t *testing.T) {
	m := types.Manifest{Clips: []types.Clip{{ID: "A", Camera: "cam1", Duration: 60}}}
	tr := map[string][]types.RawSegment{
		"A": {
			{Start: 0, End: 5, Text: "first beat"},
			{Start: 25, End: 30, Text: "second beat"}, // 20s silence
		},
	}
	p := generate(t, m, tr, DefaultConfig(types.ModeBasic))
	if len(p.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(p.Sections))
	}
	if p.Sections[1].Start != p.Sections[0].End {
		t.Fatalf("sections not contiguous: %+v", p.Sections)
	}
}

func TestGenerate_PrimaryTrackNeverOverlaps(t *testing.T) {
	m := types.Manifest{Clips: []types.Clip{
		{ID: "A", Camera: "cam1", Duration: 120},
		{ID: "B", Camera: "cam2", Duration: 120},
	}}
	tr := map[string][]types.RawSegment{
		"A": {
			{Start: 0, End: 20, Text: "one thing about exposure and light"},
			{Start: 21, End: 45, Text: "another thing about exposure and light"},
			{Start: 52, End: 70, Text: "a third thing entirely about cooking pasta"},
		},
		"B": {
			{Start: 3, End: 15, Text: "closing remarks and goodbyes"},
		},
	}
	p := generate(t, m, tr, DefaultConfig(types.ModeBasic))

	var prev *types.PlanItem
	for i := range p.Items {
		it := p.Items[i]
		if it.Track != 1 {
			continue
		}
		if prev != nil && it.DstStart < prev.DstEnd {
			t.Fatalf("primary overlap: %+v then %+v", prev, it)
		}
		prev = &p.Items[i]
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	a := generate(t, threeClipManifest(), helloTranscripts(), DefaultConfig(types.ModeBasic))
	b := generate(t, threeClipManifest(), helloTranscripts(), DefaultConfig(types.ModeBasic))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("plans differ across identical runs:\n%+v\n%+v", a, b)
	}
	if a.ID == "" || a.ID != b.ID {
		t.Fatalf("plan id not stable: %q vs %q", a.ID, b.ID)
	}

	c := generate(t, threeClipManifest(), helloTranscripts(), DefaultConfig(types.ModeEnhanced))
	if c.ID == a.ID {
		t.Fatalf("different config should change the plan id")
	}
}

func TestGenerate_UsageNeverExceedsClipDuration(t *testing.T) {
	p := generate(t, threeClipManifest(), helloTranscripts(), DefaultConfig(types.ModeEnhanced))
	totals := map[string]float64{}
	for _, it := range p.Items {
		totals[it.ClipID] += it.SrcOut - it.SrcIn
	}
	for _, c := range threeClipManifest().Clips {
		if totals[c.ID] > c.Duration {
			t.Fatalf("clip %s consumed %v of %v", c.ID, totals[c.ID], c.Duration)
		}
	}
}

func TestGenerate_BrollExhaustedStillEmitsPlan(t *testing.T) {
	m := types.Manifest{Clips: []types.Clip{{ID: "A", Camera: "cam1", Duration: 10}}}
	tr := map[string][]types.RawSegment{
		"A": {{Start: 0, End: 10, Text: "narration eats the whole clip"}},
	}
	p := generate(t, m, tr, DefaultConfig(types.ModeBasic))

	found := false
	for _, d := range p.Diagnostics {
		if d.Kind == types.DiagBrollExhausted && d.Section == "S01" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected broll_exhausted diagnostic, got %+v", p.Diagnostics)
	}
	if p.TotalDuration != 10 {
		t.Fatalf("plan should still emit, total = %v", p.TotalDuration)
	}
}

func TestGenerate_MalformedTranscriptDegradesToBroll(t *testing.T) {
	m := threeClipManifest()
	tr := helloTranscripts()
	tr["B"] = []types.RawSegment{{Start: 5, End: 2, Text: "backwards"}}

	p := generate(t, m, tr, DefaultConfig(types.ModeBasic))

	var degraded bool
	for _, d := range p.Diagnostics {
		if d.Kind == types.DiagMalformedTranscript && d.ClipID == "B" {
			degraded = true
		}
	}
	if !degraded {
		t.Fatalf("expected malformed_transcript diagnostic, got %+v", p.Diagnostics)
	}
	for _, it := range p.Items {
		if it.Kind == types.KindPrimary && it.ClipID == "B" {
			t.Fatalf("degraded clip must not carry narration: %+v", it)
		}
	}
	var brollFromB bool
	for _, it := range p.Items {
		if it.Kind == types.KindBroll && it.ClipID == "B" {
			brollFromB = true
		}
	}
	if !brollFromB {
		t.Fatalf("degraded clip should still serve as b-roll")
	}
}

func TestGenerate_UnknownClipTranscriptReportsNoCoverage(t *testing.T) {
	m := threeClipManifest()
	tr := helloTranscripts()
	tr["ghost"] = []types.RawSegment{{Start: 0, End: 4, Text: "footage that never made it"}}

	p := generate(t, m, tr, DefaultConfig(types.ModeBasic))
	var found bool
	for _, d := range p.Diagnostics {
		if d.Kind == types.DiagNoCoverage {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected no_coverage diagnostic, got %+v", p.Diagnostics)
	}
}

func TestGenerate_FatalErrors(t *testing.T) {
	eng := New(DefaultConfig(types.ModeBasic), Deps{})

	t.Run("empty manifest", func(t *testing.T) {
		_, err := eng.Generate(context.Background(), types.Manifest{}, helloTranscripts())
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("no transcripts", func(t *testing.T) {
		_, err := eng.Generate(context.Background(), threeClipManifest(), nil)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig(types.ModeBasic)
		cfg.BreakThreshold = -time.Second
		_, err := New(cfg, Deps{}).Generate(context.Background(), threeClipManifest(), helloTranscripts())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestDefaultConfig_Presets(t *testing.T) {
	basic := DefaultConfig(types.ModeBasic)
	enhanced := DefaultConfig(types.ModeEnhanced)

	if err := basic.Validate(); err != nil {
		t.Fatalf("basic preset invalid: %v", err)
	}
	if err := enhanced.Validate(); err != nil {
		t.Fatalf("enhanced preset invalid: %v", err)
	}
	if enhanced.MinShotDuration >= basic.MinShotDuration {
		t.Fatalf("enhanced should cut faster than basic")
	}
	if enhanced.GapTolerance >= basic.GapTolerance {
		t.Fatalf("enhanced should tolerate smaller gaps")
	}
	if !enhanced.DiversityStrict || basic.DiversityStrict {
		t.Fatalf("diversity strictness should differ between modes")
	}
}
