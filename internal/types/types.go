package types

import "sort"

// Mode selects the parameter preset used for plan generation.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeEnhanced Mode = "enhanced"
)

// Clip is immutable source-footage metadata from the manifest.
type Clip struct {
	ID         string
	Camera     string
	Duration   float64
	Resolution string
	Codec      string

	// AcqOrder orders clips on the global timeline when absolute timestamps
	// are absent. Synced is true when AbsStart was present in the manifest.
	AcqOrder int
	AbsStart float64
	Synced   bool
}

type Manifest struct {
	Clips []Clip
}

func (m Manifest) Clip(id string) (Clip, bool) {
	for _, c := range m.Clips {
		if c.ID == id {
			return c, true
		}
	}
	return Clip{}, false
}

func (m Manifest) TotalDuration() float64 {
	var total float64
	for _, c := range m.Clips {
		total += c.Duration
	}
	return total
}

// RawSegment is a transcript fragment as emitted by the transcript provider,
// before normalization. Offsets are seconds within the clip.
type RawSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Segment is a canonical transcript segment: time-ordered and non-overlapping
// within its clip once it leaves the segmenter.
type Segment struct {
	ClipID  string
	Start   float64
	End     float64
	Text    string
	Speaker string
}

func (s Segment) Duration() float64 { return s.End - s.Start }

// Section is a contiguous narrative unit of the plan. Start/End are on the
// plan timeline, not the source timeline.
type Section struct {
	Label              string
	Role               string
	Start              float64
	End                float64
	ContinuousCoverage bool
	Segments           []Segment
}

type ItemKind string

const (
	KindPrimary ItemKind = "primary"
	KindBroll   ItemKind = "broll"
)

// PlanItem places one source range at one destination range on a track.
// Ranges are half-open [in, out).
type PlanItem struct {
	Kind     ItemKind
	ClipID   string
	SrcIn    float64
	SrcOut   float64
	DstStart float64
	DstEnd   float64
	Track    int
	Section  string
}

type DiagKind string

const (
	DiagMalformedTranscript DiagKind = "malformed_transcript"
	DiagNoCoverage          DiagKind = "no_coverage"
	DiagBrollExhausted      DiagKind = "broll_exhausted"
)

// Diagnostic is a non-fatal condition detected during generation. The engine
// never drops one silently; all are embedded in the emitted plan.
type Diagnostic struct {
	Kind    DiagKind
	ClipID  string
	Section string
	Start   float64
	End     float64
	Message string
}

type EditPlan struct {
	Mode          Mode
	ID            string
	Sections      []Section
	Items         []PlanItem
	TotalDuration float64
	Diagnostics   []Diagnostic
}

// Span is a half-open interval [Start, End) in seconds.
type Span struct {
	Start float64
	End   float64
}

func (s Span) Duration() float64 { return s.End - s.Start }

type UsageReport struct {
	Used          map[string][]Span
	UnusedClips   []string
	CoverageRatio float64
}

// SortClips orders clips for the global narration timeline: acquisition
// order first, then absolute timestamp, then identifier. The order is total,
// so plan generation is reproducible for any input.
func SortClips(clips []Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		a, b := clips[i], clips[j]
		if a.AcqOrder != b.AcqOrder {
			return a.AcqOrder < b.AcqOrder
		}
		if a.Synced && b.Synced && a.AbsStart != b.AbsStart {
			return a.AbsStart < b.AbsStart
		}
		return a.ID < b.ID
	})
}
