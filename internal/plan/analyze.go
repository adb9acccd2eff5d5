package plan

import (
	"encoding/json"

	"github.com/vpetrenko/cutplan/internal/domain/usage"
	"github.com/vpetrenko/cutplan/internal/types"
)

// AnalyzeUsage recomputes a usage report from a finished plan without
// re-running generation. The plan's items are the source of truth for what
// was consumed.
func AnalyzeUsage(m types.Manifest, p types.EditPlan) types.UsageReport {
	tr := usage.NewTracker()
	for _, it := range p.Items {
		tr.Record(it.ClipID, types.Span{Start: it.SrcIn, End: it.SrcOut})
	}
	return tr.Report(m)
}

type usageDoc struct {
	Used          map[string][][2]float64 `json:"used"`
	UnusedClips   []string                `json:"unused_clips"`
	CoverageRatio float64                 `json:"coverage_ratio"`
}

// EncodeUsage renders the usage-report document: per-clip [start, end) pairs,
// unused clip ids, and the aggregate coverage ratio.
func EncodeUsage(rep types.UsageReport) ([]byte, error) {
	doc := usageDoc{
		Used:          make(map[string][][2]float64, len(rep.Used)),
		UnusedClips:   rep.UnusedClips,
		CoverageRatio: rep.CoverageRatio,
	}
	if doc.UnusedClips == nil {
		doc.UnusedClips = []string{}
	}
	for id, spans := range rep.Used {
		pairs := make([][2]float64, 0, len(spans))
		for _, sp := range spans {
			pairs = append(pairs, [2]float64{sp.Start, sp.End})
		}
		doc.Used[id] = pairs
	}
	return json.MarshalIndent(doc, "", "  ")
}
