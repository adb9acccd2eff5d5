// Package plan owns the edit-plan document format. Field names and
// float-second time units are the contract the timeline builder consumes;
// changing them breaks downstream tooling.
package plan

import (
	"encoding/json"
	"fmt"

	"github.com/vpetrenko/cutplan/internal/types"
)

type document struct {
	Mode          string           `json:"mode"`
	GeneratedID   string           `json:"generated_id"`
	Sections      []sectionDoc     `json:"sections"`
	Items         []itemDoc        `json:"items"`
	TotalDuration float64          `json:"total_duration"`
	Diagnostics   []diagnosticDoc  `json:"diagnostics,omitempty"`
}

type sectionDoc struct {
	Label              string  `json:"label"`
	Role               string  `json:"role"`
	Start              float64 `json:"start"`
	End                float64 `json:"end"`
	ContinuousCoverage bool    `json:"continuous_coverage"`
}

type itemDoc struct {
	Kind       string  `json:"kind"`
	ClipID     string  `json:"clip_id"`
	SrcIn      float64 `json:"src_in"`
	SrcOut     float64 `json:"src_out"`
	DstStart   float64 `json:"dst_start"`
	DstEnd     float64 `json:"dst_end"`
	Track      int     `json:"track"`
	SectionRef string  `json:"section_ref,omitempty"`
}

type diagnosticDoc struct {
	Kind       string  `json:"kind"`
	ClipID     string  `json:"clip_id,omitempty"`
	SectionRef string  `json:"section_ref,omitempty"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Message    string  `json:"message"`
}

// Encode renders the canonical edit-plan document. Pure function of the
// in-memory plan; identical plans encode byte-identically.
func Encode(p types.EditPlan) ([]byte, error) {
	doc := document{
		Mode:          string(p.Mode),
		GeneratedID:   p.ID,
		Sections:      make([]sectionDoc, 0, len(p.Sections)),
		Items:         make([]itemDoc, 0, len(p.Items)),
		TotalDuration: p.TotalDuration,
	}
	for _, s := range p.Sections {
		doc.Sections = append(doc.Sections, sectionDoc{
			Label:              s.Label,
			Role:               s.Role,
			Start:              s.Start,
			End:                s.End,
			ContinuousCoverage: s.ContinuousCoverage,
		})
	}
	for _, it := range p.Items {
		doc.Items = append(doc.Items, itemDoc{
			Kind:       string(it.Kind),
			ClipID:     it.ClipID,
			SrcIn:      it.SrcIn,
			SrcOut:     it.SrcOut,
			DstStart:   it.DstStart,
			DstEnd:     it.DstEnd,
			Track:      it.Track,
			SectionRef: it.Section,
		})
	}
	for _, d := range p.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, diagnosticDoc{
			Kind:       string(d.Kind),
			ClipID:     d.ClipID,
			SectionRef: d.Section,
			Start:      d.Start,
			End:        d.End,
			Message:    d.Message,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses an edit-plan document back into memory.
func Decode(b []byte) (types.EditPlan, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return types.EditPlan{}, fmt.Errorf("decode edit plan: %w", err)
	}
	p := types.EditPlan{
		Mode:          types.Mode(doc.Mode),
		ID:            doc.GeneratedID,
		TotalDuration: doc.TotalDuration,
	}
	for _, s := range doc.Sections {
		p.Sections = append(p.Sections, types.Section{
			Label:              s.Label,
			Role:               s.Role,
			Start:              s.Start,
			End:                s.End,
			ContinuousCoverage: s.ContinuousCoverage,
		})
	}
	for _, it := range doc.Items {
		p.Items = append(p.Items, types.PlanItem{
			Kind:     types.ItemKind(it.Kind),
			ClipID:   it.ClipID,
			SrcIn:    it.SrcIn,
			SrcOut:   it.SrcOut,
			DstStart: it.DstStart,
			DstEnd:   it.DstEnd,
			Track:    it.Track,
			Section:  it.SectionRef,
		})
	}
	for _, d := range doc.Diagnostics {
		p.Diagnostics = append(p.Diagnostics, types.Diagnostic{
			Kind:    types.DiagKind(d.Kind),
			ClipID:  d.ClipID,
			Section: d.SectionRef,
			Start:   d.Start,
			End:     d.End,
			Message: d.Message,
		})
	}
	return p, nil
}
