package fsmanifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/vpetrenko/cutplan/internal/types"
)

// Adapter reads a manifest document from disk: a JSON object mapping clip
// id to metadata.
type Adapter struct {
	path string
}

func New(path string) *Adapter {
	return &Adapter{path: path}
}

type clipDoc struct {
	Duration   float64  `json:"duration"`
	Resolution string   `json:"resolution"`
	Codec      string   `json:"codec"`
	Camera     string   `json:"camera_tag"`
	AcqOrder   *int     `json:"acquisition_order"`
	AbsStart   *float64 `json:"absolute_timestamp"`
}

func (a *Adapter) Manifest(_ context.Context) (types.Manifest, error) {
	b, err := os.ReadFile(a.path)
	if err != nil {
		return types.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var raw map[string]clipDoc
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}

	m := types.Manifest{Clips: make([]types.Clip, 0, len(raw))}
	for id, doc := range raw {
		if doc.Duration <= 0 {
			return types.Manifest{}, fmt.Errorf("manifest clip %s: duration must be > 0", id)
		}
		clip := types.Clip{
			ID:         id,
			Camera:     doc.Camera,
			Duration:   doc.Duration,
			Resolution: doc.Resolution,
			Codec:      doc.Codec,
		}
		if doc.AcqOrder != nil {
			clip.AcqOrder = *doc.AcqOrder
		}
		if doc.AbsStart != nil {
			clip.AbsStart = *doc.AbsStart
			clip.Synced = true
		}
		m.Clips = append(m.Clips, clip)
	}
	sort.Slice(m.Clips, func(i, j int) bool { return m.Clips[i].ID < m.Clips[j].ID })
	return m, nil
}
