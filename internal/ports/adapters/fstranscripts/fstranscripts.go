package fstranscripts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vpetrenko/cutplan/internal/types"
)

// Adapter reads one transcript document per clip from a directory. The file
// name (without extension) is the clip id.
type Adapter struct {
	dir string
}

func New(dir string) *Adapter {
	return &Adapter{dir: dir}
}

type transcriptDoc struct {
	Segments []types.RawSegment `json:"segments"`
}

func (a *Adapter) Transcripts(_ context.Context) (map[string][]types.RawSegment, error) {
	paths, err := filepath.Glob(filepath.Join(a.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}

	out := make(map[string][]types.RawSegment, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
		var doc transcriptDoc
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse transcript %s: %w", filepath.Base(p), err)
		}
		for i := range doc.Segments {
			doc.Segments[i].Text = strings.TrimSpace(doc.Segments[i].Text)
		}
		id := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		out[id] = doc.Segments
	}
	return out, nil
}
