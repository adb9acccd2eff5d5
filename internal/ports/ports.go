package ports

import (
	"context"

	"github.com/vpetrenko/cutplan/internal/types"
)

// ManifestProvider supplies the read-only clip metadata the engine plans
// against. Extraction of that metadata from media files happens upstream.
type ManifestProvider interface {
	Manifest(ctx context.Context) (types.Manifest, error)
}

// TranscriptProvider supplies raw timed transcripts keyed by clip id.
// Transcription itself happens upstream; the engine only normalizes.
type TranscriptProvider interface {
	Transcripts(ctx context.Context) (map[string][]types.RawSegment, error)
}
