package fsmanifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestManifest_Load(t *testing.T) {
	path := write(t, `{
		"b": {"duration": 12.5, "resolution": "1920x1080", "codec": "h264", "camera_tag": "cam2", "acquisition_order": 2},
		"a": {"duration": 10, "camera_tag": "cam1", "absolute_timestamp": 1000.5}
	}`)

	m, err := New(path).Manifest(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(m.Clips))
	}
	// Stable id order regardless of document order.
	if m.Clips[0].ID != "a" || m.Clips[1].ID != "b" {
		t.Fatalf("unexpected order: %s, %s", m.Clips[0].ID, m.Clips[1].ID)
	}
	a := m.Clips[0]
	if !a.Synced || a.AbsStart != 1000.5 {
		t.Fatalf("expected synced clip a: %+v", a)
	}
	b := m.Clips[1]
	if b.Synced || b.AcqOrder != 2 || b.Codec != "h264" {
		t.Fatalf("unexpected clip b: %+v", b)
	}
}

func TestManifest_RejectsNonPositiveDuration(t *testing.T) {
	path := write(t, `{"a": {"duration": 0}}`)
	if _, err := New(path).Manifest(context.Background()); err == nil {
		t.Fatalf("expected error for zero duration")
	}
}

func TestManifest_MissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope.json")).Manifest(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
