//go:build integration

package itest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestE2E_GenerateThenAnalyze(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	tmp := t.TempDir()
	manifest := filepath.Join(tmp, "manifest.json")
	transcripts := filepath.Join(tmp, "transcripts")
	planPath := filepath.Join(tmp, "edit_plan.json")
	usagePath := filepath.Join(tmp, "usage.json")

	writeFixture(t, manifest, `{
		"interview": {"duration": 90, "camera_tag": "cam1", "acquisition_order": 1},
		"wide":      {"duration": 60, "camera_tag": "cam2", "acquisition_order": 2},
		"detail":    {"duration": 45, "camera_tag": "cam3", "acquisition_order": 3}
	}`)
	if err := os.MkdirAll(transcripts, 0o755); err != nil {
		t.Fatalf("mkdir transcripts: %v", err)
	}
	writeFixture(t, filepath.Join(transcripts, "interview.json"), `{"segments": [
		{"start": 2.0, "end": 20.0, "text": "welcome to the shop tour"},
		{"start": 21.0, "end": 40.0, "text": "first stop is the workbench"},
		{"start": 65.0, "end": 85.0, "text": "thanks for watching the tour"}
	]}`)

	res := runCLI(t, repoRoot,
		[]string{"generate", manifest, "--transcripts", transcripts, "--out", planPath},
		nil,
	)
	if res.exitCode != 0 {
		t.Fatalf("generate failed (%d):\n%s", res.exitCode, res.output)
	}

	b, err := os.ReadFile(planPath)
	if err != nil {
		t.Fatalf("missing plan: %v", err)
	}
	var doc struct {
		Sections []any `json:"sections"`
		Items    []any `json:"items"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	if len(doc.Sections) < 2 || len(doc.Items) == 0 {
		t.Fatalf("unexpected plan shape: %d sections, %d items", len(doc.Sections), len(doc.Items))
	}

	res = runCLI(t, repoRoot,
		[]string{"analyze", manifest, planPath, "--out", usagePath},
		nil,
	)
	if res.exitCode != 0 {
		t.Fatalf("analyze failed (%d):\n%s", res.exitCode, res.output)
	}
	if _, err := os.Stat(usagePath); err != nil {
		t.Fatalf("missing usage report: %v", err)
	}
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
