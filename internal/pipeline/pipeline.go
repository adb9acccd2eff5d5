// Package pipeline wires the filesystem adapters to the engine and writes
// the output documents. All algorithmic work lives below it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vpetrenko/cutplan/internal/engine"
	"github.com/vpetrenko/cutplan/internal/plan"
	"github.com/vpetrenko/cutplan/internal/ports"
	"github.com/vpetrenko/cutplan/internal/ports/adapters/fsmanifest"
	"github.com/vpetrenko/cutplan/internal/ports/adapters/fstranscripts"
	"github.com/vpetrenko/cutplan/internal/types"
)

type Config struct {
	ManifestPath   string
	TranscriptsDir string
	OutPath        string
	ParamsPath     string
	Mode           types.Mode

	Log *zap.SugaredLogger
}

func (c Config) Validate() error {
	if c.ManifestPath == "" {
		return errors.New("manifest path is empty")
	}
	if _, err := os.Stat(c.ManifestPath); err != nil {
		return fmt.Errorf("stat manifest: %w", err)
	}
	if c.TranscriptsDir == "" {
		return errors.New("transcripts dir is empty")
	}
	if info, err := os.Stat(c.TranscriptsDir); err != nil {
		return fmt.Errorf("stat transcripts dir: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("transcripts path %s is not a directory", c.TranscriptsDir)
	}
	if c.Mode != types.ModeBasic && c.Mode != types.ModeEnhanced {
		return fmt.Errorf("mode must be %q or %q", types.ModeBasic, types.ModeEnhanced)
	}
	return nil
}

// Run generates an edit plan from the manifest and transcript files and
// writes the plan document.
func Run(ctx context.Context, cfg Config) error {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	params, err := LoadParams(cfg.ParamsPath)
	if err != nil {
		return err
	}
	ecfg := params.Apply(engine.DefaultConfig(cfg.Mode))

	// adapters
	var (
		manifests   ports.ManifestProvider   = fsmanifest.New(cfg.ManifestPath)
		transcripts ports.TranscriptProvider = fstranscripts.New(cfg.TranscriptsDir)
	)

	m, err := manifests.Manifest(ctx)
	if err != nil {
		return err
	}
	tr, err := transcripts.Transcripts(ctx)
	if err != nil {
		return err
	}
	log.Infow("inputs loaded", "clips", len(m.Clips), "transcripts", len(tr))

	eng := engine.New(ecfg, engine.Deps{Log: log})
	p, err := eng.Generate(ctx, m, tr)
	if err != nil {
		return err
	}
	for _, d := range p.Diagnostics {
		log.Warnw("plan diagnostic",
			"kind", d.Kind,
			"clip", d.ClipID,
			"section", d.Section,
			"message", d.Message,
		)
	}

	b, err := plan.Encode(p)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	out := cfg.OutPath
	if out == "" {
		out = defaultOutPath(cfg.Mode)
	}
	if err := writeFile(out, b); err != nil {
		return err
	}
	log.Infow("edit plan written", "path", out, "items", len(p.Items), "duration", p.TotalDuration)
	return nil
}

type AnalyzeConfig struct {
	ManifestPath string
	PlanPath     string
	OutPath      string

	Log *zap.SugaredLogger
}

func (c AnalyzeConfig) Validate() error {
	if c.ManifestPath == "" {
		return errors.New("manifest path is empty")
	}
	if c.PlanPath == "" {
		return errors.New("plan path is empty")
	}
	return nil
}

// Analyze recomputes a usage report from an existing plan document. The plan
// is the source of truth; generation does not rerun.
func Analyze(ctx context.Context, cfg AnalyzeConfig) error {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	m, err := fsmanifest.New(cfg.ManifestPath).Manifest(ctx)
	if err != nil {
		return err
	}
	pb, err := os.ReadFile(cfg.PlanPath)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}
	p, err := plan.Decode(pb)
	if err != nil {
		return err
	}

	rep := plan.AnalyzeUsage(m, p)
	b, err := plan.EncodeUsage(rep)
	if err != nil {
		return fmt.Errorf("encode usage report: %w", err)
	}
	if cfg.OutPath == "" {
		fmt.Println(string(b))
	} else if err := writeFile(cfg.OutPath, b); err != nil {
		return err
	}
	log.Infow("usage analyzed",
		"clips_used", len(rep.Used),
		"clips_unused", len(rep.UnusedClips),
		"coverage", rep.CoverageRatio,
	)
	return nil
}

func defaultOutPath(mode types.Mode) string {
	if mode == types.ModeEnhanced {
		return "edit_plan_enhanced.json"
	}
	return "edit_plan.json"
}

func writeFile(path string, b []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
