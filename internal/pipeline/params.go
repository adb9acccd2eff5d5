package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vpetrenko/cutplan/internal/engine"
)

// Params is the optional YAML parameter file. Every field overrides the mode
// preset only when present; absent fields keep the preset value. All values
// are seconds.
type Params struct {
	MinShotDuration     *float64 `yaml:"min_shot_duration"`
	MaxShotDuration     *float64 `yaml:"max_shot_duration"`
	BreakThreshold      *float64 `yaml:"break_threshold"`
	SectionTargetLength *float64 `yaml:"section_target_length"`
	GapTolerance        *float64 `yaml:"gap_tolerance"`
	DiversityStrict     *bool    `yaml:"diversity_strict"`
	PrerollPad          *float64 `yaml:"preroll_pad"`
	PostrollPad         *float64 `yaml:"postroll_pad"`
	SilenceMergeGap     *float64 `yaml:"silence_merge_gap"`
	MinSegmentDuration  *float64 `yaml:"min_segment_duration"`
}

// LoadParams reads a parameter file. An empty path is fine and yields no
// overrides.
func LoadParams(path string) (Params, error) {
	if path == "" {
		return Params{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read params: %w", err)
	}
	var p Params
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Params{}, fmt.Errorf("parse params: %w", err)
	}
	return p, nil
}

// Apply layers the overrides onto a preset config. Validation happens later
// in the engine, so a bad override fails the same way a bad flag does.
func (p Params) Apply(cfg engine.Config) engine.Config {
	set := func(dst *time.Duration, src *float64) {
		if src != nil {
			*dst = time.Duration(*src * float64(time.Second))
		}
	}
	set(&cfg.MinShotDuration, p.MinShotDuration)
	set(&cfg.MaxShotDuration, p.MaxShotDuration)
	set(&cfg.BreakThreshold, p.BreakThreshold)
	set(&cfg.SectionTargetLength, p.SectionTargetLength)
	set(&cfg.GapTolerance, p.GapTolerance)
	set(&cfg.PrerollPad, p.PrerollPad)
	set(&cfg.PostrollPad, p.PostrollPad)
	set(&cfg.SilenceMergeGap, p.SilenceMergeGap)
	set(&cfg.MinSegmentDuration, p.MinSegmentDuration)
	if p.DiversityStrict != nil {
		cfg.DiversityStrict = *p.DiversityStrict
	}
	return cfg
}
