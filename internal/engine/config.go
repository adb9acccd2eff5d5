package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/vpetrenko/cutplan/internal/types"
)

// ErrInvalidConfig marks configuration the engine refuses to run with. It is
// checked before any input is touched.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config enumerates every tunable of a generation pass. The basic and
// enhanced modes are nothing but presets of this struct; the algorithms do
// not branch on mode.
type Config struct {
	Mode types.Mode

	// B-roll slot sizing and gap handling.
	MinShotDuration time.Duration
	MaxShotDuration time.Duration
	GapTolerance    time.Duration
	DiversityStrict bool

	// Section boundaries.
	BreakThreshold      time.Duration
	SectionTargetLength time.Duration

	// Primary cut trimming.
	PrerollPad  time.Duration
	PostrollPad time.Duration

	// Transcript normalization.
	SilenceMergeGap    time.Duration
	MinSegmentDuration time.Duration
}

// DefaultConfig returns the preset for a mode. Enhanced cuts faster (shorter
// shots), enforces diversity harder, and tolerates smaller gaps; everything
// else matches basic.
func DefaultConfig(mode types.Mode) Config {
	cfg := Config{
		Mode:                types.ModeBasic,
		MinShotDuration:     2 * time.Second,
		MaxShotDuration:     6 * time.Second,
		GapTolerance:        750 * time.Millisecond,
		BreakThreshold:      4 * time.Second,
		SectionTargetLength: 60 * time.Second,
		SilenceMergeGap:     300 * time.Millisecond,
		MinSegmentDuration:  500 * time.Millisecond,
	}
	if mode == types.ModeEnhanced {
		cfg.Mode = types.ModeEnhanced
		cfg.MinShotDuration = time.Second
		cfg.MaxShotDuration = 3500 * time.Millisecond
		cfg.GapTolerance = 250 * time.Millisecond
		cfg.DiversityStrict = true
	}
	return cfg
}

func (c Config) Validate() error {
	if c.Mode != types.ModeBasic && c.Mode != types.ModeEnhanced {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.MinShotDuration <= 0 {
		return fmt.Errorf("%w: min shot duration must be > 0", ErrInvalidConfig)
	}
	if c.MaxShotDuration < c.MinShotDuration {
		return fmt.Errorf("%w: max shot duration must be >= min shot duration", ErrInvalidConfig)
	}
	if c.BreakThreshold <= 0 {
		return fmt.Errorf("%w: break threshold must be > 0", ErrInvalidConfig)
	}
	if c.SectionTargetLength <= 0 {
		return fmt.Errorf("%w: section target length must be > 0", ErrInvalidConfig)
	}
	if c.GapTolerance < 0 {
		return fmt.Errorf("%w: gap tolerance must be >= 0", ErrInvalidConfig)
	}
	if c.PrerollPad < 0 || c.PostrollPad < 0 {
		return fmt.Errorf("%w: pads must be >= 0", ErrInvalidConfig)
	}
	if c.SilenceMergeGap < 0 {
		return fmt.Errorf("%w: silence merge gap must be >= 0", ErrInvalidConfig)
	}
	if c.MinSegmentDuration < 0 {
		return fmt.Errorf("%w: min segment duration must be >= 0", ErrInvalidConfig)
	}
	return nil
}
