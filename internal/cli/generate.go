package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vpetrenko/cutplan/internal/logging"
	"github.com/vpetrenko/cutplan/internal/pipeline"
	"github.com/vpetrenko/cutplan/internal/types"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "generate <manifest.json>",
		Short:        "Generate an edit plan from a manifest and a transcript directory",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0])
		},
	}

	// Visible flags
	cmd.Flags().String("transcripts", "transcripts", "Directory of per-clip transcript JSON files")
	cmd.Flags().String("mode", string(types.ModeBasic), "Plan mode: basic or enhanced")
	cmd.Flags().String("out", "", "Output path (default edit_plan.json, or edit_plan_enhanced.json)")
	cmd.Flags().String("config", "", "Optional YAML parameter file overriding the mode preset")

	return cmd
}

func runGenerate(cmd *cobra.Command, manifestArg string) error {
	transcriptsDir, _ := cmd.Flags().GetString("transcripts")
	mode, _ := cmd.Flags().GetString("mode")
	outPath, _ := cmd.Flags().GetString("out")
	paramsPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")

	log, err := logging.New(logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	manifestPath, err := filepath.Abs(manifestArg)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		ManifestPath:   manifestPath,
		TranscriptsDir: transcriptsDir,
		OutPath:        outPath,
		ParamsPath:     paramsPath,
		Mode:           types.Mode(mode),
		Log:            log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(context.Background(), cfg)
}
