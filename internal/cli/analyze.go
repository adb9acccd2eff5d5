package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vpetrenko/cutplan/internal/logging"
	"github.com/vpetrenko/cutplan/internal/pipeline"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "analyze <manifest.json> <edit_plan.json>",
		Short:        "Recompute a usage report from an existing edit plan",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], args[1])
		},
	}

	cmd.Flags().String("out", "", "Write the usage report here instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, manifestPath, planPath string) error {
	outPath, _ := cmd.Flags().GetString("out")
	logLevel, _ := cmd.Flags().GetString("log-level")

	log, err := logging.New(logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg := pipeline.AnalyzeConfig{
		ManifestPath: manifestPath,
		PlanPath:     planPath,
		OutPath:      outPath,
		Log:          log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Analyze(context.Background(), cfg)
}
