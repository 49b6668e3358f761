package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
	"github.com/joseph-ayodele/formbatch/internal/pipeline"
)

func newRenameCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rename",
		Short: "Rename raw STFCS forms into the state directory",
		Long: `Reads the name and zip code from page 2 of every STFCS*.pdf in each
company subfolder, drops the first two pages and writes the rest to the
state directory as Last_First_NNNNNN.pdf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, common.StageRename)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg)
			svc := newServices(cfg, logger)

			report, err := newRenamer(cfg, svc).Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("rename failed: %w", err)
			}
			printRename(cmd, report)
			return nil
		},
	}
}

func newCombineCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "combine",
		Short: "Merge the state directory into combined PDFs",
		Long: `Reconciles the state directory against order.xlsx and ignore.xlsx,
merges prioritized documents first and the rest by sequence number, and
writes combined_<timestamp>.pdf files of at most --batch-size documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, common.StageCombine)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg)
			svc := newServices(cfg, logger)

			report, err := newCombiner(cfg, svc).Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("combine failed: %w", err)
			}
			printCombine(cmd, report)
			return nil
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Rename then combine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, common.StageAll)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg)
			svc := newServices(cfg, logger)

			p := pipeline.NewProcessor(logger, newRenamer(cfg, svc), newCombiner(cfg, svc))
			renamed, combined, err := p.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}
			printRename(cmd, renamed)
			printCombine(cmd, combined)
			return nil
		},
	}
}

func newRenamer(cfg *common.Config, svc services) *pipeline.Renamer {
	return pipeline.NewRenamer(pipeline.RenamerConfig{
		CompanyDir:   cfg.Paths.CompanyDir,
		StateDir:     cfg.Paths.StateDir,
		IdentityPage: cfg.Pipeline.IdentityPage,
	}, svc.engine, svc.identity, nil)
}

func newCombiner(cfg *common.Config, svc services) *pipeline.Combiner {
	return pipeline.NewCombiner(pipeline.CombinerConfig{
		StateDir:     cfg.Paths.StateDir,
		CombinedDir:  cfg.Paths.CombinedDir,
		IgnoreFile:   cfg.Paths.IgnoreFile,
		OrderFile:    cfg.Paths.OrderFile,
		BatchSize:    cfg.Pipeline.BatchSize,
		IdentityPage: cfg.Pipeline.IdentityPage,
		Manifest:     cfg.Pipeline.Manifest,
	}, svc.engine, svc.identity, nil)
}

func printRename(cmd *cobra.Command, r pipeline.RenameReport) {
	cmd.Printf("Renamed %d of %d forms in %d folders.\n", len(r.Renamed), r.Forms, r.Folders)
	printSkips(cmd, r.Skips)
}

func printCombine(cmd *cobra.Command, r pipeline.CombineReport) {
	cmd.Printf("Combined %d documents into %d files (%d prioritized, %d residual).\n",
		r.Stats.Merged, r.Stats.Artifacts, r.Stats.Prioritized, r.Stats.Residual)
	for _, a := range r.Artifacts {
		cmd.Printf("  %s  %s  %d\n", a.Path, a.Kind, len(a.Names))
	}
	if r.ManifestPath != "" {
		cmd.Printf("Manifest: %s\n", r.ManifestPath)
	}
	printSkips(cmd, r.Skips)
}

func printSkips(cmd *cobra.Command, skips []entity.Skip) {
	if len(skips) == 0 {
		return
	}
	counts := map[constants.SkipReason]int{}
	for _, s := range skips {
		counts[s.Reason]++
	}
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	cmd.Println("Skipped:")
	for _, r := range reasons {
		cmd.Printf("  %-30s %d\n", r, counts[constants.SkipReason(r)])
	}
}
