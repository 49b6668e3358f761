// Package cli is the formbatch command tree.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/identity"
	"github.com/joseph-ayodele/formbatch/internal/ocr"
	"github.com/joseph-ayodele/formbatch/internal/pdf"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=...".
var version = "dev"

type options struct {
	configFile   string
	companyDir   string
	stateDir     string
	combinedDir  string
	ignoreFile   string
	orderFile    string
	batchSize    int
	identityPage int
	manifest     bool
	pdftotext    string
	logLevel     string
	logFormat    string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "formbatch",
		Short: "Rename and batch scanned state tax forms",
		Long: `formbatch renames raw STFCS forms by the identity printed on them and
reassembles the state directory into combined PDFs of at most 30 forms,
honoring the order.xlsx and ignore.xlsx lists next to the state directory.`,
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "JSON config file")
	f.StringVar(&opts.companyDir, "company-dir", "", "folder of per-company subfolders holding STFCS*.pdf")
	f.StringVar(&opts.stateDir, "state-dir", "", "state directory of canonically named PDFs")
	f.StringVar(&opts.combinedDir, "combined-dir", "", "output directory for combined PDFs (default: <state-dir>/../combined)")
	f.StringVar(&opts.ignoreFile, "ignore-file", "", "ignore list workbook (default: <state-dir>/../ignore.xlsx)")
	f.StringVar(&opts.orderFile, "order-file", "", "order list workbook (default: <state-dir>/../order.xlsx)")
	f.IntVar(&opts.batchSize, "batch-size", 0, "documents per combined PDF")
	f.IntVar(&opts.identityPage, "identity-page", 0, "zero-based page holding name and zip")
	f.BoolVar(&opts.manifest, "manifest", true, "write a manifest workbook next to the combined PDFs")
	f.StringVar(&opts.pdftotext, "pdftotext", "", "pdftotext binary")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&opts.logFormat, "log-format", "", "json or text")

	root.AddCommand(
		newRenameCmd(opts),
		newCombineCmd(opts),
		newRunCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args. Ctrl-C cancels in-flight text extraction.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig layers env, the optional config file and explicitly set flags,
// then validates for the stage.
func loadConfig(cmd *cobra.Command, opts *options, stage common.Stage) (*common.Config, error) {
	cfg := common.LoadConfig()
	if opts.configFile != "" {
		if err := cfg.LoadFile(opts.configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	setIfChanged := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setIfChanged("company-dir", &cfg.Paths.CompanyDir, opts.companyDir)
	setIfChanged("state-dir", &cfg.Paths.StateDir, opts.stateDir)
	setIfChanged("combined-dir", &cfg.Paths.CombinedDir, opts.combinedDir)
	setIfChanged("ignore-file", &cfg.Paths.IgnoreFile, opts.ignoreFile)
	setIfChanged("order-file", &cfg.Paths.OrderFile, opts.orderFile)
	setIfChanged("pdftotext", &cfg.OCR.Pdftotext, opts.pdftotext)
	setIfChanged("log-level", &cfg.Log.Level, opts.logLevel)
	setIfChanged("log-format", &cfg.Log.Format, opts.logFormat)
	if flags.Changed("batch-size") {
		cfg.Pipeline.BatchSize = opts.batchSize
	}
	if flags.Changed("identity-page") {
		cfg.Pipeline.IdentityPage = opts.identityPage
	}
	if flags.Changed("manifest") {
		cfg.Pipeline.Manifest = opts.manifest
	}

	cfg.Resolve()
	if err := cfg.Validate(stage); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *common.Config) *slog.Logger {
	logger := common.NewLogger(w, cfg.Log)
	slog.SetDefault(logger)
	return logger
}

// services are the concrete document capabilities shared by the stages.
type services struct {
	engine   pdf.Engine
	identity *identity.Extractor
}

func newServices(cfg *common.Config, logger *slog.Logger) services {
	engine := pdf.NewPDFCPU(logger)
	text := ocr.NewExtractor(ocr.Config{Pdftotext: cfg.OCR.Pdftotext, Timeout: cfg.OCR.Timeout}, logger)
	return services{
		engine:   engine,
		identity: identity.NewExtractor(text, engine, logger),
	}
}
