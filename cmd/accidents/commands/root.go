package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"accidentcli/internal/config"
	"accidentcli/internal/errors"
	"accidentcli/internal/infrastructure"
	"accidentcli/internal/pipeline"
)

// options are the persistent flags shared by every subcommand
type options struct {
	configPath     string
	dataDir        string
	outputDir      string
	chartsDir      string
	accidentsFile  string
	fatalitiesFile string
}

// app is built once per invocation before the subcommand runs
type app struct {
	cfg      *config.Config
	paths    *config.Paths
	tel      *infrastructure.Telemetry
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
}

// Execute runs the accidents command line
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		slog.Default().Error("command failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}
	a := &app{}

	root := &cobra.Command{
		Use:           "accidents",
		Short:         "Road accident statistics: clean, aggregate, export and chart",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default config.yaml or configs/config.yaml)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory holding the input CSV files")
	flags.StringVar(&opts.outputDir, "output-dir", "", "directory for Tableau exports and the run manifest")
	flags.StringVar(&opts.chartsDir, "charts-dir", "", "directory for rendered charts")
	flags.StringVar(&opts.accidentsFile, "accidents", "", "state-wise accidents file (overrides data dir)")
	flags.StringVar(&opts.fatalitiesFile, "fatalities", "", "state-wise fatalities file (overrides data dir)")

	root.AddCommand(
		runCmd(a),
		statsCmd(a),
		topCmd(a),
		growthCmd(a),
		exportCmd(a),
		chartsCmd(a),
		checkCmd(a, opts),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return errors.NewConfigError("failed to load configuration", err)
	}
	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	if opts.outputDir != "" {
		cfg.Paths.OutputDir = opts.outputDir
	}
	if opts.chartsDir != "" {
		cfg.Paths.ChartsDir = opts.chartsDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return errors.NewConfigError("failed to initialize logger", err)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return errors.NewConfigError("failed to resolve paths", err)
	}
	paths.LogPathResolution(logger)

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return errors.NewConfigError("failed to initialize telemetry", err)
	}

	p, err := pipeline.New(cfg, paths, tel, logger)
	if err != nil {
		return err
	}
	for id, path := range opts.overrides() {
		p.SetOverride(id, path)
	}

	a.cfg, a.paths, a.tel, a.logger, a.pipeline = cfg, paths, tel, logger, p

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(infrastructure.EnsureTraceID(ctx))
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.tel != nil {
		if err := a.tel.Shutdown(ctx); err != nil {
			a.logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	return infrastructure.CloseLogFile()
}
