package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"accidentcli/internal/pipeline"
	"accidentcli/internal/validation"
)

func runCmd(a *app) *cobra.Command {
	var skipCharts bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: load, clean, analyze, export and chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.paths.EnsureDirectories(); err != nil {
				return err
			}
			v := validation.NewFileValidator(a.logger)
			for _, dir := range []string{a.paths.OutputDir, a.paths.ChartsDir} {
				if err := v.ValidateOutputDirectory(dir); err != nil {
					return err
				}
			}

			targets := []string{}
			if skipCharts {
				targets = append(targets, pipeline.StageIDExport)
			}
			_, manifest, err := a.pipeline.Execute(cmd.Context(), targets...)
			if err != nil {
				return err
			}

			printOutputs(cmd.OutOrStdout(), manifest)
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest: %s\n", a.paths.ManifestFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipCharts, "skip-charts", false, "stop after the export stage")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the Tableau CSVs, dashboard workbook and summary JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manifest, err := a.pipeline.Execute(cmd.Context(), pipeline.StageIDExport)
			if err != nil {
				return err
			}
			printOutputs(cmd.OutOrStdout(), manifest)
			return nil
		},
	}
}

func chartsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "Render the PNG charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manifest, err := a.pipeline.Execute(cmd.Context(), pipeline.StageIDCharts)
			if err != nil {
				return err
			}
			if manifest.StageStatus(pipeline.StageIDCharts) == pipeline.StageStatusSkipped {
				fmt.Fprintln(cmd.OutOrStdout(), "Charts are disabled in the configuration")
				return nil
			}
			printOutputs(cmd.OutOrStdout(), manifest)
			return nil
		},
	}
}

// printOutputs lists the files a run wrote
func printOutputs(w io.Writer, manifest *pipeline.RunManifest) {
	fmt.Fprintf(w, "Run %s: %s\n", manifest.ID, manifest.Status)
	for _, out := range manifest.Outputs {
		fmt.Fprintf(w, "  [%s] %s\n", out.Kind, out.Path)
	}
}
