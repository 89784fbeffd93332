package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"accidentcli/internal/config"
	"accidentcli/internal/dataprocessing"
	"accidentcli/internal/errors"
	"accidentcli/internal/pipeline"
	"accidentcli/internal/table"
)

// datasetFlag maps the --dataset flag values to state-wise tables
var datasetFlag = map[string]config.DatasetID{
	"accidents":  config.StateAccidents,
	"fatalities": config.StateFatalities,
}

func lookupDatasetFlag(name string) (config.DatasetID, error) {
	id, ok := datasetFlag[strings.ToLower(name)]
	if !ok {
		return "", errors.NewAppValidationError(fmt.Sprintf("unknown dataset %q (want accidents or fatalities)", name))
	}
	return id, nil
}

func statsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print yearly totals for the state-wise tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, _, err := a.pipeline.Execute(cmd.Context(), pipeline.StageIDAnalyze)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]dataprocessing.AccidentStats{
					"accidents":  state.Analysis.AccidentStats,
					"fatalities": state.Analysis.FatalityStats,
				})
			}
			printStats(out, "Accidents", state.Analysis.AccidentStats)
			printStats(out, "Fatalities", state.Analysis.FatalityStats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the statistics as JSON")
	return cmd
}

func printStats(w io.Writer, title string, s dataprocessing.AccidentStats) {
	if !s.OK() {
		reason := s.Err
		if reason == "" {
			reason = "not available"
		}
		fmt.Fprintf(w, "%s: %s\n", title, reason)
		return
	}

	fmt.Fprintf(w, "%s (%d states)\n", title, s.NumStates)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, year := range s.Years {
		fmt.Fprintf(tw, "  %s\t%s\t\n", year, table.FormatNumber(s.TotalByYear[year]))
	}
	tw.Flush()
	fmt.Fprintf(w, "Latest year %s: %s\n", s.LatestYear, table.FormatNumber(s.LatestTotal))
}

func topCmd(a *app) *cobra.Command {
	var (
		dataset string
		year    string
		n       int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank states by a year column",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := lookupDatasetFlag(dataset)
			if err != nil {
				return err
			}
			state, _, err := a.pipeline.Execute(cmd.Context(), pipeline.StageIDAnalyze)
			if err != nil {
				return err
			}

			stats := state.Analysis.AccidentStats
			if id == config.StateFatalities {
				stats = state.Analysis.FatalityStats
			}
			if year == "" {
				year = stats.LatestYear
			}
			if n <= 0 {
				n = a.cfg.Analysis.TopN
			}

			top, ok := dataprocessing.GetTopStates(state.CleanedTable(id), year, n)
			if !ok {
				return errors.NewAppValidationError(fmt.Sprintf("cannot rank %s by year %q", dataset, year))
			}
			return writeTable(cmd.OutOrStdout(), top)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "accidents", "accidents or fatalities")
	cmd.Flags().StringVar(&year, "year", "", "year column to rank by (default latest year)")
	cmd.Flags().IntVarP(&n, "limit", "n", 0, "number of states (default analysis.top_n)")
	return cmd
}

func growthCmd(a *app) *cobra.Command {
	var (
		dataset string
		start   string
		end     string
	)

	cmd := &cobra.Command{
		Use:   "growth",
		Short: "Print the percentage change between two year columns per state",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := lookupDatasetFlag(dataset)
			if err != nil {
				return err
			}
			state, _, err := a.pipeline.Execute(cmd.Context(), pipeline.StageIDAnalyze)
			if err != nil {
				return err
			}

			stats := state.Analysis.AccidentStats
			if id == config.StateFatalities {
				stats = state.Analysis.FatalityStats
			}
			if start == "" {
				start = firstNonEmpty(a.cfg.Analysis.GrowthStart, stats.FirstYear())
			}
			if end == "" {
				end = firstNonEmpty(a.cfg.Analysis.GrowthEnd, stats.LatestYear)
			}

			growth, ok := dataprocessing.CalculateGrowthRate(state.CleanedTable(id), start, end)
			if !ok {
				return errors.NewAppValidationError(fmt.Sprintf("cannot compute growth of %s from %q to %q", dataset, start, end))
			}
			selected, err := growth.Select(config.StateColumn, start, end, config.GrowthRateColumn)
			if err != nil {
				selected = growth
			}
			return writeTable(cmd.OutOrStdout(), selected)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "accidents", "accidents or fatalities")
	cmd.Flags().StringVar(&start, "start", "", "start year column (default first year)")
	cmd.Flags().StringVar(&end, "end", "", "end year column (default latest year)")
	return cmd
}

// writeTable prints a table as aligned columns. Missing cells print empty.
func writeTable(w io.Writer, t *table.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, record := range t.Records() {
		fmt.Fprintln(tw, strings.Join(record, "\t"))
	}
	return tw.Flush()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
