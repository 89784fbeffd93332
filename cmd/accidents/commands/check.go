package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"accidentcli/internal/config"
	"accidentcli/internal/validation"
)

func checkCmd(a *app, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the input datasets are present and readable",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := validation.NewFileValidator(a.logger)
			statuses, err := v.ValidateDatasets(a.paths, opts.overrides())

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATASET\tREQUIRED\tSTATUS\tPATH")
			for _, s := range statuses {
				status := fmt.Sprintf("ok (%d bytes)", s.Size)
				if !s.OK() {
					status = "unusable: " + s.Err.Error()
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", s.Dataset.ID, s.Dataset.Required, status, s.Path)
			}
			if flushErr := tw.Flush(); flushErr != nil {
				return flushErr
			}
			return err
		},
	}
}

// overrides returns the dataset locations set by flags
func (o *options) overrides() map[config.DatasetID]string {
	m := make(map[config.DatasetID]string)
	if o.accidentsFile != "" {
		m[config.StateAccidents] = o.accidentsFile
	}
	if o.fatalitiesFile != "" {
		m[config.StateFatalities] = o.fatalitiesFile
	}
	return m
}
