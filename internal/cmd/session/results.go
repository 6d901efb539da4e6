package session

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/rebuttal/internal/report"
)

// exportFs is where results are exported; tests swap in a memory filesystem.
var exportFs afero.Fs = afero.NewOsFs()

var resultsCmd = &cobra.Command{
	Use:   "results <assignment-id>",
	Short: "Show the final grade of a completed assignment",
	Long: `Print the final grade of a completed assignment.

With --export the report is written to a file instead. The format defaults
to the file extension (.json for JSON, markdown otherwise).

Examples:
  rebuttal results asg-42
  rebuttal results asg-42 --format json
  rebuttal results asg-42 --export grades/asg-42.md`,
	Args: cobra.ExactArgs(1),
	RunE: runResults,
}

var (
	resultsExport string
	resultsFormat string
)

func init() {
	resultsCmd.Flags().StringVarP(&resultsExport, "export", "o", "", "Write the report to this file")
	resultsCmd.Flags().StringVarP(&resultsFormat, "format", "f", "", "Report format: text, md or json")
}

func runResults(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	score, err := e.client.GetScore(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	if resultsExport == "" {
		format, err := report.ParseFormat(resultsFormat)
		if err != nil {
			return err
		}
		return report.Render(cmd.OutOrStdout(), score, format)
	}

	format := report.FormatForPath(resultsExport)
	if resultsFormat != "" {
		if format, err = report.ParseFormat(resultsFormat); err != nil {
			return err
		}
	}
	if err := report.Export(exportFs, resultsExport, score, format); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Results exported to %s\n", resultsExport)
	return nil
}
