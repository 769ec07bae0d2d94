package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cancerml/internal/cli/config"
)

// NewAllCommand creates the all command, which runs clean, split and fit in turn.
func NewAllCommand() *cobra.Command {
	var (
		clean     cleanOptions
		dataTo    string
		resultsTo string
		dropFile  string
	)
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run clean, split and fit in one go",
		Long: `Run the clean, split and fit stages one after the other. Cleaned and split
data go to --data-to; the preprocessor, pipeline, score table and plot go to
--results-to. Downloading is never implied.`,
		Example: `  cancerml all --raw-data-file data/raw/wdbc.data --name-file data/raw/wdbc.names \
    --data-config-file data/data_config.csv --data-to data/processed --results-to results`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			clean.WriteTo = dataTo
			cleaned, err := cleanStage(ctx, clean, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("clean: %w", err)
			}

			split := splitOptions{CleanedData: cleaned, DataTo: dataTo, PreprocessorTo: resultsTo}
			if err := splitStage(ctx, split, out); err != nil {
				return fmt.Errorf("split: %w", err)
			}

			fit := fitOptions{
				TrainingData:  filepath.Join(dataTo, TrainFile),
				ColumnsToDrop: dropFile,
				PipelineTo:    resultsTo,
				PlotTo:        resultsTo,
			}
			if err := fitStage(ctx, fit, out); err != nil {
				return fmt.Errorf("fit: %w", err)
			}
			_, _ = fmt.Fprintf(out, "results written to %s\n", resultsTo)
			return nil
		},
	}
	cmd.Flags().StringVar(&clean.RawDataFile, "raw-data-file", "", "Path to raw data file")
	cmd.Flags().StringVar(&clean.NameFile, "name-file", "", "Path to names file")
	cmd.Flags().StringVar(&clean.DataConfigFile, "data-config-file", "", "Path to data configuration file")
	cmd.Flags().StringVar(&clean.Expectations, "expectations", "", "Optional: path to an expectation suite (YAML)")
	cmd.Flags().StringVar(&clean.FileName, "file-name", DefaultCleanFile, "The name of the cleaned data file")
	cmd.Flags().Float64("train-data-size", config.DefaultTrainSize, "Proportion of the dataset to include in the train split")
	cmd.Flags().StringVar(&dropFile, "columns-to-drop", "", "Optional: CSV file listing columns to drop under feats_to_drop")
	cmd.Flags().StringVar(&dataTo, "data-to", "", "Path to directory for cleaned and split data")
	cmd.Flags().StringVar(&resultsTo, "results-to", "", "Path to directory for the preprocessor, pipeline and figures")
	for _, f := range []string{"raw-data-file", "name-file", "data-config-file", "data-to", "results-to"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
