package commands

import (
	"context"
	"io"
	"log/slog"
	"math/rand"

	"github.com/spf13/cobra"

	"cancerml/internal/cli/config"
	"cancerml/pkg/data"
	"cancerml/pkg/loader"
	"cancerml/pkg/pipeline"
	"cancerml/pkg/splitcheck"
)

// Split output file names.
const (
	TrainFile = "cancer_train.csv"
	TestFile  = "cancer_test.csv"
)

type splitOptions struct {
	CleanedData    string
	DataTo         string
	PreprocessorTo string
}

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	var opts splitOptions
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split cleaned data into train and test sets and fit the preprocessor",
		Long: `Split the cleaned data into stratified train and test sets, check the split
for size, leakage and drift, then fit a standard scaler on the train set and
write the scaled data and the fitted preprocessor.`,
		Example: `  cancerml split --cleaned-data data/processed/cancer_clean.csv --train-data-size 0.7 \
    --data-to data/processed --preprocessor-to results/models --seed 123`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return splitStage(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.CleanedData, "cleaned-data", "", "Path to cleaned data")
	cmd.Flags().Float64("train-data-size", config.DefaultTrainSize, "Proportion of the dataset to include in the train split")
	cmd.Flags().StringVar(&opts.DataTo, "data-to", "", "Path to directory where processed data will be written to")
	cmd.Flags().StringVar(&opts.PreprocessorTo, "preprocessor-to", "", "Path to directory where the preprocessor object will be written to")
	for _, f := range []string{"cleaned-data", "data-to", "preprocessor-to"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// splitStage writes the split, validates it, and writes the scaled data and
// preprocessor. The split report is rendered to out even when a check fails.
func splitStage(ctx context.Context, opts splitOptions, out io.Writer) error {
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	return runStage(ctx, "split", func(*ledger) error {
		cleaned, err := data.ReadCSV(opts.CleanedData)
		if err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(cfg.Seed))
		train, test, err := loader.TrainTestSplit(cleaned, cfg.TrainSize, cfg.LabelColumn, rng)
		if err != nil {
			return err
		}
		if err := ensureDirs(opts.DataTo, opts.PreprocessorTo); err != nil {
			return err
		}
		for _, part := range []struct {
			ds   *data.Dataset
			name string
		}{{train, TrainFile}, {test, TestFile}} {
			path, err := data.WriteCSV(part.ds, opts.DataTo, part.name)
			if err != nil {
				return err
			}
			logger.Info("wrote split", slog.String("path", path), slog.Int("rows", part.ds.Len()))
		}

		checks := cfg.SplitCheck()
		checks.Logger = logger
		report, err := splitcheck.Run(train, test, checks)
		renderSplitReport(out, report)
		if err != nil {
			return err
		}

		_, err = pipeline.Preprocess(train, test, opts.DataTo, opts.PreprocessorTo, logger)
		return err
	})
}
