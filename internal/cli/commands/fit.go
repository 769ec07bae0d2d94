package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/spf13/cobra"

	"cancerml/internal/cli/config"
	"cancerml/pkg/data"
	"cancerml/pkg/pipeline"
	"cancerml/pkg/tune"
)

type fitOptions struct {
	TrainingData  string
	Preprocessor  string
	ColumnsToDrop string
	PipelineTo    string
	PlotTo        string
}

// NewFitCommand creates the fit command.
func NewFitCommand() *cobra.Command {
	var opts fitOptions
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Tune and fit the breast cancer classifier",
		Long: `Choose the number of neighbours of the KNN classifier by stratified
cross-validation scored with the F-beta measure, refit the pipeline on the
whole training set and write it together with the score table and plot.`,
		Example: `  cancerml fit --training-data data/processed/cancer_train.csv \
    --preprocessor results/models/cancer_preprocessor.json \
    --pipeline-to results/models --plot-to results/figures`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fitStage(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.TrainingData, "training-data", "", "Path to training data")
	cmd.Flags().StringVar(&opts.Preprocessor, "preprocessor", "", "Optional: path to the fitted preprocessor")
	cmd.Flags().StringVar(&opts.ColumnsToDrop, "columns-to-drop", "", "Optional: CSV file listing columns to drop under feats_to_drop")
	cmd.Flags().StringVar(&opts.PipelineTo, "pipeline-to", "", "Path to directory where the pipeline object will be written to")
	cmd.Flags().StringVar(&opts.PlotTo, "plot-to", "", "Path to directory where the plot will be written to")
	for _, f := range []string{"training-data", "pipeline-to", "plot-to"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func fitStage(ctx context.Context, opts fitOptions, out io.Writer) error {
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	return runStage(ctx, "fit", func(l *ledger) error {
		train, err := data.ReadCSV(opts.TrainingData)
		if err != nil {
			return err
		}
		if opts.ColumnsToDrop != "" {
			drop, err := tune.DropColumnsFrom(opts.ColumnsToDrop)
			if err != nil {
				return err
			}
			if train, err = train.Drop(drop...); err != nil {
				return err
			}
			logger.Info("dropped columns", slog.Any("columns", drop))
		}
		if opts.Preprocessor != "" {
			if err := checkPreprocessor(opts.Preprocessor, train); err != nil {
				return err
			}
		}

		res, err := tune.GridSearch(ctx, train, cfg.GridSearch(), rand.New(rand.NewSource(cfg.Seed)), logger)
		if err != nil {
			return err
		}
		renderScores(out, res.Scores, res.Best.K)
		if err := l.recordScores(res.Scores, res.Best.K); err != nil {
			return err
		}

		if err := ensureDirs(opts.PipelineTo, opts.PlotTo); err != nil {
			return err
		}
		path, err := res.Pipeline.Save(opts.PipelineTo, pipeline.PipelineFile)
		if err != nil {
			return err
		}
		logger.Info("wrote pipeline", slog.String("path", path), slog.Int("k", res.Best.K))

		if path, err = tune.WriteScores(res.Scores, opts.PlotTo, tune.ScoresFile); err != nil {
			return err
		}
		logger.Info("wrote scores", slog.String("path", path))

		if path, err = tune.PlotScores(res.Scores, cfg.Tune.Beta, opts.PlotTo, tune.PlotFile); err != nil {
			return err
		}
		logger.Info("wrote plot", slog.String("path", path))
		return nil
	})
}

// checkPreprocessor loads a fitted preprocessor and checks that it covers
// every column of the training data.
func checkPreprocessor(path string, train *data.Dataset) error {
	scaler, err := pipeline.LoadScaler(path)
	if err != nil {
		return err
	}
	if !scaler.Fitted() {
		return fmt.Errorf("%w: preprocessor %s is not fitted", data.ErrInvalidInput, path)
	}
	for _, col := range train.Columns() {
		if !slices.Contains(scaler.Columns, col) {
			return fmt.Errorf("%w: preprocessor %s was not fitted on column %q", data.ErrInvalidInput, path, col)
		}
	}
	return nil
}
