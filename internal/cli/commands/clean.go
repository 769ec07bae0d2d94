package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"cancerml/internal/cli/config"
	"cancerml/pkg/data"
	"cancerml/pkg/dataprep"
	"cancerml/pkg/expect"
	"cancerml/pkg/names"
	"cancerml/pkg/schema"
)

// DefaultCleanFile is the default name of the cleaned data file.
const DefaultCleanFile = "cancer_clean.csv"

type cleanOptions struct {
	RawDataFile    string
	NameFile       string
	DataConfigFile string
	Expectations   string
	WriteTo        string
	FileName       string
}

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	var opts cleanOptions
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean raw data and validate it",
		Long: `Derive column names from the .names file, load the raw data, drop the
identifier column, spell out the diagnosis codes and validate the result
against the schema built from the data configuration table. An optional
expectation suite is checked afterwards.`,
		Example: `  cancerml clean --raw-data-file data/raw/wdbc.data --name-file data/raw/wdbc.names \
    --data-config-file data/data_config.csv --write-to data/processed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cleanStage(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.RawDataFile, "raw-data-file", "", "Path to raw data file")
	cmd.Flags().StringVar(&opts.NameFile, "name-file", "", "Path to names file")
	cmd.Flags().StringVar(&opts.DataConfigFile, "data-config-file", "", "Path to data configuration file")
	cmd.Flags().StringVar(&opts.Expectations, "expectations", "", "Optional: path to an expectation suite (YAML)")
	cmd.Flags().StringVar(&opts.WriteTo, "write-to", "", "Path to directory where cleaned data will be written to")
	cmd.Flags().StringVar(&opts.FileName, "file-name", DefaultCleanFile, "The name of the file will be written")
	for _, f := range []string{"raw-data-file", "name-file", "data-config-file", "write-to"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// cleanStage writes the validated, cleaned data and returns its path.
// Schema failures are listed on errOut before the error is returned.
func cleanStage(ctx context.Context, opts cleanOptions, errOut io.Writer) (string, error) {
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	var path string
	err := runStage(ctx, "clean", func(*ledger) error {
		lines, err := names.ReadLines(opts.NameFile)
		if err != nil {
			return err
		}
		columns, err := names.ExtractColumnNames(lines, names.ExpectedColumns)
		if err != nil {
			return err
		}
		raw, err := data.LoadRaw(opts.RawDataFile, columns)
		if err != nil {
			return err
		}
		logger.Info("loaded raw data", slog.String("path", opts.RawDataFile), slog.Int("rows", raw.Len()))

		cleanOpts := dataprep.DefaultCleanOptions()
		cleanOpts.DropColumns = columns[:1]
		cleanOpts.LabelColumn = cfg.LabelColumn
		cleanOpts.Logger = logger
		cleaned, err := dataprep.Clean(raw, cleanOpts)
		if err != nil {
			return err
		}

		configs, err := schema.ReadConfig(opts.DataConfigFile)
		if err != nil {
			return err
		}
		sch, err := schema.Build(configs, columns[1:])
		if err != nil {
			return err
		}
		if err := sch.Validate(cleaned); err != nil {
			var se *schema.Error
			if errors.As(err, &se) {
				renderFailures(errOut, se)
			}
			return err
		}
		logger.Info("schema validation passed", slog.Int("columns", len(sch.Columns())))

		if opts.Expectations != "" {
			suite, err := expect.ReadSuite(opts.Expectations)
			if err != nil {
				return err
			}
			if err := expect.Run(cleaned, suite...); err != nil {
				return err
			}
			logger.Info("expectations met", slog.Int("expectations", len(suite)))
		}

		if err := ensureDirs(opts.WriteTo); err != nil {
			return err
		}
		path, err = data.WriteCSV(cleaned, opts.WriteTo, opts.FileName)
		if err != nil {
			return err
		}
		logger.Info("wrote cleaned data", slog.String("path", path), slog.Int("rows", cleaned.Len()))
		return nil
	})
	return path, err
}
