package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"cancerml/internal/cli/config"
	"cancerml/pkg/fetch"
)

// NewDownloadCommand creates the download command.
func NewDownloadCommand() *cobra.Command {
	var (
		url     string
		writeTo string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:     "download",
		Short:   "Download a zip archive and extract it",
		Long:    `Download zip data from the web to a local directory and extract it.`,
		Example: `  cancerml download --url https://archive.ics.uci.edu/static/public/17/breast+cancer+wisconsin+diagnostic.zip --write-to data/raw`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts := fetch.Options{
				Client: &http.Client{Timeout: timeout},
				Logger: config.GetLogger(ctx),
			}
			return runStage(ctx, "download", func(*ledger) error {
				files, err := fetch.Download(ctx, url, writeTo, opts)
				if err != nil {
					return err
				}
				for _, f := range files {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "URL of dataset to be downloaded")
	cmd.Flags().StringVar(&writeTo, "write-to", "", "Path to directory where raw data will be written to")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "HTTP request timeout")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("write-to")
	return cmd
}
