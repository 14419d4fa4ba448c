package main

import (
	"context"
	"fmt"

	"gdxsv_chatops/internal/app"
	"gdxsv_chatops/internal/config"
	"gdxsv_chatops/internal/sheets"
	"gdxsv_chatops/internal/workbook"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options are the flags shared by every command.
type options struct {
	xlsx   string
	prefix string
	strict bool
	wait   bool
	cfg    app.Config
}

func newRootCmd(cfg app.Config) *cobra.Command {
	opts := &options{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "gdxsv-chatops",
		Short: "Operate gdxsv masterdata",
		Long: `gdxsv-chatops downloads the masterdata spreadsheet, extracts the
marker-delimited tables and loads them into the lobby server database.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.xlsx, "xlsx", "", "Read masterdata from a local xlsx file instead of Google Sheets")
	rootCmd.PersistentFlags().StringVar(&opts.prefix, "prefix", cfg.TablePrefix, "Prefix added to table names to form destination tables")
	rootCmd.PersistentFlags().BoolVar(&opts.strict, "strict", cfg.StrictMarkers, "Fail on several markers in a row or duplicate table names")
	rootCmd.PersistentFlags().BoolVar(&opts.wait, "wait", false, "Keep retrying the spreadsheet download until it succeeds")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "print",
			Short: "Print the extracted masterdata tables as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPrint(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "insert-sqlite <db>",
			Short: "Load the extracted masterdata into a SQLite database",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInsertSQLite(cmd, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "update",
			Short: "Load masterdata into GDXSV_DB_NAME and reload the lobby server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runUpdate(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "init-db <db>",
			Short: "Create the masterdata tables in a SQLite database",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInitDB(cmd, args[0])
			},
		},
	)

	return rootCmd
}

func (o *options) resilience() config.ResilienceConfig {
	if o.wait {
		return config.PatientResilienceConfig
	}
	return config.DefaultResilienceConfig
}

// gridSource picks the local workbook when --xlsx is set and the
// spreadsheet otherwise.
func (o *options) gridSource(ctx context.Context) (app.GridSource, error) {
	if o.xlsx != "" {
		log.Debug().Str("path", o.xlsx).Msg("Using local workbook")
		return workbook.Source{Path: o.xlsx}, nil
	}

	if err := o.cfg.RequireSheets(); err != nil {
		return nil, err
	}
	client, err := sheets.NewClient(ctx, o.cfg.Sheets.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return sheets.NewSource(client, o.cfg.Sheets, o.resilience().SheetRead), nil
}
