package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gdxsv_chatops/internal/app"
	"gdxsv_chatops/internal/masterdata"
	"gdxsv_chatops/internal/metrics"
	"gdxsv_chatops/internal/notifications"
	"gdxsv_chatops/internal/reload"
	"gdxsv_chatops/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	app.SetupEnvironment()

	if err := newRootCmd(app.LoadConfig()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newUpdater(cmd *cobra.Command, opts *options) (*app.Updater, error) {
	source, err := opts.gridSource(cmd.Context())
	if err != nil {
		return nil, err
	}
	return &app.Updater{
		Source:    source,
		Extractor: masterdata.Extractor{Strict: opts.strict},
		Loader:    masterdata.NewLoader(opts.prefix),
	}, nil
}

func runPrint(cmd *cobra.Command, opts *options) error {
	u, err := newUpdater(cmd, opts)
	if err != nil {
		return err
	}

	tables, err := u.Download(cmd.Context())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	for _, name := range names {
		data, err := json.Marshal(tables[name])
		if err != nil {
			return fmt.Errorf("failed to encode table %q: %w", name, err)
		}
		fmt.Fprintln(out, name)
		fmt.Fprintln(out, string(data))
	}
	return nil
}

func runInsertSQLite(cmd *cobra.Command, opts *options, path string) error {
	ctx := cmd.Context()

	u, err := newUpdater(cmd, opts)
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()
	u.DB = db

	tables, err := u.Download(ctx)
	if err != nil {
		return err
	}
	results, err := u.Load(ctx, tables)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), notifications.FormatReport(notifications.Report{Tables: results}))
	return nil
}

func runUpdate(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	cfg := opts.cfg
	if err := cfg.RequireDB(); err != nil {
		return err
	}
	resilience := opts.resilience()

	u, err := newUpdater(cmd, opts)
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	u.DB = db
	u.Reloader = reload.NewClient(cfg.ReloadURL, resilience.ReloadRequest)
	u.Reporter = notifications.NewClient(cfg.Notify, resilience.Notification)
	u.Metrics = metrics.NewRecorder()

	report, err := u.Run(ctx)
	if pushErr := u.Metrics.Push(cfg.MetricsPushURL); pushErr != nil {
		log.Warn().Err(pushErr).Msg("Failed to push metrics")
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), notifications.FormatReport(report))
	return nil
}

func runInitDB(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()

	db, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.InitSchema(ctx, db); err != nil {
		return err
	}
	log.Info().Str("path", path).Strs("tables", store.MasterdataTables).Msg("Initialized masterdata schema")
	return nil
}
