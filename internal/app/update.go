package app

import (
	"context"
	"fmt"
	"time"

	"gdxsv_chatops/internal/masterdata"
	"gdxsv_chatops/internal/metrics"
	"gdxsv_chatops/internal/notifications"
	"gdxsv_chatops/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// GridSource supplies one raw grid per spreadsheet tab.
type GridSource interface {
	Grids(ctx context.Context) ([]masterdata.RawGrid, error)
}

// Reloader asks the lobby server to re-read its masterdata.
type Reloader interface {
	Trigger(ctx context.Context) (string, error)
}

// Reporter tells operators what happened.
type Reporter interface {
	NotifyStart(ctx context.Context) error
	NotifyResult(ctx context.Context, report notifications.Report) error
}

// Updater runs the masterdata update: download, extract, load in a single
// transaction, reload the lobby server and report.
type Updater struct {
	Source    GridSource
	Extractor masterdata.Extractor
	Loader    *masterdata.Loader
	DB        *sqlx.DB
	Reloader  Reloader // optional
	Reporter  Reporter // optional
	Metrics   *metrics.Recorder
	now       func() time.Time
	start     time.Time
}

// Download fetches the grids and extracts their tables.
func (u *Updater) Download(ctx context.Context) (masterdata.Tables, error) {
	grids, err := u.Source.Grids(ctx)
	if err != nil {
		u.fail(metrics.StageDownload)
		return nil, fmt.Errorf("failed to download masterdata: %w", err)
	}

	tables, err := u.Extractor.Extract(grids...)
	if err != nil {
		u.fail(metrics.StageExtract)
		return nil, err
	}

	log.Info().
		Int("grids", len(grids)).
		Int("tables", len(tables)).
		Msg("Extracted masterdata tables")
	return tables, nil
}

// Load replaces the extracted tables in one transaction.
func (u *Updater) Load(ctx context.Context, tables masterdata.Tables) ([]masterdata.TableResult, error) {
	results, err := store.LoadTables(ctx, u.DB, u.Loader, tables)
	if err != nil {
		u.fail(metrics.StageLoad)
		return nil, err
	}

	for _, r := range results {
		if u.Metrics != nil {
			u.Metrics.ObserveTable(r.Table, r.Rows)
		}
		log.Info().Str("table", r.Table).Int("rows", r.Rows).Msg("Replaced table")
	}
	return results, nil
}

// Run performs a full update. The reload is only triggered after the load
// has been committed. The returned report is also sent to the Reporter.
func (u *Updater) Run(ctx context.Context) (notifications.Report, error) {
	start := u.clock()
	u.start = start
	u.notifyStart(ctx)

	report, err := u.run(ctx)
	report.Duration = u.clock().Sub(start)
	report.Err = err

	if err != nil {
		log.Error().Err(err).Msg("Masterdata update failed")
	} else {
		if u.Metrics != nil {
			u.Metrics.ObserveSuccess(len(report.Tables), report.Duration, u.clock())
		}
		log.Info().
			Int("tables", len(report.Tables)).
			Dur("duration", report.Duration).
			Msg("Masterdata update complete")
	}

	u.notifyResult(ctx, report)
	return report, err
}

func (u *Updater) run(ctx context.Context) (notifications.Report, error) {
	var report notifications.Report

	tables, err := u.Download(ctx)
	if err != nil {
		return report, err
	}

	report.Tables, err = u.Load(ctx, tables)
	if err != nil {
		return report, err
	}

	if u.Reloader != nil {
		report.Reload, err = u.Reloader.Trigger(ctx)
		if err != nil {
			u.fail(metrics.StageReload)
			return report, err
		}
	}
	return report, nil
}

// fail records a failed stage. Download and Load called outside Run have no
// start time and record a zero duration.
func (u *Updater) fail(stage string) {
	if u.Metrics == nil {
		return
	}
	var elapsed time.Duration
	if !u.start.IsZero() {
		elapsed = u.clock().Sub(u.start)
	}
	u.Metrics.ObserveFailure(stage, elapsed)
}

func (u *Updater) notifyStart(ctx context.Context) {
	if u.Reporter == nil {
		return
	}
	if err := u.Reporter.NotifyStart(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to send start notification")
	}
}

func (u *Updater) notifyResult(ctx context.Context, report notifications.Report) {
	if u.Reporter == nil {
		return
	}
	if err := u.Reporter.NotifyResult(ctx, report); err != nil {
		log.Warn().Err(err).Msg("Failed to send result notification")
	}
}

func (u *Updater) clock() time.Time {
	if u.now != nil {
		return u.now()
	}
	return time.Now()
}
