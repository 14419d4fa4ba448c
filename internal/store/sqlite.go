// Package store opens the game server's SQLite database and runs masterdata
// loads inside a single transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"gdxsv_chatops/internal/masterdata"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Open opens the SQLite database at path. The pool is limited to one
// connection so that ":memory:" databases and transactions see the same data.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", masterdata.ErrStoreIO, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %v", masterdata.ErrStoreIO, err)
	}
	return db, nil
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise; fn's error is returned unchanged.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", masterdata.ErrStoreIO, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", masterdata.ErrStoreIO, err)
	}
	return nil
}

// LoadTables replaces all given tables in one transaction.
func LoadTables(ctx context.Context, db *sqlx.DB, loader *masterdata.Loader, tables masterdata.Tables) ([]masterdata.TableResult, error) {
	var results []masterdata.TableResult
	err := WithTx(ctx, db, func(tx *sqlx.Tx) error {
		var err error
		results, err = loader.Load(ctx, tx, tables)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
