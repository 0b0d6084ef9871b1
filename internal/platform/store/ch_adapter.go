package store

import (
	"context"

	chx "showroom/internal/platform/store/ch"
)

// chConn is the part of *ch.CH the store uses
type chConn interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (chx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

// chAdapter narrows ch.Rows to store.Rows, everything else passes through
type chAdapter struct{ chConn }

func (a chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := a.chConn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{rs}, nil
}

type chRows struct{ chx.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
