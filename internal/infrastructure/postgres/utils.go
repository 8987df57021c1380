package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier lo que necesitan los repositorios: lo cumplen pgxpool.Pool, pgx.Tx y pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner abre transacciones (pgxpool.Pool o pgxmock.PgxPoolIface).
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgxScanner abstrae pgx.Row y pgx.Rows.
type pgxScanner interface {
	Scan(dest ...any) error
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}
