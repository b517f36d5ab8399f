package roster

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool the loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// LoadPostgres reads the name column of table once.
func LoadPostgres(ctx context.Context, db Querier, table string) (*Set, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid roster table %q", table)
	}

	rows, err := db.Query(ctx, fmt.Sprintf("SELECT name FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan roster: %w", err)
	}
	return New(names...), nil
}
