package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Querier is the subset of *sql.DB used for loading.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// OpenPostgres opens a connection pool and checks it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// SelectQuery builds the load query for table.
func SelectQuery(table string) string {
	cols := make([]string, len(Columns))
	for i, c := range Columns {
		cols[i] = pq.QuoteIdentifier(c)
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + pq.QuoteIdentifier(table)
}

// LoadPostgres reads all rows from table.
func LoadPostgres(ctx context.Context, db Querier, table string) ([]Row, error) {
	if table == "" {
		return nil, fmt.Errorf("dataset table is not set")
	}

	rs, err := db.QueryContext(ctx, SelectQuery(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}
	defer rs.Close()

	var rows []Row
	for rs.Next() {
		var (
			r     Row
			level sql.NullString
		)
		if err := rs.Scan(&r.Country, &level, &r.Tuition, &r.LivingCostIndex, &r.Rent, &r.TotalCost); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		r.Level = level.String
		rows = append(rows, r)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	return rows, nil
}
