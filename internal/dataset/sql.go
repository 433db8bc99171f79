package dataset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLSource describes a query-backed dataset.
type SQLSource struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	DSN    string
	// Query selects the transaction rows. Table is used when Query is empty.
	Query string
	Table string
}

func (s SQLSource) query(maxRows int) (string, error) {
	q := s.Query
	if q == "" {
		if s.Table == "" {
			return "", fmt.Errorf("sql source needs a query or a table")
		}
		q = "SELECT * FROM " + quoteIdent(s.Table)
	}
	if maxRows > 0 && s.Query == "" {
		q += " LIMIT " + strconv.Itoa(maxRows)
	}
	return q, nil
}

// quoteIdent double-quotes each dot-separated part of a table name, which
// both sqlite and postgres accept. Embedded quotes are doubled.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// LoadSQL connects with sqlx and reads the source into memory.
func LoadSQL(ctx context.Context, src SQLSource, opt Options) (*Dataset, error) {
	switch src.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported sql driver %q (use sqlite or postgres)", src.Driver)
	}
	db, err := sqlx.ConnectContext(ctx, src.Driver, src.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", src.Driver, err)
	}
	defer db.Close()
	name := src.Table
	if name == "" {
		name = src.Driver + "-query"
	}
	return QuerySQL(ctx, db, name, src, opt)
}

// QuerySQL runs the source query on an open handle. Scanned values are
// rendered as text and typed the same way file cells are.
func QuerySQL(ctx context.Context, db *sqlx.DB, name string, src SQLSource, opt Options) (*Dataset, error) {
	q, err := src.query(opt.MaxRows)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryxContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	var records [][]string
	for rows.Next() {
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			break
		}
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(records)+1, err)
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = sqlText(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return fromRecords(name, header, records, opt)
}

// sqlText renders a driver value; nil becomes the empty (null) token.
func sqlText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
