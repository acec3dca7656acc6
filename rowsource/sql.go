package rowsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/model"
)

// ErrInvalidIdentifier is returned for table or column names that are not
// plain SQL identifiers.
var ErrInvalidIdentifier = errors.New("rowsource: invalid identifier")

// Dialect selects the placeholder syntax.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Columns names the columns of the rows table.
type Columns struct {
	Hashtable string
	Value     string
	Key       string
}

// DefaultColumns matches the layout written by the hashing stage.
var DefaultColumns = Columns{Hashtable: "hashtable", Value: "value", Key: "sha1"}

// DefaultTable is the default rows table.
const DefaultTable = "hashtables"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQL is a bucket.Source backed by a database/sql connection.
type SQL struct {
	db         *sql.DB
	dialect    Dialect
	listQuery  string
	scanQuery  string
	ownsHandle bool
}

// SQLOption configures NewSQL.
type SQLOption func(*sqlConfig)

type sqlConfig struct {
	table   string
	columns Columns
}

// WithTable sets the rows table. Schema-qualified names are accepted.
func WithTable(table string) SQLOption {
	return func(c *sqlConfig) { c.table = table }
}

// WithColumns overrides the column names.
func WithColumns(cols Columns) SQLOption {
	return func(c *sqlConfig) { c.columns = cols }
}

// NewSQL returns a source reading from db. Identifiers are validated and
// interpolated once; hashtable ids are always bound as parameters.
func NewSQL(db *sql.DB, dialect Dialect, opts ...SQLOption) (*SQL, error) {
	cfg := sqlConfig{table: DefaultTable, columns: DefaultColumns}
	for _, o := range opts {
		o(&cfg)
	}
	switch dialect {
	case SQLite, Postgres:
	default:
		return nil, fmt.Errorf("rowsource: unknown dialect %q", dialect)
	}
	for _, id := range []string{cfg.table, cfg.columns.Hashtable, cfg.columns.Value, cfg.columns.Key} {
		if !identRe.MatchString(id) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
		}
	}

	c := cfg.columns
	return &SQL{
		db:      db,
		dialect: dialect,
		listQuery: fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY %s",
			c.Hashtable, cfg.table, c.Hashtable),
		scanQuery: fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = %s ORDER BY %s, %s",
			c.Key, c.Value, cfg.table, c.Hashtable, dialect.placeholder(1), c.Value, c.Key),
	}, nil
}

// Open opens a database with the driver matching dialect and wraps it.
// Close releases the handle.
func Open(dialect Dialect, dsn string, opts ...SQLOption) (*SQL, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}
	s, err := NewSQL(db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsHandle = true
	return s, nil
}

// Close closes the database if it was opened by Open.
func (s *SQL) Close() error {
	if s.ownsHandle {
		return s.db.Close()
	}
	return nil
}

// Hashtables implements bucket.Source.
func (s *SQL) Hashtables(ctx context.Context) ([]model.HashtableID, error) {
	rows, err := s.db.QueryContext(ctx, s.listQuery)
	if err != nil {
		return nil, fmt.Errorf("list hashtables: %w", err)
	}
	defer rows.Close()

	var out []model.HashtableID
	for rows.Next() {
		var ht int64
		if err := rows.Scan(&ht); err != nil {
			return nil, err
		}
		out = append(out, model.HashtableID(ht))
	}
	return out, rows.Err()
}

// Scan implements bucket.Source. Rows are ordered by band value, then key,
// so element ids are assigned deterministically.
func (s *SQL) Scan(ctx context.Context, ht model.HashtableID, fn func(model.Row) error) error {
	rows, err := s.db.QueryContext(ctx, s.scanQuery, int64(ht))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key  string
			band []byte
		)
		if err := rows.Scan(&key, &band); err != nil {
			return err
		}
		if err := fn(model.Row{Hashtable: ht, Band: band, Key: key}); err != nil {
			return err
		}
	}
	return rows.Err()
}

var _ bucket.Source = (*SQL)(nil)
