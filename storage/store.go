// Package storage opens the persistent SQLite store and materializes
// derived record-type definitions as tables.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/salarysql/salarysql/domain/model"
)

// DriverName is the database/sql driver name used for the store.
const DriverName = "sqlite"

// TablePolicy controls what happens when the target table already exists.
type TablePolicy int

const (
	// PolicyAppend keeps existing rows and appends new ones (default).
	PolicyAppend TablePolicy = iota
	// PolicyReplace deletes existing rows in the same transaction as the insert.
	PolicyReplace
	// PolicyFailIfExists refuses to touch an existing table.
	PolicyFailIfExists
)

// ParsePolicy converts a policy name into a TablePolicy.
func ParsePolicy(name string) (TablePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "append":
		return PolicyAppend, nil
	case "replace":
		return PolicyReplace, nil
	case "fail":
		return PolicyFailIfExists, nil
	default:
		return PolicyAppend, fmt.Errorf("unknown table policy: %q", name)
	}
}

// String returns the policy name.
func (p TablePolicy) String() string {
	switch p {
	case PolicyReplace:
		return "replace"
	case PolicyFailIfExists:
		return "fail"
	default:
		return "append"
	}
}

// ErrTableExists is returned by EnsureTable under PolicyFailIfExists.
var ErrTableExists = errors.New("table already exists")

// Store is a handle to the file-backed SQLite database. It is opened once
// and not shared across concurrent callers.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates the SQLite database at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() // Ignore close error since we're already returning an error
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	logger.Info("opened store", zap.String("path", path))
	return &Store{db: db, path: path, logger: logger}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureTable makes sure a table matching the record-type definition exists.
// Creating an already existing table with the same shape is a no-op; under
// PolicyFailIfExists an existing table is an error instead.
func (s *Store) EnsureTable(ctx context.Context, schema *model.TableSchema, policy TablePolicy) error {
	if policy == PolicyFailIfExists {
		exists, err := s.tableExists(ctx, schema.Name())
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrTableExists, schema.Name())
		}
	}

	query := buildCreateTableQuery(schema)
	s.logger.Debug("ensuring table", zap.String("table", schema.Name()), zap.String("ddl", query))

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", schema.Name(), err)
	}
	return nil
}

// tableExists checks sqlite_master for a user table with the given name.
func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?`, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}

// buildCreateTableQuery constructs the CREATE TABLE statement for a schema.
// Enumerated domains become CHECK constraints; an empty domain rejects every
// insert.
func buildCreateTableQuery(schema *model.TableSchema) string {
	defs := make([]string, 0, len(schema.Columns())+1)
	defs = append(defs, quoteIdent(model.SurrogateKeyColumn)+` INTEGER PRIMARY KEY AUTOINCREMENT`)

	for _, col := range schema.Columns() {
		def := quoteIdent(col.Name) + " " + col.Type.String()
		if col.NotNull {
			def += " NOT NULL"
		}
		if col.IsEnum() {
			if col.Enum.IsEmpty() {
				def += " CHECK (1 = 0)"
			} else {
				values := col.Enum.Values()
				quoted := make([]string, len(values))
				for i, v := range values {
					quoted[i] = quoteString(v)
				}
				def += fmt.Sprintf(" CHECK (%s IN (%s))", quoteIdent(col.Name), strings.Join(quoted, ", "))
			}
		}
		defs = append(defs, def)
	}

	return fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (%s)`,
		quoteIdent(schema.Name()),
		strings.Join(defs, ", "),
	)
}

// Append inserts every row of the table as a new record inside a single
// transaction. The surrogate identifier is never bound; the store assigns it.
// On any failure the whole batch rolls back.
func (s *Store) Append(ctx context.Context, schema *model.TableSchema, t *model.Table, policy TablePolicy) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	inserted, err := s.appendInTx(ctx, tx, schema, t, policy)
	if err != nil {
		_ = tx.Rollback() // Ignore rollback error since we're already returning an error
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert batch: %w", err)
	}

	s.logger.Info("appended records",
		zap.String("table", schema.Name()),
		zap.Int64("rows", inserted),
		zap.String("policy", policy.String()))
	return inserted, nil
}

func (s *Store) appendInTx(ctx context.Context, tx *sql.Tx, schema *model.TableSchema, t *model.Table, policy TablePolicy) (int64, error) {
	if policy == PolicyReplace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+quoteIdent(schema.Name())); err != nil {
			return 0, fmt.Errorf("failed to clear table %s: %w", schema.Name(), err)
		}
	}

	records := t.Records()
	if len(records) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertQuery(schema))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	columns := schema.Columns()
	var inserted int64
	for _, record := range records {
		args := make([]any, len(columns))
		for i, col := range columns {
			var raw string
			if i < len(record) {
				raw = record[i]
			}
			args[i] = bindValue(col, raw)
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}
		inserted++
	}

	return inserted, nil
}

// buildInsertQuery constructs a named-column INSERT so the surrogate key is
// left for SQLite to assign.
func buildInsertQuery(schema *model.TableSchema) string {
	names := schema.ColumnNames()
	columns := make([]string, len(names))
	placeholders := make([]string, len(names))
	for i, name := range names {
		columns[i] = quoteIdent(name)
		placeholders[i] = "?"
	}

	return fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(schema.Name()),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// bindValue converts a raw source value into its typed driver value.
// Empty values become NULL; datetimes are normalized to ISO8601 form.
func bindValue(col model.ColumnSchema, raw string) any {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	switch col.Type {
	case model.ColumnTypeDatetime:
		if iso, ok := model.NormalizeDatetime(value); ok {
			return iso
		}
		// Unparseable dates are stored as NULL rather than garbage text.
		return nil
	case model.ColumnTypeInteger:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		return raw
	case model.ColumnTypeReal:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return raw
	default:
		return raw
	}
}

// CountRows returns the number of rows currently in the named table.
func (s *Store) CountRows(ctx context.Context, tableName string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(tableName)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", tableName, err)
	}
	return count, nil
}

// ReadRecord reads back one record by its surrogate identifier, returning
// the persisted field values in schema column order as strings.
func (s *Store) ReadRecord(ctx context.Context, schema *model.TableSchema, id int64) (model.Record, error) {
	names := schema.ColumnNames()
	columns := make([]string, len(names))
	for i, name := range names {
		columns[i] = quoteIdent(name)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = ?`,
		strings.Join(columns, ", "),
		quoteIdent(schema.Name()),
		quoteIdent(model.SurrogateKeyColumn),
	)

	dest := make([]sql.NullString, len(names))
	scanArgs := make([]any, len(names))
	for i := range dest {
		scanArgs[i] = &dest[i]
	}

	if err := s.db.QueryRowContext(ctx, query, id).Scan(scanArgs...); err != nil {
		return nil, fmt.Errorf("failed to read record %d from %s: %w", id, schema.Name(), err)
	}

	record := make(model.Record, len(dest))
	for i, v := range dest {
		if v.Valid {
			record[i] = v.String
		}
	}
	return record, nil
}

// IsConstraintViolation reports whether err came from a schema constraint:
// an enumerated-domain CHECK, a NOT NULL column, or a key collision.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint")
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteString quotes a SQL string literal.
func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
