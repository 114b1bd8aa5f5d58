// Package salarysql loads a salary dataset from a structured file into a
// file-backed SQLite table whose schema, including enumerated value domains,
// is derived from the data itself, then issues one grouped aggregation
// through three independent execution paths.
package salarysql

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/salarysql/salarysql/config"
	"github.com/salarysql/salarysql/domain/model"
	"github.com/salarysql/salarysql/query"
	"github.com/salarysql/salarysql/storage"
)

// Tolerance is the relative tolerance used when comparing averages across
// the three execution paths.
const Tolerance = 1e-6

// Builder configures the load-and-query pipeline.
// The typical usage pattern is:
//
//	pipeline, err := salarysql.NewBuilder().
//		WithInput("salaries.csv").
//		WithDatabase("salaries.db").
//		WithEnumColumns("SEX", "DESIGNATION", "UNIT").
//		Build()
//	if err != nil {
//		return err
//	}
//	report, err := pipeline.Run(ctx)
type Builder struct {
	input           string
	database        string
	tableName       string
	enumColumns     []string
	requiredColumns []string
	groupColumn     string
	measureColumn   string
	divisor         float64
	policy          storage.TablePolicy
	logger          *zap.Logger
}

// NewBuilder creates a new pipeline builder with defaults for the salary
// dataset aggregation (SALARY / 12 grouped by DESIGNATION).
func NewBuilder() *Builder {
	return &Builder{
		groupColumn:   "DESIGNATION",
		measureColumn: "SALARY",
		divisor:       12,
		policy:        storage.PolicyAppend,
	}
}

// FromConfig creates a builder from loaded configuration.
func FromConfig(cfg *config.Config) (*Builder, error) {
	policy, err := storage.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	return &Builder{
		input:           cfg.InputPath,
		database:        cfg.DatabasePath,
		tableName:       cfg.TableName,
		enumColumns:     cfg.EnumColumns,
		requiredColumns: cfg.RequiredColumns,
		groupColumn:     cfg.GroupColumn,
		measureColumn:   cfg.MeasureColumn,
		divisor:         cfg.Divisor,
		policy:          policy,
	}, nil
}

// WithInput sets the source file path. Returns the builder for chaining.
func (b *Builder) WithInput(path string) *Builder {
	b.input = path
	return b
}

// WithDatabase sets the SQLite database file path.
func (b *Builder) WithDatabase(path string) *Builder {
	b.database = path
	return b
}

// WithTableName sets the persistent table name. When unset, the name is
// derived from the input file path.
func (b *Builder) WithTableName(name string) *Builder {
	b.tableName = name
	return b
}

// WithEnumColumns sets the columns declared as enumerated types.
func (b *Builder) WithEnumColumns(columns ...string) *Builder {
	b.enumColumns = columns
	return b
}

// WithRequiredColumns sets the columns declared NOT NULL.
func (b *Builder) WithRequiredColumns(columns ...string) *Builder {
	b.requiredColumns = columns
	return b
}

// WithAggregate sets the grouping column, measure column and divisor.
func (b *Builder) WithAggregate(groupColumn, measureColumn string, divisor float64) *Builder {
	b.groupColumn = groupColumn
	b.measureColumn = measureColumn
	b.divisor = divisor
	return b
}

// WithPolicy sets the behavior against an existing populated table.
func (b *Builder) WithPolicy(policy storage.TablePolicy) *Builder {
	b.policy = policy
	return b
}

// WithLogger sets the logger. A nil logger disables logging.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and returns a runnable pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if b.input == "" {
		return nil, errors.New("input path must be provided")
	}
	if !model.IsSupportedFile(b.input) {
		return nil, fmt.Errorf("unsupported file type: %s", b.input)
	}
	if b.database == "" {
		return nil, errors.New("database path must be provided")
	}
	if b.divisor == 0 {
		return nil, errors.New("divisor must be non-zero")
	}

	tableName := b.tableName
	if tableName == "" {
		tableName = model.TableFromFilePath(b.input)
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		input:           b.input,
		database:        b.database,
		tableName:       tableName,
		enumColumns:     b.enumColumns,
		requiredColumns: b.requiredColumns,
		groupColumn:     b.groupColumn,
		measureColumn:   b.measureColumn,
		divisor:         b.divisor,
		policy:          b.policy,
		logger:          logger,
	}, nil
}

// Pipeline is a validated, runnable load-and-query pipeline.
type Pipeline struct {
	input           string
	database        string
	tableName       string
	enumColumns     []string
	requiredColumns []string
	groupColumn     string
	measureColumn   string
	divisor         float64
	policy          storage.TablePolicy
	logger          *zap.Logger
}

// Report carries everything one run produced: the loaded table, the derived
// schema, the insert count, and the three aggregate result sets.
type Report struct {
	// Source is the loaded in-memory table.
	Source *model.Table
	// Schema is the derived record-type definition.
	Schema *model.TableSchema
	// RowsInserted is the number of records appended this run.
	RowsInserted int64
	// Direct is the result of the textual SQL path.
	Direct query.Rows
	// Tabular is the result of the tabular helper path.
	Tabular *model.Table
	// Builder is the result of the query-builder path.
	Builder query.Rows
}

// Run executes the pipeline: load, derive, ensure, append, then the three
// query paths. Every failure wraps one sentinel from the error taxonomy.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	table, err := model.NewFile(p.input).ToTable()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	p.logPreview(table)

	schema, err := model.DeriveSchema(p.tableName, table, p.enumColumns, p.requiredColumns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	store, err := storage.Open(ctx, p.database, p.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	defer store.Close()

	if err := store.EnsureTable(ctx, schema, p.policy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	inserted, err := store.Append(ctx, schema, table, p.policy)
	if err != nil {
		if storage.IsConstraintViolation(err) {
			return nil, fmt.Errorf("%w: %w", ErrConstraint, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	spec := query.AggregateSpec{
		Table:         p.tableName,
		GroupColumn:   p.groupColumn,
		MeasureColumn: p.measureColumn,
		Divisor:       p.divisor,
	}

	direct, err := query.Direct(ctx, store.DB(), spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	tabular, err := query.Tabular(ctx, store.DB(), spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	built, err := query.WithBuilder(ctx, store.DB(), spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	return &Report{
		Source:       table,
		Schema:       schema,
		RowsInserted: inserted,
		Direct:       direct,
		Tabular:      tabular,
		Builder:      built,
	}, nil
}

// logPreview logs a short overview of the loaded data: row count plus each
// column with its inferred type.
func (p *Pipeline) logPreview(t *model.Table) {
	columns := make([]string, 0, len(t.ColumnInfo()))
	for _, info := range t.ColumnInfo() {
		columns = append(columns, info.Name+":"+info.Type.String())
	}
	p.logger.Info("loaded source data",
		zap.String("file", p.input),
		zap.Int("rows", t.RowCount()),
		zap.Strings("columns", columns))
}

// Verify checks that the three result sets of a report are value-equivalent.
func (r *Report) Verify() error {
	tabularRows, err := query.FromTable(r.Tabular)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	if !query.Equivalent(r.Direct, tabularRows, Tolerance) {
		return fmt.Errorf("%w: direct and tabular paths disagree", ErrQuery)
	}
	if !query.Equivalent(r.Direct, r.Builder, Tolerance) {
		return fmt.Errorf("%w: direct and builder paths disagree", ErrQuery)
	}
	return nil
}
