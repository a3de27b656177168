package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	"github.com/vertice-lat/maestro/pkg/composables"
)

// CatalogRepository serves every registered definition with one generic
// implementation. Queries run on whatever executor the context carries, so
// the same code works inside request transactions and import transactions.
type CatalogRepository struct{}

func NewCatalogRepository() schema.Repository {
	return &CatalogRepository{}
}

func (r *CatalogRepository) GetPaginated(ctx context.Context, def *schema.Definition, params *schema.FindParams) ([]schema.Record, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	if params == nil {
		params = &schema.FindParams{}
		params.Normalize(50, 200)
	}

	var conditions []string
	var args []any
	for _, name := range filterColumns(def, params.Filters) {
		args = append(args, argValue(params.Filters[name]))
		conditions = append(conditions, fmt.Sprintf("%s = $%d", name, len(args)))
	}
	if term := strings.TrimSpace(params.Search); term != "" && len(def.Searchable) > 0 {
		clause, pattern := searchPredicate(def, term, len(args)+1)
		args = append(args, pattern)
		conditions = append(conditions, clause)
	}
	where := whereClause(conditions)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", def.Table, where)
	var total int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.Wrapf(err, "count %s", def.Key)
	}

	listQuery := fmt.Sprintf(
		"SELECT %s FROM %s%s %s LIMIT $%d OFFSET $%d",
		selectList(def), def.Table, where, orderClause(def), len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset())

	rows, err := tx.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, gerrors.Wrapf(err, "list %s", def.Key)
	}
	defer rows.Close()

	records := make([]schema.Record, 0, params.Limit)
	for rows.Next() {
		record, err := scanRecord(def, rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, gerrors.Wrapf(err, "list %s", def.Key)
	}
	return records, total, nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, def *schema.Definition, id int64) (schema.Record, error) {
	return r.FindOne(ctx, def, map[string]any{"id": id})
}

func (r *CatalogRepository) FindOne(ctx context.Context, def *schema.Definition, filters map[string]any) (schema.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var conditions []string
	var args []any
	for _, name := range sortedKeys(filters) {
		args = append(args, argValue(filters[name]))
		conditions = append(conditions, fmt.Sprintf("%s = $%d", name, len(args)))
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s%s LIMIT 1",
		selectList(def), def.Table, whereClause(conditions),
	)

	record, err := scanRecord(def, tx.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schema.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *CatalogRepository) Create(ctx context.Context, def *schema.Definition, record schema.Record) (schema.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	cols, args := insertColumns(def, record)
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		def.Table, strings.Join(cols, ", "), strings.Join(placeholders(1, len(args)), ", "), selectList(def),
	)

	created, err := scanRecord(def, tx.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		return nil, mapConflict(err, "create "+def.Key)
	}
	return created, nil
}

func (r *CatalogRepository) Update(ctx context.Context, def *schema.Definition, id int64, record schema.Record) (schema.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	for i := range def.Fields {
		f := &def.Fields[i]
		value, present := record[f.Name]
		if !present {
			continue
		}
		args = append(args, argValue(value))
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Name, len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, def, id)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		def.Table, strings.Join(sets, ", "), len(args), selectList(def),
	)

	updated, err := scanRecord(def, tx.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schema.ErrNotFound
		}
		return nil, mapConflict(err, "update "+def.Key)
	}
	return updated, nil
}

func (r *CatalogRepository) Delete(ctx context.Context, def *schema.Definition, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", def.Table), id)
	if err != nil {
		return gerrors.Wrapf(err, "delete %s", def.Key)
	}
	if tag.RowsAffected() == 0 {
		return schema.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) UpsertBatch(ctx context.Context, def *schema.Definition, records []schema.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	cols := make([]string, 0, len(def.Fields))
	for i := range def.Fields {
		cols = append(cols, def.Fields[i].Name)
	}
	keySet := make(map[string]bool, len(def.UniqueKey))
	for _, name := range def.UniqueKey {
		keySet[name] = true
	}
	var updates []string
	for _, col := range cols {
		if keySet[col] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	updates = append(updates, "updated_at = now()")

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		def.Table,
		strings.Join(cols, ", "),
		strings.Join(placeholders(1, len(cols)), ", "),
		strings.Join(def.UniqueKey, ", "),
		strings.Join(updates, ", "),
	)

	batch := &pgx.Batch{}
	for _, record := range records {
		args := make([]any, 0, len(cols))
		for _, col := range cols {
			args = append(args, argValue(record[col]))
		}
		batch.Queue(query, args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return 0, mapConflict(err, "upsert "+def.Key)
		}
	}
	if err := results.Close(); err != nil {
		return 0, gerrors.Wrapf(err, "upsert %s", def.Key)
	}
	return len(records), nil
}

func (r *CatalogRepository) DeleteAll(ctx context.Context, def *schema.Definition) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", def.Table)); err != nil {
		return gerrors.Wrapf(err, "clear %s", def.Key)
	}
	return nil
}

// LockForImport takes a per-table advisory lock tied to the current
// transaction, so two concurrent imports against the same catalog serialize
// instead of racing their truncate/upsert phases.
func (r *CatalogRepository) LockForImport(ctx context.Context, def *schema.Definition) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", def.Table); err != nil {
		return gerrors.Wrapf(err, "lock %s for import", def.Key)
	}
	return nil
}

// scanRecord reads one projection row into a typed Record. Decimal columns
// arrive as text (see selectList) and are re-parsed, nulls are omitted.
func scanRecord(def *schema.Definition, scan func(...any) error) (schema.Record, error) {
	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	targets := make([]any, 0, len(def.Fields)+3)
	targets = append(targets, &id)

	holders := make([]any, len(def.Fields))
	for i := range def.Fields {
		switch def.Fields[i].Kind {
		case schema.KindInteger:
			holders[i] = &sql.NullInt64{}
		default:
			holders[i] = &sql.NullString{}
		}
		targets = append(targets, holders[i])
	}
	targets = append(targets, &createdAt, &updatedAt)

	if err := scan(targets...); err != nil {
		return nil, err
	}

	record := schema.Record{
		"id":         id,
		"created_at": createdAt,
		"updated_at": updatedAt,
	}
	for i := range def.Fields {
		f := &def.Fields[i]
		switch holder := holders[i].(type) {
		case *sql.NullInt64:
			if holder.Valid {
				record[f.Name] = holder.Int64
			}
		case *sql.NullString:
			if !holder.Valid {
				continue
			}
			if f.Kind == schema.KindDecimal {
				d, err := decimal.NewFromString(holder.String)
				if err != nil {
					return nil, gerrors.Wrapf(err, "decode %s.%s", def.Key, f.Name)
				}
				record[f.Name] = d
				continue
			}
			record[f.Name] = holder.String
		}
	}
	return record, nil
}

func insertColumns(def *schema.Definition, record schema.Record) ([]string, []any) {
	cols := make([]string, 0, len(def.Fields))
	args := make([]any, 0, len(def.Fields))
	for i := range def.Fields {
		f := &def.Fields[i]
		value, present := record[f.Name]
		if !present {
			continue
		}
		cols = append(cols, f.Name)
		args = append(args, argValue(value))
	}
	return cols, args
}

// argValue normalizes domain values for the wire: decimals travel as text and
// let the server cast to NUMERIC.
func argValue(value any) any {
	if d, ok := value.(decimal.Decimal); ok {
		return d.String()
	}
	return value
}

func filterColumns(def *schema.Definition, filters map[string]any) []string {
	if len(filters) == 0 {
		return nil
	}
	names := make([]string, 0, len(filters))
	for _, name := range sortedKeys(filters) {
		if _, ok := def.Field(name); ok {
			names = append(names, name)
		}
	}
	return names
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mapConflict(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return schema.ErrDuplicate
	}
	return gerrors.Wrap(err, op)
}
