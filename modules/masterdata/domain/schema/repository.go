package schema

import "context"

// FindParams carries listing parameters shared by every catalog.
type FindParams struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	// Filters are exact-match column constraints layered on top of the
	// search, e.g. geography hierarchy filters.
	Filters map[string]any `form:"-"`
}

// Normalize clamps the parameters into the system bounds. Limit is clamped to
// [1, maxLimit] no matter what the client requested.
func (p *FindParams) Normalize(defaultLimit, maxLimit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = defaultLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
}

func (p *FindParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Repository is the storage surface every catalog operation runs through.
// One implementation serves all registered definitions.
type Repository interface {
	GetPaginated(ctx context.Context, def *Definition, params *FindParams) ([]Record, int64, error)
	GetByID(ctx context.Context, def *Definition, id int64) (Record, error)
	FindOne(ctx context.Context, def *Definition, filters map[string]any) (Record, error)
	Create(ctx context.Context, def *Definition, record Record) (Record, error)
	Update(ctx context.Context, def *Definition, id int64, record Record) (Record, error)
	Delete(ctx context.Context, def *Definition, id int64) error
	// UpsertBatch inserts every record, overwriting the non-key columns of
	// rows sharing the definition's unique key.
	UpsertBatch(ctx context.Context, def *Definition, records []Record) (int, error)
	// DeleteAll empties the catalog's table. Only called when there is data
	// to replace it with.
	DeleteAll(ctx context.Context, def *Definition) error
	// LockForImport serializes imports against the same catalog for the
	// duration of the surrounding transaction.
	LockForImport(ctx context.Context, def *Definition) error
}
