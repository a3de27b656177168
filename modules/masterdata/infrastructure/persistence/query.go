package persistence

import (
	"fmt"
	"strings"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
)

// Table and column names come from code-declared definitions, never from
// request input, so they are interpolated directly; every value travels as a
// bind parameter.

// selectList returns the projection for a definition: id, every field column
// (decimals cast to text so they scan losslessly) and the timestamps.
func selectList(def *schema.Definition) string {
	cols := make([]string, 0, len(def.Fields)+3)
	cols = append(cols, "id")
	for i := range def.Fields {
		f := &def.Fields[i]
		if f.Kind == schema.KindDecimal {
			cols = append(cols, fmt.Sprintf("%s::TEXT AS %s", f.Name, f.Name))
			continue
		}
		cols = append(cols, f.Name)
	}
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchPredicate builds a case-insensitive substring match over the
// searchable fields. Non-text columns are cast so numeric codes stay
// searchable, and pattern metacharacters in the term are escaped so client
// input cannot inject wildcards.
func searchPredicate(def *schema.Definition, term string, argPos int) (string, any) {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
	clauses := make([]string, 0, len(def.Searchable))
	for _, name := range def.Searchable {
		clauses = append(clauses, fmt.Sprintf(`CAST(%s AS TEXT) ILIKE $%d ESCAPE '\'`, name, argPos))
	}
	return "(" + strings.Join(clauses, " OR ") + ")", pattern
}

// orderClause renders the definition's ordering, defaulting to freshness with
// the id as a stable tie-break.
func orderClause(def *schema.Definition) string {
	if len(def.OrderBy) == 0 {
		return "ORDER BY updated_at DESC, id DESC"
	}
	parts := make([]string, 0, len(def.OrderBy))
	for _, o := range def.OrderBy {
		direction := "ASC"
		if o.Desc {
			direction = "DESC"
		}
		parts = append(parts, o.Column+" "+direction)
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

func placeholders(from, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("$%d", from+i))
	}
	return out
}
