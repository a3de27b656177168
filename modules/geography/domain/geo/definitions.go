package geo

import "github.com/vertice-lat/maestro/modules/masterdata/domain/schema"

// Catalog keys of the four hierarchy levels.
const (
	ProvincesKey = "provinces"
	CantonsKey   = "cantons"
	DistrictsKey = "districts"
	BarriosKey   = "barrios"
)

// Definitions declares the geographic hierarchy as catalog definitions, so
// the generic engine validates, imports and lists them. Listings follow the
// hierarchy codes instead of freshness: these tables are browsed, not
// monitored for changes.
func Definitions() []*schema.Definition {
	return []*schema.Definition{
		schema.NewDefinition(
			ProvincesKey, "Provincias", "geo_provinces",
			[]schema.Field{
				schema.Integer("code", schema.Required(), schema.Synonyms("código", "codigo")),
				schema.Text("name", schema.Required(), schema.MaxLength(120), schema.Synonyms("nombre", "provincia")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "name"),
			schema.WithOrderBy(schema.Order{Column: "code"}),
		),
		schema.NewDefinition(
			CantonsKey, "Cantones", "geo_cantons",
			[]schema.Field{
				schema.Integer("province_code", schema.Required(), schema.Synonyms("provincia", "código provincia")),
				schema.Integer("code", schema.Required(), schema.Synonyms("código", "codigo")),
				schema.Text("name", schema.Required(), schema.MaxLength(120), schema.Synonyms("nombre", "cantón", "canton")),
				schema.Text("province_name", schema.Derived()),
			},
			[]string{"province_code", "code"},
			schema.WithSearchable("name"),
			schema.WithOrderBy(
				schema.Order{Column: "province_code"},
				schema.Order{Column: "code"},
			),
		),
		schema.NewDefinition(
			DistrictsKey, "Distritos", "geo_districts",
			[]schema.Field{
				schema.Integer("province_code", schema.Required(), schema.Synonyms("provincia", "código provincia")),
				schema.Integer("canton_code", schema.Required(), schema.Synonyms("cantón", "canton", "código cantón")),
				schema.Integer("code", schema.Required(), schema.Synonyms("código", "codigo")),
				schema.Text("name", schema.Required(), schema.MaxLength(120), schema.Synonyms("nombre", "distrito")),
				schema.Text("province_name", schema.Derived()),
				schema.Text("canton_name", schema.Derived()),
			},
			[]string{"province_code", "canton_code", "code"},
			schema.WithSearchable("name"),
			schema.WithOrderBy(
				schema.Order{Column: "province_code"},
				schema.Order{Column: "canton_code"},
				schema.Order{Column: "name"},
			),
		),
		schema.NewDefinition(
			BarriosKey, "Barrios", "geo_barrios",
			[]schema.Field{
				schema.Integer("province_code", schema.Required(), schema.Synonyms("provincia", "código provincia")),
				schema.Integer("canton_code", schema.Required(), schema.Synonyms("cantón", "canton", "código cantón")),
				schema.Integer("district_code", schema.Synonyms("código distrito", "codigo distrito")),
				schema.Text("district_name", schema.MaxLength(120), schema.Synonyms("distrito")),
				schema.Text("name", schema.Required(), schema.MaxLength(120), schema.Synonyms("nombre", "barrio")),
				schema.Text("province_name", schema.Derived()),
				schema.Text("canton_name", schema.Derived()),
				schema.Text("province_key", schema.Derived()),
			},
			[]string{"province_code", "canton_code", "district_name", "name"},
			schema.WithSearchable("name", "district_name"),
			schema.WithOrderBy(
				schema.Order{Column: "province_code"},
				schema.Order{Column: "canton_code"},
				schema.Order{Column: "district_name"},
				schema.Order{Column: "name"},
			),
		),
	}
}
