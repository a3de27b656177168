package masterdata

import "github.com/vertice-lat/maestro/modules/masterdata/domain/schema"

// Catalogs declares the fixed electronic-invoicing master-data vocabulary.
// Adding a catalog means adding a declaration here plus its migration; the
// engine picks it up without new control flow.
func Catalogs() []*schema.Definition {
	return []*schema.Definition{
		schema.NewDefinition(
			"document-types", "Tipos de documento", "md_document_types",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(10), schema.Synonyms("código", "codigo")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion", "tipo de documento")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
		schema.NewDefinition(
			"identification-types", "Tipos de identificación", "md_identification_types",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(10), schema.Synonyms("código", "codigo")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion", "tipo de identificación")),
				schema.Integer("length", schema.Synonyms("longitud", "dígitos", "digitos")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
		schema.NewDefinition(
			"tax-codes", "Códigos de impuesto", "md_tax_codes",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(10), schema.Synonyms("código", "codigo")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion", "impuesto")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
		schema.NewDefinition(
			"tax-rates", "Tarifas de impuesto", "md_tax_rates",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(10), schema.Synonyms("código", "codigo")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion")),
				schema.Decimal("rate", schema.Required(), schema.Precision(5, 2), schema.Synonyms("tarifa", "porcentaje")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
		schema.NewDefinition(
			"currencies", "Monedas", "md_currencies",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(3), schema.Synonyms("código", "codigo", "moneda")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion", "nombre")),
				schema.Text("symbol", schema.MaxLength(8), schema.Synonyms("símbolo", "simbolo")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
		schema.NewDefinition(
			"units-of-measure", "Unidades de medida", "md_units_of_measure",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(15), schema.Synonyms("código", "codigo", "unidad")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
		schema.NewDefinition(
			"payment-methods", "Medios de pago", "md_payment_methods",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(10), schema.Synonyms("código", "codigo")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion", "medio de pago")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
		schema.NewDefinition(
			"sale-conditions", "Condiciones de venta", "md_sale_conditions",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(10), schema.Synonyms("código", "codigo")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion", "condición de venta")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
		schema.NewDefinition(
			"exoneration-types", "Tipos de exoneración", "md_exoneration_types",
			[]schema.Field{
				schema.Text("code", schema.Required(), schema.MaxLength(10), schema.Synonyms("código", "codigo")),
				schema.Text("description", schema.Required(), schema.MaxLength(160), schema.Synonyms("descripción", "descripcion", "tipo de exoneración")),
			},
			[]string{"code"},
			schema.WithSearchable("code", "description"),
		),
	}
}
