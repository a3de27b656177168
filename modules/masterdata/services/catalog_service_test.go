package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
)

func taxRatesRegistry() *schema.Registry {
	return schema.NewRegistry(schema.NewDefinition(
		"tax-rates", "Tarifas de impuesto", "md_tax_rates",
		[]schema.Field{
			schema.Text("code", schema.Required(), schema.MaxLength(10), schema.Synonyms("código")),
			schema.Text("description", schema.Required(), schema.Synonyms("descripción")),
			schema.Decimal("rate", schema.Required(), schema.Precision(5, 2), schema.Synonyms("tarifa")),
		},
		[]string{"code"},
		schema.WithSearchable("code", "description"),
	))
}

func newCatalogService(repo schema.Repository) *CatalogService {
	return NewCatalogService(taxRatesRegistry(), repo, NewHookRegistry(), &stubPublisher{}, 50, 200)
}

func TestCatalogService_CreateValidatesPayload(t *testing.T) {
	repo := newMockRepo()
	svc := newCatalogService(repo)

	created, err := svc.Create(context.Background(), "tax-rates", map[string]any{
		"code":        "08",
		"description": "Tarifa general",
		"rate":        "13,00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created["id"])
	assert.True(t, created["rate"].(decimal.Decimal).Equal(decimal.RequireFromString("13")))

	_, err = svc.Create(context.Background(), "tax-rates", map[string]any{
		"code": "09",
		"rate": "4",
	})
	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "description", vErr.Field)
	assert.Len(t, repo.all(mustDef(t, svc, "tax-rates")), 1, "invalid payload must not reach the repository")
}

func TestCatalogService_CreateDuplicate(t *testing.T) {
	svc := newCatalogService(newMockRepo())

	payload := map[string]any{"code": "08", "description": "Tarifa general", "rate": "13"}
	_, err := svc.Create(context.Background(), "tax-rates", payload)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "tax-rates", payload)
	require.ErrorIs(t, err, schema.ErrDuplicate)
}

func TestCatalogService_UnknownCatalog(t *testing.T) {
	svc := newCatalogService(newMockRepo())

	_, _, _, err := svc.List(context.Background(), "planets", nil)
	require.ErrorIs(t, err, schema.ErrUnknownCatalog)
}

func TestCatalogService_ListClampsLimit(t *testing.T) {
	svc := newCatalogService(newMockRepo())

	_, _, params, err := svc.List(context.Background(), "tax-rates", &schema.FindParams{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 200, params.Limit)
	assert.Equal(t, 1, params.Page)

	_, _, params, err = svc.List(context.Background(), "tax-rates", nil)
	require.NoError(t, err)
	assert.Equal(t, 50, params.Limit)
}

func TestCatalogService_UpdateRunsHookOnMergedRecord(t *testing.T) {
	repo := newMockRepo()
	registry := schema.NewRegistry(schema.NewDefinition(
		"cantons", "Cantones", "geo_cantons",
		[]schema.Field{
			schema.Integer("province_code", schema.Required()),
			schema.Integer("code", schema.Required()),
			schema.Text("name", schema.Required()),
			schema.Text("province_name", schema.Derived()),
		},
		[]string{"province_code", "code"},
	))
	hooks := NewHookRegistry()
	var hookSaw schema.Record
	hooks.Register("cantons", func(_ context.Context, _ *schema.Definition, record schema.Record) error {
		hookSaw = cloneRecord(record)
		record["province_name"] = "San José"
		return nil
	})
	svc := NewCatalogService(registry, repo, hooks, &stubPublisher{}, 50, 200)

	created, err := svc.Create(context.Background(), "cantons", map[string]any{
		"province_code": "1",
		"code":          "3",
		"name":          "Desamparados",
	})
	require.NoError(t, err)
	assert.Equal(t, "San José", created["province_name"])

	updated, err := svc.Update(context.Background(), "cantons", created["id"].(int64), map[string]any{
		"name": "Desamparados Centro",
	})
	require.NoError(t, err)

	// The hook sees the stored codes merged under the partial change.
	assert.Equal(t, int64(1), hookSaw["province_code"])
	assert.Equal(t, "Desamparados Centro", hookSaw["name"])
	assert.Equal(t, "San José", updated["province_name"])
}

func TestCatalogService_PublishesTypedEvents(t *testing.T) {
	repo := newMockRepo()
	pub := &stubPublisher{}
	svc := NewCatalogService(taxRatesRegistry(), repo, NewHookRegistry(), pub, 50, 200)

	created, err := svc.Create(context.Background(), "tax-rates", map[string]any{
		"code":        "08",
		"description": "Tarifa general",
		"rate":        "13",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "tax-rates", created["id"].(int64))
	require.NoError(t, err)

	require.Len(t, pub.published, 2)
	createdEvent, ok := pub.published[0][0].(RecordCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "tax-rates", createdEvent.Catalog)
	assert.Equal(t, created["id"], createdEvent.Result["id"])

	deletedEvent, ok := pub.published[1][0].(RecordDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, created["id"], deletedEvent.ID)
}

func TestCatalogService_DeleteNotFound(t *testing.T) {
	svc := newCatalogService(newMockRepo())

	err := svc.Delete(context.Background(), "tax-rates", 42)
	require.ErrorIs(t, err, schema.ErrNotFound)
}

func mustDef(t *testing.T, svc *CatalogService, key string) *schema.Definition {
	t.Helper()
	def, err := svc.Definition(key)
	require.NoError(t, err)
	return def
}
