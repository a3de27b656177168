package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vertice-lat/maestro/modules/geography/domain/geo"
	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	mdservices "github.com/vertice-lat/maestro/modules/masterdata/services"
)

// memoryRepo is a minimal in-memory schema.Repository for enrichment tests.
type memoryRepo struct {
	records map[string][]schema.Record
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string][]schema.Record)}
}

func (m *memoryRepo) seed(def *schema.Definition, records ...schema.Record) {
	for _, r := range records {
		m.nextID++
		r["id"] = m.nextID
		m.records[def.Key] = append(m.records[def.Key], r)
	}
}

func (m *memoryRepo) GetPaginated(_ context.Context, def *schema.Definition, _ *schema.FindParams) ([]schema.Record, int64, error) {
	all := m.records[def.Key]
	return all, int64(len(all)), nil
}

func (m *memoryRepo) GetByID(_ context.Context, def *schema.Definition, id int64) (schema.Record, error) {
	for _, r := range m.records[def.Key] {
		if r["id"] == id {
			return r, nil
		}
	}
	return nil, schema.ErrNotFound
}

func (m *memoryRepo) FindOne(_ context.Context, def *schema.Definition, filters map[string]any) (schema.Record, error) {
	for _, r := range m.records[def.Key] {
		matched := true
		for name, want := range filters {
			if r[name] != want {
				matched = false
				break
			}
		}
		if matched {
			return r, nil
		}
	}
	return nil, schema.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, def *schema.Definition, record schema.Record) (schema.Record, error) {
	m.nextID++
	record["id"] = m.nextID
	m.records[def.Key] = append(m.records[def.Key], record)
	return record, nil
}

func (m *memoryRepo) Update(_ context.Context, def *schema.Definition, id int64, record schema.Record) (schema.Record, error) {
	for i, r := range m.records[def.Key] {
		if r["id"] == id {
			for name, value := range record {
				r[name] = value
			}
			m.records[def.Key][i] = r
			return r, nil
		}
	}
	return nil, schema.ErrNotFound
}

func (m *memoryRepo) Delete(_ context.Context, def *schema.Definition, id int64) error {
	for i, r := range m.records[def.Key] {
		if r["id"] == id {
			m.records[def.Key] = append(m.records[def.Key][:i], m.records[def.Key][i+1:]...)
			return nil
		}
	}
	return schema.ErrNotFound
}

func (m *memoryRepo) UpsertBatch(_ context.Context, def *schema.Definition, records []schema.Record) (int, error) {
	for _, r := range records {
		m.nextID++
		r["id"] = m.nextID
		m.records[def.Key] = append(m.records[def.Key], r)
	}
	return len(records), nil
}

func (m *memoryRepo) DeleteAll(_ context.Context, def *schema.Definition) error {
	m.records[def.Key] = nil
	return nil
}

func (m *memoryRepo) LockForImport(_ context.Context, _ *schema.Definition) error {
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(args ...interface{})     {}
func (noopPublisher) Subscribe(handler interface{})   {}
func (noopPublisher) Unsubscribe(handler interface{}) {}
func (noopPublisher) Clear()                          {}
func (noopPublisher) SubscribersCount() int           { return 0 }

type fixture struct {
	registry *schema.Registry
	repo     *memoryRepo
	enricher *Enricher
	catalogs *mdservices.CatalogService
	imports  *mdservices.ImportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	registry := schema.NewRegistry(geo.Definitions()...)
	repo := newMemoryRepo()
	enricher, err := NewEnricher(repo, registry)
	require.NoError(t, err)

	hooks := mdservices.NewHookRegistry()
	for _, def := range registry.All() {
		hooks.Register(def.Key, enricher.Hook)
	}
	return &fixture{
		registry: registry,
		repo:     repo,
		enricher: enricher,
		catalogs: mdservices.NewCatalogService(registry, repo, hooks, noopPublisher{}, 50, 200),
		imports:  mdservices.NewImportService(registry, repo, hooks, noopPublisher{}),
	}
}

func (f *fixture) def(t *testing.T, key string) *schema.Definition {
	t.Helper()
	def, err := f.registry.Get(key)
	require.NoError(t, err)
	return def
}

func (f *fixture) seedHierarchy(t *testing.T) {
	t.Helper()
	f.repo.seed(f.def(t, geo.ProvincesKey),
		schema.Record{"code": int64(1), "name": "San José"},
	)
	f.repo.seed(f.def(t, geo.CantonsKey),
		schema.Record{"province_code": int64(1), "code": int64(1), "name": "Central", "province_name": "San José"},
	)
	f.repo.seed(f.def(t, geo.DistrictsKey),
		schema.Record{
			"province_code": int64(1), "canton_code": int64(1), "code": int64(2),
			"name": "Zapote", "province_name": "San José", "canton_name": "Central",
		},
	)
}

func TestEnricher_CantonCopiesProvinceName(t *testing.T) {
	f := newFixture(t)
	f.seedHierarchy(t)

	created, err := f.catalogs.Create(context.Background(), geo.CantonsKey, map[string]any{
		"province_code": "1",
		"code":          "3",
		"name":          "Desamparados",
	})
	require.NoError(t, err)
	assert.Equal(t, "San José", created["province_name"])
}

func TestEnricher_CantonMissingProvince(t *testing.T) {
	f := newFixture(t)
	f.seedHierarchy(t)

	_, err := f.catalogs.Create(context.Background(), geo.CantonsKey, map[string]any{
		"province_code": "9",
		"code":          "1",
		"name":          "Fantasma",
	})
	var missing *MissingParentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "province not found", missing.Error())
	require.ErrorIs(t, err, schema.ErrNotFound)
}

func TestEnricher_DistrictCopiesAncestorNames(t *testing.T) {
	f := newFixture(t)
	f.seedHierarchy(t)

	created, err := f.catalogs.Create(context.Background(), geo.DistrictsKey, map[string]any{
		"province_code": "1",
		"canton_code":   "1",
		"code":          "3",
		"name":          "Hospital",
	})
	require.NoError(t, err)
	assert.Equal(t, "San José", created["province_name"])
	assert.Equal(t, "Central", created["canton_name"])
}

func TestEnricher_BarrioResolvesDistrictByName(t *testing.T) {
	f := newFixture(t)
	f.seedHierarchy(t)

	created, err := f.catalogs.Create(context.Background(), geo.BarriosKey, map[string]any{
		"province_code": "1",
		"canton_code":   "1",
		"district_name": "Zapote",
		"name":          "Quesada Durán",
	})
	require.NoError(t, err)

	// The resolved district's code is backfilled, never left null.
	assert.Equal(t, int64(2), created["district_code"])
	assert.Equal(t, "Zapote", created["district_name"])
	assert.Equal(t, "San José", created["province_name"])
	assert.Equal(t, "Central", created["canton_name"])
	assert.Equal(t, "san-jose", created["province_key"])
}

func TestEnricher_BarrioResolvesDistrictByCode(t *testing.T) {
	f := newFixture(t)
	f.seedHierarchy(t)

	created, err := f.catalogs.Create(context.Background(), geo.BarriosKey, map[string]any{
		"province_code": "1",
		"canton_code":   "1",
		"district_code": "2",
		"name":          "Córdoba",
	})
	require.NoError(t, err)
	assert.Equal(t, "Zapote", created["district_name"])
}

func TestEnricher_BarrioMissingDistrict(t *testing.T) {
	f := newFixture(t)
	f.seedHierarchy(t)

	_, err := f.catalogs.Create(context.Background(), geo.BarriosKey, map[string]any{
		"province_code": "1",
		"canton_code":   "1",
		"district_name": "Inexistente",
		"name":          "Perdido",
	})
	var missing *MissingParentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "district not found", missing.Error())
}

func TestEnricher_UpdateRecomputesDerivedNames(t *testing.T) {
	f := newFixture(t)
	f.seedHierarchy(t)
	f.repo.seed(f.def(t, geo.ProvincesKey),
		schema.Record{"code": int64(2), "name": "Alajuela"},
	)
	f.repo.seed(f.def(t, geo.CantonsKey),
		schema.Record{"province_code": int64(2), "code": int64(1), "name": "Alajuela", "province_name": "Alajuela"},
	)

	created, err := f.catalogs.Create(context.Background(), geo.DistrictsKey, map[string]any{
		"province_code": "1",
		"canton_code":   "1",
		"code":          "4",
		"name":          "Catedral",
	})
	require.NoError(t, err)

	updated, err := f.catalogs.Update(context.Background(), geo.DistrictsKey, created["id"].(int64), map[string]any{
		"province_code": "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alajuela", updated["province_name"])
	assert.Equal(t, "Alajuela", updated["canton_name"])
}

func geoWorkbook(t *testing.T, rows [][]any) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestGeographyImport_MissingProvinceIsRowError(t *testing.T) {
	f := newFixture(t)
	f.seedHierarchy(t)

	file := geoWorkbook(t, [][]any{
		{"Código Provincia", "Código", "Nombre"},
		{"7", "1", "Talamanca"},
		{"8", "2", "Golfito"},
	})
	result, err := f.imports.Import(context.Background(), geo.CantonsKey, "cantones.xlsx", file, mdservices.ModeAppend)
	require.NoError(t, err, "the import call itself succeeds with a partial result")

	assert.Zero(t, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "province not found", result.Errors[0].Message)
	assert.Equal(t, 3, result.Errors[1].Row)
}
