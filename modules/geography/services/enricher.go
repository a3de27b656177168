package services

import (
	"context"
	"errors"

	"github.com/vertice-lat/maestro/modules/geography/domain/geo"
	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
)

// MissingParentError reports a child record whose declared ancestor does not
// exist. It is a NotFound-class failure: request-level on single-entity
// writes, row-level during imports.
type MissingParentError struct {
	Level string
}

func (e *MissingParentError) Error() string {
	return e.Level + " not found"
}

func (e *MissingParentError) Is(target error) bool {
	return target == schema.ErrNotFound
}

// Enricher resolves a child's parent codes against stored parent rows and
// recomputes the denormalized name fields. Caller-supplied values for those
// fields never survive; they are a cache of the live parent, not input.
type Enricher struct {
	repo      schema.Repository
	provinces *schema.Definition
	cantons   *schema.Definition
	districts *schema.Definition
}

func NewEnricher(repo schema.Repository, registry *schema.Registry) (*Enricher, error) {
	provinces, err := registry.Get(geo.ProvincesKey)
	if err != nil {
		return nil, err
	}
	cantons, err := registry.Get(geo.CantonsKey)
	if err != nil {
		return nil, err
	}
	districts, err := registry.Get(geo.DistrictsKey)
	if err != nil {
		return nil, err
	}
	return &Enricher{
		repo:      repo,
		provinces: provinces,
		cantons:   cantons,
		districts: districts,
	}, nil
}

// Hook is registered as the row hook for every geography level. Provinces
// have no ancestors and pass through.
func (e *Enricher) Hook(ctx context.Context, def *schema.Definition, record schema.Record) error {
	switch def.Key {
	case geo.CantonsKey:
		return e.enrichCanton(ctx, record)
	case geo.DistrictsKey:
		return e.enrichDistrict(ctx, record)
	case geo.BarriosKey:
		return e.enrichBarrio(ctx, record)
	default:
		return nil
	}
}

func (e *Enricher) enrichCanton(ctx context.Context, record schema.Record) error {
	province, err := e.findProvince(ctx, record["province_code"])
	if err != nil {
		return err
	}
	record["province_name"] = province["name"]
	return nil
}

func (e *Enricher) enrichDistrict(ctx context.Context, record schema.Record) error {
	canton, err := e.findCanton(ctx, record["province_code"], record["canton_code"])
	if err != nil {
		return err
	}
	record["province_name"] = canton["province_name"]
	record["canton_name"] = canton["name"]
	return nil
}

func (e *Enricher) enrichBarrio(ctx context.Context, record schema.Record) error {
	province, err := e.findProvince(ctx, record["province_code"])
	if err != nil {
		return err
	}
	canton, err := e.findCanton(ctx, record["province_code"], record["canton_code"])
	if err != nil {
		return err
	}
	district, err := e.findDistrict(ctx, record)
	if err != nil {
		return err
	}

	// The district's canonical code and name win over whatever the caller
	// sent, so a name-only barrio still ends up with the code filled in.
	record["district_code"] = district["code"]
	record["district_name"] = district["name"]
	record["province_name"] = province["name"]
	record["canton_name"] = canton["name"]
	record["province_key"] = schema.Slug(province["name"].(string))
	return nil
}

func (e *Enricher) findProvince(ctx context.Context, code any) (schema.Record, error) {
	return e.find(ctx, e.provinces, map[string]any{"code": code}, "province")
}

func (e *Enricher) findCanton(ctx context.Context, provinceCode, code any) (schema.Record, error) {
	return e.find(ctx, e.cantons, map[string]any{
		"province_code": provinceCode,
		"code":          code,
	}, "canton")
}

// findDistrict resolves by code when the barrio carries one, by name
// otherwise.
func (e *Enricher) findDistrict(ctx context.Context, record schema.Record) (schema.Record, error) {
	filters := map[string]any{
		"province_code": record["province_code"],
		"canton_code":   record["canton_code"],
	}
	if code, ok := record["district_code"]; ok {
		filters["code"] = code
	} else if name, ok := record["district_name"]; ok {
		filters["name"] = name
	} else {
		return nil, &MissingParentError{Level: "district"}
	}
	return e.find(ctx, e.districts, filters, "district")
}

func (e *Enricher) find(ctx context.Context, def *schema.Definition, filters map[string]any, level string) (schema.Record, error) {
	record, err := e.repo.FindOne(ctx, def, filters)
	if err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			return nil, &MissingParentError{Level: level}
		}
		return nil, err
	}
	return record, nil
}
