package services

import (
	"context"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	"github.com/vertice-lat/maestro/pkg/eventbus"
)

// RowHook runs after validation and before persistence on every write,
// single-entity and imported alike. Geography registers its enrichment here;
// plain catalogs have none.
type RowHook func(ctx context.Context, def *schema.Definition, record schema.Record) error

// HookRegistry maps catalog keys to their row hooks. Registered during module
// wiring, read-only afterwards.
type HookRegistry struct {
	hooks map[string]RowHook
}

func NewHookRegistry() *HookRegistry {
	return &HookRegistry{hooks: make(map[string]RowHook)}
}

func (h *HookRegistry) Register(key string, hook RowHook) {
	h.hooks[key] = hook
}

// For returns the hook for a catalog, or nil.
func (h *HookRegistry) For(key string) RowHook {
	return h.hooks[key]
}

type CatalogService struct {
	registry  *schema.Registry
	repo      schema.Repository
	hooks     *HookRegistry
	publisher eventbus.EventBus

	defaultLimit int
	maxLimit     int
}

func NewCatalogService(
	registry *schema.Registry,
	repo schema.Repository,
	hooks *HookRegistry,
	publisher eventbus.EventBus,
	defaultLimit, maxLimit int,
) *CatalogService {
	return &CatalogService{
		registry:     registry,
		repo:         repo,
		hooks:        hooks,
		publisher:    publisher,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Definitions returns every registered catalog in registration order.
func (s *CatalogService) Definitions() []*schema.Definition {
	return s.registry.All()
}

func (s *CatalogService) Definition(key string) (*schema.Definition, error) {
	return s.registry.Get(key)
}

// List clamps the parameters into system bounds before querying; the returned
// params reflect the effective page and limit.
func (s *CatalogService) List(ctx context.Context, key string, params *schema.FindParams) ([]schema.Record, int64, *schema.FindParams, error) {
	def, err := s.registry.Get(key)
	if err != nil {
		return nil, 0, nil, err
	}
	if params == nil {
		params = &schema.FindParams{}
	}
	params.Normalize(s.defaultLimit, s.maxLimit)

	records, total, err := s.repo.GetPaginated(ctx, def, params)
	if err != nil {
		return nil, 0, nil, err
	}
	return records, total, params, nil
}

func (s *CatalogService) GetByID(ctx context.Context, key string, id int64) (schema.Record, error) {
	def, err := s.registry.Get(key)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, def, id)
}

func (s *CatalogService) Create(ctx context.Context, key string, payload map[string]any) (schema.Record, error) {
	def, err := s.registry.Get(key)
	if err != nil {
		return nil, err
	}
	record, err := schema.Validate(def, payload, false)
	if err != nil {
		return nil, err
	}
	if hook := s.hooks.For(key); hook != nil {
		if err := hook(ctx, def, record); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.Create(ctx, def, record)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(RecordCreatedEvent{Catalog: def.Key, Result: created})
	return created, nil
}

// Update applies a partial payload. When the catalog has a row hook, the
// stored record is merged under the changes first so derived fields are
// recomputed from a complete view.
func (s *CatalogService) Update(ctx context.Context, key string, id int64, payload map[string]any) (schema.Record, error) {
	def, err := s.registry.Get(key)
	if err != nil {
		return nil, err
	}
	changes, err := schema.Validate(def, payload, true)
	if err != nil {
		return nil, err
	}

	if hook := s.hooks.For(key); hook != nil {
		current, err := s.repo.GetByID(ctx, def, id)
		if err != nil {
			return nil, err
		}
		merged := make(schema.Record, len(def.Fields))
		for i := range def.Fields {
			f := &def.Fields[i]
			if value, ok := current[f.Name]; ok {
				merged[f.Name] = value
			}
		}
		for name, value := range changes {
			merged[name] = value
		}
		if err := hook(ctx, def, merged); err != nil {
			return nil, err
		}
		changes = merged
	}

	updated, err := s.repo.Update(ctx, def, id, changes)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(RecordUpdatedEvent{Catalog: def.Key, Result: updated})
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, key string, id int64) error {
	def, err := s.registry.Get(key)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, def, id); err != nil {
		return err
	}
	s.publisher.Publish(RecordDeletedEvent{Catalog: def.Key, ID: id})
	return nil
}
