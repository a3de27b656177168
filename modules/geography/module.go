package geography

import (
	"github.com/vertice-lat/maestro/modules/geography/domain/geo"
	"github.com/vertice-lat/maestro/modules/geography/presentation/controllers"
	"github.com/vertice-lat/maestro/modules/geography/services"
	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	"github.com/vertice-lat/maestro/modules/masterdata/infrastructure/persistence"
	mdservices "github.com/vertice-lat/maestro/modules/masterdata/services"
	"github.com/vertice-lat/maestro/pkg/application"
	"github.com/vertice-lat/maestro/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

// Register wires the four hierarchy levels through the generic catalog
// engine, with the enricher installed as the row hook so parent resolution
// runs on every write path.
func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	registry := schema.NewRegistry(geo.Definitions()...)
	repo := persistence.NewCatalogRepository()
	hooks := mdservices.NewHookRegistry()

	enricher, err := services.NewEnricher(repo, registry)
	if err != nil {
		return err
	}
	for _, def := range registry.All() {
		hooks.Register(def.Key, enricher.Hook)
	}

	catalogs := mdservices.NewCatalogService(registry, repo, hooks, app.EventPublisher(), conf.PageSize, conf.MaxPageSize)
	imports := mdservices.NewImportService(registry, repo, hooks, app.EventPublisher())

	app.RegisterServices(
		services.NewGeographyService(catalogs),
		services.NewGeographyImportService(imports),
	)

	app.RegisterControllers(
		controllers.NewGeographyAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "geography"
}
