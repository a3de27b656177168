package masterdata

import (
	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	"github.com/vertice-lat/maestro/modules/masterdata/handlers"
	"github.com/vertice-lat/maestro/modules/masterdata/infrastructure/persistence"
	"github.com/vertice-lat/maestro/modules/masterdata/presentation/controllers"
	"github.com/vertice-lat/maestro/modules/masterdata/services"
	"github.com/vertice-lat/maestro/pkg/application"
	"github.com/vertice-lat/maestro/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	registry := schema.NewRegistry(Catalogs()...)
	repo := persistence.NewCatalogRepository()
	hooks := services.NewHookRegistry()

	app.RegisterServices(
		services.NewCatalogService(registry, repo, hooks, app.EventPublisher(), conf.PageSize, conf.MaxPageSize),
		services.NewImportService(registry, repo, hooks, app.EventPublisher()),
	)

	handlers.RegisterCatalogEventHandlers(app)

	app.RegisterControllers(
		controllers.NewCatalogAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "masterdata"
}
