package modules

import (
	"github.com/vertice-lat/maestro/modules/geography"
	"github.com/vertice-lat/maestro/modules/masterdata"
	"github.com/vertice-lat/maestro/pkg/application"
)

// BuiltInModules lists every module the server loads.
var BuiltInModules = []application.Module{
	masterdata.NewModule(),
	geography.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	return application.Load(app, externalModules...)
}
