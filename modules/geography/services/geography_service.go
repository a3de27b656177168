package services

import (
	mdservices "github.com/vertice-lat/maestro/modules/masterdata/services"
)

// GeographyService serves the hierarchy levels through the generic catalog
// engine. The distinct type gives it its own slot in the service registry.
type GeographyService struct {
	*mdservices.CatalogService
}

func NewGeographyService(catalogs *mdservices.CatalogService) *GeographyService {
	return &GeographyService{CatalogService: catalogs}
}

type GeographyImportService struct {
	*mdservices.ImportService
}

func NewGeographyImportService(imports *mdservices.ImportService) *GeographyImportService {
	return &GeographyImportService{ImportService: imports}
}
