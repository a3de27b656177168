package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vertice-lat/maestro/modules/geography/domain/geo"
	geoservices "github.com/vertice-lat/maestro/modules/geography/services"
	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	mdcontrollers "github.com/vertice-lat/maestro/modules/masterdata/presentation/controllers"
	mdservices "github.com/vertice-lat/maestro/modules/masterdata/services"
	"github.com/vertice-lat/maestro/pkg/application"
	"github.com/vertice-lat/maestro/pkg/configuration"
	"github.com/vertice-lat/maestro/pkg/httpapi"
	"github.com/vertice-lat/maestro/pkg/middleware"
	"github.com/vertice-lat/maestro/pkg/shared"
)

type GeographyAPIController struct {
	app       application.Application
	levels    *geoservices.GeographyService
	imports   *geoservices.GeographyImportService
	basePath  string
	maxUpload int64
}

func NewGeographyAPIController(app application.Application) application.Controller {
	return &GeographyAPIController{
		app:       app,
		levels:    app.Service(geoservices.GeographyService{}).(*geoservices.GeographyService),
		imports:   app.Service(geoservices.GeographyImportService{}).(*geoservices.GeographyImportService),
		basePath:  "/geography/api",
		maxUpload: configuration.Use().MaxUploadSize,
	}
}

func (c *GeographyAPIController) Key() string {
	return c.basePath
}

func (c *GeographyAPIController) Register(r *mux.Router) {
	readRouter := r.PathPrefix(c.basePath).Subrouter()
	readRouter.Use(middleware.Authorize())
	readRouter.HandleFunc("/levels", c.ListLevels).Methods(http.MethodGet)
	readRouter.HandleFunc("/levels/{key}/records", c.ListRecords).Methods(http.MethodGet)
	readRouter.HandleFunc("/levels/{key}/records/{id:[0-9]+}", c.GetRecord).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(middleware.Authorize(), middleware.WithTransaction())
	writeRouter.HandleFunc("/levels/{key}/records", c.CreateRecord).Methods(http.MethodPost)
	writeRouter.HandleFunc("/levels/{key}/records/{id:[0-9]+}", c.UpdateRecord).Methods(http.MethodPut)
	writeRouter.HandleFunc("/levels/{key}/records/{id:[0-9]+}", c.DeleteRecord).Methods(http.MethodDelete)

	importRouter := r.PathPrefix(c.basePath).Subrouter()
	importRouter.Use(middleware.Authorize(), middleware.RequireAdmin())
	importRouter.HandleFunc("/levels/{key}/import", c.ImportRecords).Methods(http.MethodPost)
}

// geoFindParams layers the hierarchy filters on the generic pagination
// contract.
type geoFindParams struct {
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
	Search       string `form:"search"`
	ProvinceCode *int64 `form:"provinceCode"`
	CantonCode   *int64 `form:"cantonCode"`
	DistrictName string `form:"districtName"`
}

func (p *geoFindParams) toFindParams(level string) *schema.FindParams {
	filters := make(map[string]any)
	if p.ProvinceCode != nil {
		filters["province_code"] = *p.ProvinceCode
	}
	if p.CantonCode != nil {
		filters["canton_code"] = *p.CantonCode
	}
	if p.DistrictName != "" {
		// Districts carry the name on their own row; barrios reference it.
		if level == geo.DistrictsKey {
			filters["name"] = p.DistrictName
		} else {
			filters["district_name"] = p.DistrictName
		}
	}
	return &schema.FindParams{
		Page:    p.Page,
		Limit:   p.Limit,
		Search:  p.Search,
		Filters: filters,
	}
}

func (c *GeographyAPIController) ListLevels(w http.ResponseWriter, r *http.Request) {
	defs := c.levels.Definitions()
	out := make([]mdcontrollers.CatalogSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, mdcontrollers.CatalogSummary{Key: def.Key, Label: def.Label})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *GeographyAPIController) ListRecords(w http.ResponseWriter, r *http.Request) {
	query := &geoFindParams{}
	if err := shared.DecodeQuery(query, r); err != nil {
		mdcontrollers.WriteAPIError(w, r, http.StatusBadRequest, "GEOGRAPHY_BAD_QUERY", "invalid query parameters")
		return
	}

	key := mux.Vars(r)["key"]
	records, total, effective, err := c.levels.List(r.Context(), key, query.toFindParams(key))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, httpapi.NewPaginated(records, total, effective.Page, effective.Limit))
}

func (c *GeographyAPIController) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		mdcontrollers.WriteAPIError(w, r, http.StatusBadRequest, "GEOGRAPHY_BAD_ID", "invalid record id")
		return
	}
	record, err := c.levels.GetByID(r.Context(), mux.Vars(r)["key"], id)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, record)
}

func (c *GeographyAPIController) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		mdcontrollers.WriteAPIError(w, r, http.StatusBadRequest, "GEOGRAPHY_INVALID_JSON", "invalid json")
		return
	}
	created, err := c.levels.Create(r.Context(), mux.Vars(r)["key"], payload)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *GeographyAPIController) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		mdcontrollers.WriteAPIError(w, r, http.StatusBadRequest, "GEOGRAPHY_BAD_ID", "invalid record id")
		return
	}
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		mdcontrollers.WriteAPIError(w, r, http.StatusBadRequest, "GEOGRAPHY_INVALID_JSON", "invalid json")
		return
	}
	updated, err := c.levels.Update(r.Context(), mux.Vars(r)["key"], id, payload)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *GeographyAPIController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		mdcontrollers.WriteAPIError(w, r, http.StatusBadRequest, "GEOGRAPHY_BAD_ID", "invalid record id")
		return
	}
	if err := c.levels.Delete(r.Context(), mux.Vars(r)["key"], id); err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *GeographyAPIController) ImportRecords(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUpload)
	if err := r.ParseMultipartForm(c.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			mdcontrollers.WriteAPIError(w, r, http.StatusRequestEntityTooLarge, "GEOGRAPHY_FILE_TOO_LARGE", "uploaded file is too large")
			return
		}
		mdcontrollers.WriteAPIError(w, r, http.StatusBadRequest, "GEOGRAPHY_BAD_UPLOAD", "invalid multipart payload")
		return
	}

	mode, err := mdservices.ParseMode(r.FormValue("mode"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		mdcontrollers.WriteAPIError(w, r, http.StatusBadRequest, "GEOGRAPHY_BAD_UPLOAD", "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := c.imports.Import(r.Context(), mux.Vars(r)["key"], header.Filename, file, mode)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, result)
}

// writeError keeps the missing-ancestor message intact before falling back to
// the generic mapping.
func (c *GeographyAPIController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *geoservices.MissingParentError
	if errors.As(err, &missing) {
		mdcontrollers.WriteAPIError(w, r, http.StatusNotFound, "GEOGRAPHY_PARENT_NOT_FOUND", missing.Error())
		return
	}
	mdcontrollers.WriteDomainError(w, r, err)
}
