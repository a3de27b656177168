package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	"github.com/vertice-lat/maestro/modules/masterdata/services"
	"github.com/vertice-lat/maestro/pkg/application"
	"github.com/vertice-lat/maestro/pkg/configuration"
	"github.com/vertice-lat/maestro/pkg/httpapi"
	"github.com/vertice-lat/maestro/pkg/middleware"
	"github.com/vertice-lat/maestro/pkg/shared"
)

type CatalogAPIController struct {
	app       application.Application
	catalogs  *services.CatalogService
	imports   *services.ImportService
	basePath  string
	maxUpload int64
}

func NewCatalogAPIController(app application.Application) application.Controller {
	return &CatalogAPIController{
		app:       app,
		catalogs:  app.Service(services.CatalogService{}).(*services.CatalogService),
		imports:   app.Service(services.ImportService{}).(*services.ImportService),
		basePath:  "/masterdata/api",
		maxUpload: configuration.Use().MaxUploadSize,
	}
}

func (c *CatalogAPIController) Key() string {
	return c.basePath
}

func (c *CatalogAPIController) Register(r *mux.Router) {
	readRouter := r.PathPrefix(c.basePath).Subrouter()
	readRouter.Use(middleware.Authorize())
	readRouter.HandleFunc("/catalogs", c.ListCatalogs).Methods(http.MethodGet)
	readRouter.HandleFunc("/catalogs/{key}/records", c.ListRecords).Methods(http.MethodGet)
	readRouter.HandleFunc("/catalogs/{key}/records/{id:[0-9]+}", c.GetRecord).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(middleware.Authorize(), middleware.WithTransaction())
	writeRouter.HandleFunc("/catalogs/{key}/records", c.CreateRecord).Methods(http.MethodPost)
	writeRouter.HandleFunc("/catalogs/{key}/records/{id:[0-9]+}", c.UpdateRecord).Methods(http.MethodPut)
	writeRouter.HandleFunc("/catalogs/{key}/records/{id:[0-9]+}", c.DeleteRecord).Methods(http.MethodDelete)

	// Imports manage their own transaction and require elevated privilege.
	importRouter := r.PathPrefix(c.basePath).Subrouter()
	importRouter.Use(middleware.Authorize(), middleware.RequireAdmin())
	importRouter.HandleFunc("/catalogs/{key}/import", c.ImportRecords).Methods(http.MethodPost)
}

// CatalogSummary is one entry of the catalog listing.
type CatalogSummary struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (c *CatalogAPIController) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	defs := c.catalogs.Definitions()
	out := make([]CatalogSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, CatalogSummary{Key: def.Key, Label: def.Label})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *CatalogAPIController) ListRecords(w http.ResponseWriter, r *http.Request) {
	params := &schema.FindParams{}
	if err := shared.DecodeQuery(params, r); err != nil {
		WriteAPIError(w, r, http.StatusBadRequest, "MASTERDATA_BAD_QUERY", "invalid query parameters")
		return
	}

	records, total, effective, err := c.catalogs.List(r.Context(), mux.Vars(r)["key"], params)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, httpapi.NewPaginated(records, total, effective.Page, effective.Limit))
}

func (c *CatalogAPIController) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		WriteAPIError(w, r, http.StatusBadRequest, "MASTERDATA_BAD_ID", "invalid record id")
		return
	}
	record, err := c.catalogs.GetByID(r.Context(), mux.Vars(r)["key"], id)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (c *CatalogAPIController) CreateRecord(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	created, err := c.catalogs.Create(r.Context(), mux.Vars(r)["key"], payload)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (c *CatalogAPIController) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		WriteAPIError(w, r, http.StatusBadRequest, "MASTERDATA_BAD_ID", "invalid record id")
		return
	}
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	updated, err := c.catalogs.Update(r.Context(), mux.Vars(r)["key"], id, payload)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c *CatalogAPIController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		WriteAPIError(w, r, http.StatusBadRequest, "MASTERDATA_BAD_ID", "invalid record id")
		return
	}
	if err := c.catalogs.Delete(r.Context(), mux.Vars(r)["key"], id); err != nil {
		WriteDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (c *CatalogAPIController) ImportRecords(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUpload)
	if err := r.ParseMultipartForm(c.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteAPIError(w, r, http.StatusRequestEntityTooLarge, "MASTERDATA_FILE_TOO_LARGE", "uploaded file is too large")
			return
		}
		WriteAPIError(w, r, http.StatusBadRequest, "MASTERDATA_BAD_UPLOAD", "invalid multipart payload")
		return
	}

	mode, err := services.ParseMode(r.FormValue("mode"))
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, r, http.StatusBadRequest, "MASTERDATA_BAD_UPLOAD", "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := c.imports.Import(r.Context(), mux.Vars(r)["key"], header.Filename, file, mode)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, r, http.StatusBadRequest, "MASTERDATA_INVALID_JSON", "invalid json")
		return nil, false
	}
	return payload, true
}
