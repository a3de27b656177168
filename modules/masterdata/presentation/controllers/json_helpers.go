package controllers

import (
	"errors"
	"net/http"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	"github.com/vertice-lat/maestro/pkg/composables"
	"github.com/vertice-lat/maestro/pkg/httpapi"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	_ = httpapi.WriteJSON(w, status, payload)
}

func WriteAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var meta map[string]string
	if params, ok := composables.UseParams(r.Context()); ok && params.RequestID != "" {
		meta = map[string]string{"request_id": params.RequestID}
	}
	_ = httpapi.WriteError(w, status, code, message, meta)
}

// WriteDomainError maps engine errors onto the API taxonomy: validation 400,
// unknown catalog and missing records 404, unique-key conflicts 409,
// everything else 500.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *schema.ValidationError
	switch {
	case errors.As(err, &vErr):
		WriteAPIError(w, r, http.StatusBadRequest, "MASTERDATA_VALIDATION", vErr.Error())
	case errors.Is(err, schema.ErrUnknownCatalog):
		WriteAPIError(w, r, http.StatusNotFound, "MASTERDATA_UNKNOWN_CATALOG", "unknown catalog")
	case errors.Is(err, schema.ErrNotFound):
		WriteAPIError(w, r, http.StatusNotFound, "MASTERDATA_NOT_FOUND", "record not found")
	case errors.Is(err, schema.ErrDuplicate):
		WriteAPIError(w, r, http.StatusConflict, "MASTERDATA_DUPLICATE", "record already exists")
	default:
		WriteAPIError(w, r, http.StatusInternalServerError, "MASTERDATA_INTERNAL", "internal error")
	}
}
