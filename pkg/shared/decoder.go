package shared

import (
	"net/http"
	"strconv"

	"github.com/go-playground/form"
	"github.com/gorilla/mux"
)

var Decoder = form.NewDecoder()

// DecodeQuery fills v from the request's query string using `form` tags.
func DecodeQuery(v any, r *http.Request) error {
	return Decoder.Decode(v, r.URL.Query())
}

// ParseID extracts the numeric {id} route variable.
func ParseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
