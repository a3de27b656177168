package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vertice-lat/maestro/pkg/application"
	"github.com/vertice-lat/maestro/pkg/configuration"
	"github.com/vertice-lat/maestro/pkg/constants"
	"github.com/vertice-lat/maestro/pkg/httpapi"
	"github.com/vertice-lat/maestro/pkg/middleware"
	"github.com/vertice-lat/maestro/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the shared middleware stack and the HTTP server. Route
// registration itself belongs to the modules' controllers.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.Cors(allowedOrigins(options.Configuration)...),
	}

	if options.Configuration.RateLimit.Enabled {
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: options.Configuration.RateLimit.GlobalRPS,
			Store:             middleware.NewMemoryStore(),
		}))
	}

	middlewares = append(middlewares, middleware.RequestParams())

	app.RegisterMiddleware(middlewares...)
	app.RegisterControllers(NewHealthController(options.Pool))

	return server.NewHTTPServer(app, notFound(), methodNotAllowed()), nil
}

func allowedOrigins(conf *configuration.Configuration) []string {
	parts := strings.Split(conf.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func notFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
}

func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
}
