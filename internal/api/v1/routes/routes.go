package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	v1handlers "github.com/lenderlist/lenders-proxy/internal/api/v1/handlers"
	v1mware "github.com/lenderlist/lenders-proxy/internal/api/v1/middleware"
	"github.com/lenderlist/lenders-proxy/internal/services"
)

// NewRouter builds the full HTTP surface: lenders endpoints, health and metrics.
func NewRouter(services *services.Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(v1mware.RequestID)
	r.Use(services.GetMetrics().Middleware)
	r.NotFoundHandler = v1mware.RequestID(services.GetMetrics().Middleware(http.NotFoundHandler()))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		v1handlers.HandleHealth(services.GetRedisService(), w, req)
	}).Methods(http.MethodGet)
	r.Handle("/metrics", services.GetMetrics().Handler()).Methods(http.MethodGet)

	v1handlers.RegisterV1Routes(r, services)
	return r
}
