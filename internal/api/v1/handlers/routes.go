package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	v1mware "github.com/lenderlist/lenders-proxy/internal/api/v1/middleware"
	"github.com/lenderlist/lenders-proxy/internal/services"
	"github.com/lenderlist/lenders-proxy/pkg/httpext"
)

// LegacyLendersPath is where the endpoint lived as a Netlify function.
// Existing front-ends still call it.
const LegacyLendersPath = "/.netlify/functions/get-lenders"

// LendersHandler returns the lenders endpoint with its CORS and rate-limit
// middleware applied.
func LendersHandler(services *services.Services) http.Handler {
	m := services.GetMetrics()

	lenders := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleLenders(services.GetSheetsService(), m, w, r)
	})

	rateLimited := v1mware.RateLimit(services.GetLimiter(),
		v1mware.WithOnDenied(func(string) { m.IncRateLimitDenied() }),
		v1mware.WithOnError(func(string, error) { m.IncRateLimitError() }),
	)(lenders)

	return v1mware.CORS(httpext.DefaultCORSOptions)(rateLimited)
}

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	lenders := LendersHandler(services)

	// v1 routes
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Handle("/lenders", lenders)

	router.Handle(LegacyLendersPath, lenders)
}
