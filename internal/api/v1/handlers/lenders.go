package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/lenderlist/lenders-proxy/internal/config"
	"github.com/lenderlist/lenders-proxy/internal/infrastructure/sheets"
	"github.com/lenderlist/lenders-proxy/internal/metrics"
	"github.com/lenderlist/lenders-proxy/pkg/httpext"
	"github.com/rs/zerolog"
)

const (
	ConfigErrorMessage   = "Server configuration error"
	UpstreamErrorMessage = "Failed to fetch data from Google Sheets"
	networkErrorPrefix   = "Network error: "
)

// HandleLenders relays the Lenders range from the Sheets API. CORS and rate
// limiting are applied by middleware before it runs.
func HandleLenders(sheetsService *sheets.Service, m *metrics.ServerMetrics, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	creds := config.GetSheetsCredentials()
	if creds.APIKey == "" || creds.SpreadsheetID == "" {
		logger.Error().
			Bool("api_key_set", creds.APIKey != "").
			Bool("spreadsheet_id_set", creds.SpreadsheetID != "").
			Msg("Missing environment variables")
		httpext.JsonError(w, ConfigErrorMessage, http.StatusInternalServerError)
		return
	}

	start := time.Now()
	body, err := sheetsService.Fetch(r.Context(), creds)
	elapsed := time.Since(start)

	var (
		upstreamErr *sheets.UpstreamError
		networkErr  *sheets.NetworkError
	)

	switch {
	case err == nil:
		observe(m, metrics.OutcomeSuccess, elapsed)
		logger.Info().Int("bytes", len(body)).Dur("upstream_duration", elapsed).Msg("Lenders fetched")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			logger.Debug().Err(err).Msg("Failed to write response")
		}

	case errors.As(err, &upstreamErr):
		observe(m, metrics.OutcomeUpstreamError, elapsed)
		logger.Error().
			Int("status", upstreamErr.StatusCode).
			Str("body", string(upstreamErr.Body)).
			Msg("Google Sheets API error")

		httpext.JsonErrorWithDetails(w, upstreamErr.StatusCode, httpext.ErrorResponse{
			Error:   UpstreamErrorMessage,
			Details: string(upstreamErr.Body),
		})

	case errors.Is(err, sheets.ErrNotConfigured):
		logger.Error().Msg("Missing environment variables")
		httpext.JsonError(w, ConfigErrorMessage, http.StatusInternalServerError)

	case errors.Is(err, sheets.ErrInvalidRequest):
		logger.Error().Err(err).Msg("Sheets request URL is invalid")
		httpext.JsonError(w, ConfigErrorMessage, http.StatusInternalServerError)

	case errors.As(err, &networkErr):
		observe(m, metrics.OutcomeNetworkError, elapsed)
		logger.Error().Err(networkErr.Err).Msg("Request error")
		httpext.JsonError(w, networkErrorPrefix+networkErr.Error(), http.StatusInternalServerError)

	default:
		// Unknown errors stay out of the response body.
		observe(m, metrics.OutcomeNetworkError, elapsed)
		logger.Error().Err(err).Msg("Request error")
		httpext.JsonError(w, UpstreamErrorMessage, http.StatusInternalServerError)
	}
}

func observe(m *metrics.ServerMetrics, outcome string, d time.Duration) {
	if m != nil {
		m.ObserveUpstream(outcome, d)
	}
}
