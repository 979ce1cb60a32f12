package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lenderlist/lenders-proxy/internal/config"
	"github.com/lenderlist/lenders-proxy/internal/logger"
	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned when the API key or spreadsheet ID is missing.
var ErrNotConfigured = errors.New("sheets: api key or spreadsheet id not configured")

// ErrInvalidRequest is returned when the request URL cannot be built from the
// configured base URL and range. It never carries the URL itself.
var ErrInvalidRequest = errors.New("sheets: invalid request url")

// UpstreamError is a non-200 answer from the Sheets API.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("sheets API returned status %d", e.StatusCode)
}

// NetworkError is a transport failure talking to the Sheets API.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type Service struct {
	client    *http.Client
	baseURL   string
	cellRange string
	log       zerolog.Logger
}

type Option func(*Service)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

func WithBaseURL(u string) Option {
	return func(s *Service) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

func WithRange(r string) Option {
	return func(s *Service) {
		s.cellRange = r
	}
}

// NewService builds a client from the environment; opts override it.
//
// Redirects are never followed, including on a client passed with
// WithHTTPClient: a 3xx is relayed as an upstream error so the API key is not
// re-sent to another host.
func NewService(opts ...Option) *Service {
	s := &Service{
		client:    &http.Client{Timeout: config.GetSheetsTimeout()},
		baseURL:   strings.TrimRight(config.GetSheetsBaseURL(), "/"),
		cellRange: config.GetSheetsRange(),
		log:       logger.With(logger.SHEETS),
	}
	for _, o := range opts {
		o(s)
	}

	client := *s.client
	client.CheckRedirect = noRedirect
	s.client = &client

	placeholder := config.SheetsCredentials{APIKey: "key", SpreadsheetID: "id"}
	if _, err := url.Parse(s.URL(placeholder)); err != nil {
		s.cellRange = url.PathEscape(s.cellRange)
		if _, err := url.Parse(s.URL(placeholder)); err != nil {
			s.log.Error().Err(unwrapURLError(err)).Str("base_url", s.baseURL).Msg("Sheets base URL is invalid")
		} else {
			s.log.Warn().Str("range", s.cellRange).Msg("Sheets range is not a valid URL path, escaping it")
		}
	}

	s.log.Info().
		Str("base_url", s.baseURL).
		Str("range", s.cellRange).
		Msg("Sheets service initialized")

	return s
}

func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// URL returns the values endpoint for the configured range. It embeds the API
// key and must not be logged.
func (s *Service) URL(creds config.SheetsCredentials) string {
	return fmt.Sprintf("%s/%s/values/%s?key=%s",
		s.baseURL,
		url.PathEscape(creds.SpreadsheetID),
		s.cellRange,
		url.QueryEscape(creds.APIKey),
	)
}

// Fetch reads the configured range. A 200 answer returns the raw body; any
// other status is an *UpstreamError and transport failures are *NetworkError.
func (s *Service) Fetch(ctx context.Context, creds config.SheetsCredentials) ([]byte, error) {
	if creds.APIKey == "" || creds.SpreadsheetID == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(creds), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, unwrapURLError(err))
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: unwrapURLError(err)}
	}

	s.log.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Received response from Sheets API")

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}

// unwrapURLError drops the "Get <url>:" prefix net/http adds, which would
// otherwise leak the API key into error messages.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
