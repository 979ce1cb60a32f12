package config

import (
	"time"
)

const (
	DefaultSheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	DefaultSheetsRange   = "Lenders!A1:AE100"
)

// SheetsCredentials are read on every request so a redeploy of the
// environment takes effect without restarting the process.
type SheetsCredentials struct {
	APIKey        string
	SpreadsheetID string
}

func GetSheetsCredentials() SheetsCredentials {
	return SheetsCredentials{
		APIKey:        GetEnvOrDefault("GOOGLE_SHEETS_API_KEY", ""),
		SpreadsheetID: GetEnvOrDefault("SPREADSHEET_ID", ""),
	}
}

func GetSheetsBaseURL() string {
	return GetEnvOrDefault("SHEETS_BASE_URL", DefaultSheetsBaseURL)
}

func GetSheetsRange() string {
	return GetEnvOrDefault("SHEETS_RANGE", DefaultSheetsRange)
}

// GetSheetsTimeout returns the upstream request timeout. Zero means no timeout.
func GetSheetsTimeout() time.Duration {
	return parseEnvDuration("SHEETS_TIMEOUT", 0)
}
