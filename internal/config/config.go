// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// DefaultPassword is the shared-secret fallback used when APP_PASSWORD is not
// set. It exists so the app starts out of the box, but main logs a loud
// warning when it is in effect.
const DefaultPassword = "0000"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Sheet     SheetConfig
	ImageHost ImageHostConfig
	Auth      AuthConfig
	Directory DirectoryConfig
	Audit     AuditConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// SheetConfig holds the Google Sheets backend settings.
type SheetConfig struct {
	// SpreadsheetID is the document key of the membership sheet (required)
	SpreadsheetID string `env:"SHEET_SPREADSHEET_ID" required:"true"`

	// Name is the worksheet title. Empty targets the first worksheet,
	// which is where the directory lives.
	Name string `env:"SHEET_NAME"`

	// CredentialsFile is a path to a service-account JSON key file.
	CredentialsFile string `env:"SHEET_CREDENTIALS_FILE"`

	// CredentialsJSON is the service-account key material itself, for
	// deployments that inject secrets via the environment. Takes
	// precedence over CredentialsFile when both are set.
	CredentialsJSON string `env:"SHEET_CREDENTIALS_JSON"`

	// MaxRetries is the number of attempts for rate-limited API calls (default: 5)
	MaxRetries int `env:"SHEET_MAX_RETRIES" default:"5"`

	// RequestTimeout bounds a single Sheets API call (default: 30s)
	RequestTimeout time.Duration `env:"SHEET_REQUEST_TIMEOUT" default:"30s"`
}

// ImageHostConfig holds settings for the external photo host.
type ImageHostConfig struct {
	// Endpoint is the upload URL of the imgbb-style API (default: imgbb v1)
	Endpoint string `env:"IMAGE_HOST_ENDPOINT" default:"https://api.imgbb.com/1/upload"`

	// APIKey authenticates uploads. Empty disables photo uploads; saves
	// then keep whatever photo URL the row already has.
	APIKey string `env:"IMAGE_HOST_API_KEY"`

	// Expiration is the hosted image lifetime in seconds, 0 = never expire (default: 0)
	Expiration int `env:"IMAGE_HOST_EXPIRATION" default:"0"`

	// Timeout bounds a single upload request (default: 15s)
	Timeout time.Duration `env:"IMAGE_HOST_TIMEOUT" default:"15s"`
}

// AuthConfig holds the login gate settings.
type AuthConfig struct {
	// Password is the shared secret for the admin login (default: DefaultPassword)
	Password string `env:"APP_PASSWORD" default:"0000"`

	// SessionTTL is how long an issued session token stays valid (default: 12h)
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" default:"12h"`
}

// DirectoryConfig holds directory view settings.
type DirectoryConfig struct {
	// GridColumns is the card-layout width for the directory view (default: 4)
	GridColumns int `env:"DIRECTORY_GRID_COLUMNS" default:"4"`

	// SearchField restricts free-text search to a single column.
	// Empty searches every field.
	SearchField string `env:"DIRECTORY_SEARCH_FIELD"`

	// NameColumn is the member name column header (default: 이름)
	NameColumn string `env:"DIRECTORY_NAME_COLUMN" default:"이름"`

	// PhoneColumn is the phone number column header (default: 전화번호)
	PhoneColumn string `env:"DIRECTORY_PHONE_COLUMN" default:"전화번호"`

	// PhotoColumn is the photo URL column header (default: 사진)
	PhotoColumn string `env:"DIRECTORY_PHOTO_COLUMN" default:"사진"`
}

// AuditConfig holds the local edit-audit trail settings.
type AuditConfig struct {
	// Path is the SQLite file holding the audit trail. Empty disables auditing.
	Path string `env:"AUDIT_PATH"`

	// MaxEntries caps how many entries the audit endpoint returns (default: 200)
	MaxEntries int `env:"AUDIT_MAX_ENTRIES" default:"200"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
