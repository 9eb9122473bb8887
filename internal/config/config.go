// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Google     GoogleConfig
	Database   DatabaseConfig
	SQLite     SQLiteConfig
	S3         S3Config
	Normalizer NormalizerConfig
	Extraction ExtractionConfig
	Schema     SchemaConfig
	Upload     UploadConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including a running import (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests. Imports call the
	// normalization webhook per invoice, so this is generous (default: 15m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"15m"`
}

// StoreConfig selects where the master and template sheets live.
type StoreConfig struct {
	// Backend is one of memory, file, sheets, postgres, sqlite, s3 (default: file)
	Backend string `env:"STORE_BACKEND" default:"file"`

	// Dir is the directory of the file backend; one CSV per sheet (default: data)
	Dir string `env:"STORE_DIR" default:"data"`

	MasterSheet   string `env:"STORE_MASTER_SHEET" default:"EstoqueMestre"`
	TemplateSheet string `env:"STORE_TEMPLATE_SHEET" default:"PlanilhaModelo"`

	// Timeout bounds each read or write call (default: 30s)
	Timeout time.Duration `env:"STORE_TIMEOUT" default:"30s"`

	// CycleWait is how long an import or save waits for a running one (default: 5s)
	CycleWait time.Duration `env:"STORE_CYCLE_WAIT" default:"5s"`
}

// GoogleConfig holds Google Sheets settings for the sheets backend.
type GoogleConfig struct {
	SpreadsheetID string `env:"GOOGLE_SPREADSHEET_ID"`

	// CredentialsFile is a service account JSON key path
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envAlt:"GOOGLE_APPLICATION_CREDENTIALS"`

	// CredentialsJSON is the key itself, for environments without files
	CredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON"`
}

// DatabaseConfig holds PostgreSQL settings for the postgres backend.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SQLiteConfig holds settings for the sqlite backend.
type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" default:"stockbook.db"`
}

// S3Config holds settings for the s3 backend.
type S3Config struct {
	Bucket string `env:"S3_BUCKET"`
	Region string `env:"S3_REGION" envAlt:"AWS_REGION" default:"us-east-1"`

	// Endpoint is an optional custom endpoint (MinIO, LocalStack)
	Endpoint string `env:"S3_ENDPOINT"`

	// Prefix is prepended to every object key (default: sheets)
	Prefix string `env:"S3_PREFIX" default:"sheets"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `env:"S3_USE_PATH_STYLE" default:"false"`
}

// NormalizerConfig holds the normalization webhook settings.
// With no URL, extracted records are merged as-is.
type NormalizerConfig struct {
	WebhookURL string        `env:"NORMALIZER_WEBHOOK_URL" envAlt:"N8N_WEBHOOK_URL"`
	Timeout    time.Duration `env:"NORMALIZER_TIMEOUT" default:"300s"`
}

// ExtractionConfig tunes the PDF product-table extractor.
type ExtractionConfig struct {
	// HeaderMarker is the column title that identifies the product table
	HeaderMarker string `env:"EXTRACT_HEADER_MARKER" default:"COD. PROD."`

	// RowTolerance is the vertical distance, in points, within which text
	// fragments belong to the same row (default: 2.0)
	RowTolerance float64 `env:"EXTRACT_ROW_TOLERANCE" default:"2.0"`

	Timeout time.Duration `env:"EXTRACT_TIMEOUT" default:"60s"`
}

// SchemaConfig names the merge columns of the stock sheet.
type SchemaConfig struct {
	RefColumn string `env:"SCHEMA_REF_COLUMN" default:"REFERÊNCIA"`
	QtyColumn string `env:"SCHEMA_QTY_COLUMN" default:"QtdEstoqueAtual"`
}

// UploadConfig holds invoice upload limits.
type UploadConfig struct {
	// MaxFileSize is the maximum size of one request in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// MaxFiles is the maximum number of invoices per import (default: 20)
	MaxFiles int `env:"UPLOAD_MAX_FILES" default:"20"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for import endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey guards the /api routes with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// TrustedProxies lists CIDRs whose X-Real-IP / X-Forwarded-For headers
	// are believed. Empty means headers are ignored.
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
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
