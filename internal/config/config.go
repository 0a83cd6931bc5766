package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// StorageDriver selects the persistence backend.
type StorageDriver string

const (
	StorageDriverFile  StorageDriver = "file"
	StorageDriverMongo StorageDriver = "mongo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Pricing   PricingConfig
	Reporting ReportingConfig
	SMS       SMSConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StorageConfig holds persistence driver settings.
type StorageConfig struct {
	Driver      StorageDriver
	DataFile    string
	MongoURI    string
	MongoDBName string
}

// AuthConfig holds JWT signing settings for the HTTP surface.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
}

// PricingConfig holds milk pricing defaults.
type PricingConfig struct {
	DefaultPricePerLiter float64
}

// ReportingConfig holds report, scheduler and export settings.
type ReportingConfig struct {
	CronSchedule   string
	Timezone       string
	OperatorPhone  string
	PDFRecordTable bool
}

// SMSConfig contains credentials for the outbound SMS gateway. The gateway
// is optional: with no base URL configured, summaries can still be composed
// but not dispatched.
type SMSConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
}

// Enabled reports whether outbound SMS dispatch is configured.
func (c SMSConfig) Enabled() bool {
	return c.BaseURL != ""
}

// SheetsConfig contains configuration required to export daily totals to a
// Google spreadsheet. Optional, like the SMS gateway.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the sheets export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	pricePerLiter, err := parseFloat(getenvWithDefault("PRICE_PER_LITER", "35"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_PER_LITER: %w", err)
	}

	ttlMinutes, err := strconv.Atoi(getenvWithDefault("JWT_TTL_MINUTES", "60"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES %q", os.Getenv("JWT_TTL_MINUTES"))
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			Driver:      StorageDriver(getenvWithDefault("MILKBOOK_STORAGE_DRIVER", string(StorageDriverFile))),
			DataFile:    getenvWithDefault("MILKBOOK_DATA_FILE", "data/milkbook.json"),
			MongoURI:    os.Getenv("MONGODB_URI"),
			MongoDBName: getenvWithDefault("MONGODB_DB_NAME", "milkbook"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			JWTIssuer: getenvWithDefault("JWT_ISSUER", "milkbook"),
			JWTTTL:    time.Duration(ttlMinutes) * time.Minute,
		},
		Pricing: PricingConfig{
			DefaultPricePerLiter: pricePerLiter,
		},
		Reporting: ReportingConfig{
			CronSchedule:   getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:       getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
			OperatorPhone:  os.Getenv("OPERATOR_PHONE"),
			PDFRecordTable: getenvWithDefault("PDF_RECORD_TABLE", "true") == "true",
		},
		SMS: SMSConfig{
			BaseURL:  os.Getenv("SMS_GATEWAY_BASE_URL"),
			APIKey:   os.Getenv("SMS_GATEWAY_API_KEY"),
			SenderID: getenvWithDefault("SMS_SENDER_ID", "MILKBK"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case StorageDriverFile:
		if c.Storage.DataFile == "" {
			return errors.New("MILKBOOK_DATA_FILE must be provided")
		}
	case StorageDriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided when the mongo driver is selected")
		}
		if c.Storage.MongoDBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("unknown MILKBOOK_STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Pricing.DefaultPricePerLiter < 0 {
		return errors.New("PRICE_PER_LITER must not be negative")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	if c.SMS.Enabled() && c.SMS.APIKey == "" {
		return errors.New("SMS_GATEWAY_API_KEY must be provided when the gateway is configured")
	}

	return nil
}

// Location resolves the configured reporting timezone. Validate has already
// checked it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseFloat(value string) (float64, error) {
	return strconv.ParseFloat(value, 64)
}
