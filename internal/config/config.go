package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverBolt  = "bolt"
	StoreDriverMongo = "mongo"
)

// Drain policies accepted by DRAIN_POLICY.
const (
	DrainPolicyClearAll     = "clear-all"
	DrainPolicyRetainFailed = "retain-failed"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	API       APIConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Sync      SyncConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
}

// ServerConfig holds options of the local HTTP API served to the UI.
type ServerConfig struct {
	Port string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// APIConfig describes how to reach the production backend.
type APIConfig struct {
	// LANURL is tried first; it is the backend address on the factory subnet.
	LANURL    string
	PublicURL string
	Timeout   time.Duration
	// ProbeTimeout bounds base URL resolution and connectivity checks.
	ProbeTimeout time.Duration
}

// StoreConfig selects and tunes the local durable store.
type StoreConfig struct {
	Driver   string
	Path     string
	MemoSize int
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SyncConfig tunes offline queue replay.
type SyncConfig struct {
	DrainPolicy string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used for notifications.
// Notifications are disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	SupervisorID  string
}

// SheetsConfig contains configuration required to export reports to Google Sheets.
// Export is disabled when SpreadsheetID is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ReportingConfig holds report scheduling settings. An empty CronSchedule disables the job.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
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
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	apiTimeout, err := getenvDuration("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	probeTimeout, err := getenvDuration("API_PROBE_TIMEOUT", 2*time.Second)
	if err != nil {
		return nil, err
	}
	memoSize, err := getenvInt("STORE_MEMO_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		API: APIConfig{
			LANURL:       os.Getenv("API_LAN_URL"),
			PublicURL:    getenvWithDefault("API_PUBLIC_URL", "http://192.168.1.247:9000/api"),
			Timeout:      apiTimeout,
			ProbeTimeout: probeTimeout,
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(getenvWithDefault("STORE_DRIVER", StoreDriverBolt)),
			Path:     getenvWithDefault("STORE_PATH", "linetrack.db"),
			MemoSize: memoSize,
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "linetrack"),
		},
		Sync: SyncConfig{
			DrainPolicy: strings.ToLower(getenvWithDefault("DRAIN_POLICY", DrainPolicyClearAll)),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			SupervisorID:  os.Getenv("WHATSAPP_SUPERVISOR_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: os.Getenv("REPORT_CRON_SCHEDULE"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Dhaka"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and consistent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.API.LANURL == "" && c.API.PublicURL == "" {
		return errors.New("API_LAN_URL or API_PUBLIC_URL must be provided")
	}

	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}

	switch c.Store.Driver {
	case StoreDriverBolt:
		if c.Store.Path == "" {
			return errors.New("STORE_PATH must be provided for the bolt store")
		}
	case StoreDriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Store.MemoSize < 0 {
		return errors.New("STORE_MEMO_SIZE must not be negative")
	}

	switch c.Sync.DrainPolicy {
	case DrainPolicyClearAll, DrainPolicyRetainFailed:
	default:
		return fmt.Errorf("unsupported DRAIN_POLICY %q", c.Sync.DrainPolicy)
	}

	if c.WhatsApp.AccessToken != "" {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided when WHATSAPP_TOKEN is set")
		case c.WhatsApp.SupervisorID == "":
			return errors.New("WHATSAPP_SUPERVISOR_ID must be provided when WHATSAPP_TOKEN is set")
		}
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_DATABASE_ID is set")
	}

	if c.Reporting.CronSchedule != "" && c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided when REPORT_CRON_SCHEDULE is set")
	}

	return nil
}

// BaseURLCandidates lists backend base URLs in resolution order.
func (c APIConfig) BaseURLCandidates() []string {
	var out []string
	for _, u := range []string{c.LANURL, c.PublicURL} {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
