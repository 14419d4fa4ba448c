package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gdxsv_chatops/internal/notifications"
	"gdxsv_chatops/internal/reload"
	"gdxsv_chatops/internal/sheets"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is everything the commands read from the environment.
type Config struct {
	Sheets         sheets.Config
	DBName         string
	TablePrefix    string
	StrictMarkers  bool
	ReloadURL      string
	Notify         notifications.Config
	MetricsPushURL string
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// LoadConfig reads the configuration from the environment. Nothing is
// required at this point; commands validate what they use.
func LoadConfig() Config {
	var tabs []string
	for _, tab := range strings.Split(os.Getenv("GDXSV_SHEET_TABS"), ",") {
		if tab = strings.TrimSpace(tab); tab != "" {
			tabs = append(tabs, tab)
		}
	}

	return Config{
		Sheets: sheets.Config{
			CredentialsFile: os.Getenv("GDXSV_SERVICE_KEY"),
			SpreadsheetID:   os.Getenv("GDXSV_SPREADSHEET_ID"),
			CellRange:       GetEnvWithDefault("GDXSV_SHEET_RANGE", sheets.DefaultCellRange),
			Tabs:            tabs,
		},
		DBName:        os.Getenv("GDXSV_DB_NAME"),
		TablePrefix:   GetEnvWithDefault("GDXSV_TABLE_PREFIX", "m_"),
		StrictMarkers: getEnvBool("GDXSV_STRICT_MARKERS", false),
		ReloadURL:     GetEnvWithDefault("GDXSV_RELOAD_URL", reload.DefaultURL),
		Notify: notifications.Config{
			Enabled:  getEnvBool("NTFY_ENABLED", false),
			BaseURL:  GetEnvWithDefault("NTFY_URL", "https://ntfy.sh"),
			Topic:    GetEnvWithDefault("NTFY_TOPIC", "gdxsv-ops"),
			Priority: os.Getenv("NTFY_PRIORITY"),
		},
		MetricsPushURL: os.Getenv("METRICS_PUSH_URL"),
	}
}

// RequireSheets reports missing spreadsheet settings.
func (c Config) RequireSheets() error {
	return c.Sheets.Validate()
}

// RequireDB reports a missing database path.
func (c Config) RequireDB() error {
	if c.DBName == "" {
		return errors.New("GDXSV_DB_NAME is required")
	}
	return nil
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid boolean, using default")
		return defaultValue
	}
	return b
}
