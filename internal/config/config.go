package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"kunafa-ledger/internal/sales/locale"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config defines ledger service configuration.
type Config struct {
	HTTPAddr       string `yaml:"http_addr"`
	StorageBackend string `yaml:"storage_backend"`
	DataDir        string `yaml:"data_dir"`
	SlotKey        string `yaml:"slot_key"`
	DatabaseURL    string `yaml:"database_url"`
	Locale         string `yaml:"locale"`
	PageSize       int    `yaml:"page_size"`
	ProductName    string `yaml:"product_name"`
	PDFFontPath    string `yaml:"pdf_font_path"`
	JWTSecret      string `yaml:"jwt_secret"`
	WhatsAppNumber string `yaml:"whatsapp_number"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:       ":8080",
		StorageBackend: BackendFile,
		DataDir:        filepath.FromSlash("var/ledger"),
		SlotKey:        "sultan-kunafa-ventes",
		Locale:         string(locale.French),
		PageSize:       10,
		ProductName:    "Sultan Kunafa",
		WhatsAppNumber: "212701730174",
	}
}

// Load reads defaults, then the yaml file named by LEDGER_CONFIG, then
// environment overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.StorageBackend = getenvDefault("STORAGE_BACKEND", cfg.StorageBackend)
	cfg.DataDir = getenvDefault("DATA_DIR", cfg.DataDir)
	cfg.SlotKey = getenvDefault("SLOT_KEY", cfg.SlotKey)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", cfg.DatabaseURL))
	cfg.Locale = getenvDefault("LOCALE", cfg.Locale)
	cfg.PageSize = getenvIntDefault("PAGE_SIZE", cfg.PageSize)
	cfg.ProductName = getenvDefault("PRODUCT_NAME", cfg.ProductName)
	cfg.PDFFontPath = getenvDefault("PDF_FONT_PATH", cfg.PDFFontPath)
	cfg.JWTSecret = getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", cfg.JWTSecret))
	cfg.WhatsAppNumber = getenvDefault("WHATSAPP_NUMBER", cfg.WhatsAppNumber)

	return cfg, cfg.Validate()
}

// Validate checks backend, locale and paging settings.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(c.DataDir) == "" {
			return errors.New("config: data dir required for file storage")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL or PG_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.StorageBackend)
	}
	if strings.TrimSpace(c.SlotKey) == "" {
		return errors.New("config: slot key required")
	}
	if _, err := locale.Parse(c.Locale); err != nil {
		return err
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page size must be positive, got %d", c.PageSize)
	}
	return nil
}

// UILocale returns the parsed locale.
func (c Config) UILocale() locale.Locale {
	loc, err := locale.Parse(c.Locale)
	if err != nil {
		return locale.French
	}
	return loc
}

// AuthEnabled reports whether bearer tokens are enforced.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
