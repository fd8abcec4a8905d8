package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// DefaultProductsSourceURL is the published spreadsheet CSV export used when
// neither CATALOG_SOURCE_URL nor GOOGLE_SHEETS_URL is set.
const DefaultProductsSourceURL = "https://docs.google.com/spreadsheets/d/1V_cRwCFGDK6DRwI7xVYlf6raYq3iQzB7cZcgQRIRIo4/gviz/tq?tqx=out:csv"

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	Debug    bool   `mapstructure:"DEBUG"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Catalog source
	CatalogSourceURL string `mapstructure:"CATALOG_SOURCE_URL"`
	GoogleSheetsURL  string `mapstructure:"GOOGLE_SHEETS_URL"`
	CatalogBasePath  string `mapstructure:"CATALOG_BASE_PATH"`
	CatalogFileName  string `mapstructure:"CATALOG_FILE_NAME"`
	CatalogOrigin    string `mapstructure:"CATALOG_ORIGIN"`
	CatalogLocalFile string `mapstructure:"CATALOG_LOCAL_FILE"`
	CatalogDelimiter string `mapstructure:"CATALOG_DELIMITER"`
	MaxProductImages int    `mapstructure:"MAX_PRODUCT_IMAGES"`
	CatalogCacheTTL  int64  `mapstructure:"CATALOG_CACHE_TTL"`
	RefreshSchedule  string `mapstructure:"CATALOG_REFRESH_SCHEDULE"`

	// Image hosting
	GoogleDriveFolderID    string `mapstructure:"GOOGLE_DRIVE_FOLDER_ID"`
	GoogleDriveAPIKey      string `mapstructure:"GOOGLE_DRIVE_API_KEY"`
	OneDriveMode           string `mapstructure:"ONEDRIVE_MODE"`
	OneDriveResolverURL    string `mapstructure:"ONEDRIVE_RESOLVER_URL"`
	OneDriveResolveTimeout int    `mapstructure:"ONEDRIVE_RESOLVE_TIMEOUT"`

	// Web push
	VAPIDPublicKey  string `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `mapstructure:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `mapstructure:"VAPID_SUBSCRIBER"`

	// Search index mirror
	ElasticsearchHost  string `mapstructure:"ELASTICSEARCH_HOST"`
	ElasticsearchIndex string `mapstructure:"ELASTICSEARCH_INDEX"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"APP_NAME":                 "catalog.GO",
		"PORT":                     "8080",
		"APP_ENV":                  "production",
		"LOG_LEVEL":                "info",
		"GOOGLE_SHEETS_URL":        DefaultProductsSourceURL,
		"CATALOG_BASE_PATH":        "/",
		"CATALOG_FILE_NAME":        "products.csv",
		"CATALOG_LOCAL_FILE":       "public/products.csv",
		"CATALOG_DELIMITER":        ";",
		"MAX_PRODUCT_IMAGES":       10,
		"CATALOG_CACHE_TTL":        300,
		"CATALOG_REFRESH_SCHEDULE": "@every 15m",
		"ONEDRIVE_MODE":            "token",
		"ONEDRIVE_RESOLVE_TIMEOUT": 10,
		"VAPID_SUBSCRIBER":         "mailto:example@example.com",
		"ELASTICSEARCH_HOST":       "",
		"ELASTICSEARCH_INDEX":      "catalog_products",
	}
}

// Load builds a Config from defaults overlaid with the given environment
// (KEY=VALUE pairs as returned by os.Environ). Blank values keep the default.
// CATALOG_DELIMITER also accepts "tab" or a literal \t.
func Load(environ []string) (*Config, error) {
	values := defaults()
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if k == "CATALOG_DELIMITER" && (v == "\t" || strings.EqualFold(v, "tab") || v == `\t`) {
			values[k] = "\t"
			continue
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		values[k] = strings.TrimSpace(v)
	}

	cfg := &Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(values); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if d := c.CatalogDelimiter; d != ";" && d != "," && d != "\t" {
		return fmt.Errorf("CATALOG_DELIMITER must be ';', ',' or a tab, got %q", d)
	}
	if c.MaxProductImages <= 0 {
		return fmt.Errorf("MAX_PRODUCT_IMAGES must be positive, got %d", c.MaxProductImages)
	}
	switch c.OneDriveMode {
	case "token", "redirect":
	default:
		return fmt.Errorf("ONEDRIVE_MODE must be token or redirect, got %q", c.OneDriveMode)
	}
	return nil
}

// Delimiter returns the configured field delimiter as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.CatalogDelimiter)[0]
}

// LoadAppConfig initializes the global AppConfig variable from the process environment.
// Invalid configuration is fatal for the caller.
func LoadAppConfig() error {
	var err error
	once.Do(func() {
		AppConfig, err = Load(os.Environ())
	})
	return err
}
