package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"storefront/catalog"
	"storefront/logger"
	"storefront/wallet"
)

// Store drivers
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	DataDir          string
	AccountsFile     string
	SalesFile        string
	WarehousePattern string
	StoreDriver      string
	PostgresDSN      string

	Currency     string
	FundOptions  []decimal.Decimal
	FundAllowAny bool

	EmptyQueryMatchesAll bool
	ZeroStockPolicy      catalog.ZeroStockPolicy
	DefaultStock         int
	SearchCacheSize      int

	MaxStateDepth int

	LogLevel    string
	LogFormat   string
	LogFile     string
	Environment string
	ServiceName string
	Version     string
}

// Load loads the configuration from environment variables, reading a .env
// file first when one exists.
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:          getEnv("DATA_DIR", "data"),
		AccountsFile:     getEnv("ACCOUNTS_FILE", "accounts.txt"),
		SalesFile:        getEnv("SALES_FILE", "sales.txt"),
		WarehousePattern: getEnv("WAREHOUSE_PATTERN", "warehouse*.txt"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreDriverFile)),
		PostgresDSN:      getEnv("POSTGRES_DSN", ""),
		Currency:         getEnv("CURRENCY", "NGN"),
		LogLevel:         getEnv("LOG_LEVEL", logger.LogLevelInfo),
		LogFormat:        getEnv("LOG_FORMAT", logger.LogFormatText),
		LogFile:          getEnv("LOG_FILE", "storefront.log"),
		Environment:      getEnv("ENVIRONMENT", logger.EnvironmentDev),
		ServiceName:      getEnv("SERVICE_NAME", logger.DefaultServiceName),
		Version:          getEnv("VERSION", logger.DefaultVersion),
	}

	var err error
	if cfg.FundOptions, err = parseAmounts(getEnv("FUND_OPTIONS", "10000,20000,50000,100000")); err != nil {
		return nil, fmt.Errorf("invalid FUND_OPTIONS value: %w", err)
	}
	if cfg.FundAllowAny, err = getBool("FUND_ALLOW_ANY", false); err != nil {
		return nil, err
	}
	if cfg.EmptyQueryMatchesAll, err = getBool("EMPTY_QUERY_MATCHES_ALL", false); err != nil {
		return nil, err
	}
	if cfg.ZeroStockPolicy, err = catalog.ParseZeroStockPolicy(getEnv("ZERO_STOCK_POLICY", string(catalog.ZeroStockKeep))); err != nil {
		return nil, fmt.Errorf("invalid ZERO_STOCK_POLICY value: %w", err)
	}
	if cfg.DefaultStock, err = getInt("DEFAULT_STOCK", catalog.DefaultStock); err != nil {
		return nil, err
	}
	if cfg.SearchCacheSize, err = getInt("SEARCH_CACHE_SIZE", catalog.DefaultSearchCacheSize); err != nil {
		return nil, err
	}
	if cfg.MaxStateDepth, err = getInt("MAX_STATE_DEPTH", 16); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that depend on each other.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverFile:
	case StoreDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN must be set when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, StoreDriverFile, StoreDriverPostgres)
	}
	if len(c.FundOptions) == 0 && !c.FundAllowAny {
		return fmt.Errorf("FUND_OPTIONS is empty and FUND_ALLOW_ANY is false; wallets could never be funded")
	}
	if c.DefaultStock < 0 {
		return fmt.Errorf("DEFAULT_STOCK must be >= 0, got %d", c.DefaultStock)
	}
	if c.MaxStateDepth < 2 {
		return fmt.Errorf("MAX_STATE_DEPTH must be >= 2, got %d", c.MaxStateDepth)
	}
	switch c.Environment {
	case "", logger.EnvironmentDev, logger.EnvironmentProd, logger.EnvironmentTest:
	default:
		return fmt.Errorf("unknown ENVIRONMENT %q (want %s, %s or %s)", c.Environment,
			logger.EnvironmentDev, logger.EnvironmentProd, logger.EnvironmentTest)
	}
	return nil
}

// CatalogOptions maps the configuration onto catalog options.
func (c *Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		DefaultStock:         c.DefaultStock,
		EmptyQueryMatchesAll: c.EmptyQueryMatchesAll,
		ZeroStock:            c.ZeroStockPolicy,
		SearchCacheSize:      c.SearchCacheSize,
	}
}

// FundPolicy maps the configuration onto the wallet funding policy.
func (c *Config) FundPolicy() wallet.FundPolicy {
	return wallet.FundPolicy{Options: c.FundOptions, AllowAny: c.FundAllowAny}
}

// LoggerConfig maps the configuration onto logger settings. Empty fields
// keep the logger defaults.
func (c *Config) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig()
	if c.LogLevel != "" {
		lc.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		lc.Format = c.LogFormat
	}
	if c.ServiceName != "" {
		lc.ServiceName = c.ServiceName
	}
	if c.Version != "" {
		lc.Version = c.Version
	}
	if c.Environment != "" {
		lc.Environment = c.Environment
	}
	lc.AddSource = lc.LogLevel() == slog.LevelDebug
	return lc
}

// AccountsPath is the accounts file inside the data directory.
func (c *Config) AccountsPath() string {
	return filepath.Join(c.DataDir, c.AccountsFile)
}

// SalesPath is the sales ledger file inside the data directory.
func (c *Config) SalesPath() string {
	return filepath.Join(c.DataDir, c.SalesFile)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func parseAmounts(s string) ([]decimal.Decimal, error) {
	var out []decimal.Decimal
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := decimal.NewFromString(part)
		if err != nil {
			return nil, err
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("amount %s must be positive", part)
		}
		out = append(out, d)
	}
	return out, nil
}
