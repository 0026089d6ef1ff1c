// Package config owns every closed table and threshold used across the
// pipeline (unit conversions, stop words, brand aliases, category
// keywords, fuzzy/exact thresholds, time windows) plus connection
// settings for Postgres and ClickHouse. Engines receive their tables by
// construction, never by reaching into ambient state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".monito"
	DefaultConfigFile = "config.yaml"
)

// Config is the full application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Matching  MatchingConfig  `yaml:"matching"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Preprocessor PreprocessorConfig `yaml:"preprocessor"`
	Tables    TablesConfig    `yaml:"tables"`
}

// DatabaseConfig holds the Postgres (system of record) and ClickHouse
// (analytics mirror) connection settings.
type DatabaseConfig struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	SSLMode     string `yaml:"ssl_mode"`
	MaxConns    int32  `yaml:"max_conns"`
	MinConns    int32  `yaml:"min_conns"`
}

// ClickHouseConfig holds ClickHouse connection settings for the
// analytics mirror.
type ClickHouseConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	Secure      bool   `yaml:"secure"`
	Enabled     bool   `yaml:"enabled"`
}

// MatchingConfig holds the matching engine's configurable thresholds.
type MatchingConfig struct {
	FuzzyThreshold       float64 `yaml:"fuzzy_match_threshold"`
	ExactThreshold       float64 `yaml:"exact_match_threshold"`
	SimilarityThreshold  float64 `yaml:"similarity_threshold"`
	ExactSizeTolerance   float64 `yaml:"exact_size_tolerance"`
	CandidateFetchLimit  int     `yaml:"candidate_fetch_limit"`
	ProcessAllBatchSize  int     `yaml:"process_all_batch_size"`
	AutoMergeThreshold   float64 `yaml:"auto_merge_threshold"`
}

// PricingConfig holds the pricing and catalog engines' windows and
// thresholds.
type PricingConfig struct {
	PriceToleranceDefault        float64 `yaml:"price_tolerance"`
	TrendAnalysisDays            int     `yaml:"trend_analysis_days"`
	PriceWindowDays              int     `yaml:"price_window_days"`
	SupplierVolatilityWindowDays int     `yaml:"supplier_volatility_window_days"`
	MinDealSavingsPercent        float64 `yaml:"min_deal_savings_percent"`
	RecommendationTTLDays        int     `yaml:"recommendation_ttl_days"`
	DefaultMinSuppliers          int     `yaml:"default_min_suppliers"`
}

// PreprocessorConfig holds the preprocessor's scan-window and strategy
// thresholds.
type PreprocessorConfig struct {
	MaxScanRows      int     `yaml:"max_scan_rows"`
	MaxScanCols      int     `yaml:"max_scan_cols"`
	SparseDensity    float64 `yaml:"sparse_density_threshold"`
	IrregularDensity float64 `yaml:"irregular_density_threshold"`
	SheetTimeoutSecs int     `yaml:"sheet_timeout_seconds"`
}

// TablesConfig holds the closed dictionaries shared by the normalizer
// and the data adapter: stop words, brand aliases, and the category
// keyword table.
type TablesConfig struct {
	StopWords       []string          `yaml:"stop_words"`
	BrandAliases    map[string]string `yaml:"brand_aliases"`
	CategoryKeywords map[string]string `yaml:"category_keywords"`
}

// DefaultConfig returns the config with every documented default value
// filled in.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:        "localhost",
				Port:        5432,
				Database:    "monito",
				UsernameEnv: "POSTGRES_USER",
				PasswordEnv: "POSTGRES_PASSWORD",
				SSLMode:     "prefer",
				MaxConns:    10,
				MinConns:    2,
			},
			ClickHouse: ClickHouseConfig{
				Host:        "localhost",
				Port:        9000,
				Database:    "monito",
				UsernameEnv: "CLICKHOUSE_USERNAME",
				PasswordEnv: "CLICKHOUSE_PASSWORD",
				Secure:      false,
				Enabled:     false,
			},
		},
		Matching: MatchingConfig{
			FuzzyThreshold:      0.80,
			ExactThreshold:      0.95,
			SimilarityThreshold: 0.80,
			ExactSizeTolerance:  0.05,
			CandidateFetchLimit: 100,
			ProcessAllBatchSize: 100,
			AutoMergeThreshold:  0.95,
		},
		Pricing: PricingConfig{
			PriceToleranceDefault:        0.05,
			TrendAnalysisDays:            30,
			PriceWindowDays:              30,
			SupplierVolatilityWindowDays: 90,
			MinDealSavingsPercent:        5,
			RecommendationTTLDays:        7,
			DefaultMinSuppliers:          2,
		},
		Preprocessor: PreprocessorConfig{
			MaxScanRows:      50,
			MaxScanCols:      20,
			SparseDensity:    0.3,
			IrregularDensity: 0.5,
			SheetTimeoutSecs: 30,
		},
		Tables: TablesConfig{
			StopWords:        defaultStopWords(),
			BrandAliases:     defaultBrandAliases(),
			CategoryKeywords: defaultCategoryKeywords(),
		},
	}
}

func defaultStopWords() []string {
	return []string{
		"the", "and", "or", "with", "for", "premium", "original",
		"classic", "special", "extra", "super", "new", "fresh",
		"natural", "organic", "pure", "best", "quality", "pack",
		"bottle", "can", "jar", "box", "bag", "sachet",
	}
}

func defaultBrandAliases() map[string]string {
	return map[string]string{
		"coca cola":  "coca-cola",
		"coca-cola":  "coca-cola",
		"coke":       "coca-cola",
		"cocacola":   "coca-cola",
	}
}

// defaultCategoryKeywords is the union of original_source's
// data_adapter.py category_mapping keyword table.
func defaultCategoryKeywords() map[string]string {
	return map[string]string{
		"tomato": "vegetables", "potato": "vegetables", "onion": "vegetables",
		"carrot": "vegetables", "cabbage": "vegetables", "lettuce": "vegetables",
		"spinach": "vegetables", "capsicum": "vegetables", "pepper": "vegetables",
		"cucumber": "vegetables", "eggplant": "vegetables", "mushroom": "vegetables",
		"celery": "vegetables", "corn": "vegetables",

		"chili": "spices", "ginger": "spices", "garlic": "spices",
		"galangal": "spices",

		"basil": "herbs", "parsley": "herbs", "mint": "herbs",
		"oregano": "herbs", "lemongrass": "herbs", "lime": "herbs",

		"mango": "fruits", "banana": "fruits", "apple": "fruits",
		"orange": "fruits", "pear": "fruits", "grape": "fruits",
		"lemon": "fruits",

		"cheese": "dairy", "milk": "dairy", "yogurt": "dairy", "butter": "dairy",

		"chicken": "meat", "beef": "meat", "pork": "meat",

		"fish": "seafood",

		"rice": "grains", "wheat": "grains",

		"bean": "legumes", "lentil": "legumes",

		"juice": "beverages", "water": "beverages", "tea": "beverages",
		"coffee": "beverages",
	}
}

// GetConfigPath returns the default config file location under the
// user's home directory.
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the configuration from the default config file location.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from a specific path, returning
// defaults if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the configuration to the default config file location.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to a specific path.
func SaveTo(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Init creates a new config file with defaults. Fails if one already
// exists.
func Init() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	return Save(DefaultConfig())
}

// Exists reports whether the default config file is present.
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// applyDefaults fills in zero-value fields with the default config,
// so a partially-specified YAML file still gets sane thresholds.
func applyDefaults(cfg *Config) {
	d := DefaultConfig()

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres = d.Database.Postgres
	}
	if cfg.Database.ClickHouse.Port == 0 {
		cfg.Database.ClickHouse.Host = d.Database.ClickHouse.Host
		cfg.Database.ClickHouse.Port = d.Database.ClickHouse.Port
		cfg.Database.ClickHouse.Database = d.Database.ClickHouse.Database
	}
	if cfg.Matching.FuzzyThreshold == 0 {
		cfg.Matching = d.Matching
	}
	if cfg.Pricing.TrendAnalysisDays == 0 {
		cfg.Pricing = d.Pricing
	}
	if cfg.Preprocessor.MaxScanRows == 0 {
		cfg.Preprocessor = d.Preprocessor
	}
	if len(cfg.Tables.StopWords) == 0 {
		cfg.Tables.StopWords = d.Tables.StopWords
	}
	if len(cfg.Tables.BrandAliases) == 0 {
		cfg.Tables.BrandAliases = d.Tables.BrandAliases
	}
	if len(cfg.Tables.CategoryKeywords) == 0 {
		cfg.Tables.CategoryKeywords = d.Tables.CategoryKeywords
	}
}

// Set updates a single dotted-path config value and persists it.
func Set(key, value string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	switch key {
	case "database.postgres.host":
		cfg.Database.Postgres.Host = value
	case "database.postgres.database":
		cfg.Database.Postgres.Database = value
	case "database.postgres.username_env":
		cfg.Database.Postgres.UsernameEnv = value
	case "database.postgres.password_env":
		cfg.Database.Postgres.PasswordEnv = value
	case "database.clickhouse.host":
		cfg.Database.ClickHouse.Host = value
	case "database.clickhouse.database":
		cfg.Database.ClickHouse.Database = value
	case "database.clickhouse.enabled":
		cfg.Database.ClickHouse.Enabled = value == "true"
	case "matching.fuzzy_match_threshold":
		return setFloat(&cfg.Matching.FuzzyThreshold, value, cfg)
	case "matching.exact_match_threshold":
		return setFloat(&cfg.Matching.ExactThreshold, value, cfg)
	case "pricing.min_deal_savings_percent":
		return setFloat(&cfg.Pricing.MinDealSavingsPercent, value, cfg)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return Save(cfg)
}

func setFloat(field *float64, value string, cfg *Config) error {
	var f float64
	if _, err := fmt.Sscanf(value, "%f", &f); err != nil {
		return fmt.Errorf("invalid float value %q: %w", value, err)
	}
	*field = f
	return Save(cfg)
}

// Get retrieves a single dotted-path config value.
func Get(key string) (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	switch key {
	case "database.postgres.host":
		return cfg.Database.Postgres.Host, nil
	case "database.postgres.database":
		return cfg.Database.Postgres.Database, nil
	case "database.clickhouse.host":
		return cfg.Database.ClickHouse.Host, nil
	case "database.clickhouse.database":
		return cfg.Database.ClickHouse.Database, nil
	case "database.clickhouse.enabled":
		if cfg.Database.ClickHouse.Enabled {
			return "true", nil
		}
		return "false", nil
	case "matching.fuzzy_match_threshold":
		return fmt.Sprintf("%v", cfg.Matching.FuzzyThreshold), nil
	case "matching.exact_match_threshold":
		return fmt.Sprintf("%v", cfg.Matching.ExactThreshold), nil
	case "pricing.min_deal_savings_percent":
		return fmt.Sprintf("%v", cfg.Pricing.MinDealSavingsPercent), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}
