package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	CacheDriverNone   = "none"
	CacheDriverRedis  = "redis"
	CacheDriverValkey = "valkey"
)

// SQL drivers.
const (
	SQLDriverMySQL  = "mysql"
	SQLDriverSQLite = "sqlite"
)

// Config holds the fewshot configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Examples  ExamplesConfig  `yaml:"examples"`
	Research  ResearchConfig  `yaml:"research"`
	Leave     LeaveConfig     `yaml:"leave"`
	SQL       SQLConfig       `yaml:"sql"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int  `yaml:"port"`
	ReadTimeoutSec  int  `yaml:"read_timeout_sec"`
	WriteTimeoutSec int  `yaml:"write_timeout_sec"`
	ShutdownSec     int  `yaml:"shutdown_timeout_sec"`
	MountMCP        bool `yaml:"mount_mcp"`
}

// LLMConfig holds the chat model provider settings.
type LLMConfig struct {
	Provider    string       `yaml:"provider"`
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	Temperature  float32           `yaml:"temperature"`
	Temperatures TemperatureConfig `yaml:"temperatures"`
	MaxTokens    int               `yaml:"max_tokens"`
	TimeoutSec   int               `yaml:"timeout_sec"`
	Budget       BudgetConfig      `yaml:"budget"`
}

// TemperatureConfig overrides the chat temperature per application.
// Post and enrich default to llm.temperature; nil means unset.
type TemperatureConfig struct {
	Post       *float32 `yaml:"post"`
	Restaurant *float32 `yaml:"restaurant"` // default 0.7
	Research   *float32 `yaml:"research"`   // default 0.5
	Enrich     *float32 `yaml:"enrich"`
	SQL        *float32 `yaml:"sql"` // default 0
}

// BudgetConfig holds token budget settings shared by chat and embedding calls.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// EmbeddingConfig holds embedding settings. Empty provider fields fall back to llm.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheTTL   int    `yaml:"cache_ttl_sec"` // 0 = no expiry
}

// CacheConfig holds the optional Redis/Valkey store settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, redis, valkey (default: none)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache store is configured.
func (c CacheConfig) Enabled() bool { return c.Driver != CacheDriverNone }

// ExamplesConfig holds the few-shot dataset settings.
type ExamplesConfig struct {
	Path        string `yaml:"path"`
	MaxExamples int    `yaml:"max_examples"`
	Header      string `yaml:"header"` // empty = built-in instruction
}

// ResearchConfig holds article Q&A settings.
type ResearchConfig struct {
	ChunkSize       int `yaml:"chunk_size"`
	ChunkOverlap    int `yaml:"chunk_overlap"`
	TopK            int `yaml:"top_k"`
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"`
}

// LeaveConfig holds leave ledger settings.
type LeaveConfig struct {
	SeedFile string `yaml:"seed_file"` // empty = built-in seed
}

// SQLConfig holds the SQL assistant database. An empty driver generates
// queries without running them.
type SQLConfig struct {
	Driver          string   `yaml:"driver"` // mysql, sqlite
	DSN             string   `yaml:"dsn"`
	Tables          []string `yaml:"tables"` // empty = every table
	SampleRows      int      `yaml:"sample_rows"`
	TopK            int      `yaml:"top_k"`
	QueryTimeoutSec int      `yaml:"query_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables in data, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// generation and ingest wait on the model
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "groq"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama-3.3-70b-versatile"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = c.LLM.Provider
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = c.LLM.APIKey
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = c.LLM.BaseURL
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheDriverNone
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Examples.Path == "" {
		c.Examples.Path = "data/processed_posts.json"
	}
	if c.Examples.MaxExamples <= 0 {
		c.Examples.MaxExamples = 2
	}
	if c.Research.ChunkSize <= 0 {
		c.Research.ChunkSize = 1000
	}
	if c.Research.TopK <= 0 {
		c.Research.TopK = 2
	}
	if c.Research.FetchTimeoutSec <= 0 {
		c.Research.FetchTimeoutSec = 15
	}
	if c.SQL.SampleRows <= 0 {
		c.SQL.SampleRows = 3
	}
	if c.SQL.TopK <= 0 {
		c.SQL.TopK = 2
	}
	if c.SQL.QueryTimeoutSec <= 0 {
		c.SQL.QueryTimeoutSec = 10
	}
	c.LLM.Temperatures.applyDefaults(c.LLM.Temperature)
}

func (t *TemperatureConfig) applyDefaults(base float32) {
	set := func(p **float32, v float32) {
		if *p == nil {
			*p = &v
		}
	}
	set(&t.Post, base)
	set(&t.Restaurant, 0.7)
	set(&t.Research, 0.5)
	set(&t.Enrich, base)
	set(&t.SQL, 0)
}

func (t *TemperatureConfig) validate() error {
	for name, p := range map[string]*float32{
		"post": t.Post, "restaurant": t.Restaurant, "research": t.Research, "enrich": t.Enrich, "sql": t.SQL,
	} {
		if p != nil && (*p < 0 || *p > 2) {
			return fmt.Errorf("llm.temperatures.%s must be between 0 and 2, got %g", name, *p)
		}
	}
	return nil
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.LLM.Budget.Action {
	case "", "warn", "reject":
	default:
		return fmt.Errorf("llm.budget.action must be \"warn\" or \"reject\", got %q", c.LLM.Budget.Action)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %g", c.LLM.Temperature)
	}
	if err := c.LLM.Temperatures.validate(); err != nil {
		return err
	}
	switch c.Cache.Driver {
	case CacheDriverNone:
	case CacheDriverRedis, CacheDriverValkey:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be one of none, redis, valkey, got %q", c.Cache.Driver)
	}
	if c.Research.ChunkOverlap < 0 || c.Research.ChunkOverlap >= c.Research.ChunkSize {
		return fmt.Errorf("research.chunk_overlap must be in [0, %d), got %d",
			c.Research.ChunkSize, c.Research.ChunkOverlap)
	}
	switch c.SQL.Driver {
	case "":
	case SQLDriverMySQL, SQLDriverSQLite:
		if c.SQL.DSN == "" {
			return fmt.Errorf("sql.dsn is required for driver %q", c.SQL.Driver)
		}
	default:
		return fmt.Errorf("sql.driver must be mysql or sqlite, got %q", c.SQL.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
