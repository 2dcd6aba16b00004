package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{LLM: LLMConfig{APIKey: "k", BaseURL: "https://llm.example/v1"}}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 || cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("http defaults = %+v", cfg.HTTP)
	}
	if cfg.Cache.Driver != CacheDriverNone || cfg.Cache.Enabled() {
		t.Errorf("cache driver = %q", cfg.Cache.Driver)
	}
	if cfg.Embedding.APIKey != "k" || cfg.Embedding.BaseURL != "https://llm.example/v1" {
		t.Errorf("embedding does not inherit llm provider: %+v", cfg.Embedding)
	}
	if cfg.Examples.MaxExamples != 2 || cfg.Research.TopK != 2 || cfg.Research.ChunkSize != 1000 {
		t.Errorf("examples/research defaults = %+v %+v", cfg.Examples, cfg.Research)
	}
	if cfg.SQL.Driver != "" || cfg.SQL.SampleRows != 3 || cfg.SQL.TopK != 2 {
		t.Errorf("sql defaults = %+v", cfg.SQL)
	}
}

func TestApplyDefaults_Temperatures(t *testing.T) {
	research := float32(0.2)
	cfg := Config{LLM: LLMConfig{Temperature: 0.9, Temperatures: TemperatureConfig{Research: &research}}}
	cfg.ApplyDefaults()

	temps := cfg.LLM.Temperatures
	got := map[string]float32{
		"post": *temps.Post, "restaurant": *temps.Restaurant, "research": *temps.Research,
		"enrich": *temps.Enrich, "sql": *temps.SQL,
	}
	want := map[string]float32{"post": 0.9, "restaurant": 0.7, "research": 0.2, "enrich": 0.9, "sql": 0}
	for app, w := range want {
		if got[app] != w {
			t.Errorf("%s temperature = %g, want %g", app, got[app], w)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: "http.port",
		},
		{
			name:    "invalid budget action",
			mutate:  func(c *Config) { c.LLM.Budget.Action = "invalid_action" },
			wantErr: `llm.budget.action must be "warn" or "reject", got "invalid_action"`,
		},
		{name: "reject action", mutate: func(c *Config) { c.LLM.Budget.Action = "reject" }},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.LLM.Temperature = 3 },
			wantErr: "llm.temperature",
		},
		{
			name: "per-app temperature out of range",
			mutate: func(c *Config) {
				v := float32(2.5)
				c.LLM.Temperatures.Restaurant = &v
			},
			wantErr: "llm.temperatures.restaurant",
		},
		{
			name:    "unknown sql driver",
			mutate:  func(c *Config) { c.SQL.Driver = "postgres" },
			wantErr: "sql.driver",
		},
		{
			name:    "sql driver without dsn",
			mutate:  func(c *Config) { c.SQL.Driver = SQLDriverSQLite },
			wantErr: "sql.dsn",
		},
		{
			name:    "unknown cache driver",
			mutate:  func(c *Config) { c.Cache.Driver = "memcached" },
			wantErr: "cache.driver",
		},
		{
			name:    "valkey without addrs",
			mutate:  func(c *Config) { c.Cache.Driver = CacheDriverValkey },
			wantErr: "cache.addrs",
		},
		{
			name: "redis with addrs",
			mutate: func(c *Config) {
				c.Cache.Driver = CacheDriverRedis
				c.Cache.Addrs = []string{"localhost:6379"}
			},
		},
		{
			name:    "overlap not below chunk size",
			mutate:  func(c *Config) { c.Research.ChunkOverlap = c.Research.ChunkSize },
			wantErr: "research.chunk_overlap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FEWSHOT_TEST_KEY", "secret")
	t.Setenv("FEWSHOT_TEST_EMPTY", "")

	got := string(expandEnvVars([]byte(
		"a: ${FEWSHOT_TEST_KEY}\nb: ${FEWSHOT_TEST_EMPTY:-fallback}\nc: ${FEWSHOT_TEST_UNSET}\n",
	)))
	want := "a: secret\nb: fallback\nc: \n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("FEWSHOT_TEST_GROQ", "gsk-123")
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := `
http:
  port: 9090
auth:
  api_keys: ["k1"]
llm:
  api_key: ${FEWSHOT_TEST_GROQ}
  temperature: 0.5
  temperatures:
    sql: 0.1
  budget:
    daily_token_limit: 1000
    action: reject
cache:
  driver: valkey
  addrs: ["${FEWSHOT_TEST_VALKEY:-localhost:6379}"]
examples:
  path: data/posts.json
  header: Write a tweet.
sql:
  driver: mysql
  dsn: ${FEWSHOT_TEST_DSN:-root:root@tcp(localhost:3306)/atliq_tshirts}
  tables: [t_shirts, discounts]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.Auth.APIKeys[0] != "k1" {
		t.Errorf("http/auth = %+v %+v", cfg.HTTP, cfg.Auth)
	}
	if cfg.LLM.APIKey != "gsk-123" || cfg.Embedding.APIKey != "gsk-123" {
		t.Errorf("api keys = %q %q", cfg.LLM.APIKey, cfg.Embedding.APIKey)
	}
	if cfg.LLM.Budget.DailyTokenLimit != 1000 || cfg.LLM.Budget.Action != "reject" {
		t.Errorf("budget = %+v", cfg.LLM.Budget)
	}
	if !cfg.Cache.Enabled() || cfg.Cache.Addrs[0] != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Examples.Path != "data/posts.json" || cfg.Examples.Header != "Write a tweet." {
		t.Errorf("examples = %+v", cfg.Examples)
	}
	if *cfg.LLM.Temperatures.SQL != 0.1 || *cfg.LLM.Temperatures.Post != 0.5 || *cfg.LLM.Temperatures.Research != 0.5 {
		t.Errorf("temperatures = %+v", cfg.LLM.Temperatures)
	}
	if cfg.SQL.Driver != SQLDriverMySQL || len(cfg.SQL.Tables) != 2 ||
		cfg.SQL.DSN != "root:root@tcp(localhost:3306)/atliq_tshirts" {
		t.Errorf("sql = %+v", cfg.SQL)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("cache:\n  driver: memcached\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(bad)
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("error = %v, want invalid config", err)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
