package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Store     StoreConfig     `mapstructure:"store"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Firecrawl FirecrawlConfig `mapstructure:"firecrawl"`
	AI        AIConfig        `mapstructure:"ai"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Synthetic SyntheticConfig `mapstructure:"synthetic"`

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string `mapstructure:"-"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type GRPCConfig struct {
	Port int `mapstructure:"port"` // 0 disables the health server
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, supabase, postgres, sqlite
	DSN    string `mapstructure:"dsn"`
}

type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

type FirecrawlConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"` // empty selects the in-process lock
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PipelineConfig struct {
	DedupWindow         time.Duration `mapstructure:"dedup_window"`
	AnalysisConcurrency int           `mapstructure:"analysis_concurrency"`
	ResultLimit         int           `mapstructure:"result_limit"`
}

type WorkerConfig struct {
	Count     int `mapstructure:"count"`
	QueueSize int `mapstructure:"queue_size"`
}

type SyntheticConfig struct {
	Seed int64 `mapstructure:"seed"` // 0 seeds from the clock
}

const (
	DriverMemory   = "memory"
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var defaults = map[string]interface{}{
	"server.port":                   8080,
	"grpc.port":                     9090,
	"logging.level":                 "info",
	"logging.format":                "json",
	"store.driver":                  DriverMemory,
	"store.dsn":                     "",
	"supabase.url":                  "",
	"supabase.service_key":          "",
	"firecrawl.api_key":             "",
	"firecrawl.base_url":            "https://api.firecrawl.dev",
	"firecrawl.timeout":             "30s",
	"ai.api_key":                    "",
	"ai.base_url":                   "https://ai.gateway.lovable.dev",
	"ai.model":                      "google/gemini-3-flash-preview",
	"ai.timeout":                    "60s",
	"redis.address":                 "",
	"redis.password":                "",
	"redis.db":                      0,
	"pipeline.dedup_window":         "2m",
	"pipeline.analysis_concurrency": 0,
	"pipeline.result_limit":         10,
	"worker.count":                  4,
	"worker.queue_size":             64,
	"synthetic.seed":                0,
}

// Load reads .env, an optional config.yaml and the environment, in that
// order of increasing precedence.
func Load() (*Config, error) {
	envFile := loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to reach it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := v.BindEnv("ai.api_key", "AI_API_KEY", "LOVABLE_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.EnvFile = envFile

	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found in the working directory or at the
// module root. Existing environment variables win.
func loadEnvFile() string {
	paths := []string{".env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func applyDefaults(cfg *Config) {
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMemory
	}
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	if cfg.Pipeline.ResultLimit <= 0 {
		cfg.Pipeline.ResultLimit = 10
	}
	if cfg.Pipeline.DedupWindow <= 0 {
		cfg.Pipeline.DedupWindow = 2 * time.Minute
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 4
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 60 * time.Second
	}
	cfg.Supabase.URL = strings.TrimRight(cfg.Supabase.URL, "/")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.GRPC.Port < 0 || cfg.GRPC.Port > 65535 {
		return fmt.Errorf("grpc.port must be between 0 and 65535, got %d", cfg.GRPC.Port)
	}
	if cfg.GRPC.Port != 0 && cfg.GRPC.Port == cfg.Server.Port {
		return fmt.Errorf("grpc.port and server.port must differ")
	}
	switch cfg.Store.Driver {
	case DriverMemory:
	case DriverSupabase:
		if cfg.Supabase.URL == "" || cfg.Supabase.ServiceKey == "" {
			return fmt.Errorf("store driver %q requires SUPABASE_URL and SUPABASE_SERVICE_KEY", cfg.Store.Driver)
		}
	case DriverPostgres, DriverSQLite:
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store driver %q requires STORE_DSN", cfg.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if cfg.Pipeline.AnalysisConcurrency < 0 {
		return fmt.Errorf("pipeline.analysis_concurrency must not be negative")
	}
	if cfg.Worker.QueueSize < 0 {
		return fmt.Errorf("worker.queue_size must not be negative")
	}
	return nil
}
