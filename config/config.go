package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Seating    SeatingConfig    `yaml:"seating"`
	Logs       LogsConfig       `yaml:"logs"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Briefing   BriefingConfig   `yaml:"briefing"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the message analysis worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite | postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// RedisConfig switches the persistent store to Redis when enabled.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SeatingConfig holds the seating engine settings.
type SeatingConfig struct {
	DefaultColumns int `yaml:"default_columns"`
	PriorityRows   int `yaml:"priority_rows"`
	MaxPasses      int `yaml:"max_passes"`
	HistoryLimit   int `yaml:"history_limit"`
}

// LogsConfig caps the to-do list and the message log.
type LogsConfig struct {
	MessageLimit int `yaml:"message_limit"`
	TodoLimit    int `yaml:"todo_limit"`
}

// AttendanceConfig holds the default attendance limits, in days.
type AttendanceConfig struct {
	MenstrualLimit        int `yaml:"menstrual_limit"`
	ExpDomesticLimit      int `yaml:"exp_domestic_limit"`
	ExpInternationalLimit int `yaml:"exp_international_limit"`
}

// BriefingConfig configures the Gemini-backed message analysis.
type BriefingConfig struct {
	Enabled        bool          `yaml:"enabled"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyEnv lets environment variables override secrets and connection
// strings, so they can live in a .env file instead of the YAML config.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Briefing.APIKey = v
	}
}

// ApplyDefaults fills every unset field with its default value.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "classroom.db"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "classroom"
	}

	if cfg.Seating.DefaultColumns <= 0 || cfg.Seating.DefaultColumns > 50 {
		cfg.Seating.DefaultColumns = 6
	}
	if cfg.Seating.PriorityRows <= 0 {
		cfg.Seating.PriorityRows = 2
	}
	if cfg.Seating.MaxPasses <= 0 {
		cfg.Seating.MaxPasses = 100
	}
	if cfg.Seating.HistoryLimit <= 0 {
		cfg.Seating.HistoryLimit = 10
	}

	if cfg.Logs.MessageLimit <= 0 {
		cfg.Logs.MessageLimit = 50
	}
	if cfg.Logs.TodoLimit <= 0 {
		cfg.Logs.TodoLimit = 50
	}

	if cfg.Attendance.MenstrualLimit <= 0 {
		cfg.Attendance.MenstrualLimit = 1
	}
	if cfg.Attendance.ExpDomesticLimit <= 0 {
		cfg.Attendance.ExpDomesticLimit = 7
	}
	if cfg.Attendance.ExpInternationalLimit <= 0 {
		cfg.Attendance.ExpInternationalLimit = 30
	}

	if cfg.Briefing.Model == "" {
		cfg.Briefing.Model = "gemini-1.5-flash"
	}
	if cfg.Briefing.TimeoutSeconds <= 0 {
		cfg.Briefing.TimeoutSeconds = 60
	}
	cfg.Briefing.Timeout = time.Duration(cfg.Briefing.TimeoutSeconds) * time.Second

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
