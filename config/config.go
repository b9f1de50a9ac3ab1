package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de tradescan.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Governor GovernorConfig `yaml:"governor"`
	API      APIConfig      `yaml:"api"`
	Datasets DatasetsConfig `yaml:"datasets"`
	Storage  StorageConfig  `yaml:"storage"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
}

// PipelineConfig controla el tamaño y la concurrencia de un run.
type PipelineConfig struct {
	InputSymbol     string `yaml:"input_symbol"`
	OutputSymbol    string `yaml:"output_symbol"`
	MaxTrades       int    `yaml:"max_trades"`
	FetchWorkers    int    `yaml:"fetch_workers"`
	EnrichWorkers   int    `yaml:"enrich_workers"`
	LookbackSeconds int    `yaml:"lookback_seconds"`
}

// GovernorConfig controla el rate limiting y los reintentos.
type GovernorConfig struct {
	Mode           string `yaml:"mode"` // window | token
	Burst          int    `yaml:"burst"`
	WindowSeconds  int    `yaml:"window_seconds"`
	MaxAttempts    int    `yaml:"max_attempts"`
	InitialDelayMS int    `yaml:"initial_delay_ms"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	SharedBudget   bool   `yaml:"shared_budget"` // un solo limiter para ambas APIs
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	MarketBase    string `yaml:"market_base"`
	BalanceBase   string `yaml:"balance_base"`
	UserAgent     string `yaml:"user_agent"`
	BalanceSecret string `yaml:"-"` // solo desde el entorno
}

// DatasetsConfig contiene las rutas a las tablas normalizadas.
type DatasetsConfig struct {
	Pools  string `yaml:"pools"`
	Tokens string `yaml:"tokens"`
	Chains string `yaml:"chains"`
}

// StorageConfig controla dónde se persisten los runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// OutputConfig controla la salida de cada run.
type OutputConfig struct {
	JSONPath string `yaml:"json_path"` // vacío = no escribir fichero
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Lookback devuelve la ventana de trades como time.Duration.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Pipeline.LookbackSeconds) * time.Second
}

// Window devuelve la ventana del limiter.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Governor.WindowSeconds) * time.Second
}

// InitialDelay devuelve el delay base del backoff.
func (c *Config) InitialDelay() time.Duration {
	return time.Duration(c.Governor.InitialDelayMS) * time.Millisecond
}

// Timeout devuelve el timeout por request HTTP.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Governor.TimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("BALANCE_API_SECRET"); v != "" {
		cfg.API.BalanceSecret = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Pipeline.MaxTrades <= 0 {
		cfg.Pipeline.MaxTrades = 1000
	}
	if cfg.Pipeline.FetchWorkers <= 0 {
		cfg.Pipeline.FetchWorkers = 5
	}
	if cfg.Pipeline.EnrichWorkers <= 0 {
		cfg.Pipeline.EnrichWorkers = 10
	}
	if cfg.Pipeline.LookbackSeconds <= 0 {
		cfg.Pipeline.LookbackSeconds = 60
	}
	if cfg.Governor.Mode == "" {
		cfg.Governor.Mode = "window"
	}
	if cfg.Governor.Burst <= 0 {
		cfg.Governor.Burst = 5
	}
	if cfg.Governor.WindowSeconds <= 0 {
		cfg.Governor.WindowSeconds = 5
	}
	if cfg.Governor.MaxAttempts <= 0 {
		cfg.Governor.MaxAttempts = 8
	}
	if cfg.Governor.InitialDelayMS <= 0 {
		cfg.Governor.InitialDelayMS = 2000
	}
	if cfg.Governor.TimeoutSeconds <= 0 {
		cfg.Governor.TimeoutSeconds = 30
	}
	if cfg.API.MarketBase == "" {
		cfg.API.MarketBase = "https://app.geckoterminal.com/api/p1"
	}
	if cfg.API.BalanceBase == "" {
		cfg.API.BalanceBase = "https://api.arkhamintelligence.com"
	}
	if cfg.Datasets.Pools == "" {
		cfg.Datasets.Pools = "pools.json"
	}
	if cfg.Datasets.Tokens == "" {
		cfg.Datasets.Tokens = "tokens.json"
	}
	if cfg.Datasets.Chains == "" {
		cfg.Datasets.Chains = "chains.json"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "tradescan.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.Governor.Mode {
	case "window", "token":
	default:
		return fmt.Errorf("governor.mode must be window or token, got %q", c.Governor.Mode)
	}
	return nil
}
