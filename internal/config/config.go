package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"dsstool/internal/dss"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "DSS"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Templates TemplatesConfig `yaml:"templates" envconfig:"TEMPLATES"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Metrics   MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BIND_HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"120s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RunTimeout      time.Duration `yaml:"run_timeout" envconfig:"RUN_TIMEOUT" default:"5m"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format    string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output    string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath  string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/dsstool.log"`
	AddSource bool   `yaml:"add_source" envconfig:"ADD_SOURCE" default:"false"`
}

// PipelineConfig holds the worksheet and column names of the survey workbook.
type PipelineConfig struct {
	Worksheet  string `yaml:"worksheet" envconfig:"WORKSHEET" default:"5G Info"`
	DSSColumn  string `yaml:"dss_column" envconfig:"DSS_COLUMN" default:"DSS"`
	CellColumn string `yaml:"cell_column" envconfig:"CELL_COLUMN" default:"NRCellDU"`
	Exclude    string `yaml:"exclude_value" envconfig:"EXCLUDE_VALUE" default:"NO"`
	NodeSheet  string `yaml:"node_sheet" envconfig:"NODE_SHEET" default:"Mixed Mode Info"`
	CellSheet  string `yaml:"cell_sheet" envconfig:"CELL_SHEET" default:"eUtran Parameters"`
}

// TemplatesConfig locates the configuration templates.
type TemplatesConfig struct {
	Dir     string `yaml:"dir" envconfig:"DIR" default:"templates"`
	Variant string `yaml:"variant" envconfig:"VARIANT" default:"dual"`
	// Single is the template file used by the single variant.
	Single string `yaml:"single" envconfig:"SINGLE" default:"standard.txt"`
}

// StorageConfig contains file system locations
type StorageConfig struct {
	ScratchDir string `yaml:"scratch_dir" envconfig:"SCRATCH_DIR"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
}

// MetricsConfig controls telemetry.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	Endpoint      string `yaml:"endpoint" envconfig:"ENDPOINT" default:"/metrics"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"10"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"20"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load loads configuration from environment variables and config file.
// Environment values take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
		cfg = mergeConfigs(*fileConfig, cfg, Default())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs takes a file value wherever the env config still holds the
// built-in default and the file sets something.
func mergeConfigs(file, env Config, def *Config) Config {
	pickStr := func(e *string, f, d string) {
		if *e == d && f != "" {
			*e = f
		}
	}
	pickInt := func(e *int, f, d int) {
		if *e == d && f != 0 {
			*e = f
		}
	}
	pickDur := func(e *time.Duration, f, d time.Duration) {
		if *e == d && f != 0 {
			*e = f
		}
	}

	pickStr(&env.Server.Host, file.Server.Host, def.Server.Host)
	pickInt(&env.Server.Port, file.Server.Port, def.Server.Port)
	pickDur(&env.Server.ReadTimeout, file.Server.ReadTimeout, def.Server.ReadTimeout)
	pickDur(&env.Server.WriteTimeout, file.Server.WriteTimeout, def.Server.WriteTimeout)
	pickDur(&env.Server.IdleTimeout, file.Server.IdleTimeout, def.Server.IdleTimeout)
	pickInt(&env.Server.MaxHeaderBytes, file.Server.MaxHeaderBytes, def.Server.MaxHeaderBytes)
	pickDur(&env.Server.ShutdownTimeout, file.Server.ShutdownTimeout, def.Server.ShutdownTimeout)
	pickDur(&env.Server.RunTimeout, file.Server.RunTimeout, def.Server.RunTimeout)
	if env.Server.MaxUploadBytes == def.Server.MaxUploadBytes && file.Server.MaxUploadBytes != 0 {
		env.Server.MaxUploadBytes = file.Server.MaxUploadBytes
	}

	pickStr(&env.Logging.Level, file.Logging.Level, def.Logging.Level)
	pickStr(&env.Logging.Format, file.Logging.Format, def.Logging.Format)
	pickStr(&env.Logging.Output, file.Logging.Output, def.Logging.Output)
	pickStr(&env.Logging.FilePath, file.Logging.FilePath, def.Logging.FilePath)
	env.Logging.AddSource = env.Logging.AddSource || file.Logging.AddSource

	pickStr(&env.Pipeline.Worksheet, file.Pipeline.Worksheet, def.Pipeline.Worksheet)
	pickStr(&env.Pipeline.DSSColumn, file.Pipeline.DSSColumn, def.Pipeline.DSSColumn)
	pickStr(&env.Pipeline.CellColumn, file.Pipeline.CellColumn, def.Pipeline.CellColumn)
	pickStr(&env.Pipeline.Exclude, file.Pipeline.Exclude, def.Pipeline.Exclude)
	pickStr(&env.Pipeline.NodeSheet, file.Pipeline.NodeSheet, def.Pipeline.NodeSheet)
	pickStr(&env.Pipeline.CellSheet, file.Pipeline.CellSheet, def.Pipeline.CellSheet)

	pickStr(&env.Templates.Dir, file.Templates.Dir, def.Templates.Dir)
	pickStr(&env.Templates.Variant, file.Templates.Variant, def.Templates.Variant)
	pickStr(&env.Templates.Single, file.Templates.Single, def.Templates.Single)

	pickStr(&env.Storage.ScratchDir, file.Storage.ScratchDir, def.Storage.ScratchDir)
	pickStr(&env.Storage.OutputDir, file.Storage.OutputDir, def.Storage.OutputDir)

	pickStr(&env.Metrics.Endpoint, file.Metrics.Endpoint, def.Metrics.Endpoint)
	pickStr(&env.Metrics.TraceExporter, file.Metrics.TraceExporter, def.Metrics.TraceExporter)

	if env.RateLimit.RPS == def.RateLimit.RPS && file.RateLimit.RPS != 0 {
		env.RateLimit.RPS = file.RateLimit.RPS
	}
	pickInt(&env.RateLimit.Burst, file.RateLimit.Burst, def.RateLimit.Burst)

	pickInt(&env.WebSocket.ReadBufferSize, file.WebSocket.ReadBufferSize, def.WebSocket.ReadBufferSize)
	pickInt(&env.WebSocket.WriteBufferSize, file.WebSocket.WriteBufferSize, def.WebSocket.WriteBufferSize)
	pickDur(&env.WebSocket.PingPeriod, file.WebSocket.PingPeriod, def.WebSocket.PingPeriod)
	pickDur(&env.WebSocket.PongWait, file.WebSocket.PongWait, def.WebSocket.PongWait)

	return env
}

// Validate checks value ranges and normalizes enumerations.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}
	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path is required for output %q", c.Logging.Output)
	}

	if strings.TrimSpace(c.Pipeline.Worksheet) == "" || strings.TrimSpace(c.Pipeline.DSSColumn) == "" {
		return fmt.Errorf("pipeline worksheet and dss column are required")
	}

	c.Templates.Variant = strings.ToLower(c.Templates.Variant)
	switch dss.Variant(c.Templates.Variant) {
	case dss.VariantDual, dss.VariantSingle:
	default:
		return fmt.Errorf("invalid template variant: %s", c.Templates.Variant)
	}
	if c.Templates.Dir == "" {
		return fmt.Errorf("templates dir is required")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	return nil
}

// PipelineOptions converts the pipeline and template sections to run options.
func (c *Config) PipelineOptions() dss.Options {
	return dss.Options{
		Worksheet:      c.Pipeline.Worksheet,
		DSSColumn:      c.Pipeline.DSSColumn,
		CellColumn:     c.Pipeline.CellColumn,
		Exclude:        c.Pipeline.Exclude,
		NodeSheet:      c.Pipeline.NodeSheet,
		CellSheet:      c.Pipeline.CellSheet,
		Variant:        dss.Variant(c.Templates.Variant),
		SingleTemplate: c.Templates.Single,
	}.WithDefaults()
}

// ScratchRoot returns the directory run scratch dirs are created under.
func (c *Config) ScratchRoot() string {
	if c.Storage.ScratchDir != "" {
		return c.Storage.ScratchDir
	}
	return filepath.Join(os.TempDir(), AppName)
}

// getConfigFilePath returns DSS_CONFIG_FILE or the first config file found.
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RunTimeout:      DefaultRunTimeout,
			MaxUploadBytes:  DefaultMaxUploadBytes,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/dsstool.log",
		},
		Pipeline: PipelineConfig{
			Worksheet:  dss.DefaultWorksheet,
			DSSColumn:  dss.DefaultDSSColumn,
			CellColumn: dss.DefaultCellColumn,
			Exclude:    dss.DefaultExclude,
			NodeSheet:  dss.DefaultNodeSheet,
			CellSheet:  dss.DefaultCellSheet,
		},
		Templates: TemplatesConfig{
			Dir:     DefaultTemplatesDir,
			Variant: string(dss.VariantDual),
			Single:  dss.FourSectorTemplate,
		},
		Storage: StorageConfig{
			OutputDir: DefaultOutputDir,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			Endpoint:      "/metrics",
			TraceExporter: "none",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     10,
			Burst:   20,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
		},
	}
}
