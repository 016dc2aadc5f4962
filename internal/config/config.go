package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration. It is loaded once
// at startup, validated eagerly, and never mutated afterwards.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	App     AppConfig     `yaml:"app"`
	Logging LoggingConfig `yaml:"logging"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Render  RenderConfig  `yaml:"render"`
	Storage StorageConfig `yaml:"storage"`
	Jobs    JobsConfig    `yaml:"jobs"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// GeminiConfig holds the script synthesis provider settings. The API key can
// be set in the file or via the GEMINI_API_KEY environment variable, which
// takes precedence.
type GeminiConfig struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRepairAttempts int           `yaml:"max_repair_attempts"`
	EnableVoiceover   bool          `yaml:"enable_voiceover"`
	Voice             string        `yaml:"voice"`
}

// RenderConfig holds the Manim engine invocation settings
type RenderConfig struct {
	ManimPath string        `yaml:"manim_path"`
	Quality   string        `yaml:"quality"`
	Timeout   time.Duration `yaml:"timeout"`
	FrameRate int           `yaml:"frame_rate"`
}

// StorageConfig holds the artifact directory roots
type StorageConfig struct {
	VideosDir string `yaml:"videos_dir"`
	TempDir   string `yaml:"temp_dir"`
}

// JobsConfig holds the job lifecycle settings: the concurrency ceiling, the
// retention window for terminal jobs, and request duration bounds.
type JobsConfig struct {
	MaxConcurrent   int           `yaml:"max_concurrent"`
	Retention       time.Duration `yaml:"retention"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	MinDuration     int           `yaml:"min_duration"`
	MaxDuration     int           `yaml:"max_duration"`
}

// Load reads and parses the configuration file. GEMINI_API_KEY from the
// environment overrides the file value when present.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.Gemini.Model == "" {
		return fmt.Errorf("gemini model is required")
	}

	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("gemini timeout must be greater than 0")
	}

	if c.Gemini.MaxRepairAttempts < 1 {
		return fmt.Errorf("gemini max_repair_attempts must be at least 1")
	}

	if c.Render.ManimPath == "" {
		return fmt.Errorf("render manim_path is required")
	}

	if c.Render.Timeout <= 0 {
		return fmt.Errorf("render timeout must be greater than 0")
	}

	if c.Storage.VideosDir == "" {
		return fmt.Errorf("storage videos_dir is required")
	}

	if c.Storage.TempDir == "" {
		return fmt.Errorf("storage temp_dir is required")
	}

	if c.Jobs.MaxConcurrent < 1 {
		return fmt.Errorf("jobs max_concurrent must be at least 1")
	}

	if c.Jobs.Retention <= 0 {
		return fmt.Errorf("jobs retention must be greater than 0")
	}

	if c.Jobs.CleanupInterval <= 0 {
		return fmt.Errorf("jobs cleanup_interval must be greater than 0")
	}

	if c.Jobs.MinDuration < 1 {
		return fmt.Errorf("jobs min_duration must be at least 1")
	}

	if c.Jobs.MaxDuration < c.Jobs.MinDuration {
		return fmt.Errorf("jobs max_duration must be at least min_duration")
	}

	return nil
}
