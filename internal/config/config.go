package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Review  ReviewConfig  `yaml:"review"`
	Reports ReportsConfig `yaml:"reports"`
	Server  ServerConfig  `yaml:"server"`
	Email   EmailConfig   `yaml:"email"`
	Verbose bool          `yaml:"-"` // Set via CLI only
}

// ReviewConfig holds generative-model settings
type ReviewConfig struct {
	Provider       string  `yaml:"provider"` // googleai, openai
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"` // Custom OpenAI-compatible endpoint
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// ReportsConfig holds report output settings
type ReportsConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// ServerConfig holds HTTP upload surface settings
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// EmailConfig holds report delivery settings
type EmailConfig struct {
	Enabled      bool   `yaml:"enabled"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromAddress  string `yaml:"from_address"`
	FromName     string `yaml:"from_name"`
	ToAddress    string `yaml:"to_address"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Review: ReviewConfig{
			Provider:       "googleai",
			Model:          "gemini-2.5-flash",
			Temperature:    0.3, // Low temperature for analytical output
			TimeoutSeconds: 120,
		},
		Reports: ReportsConfig{
			OutputDir: "reports",
		},
		Server: ServerConfig{
			ListenAddr:  ":8080",
			MaxUploadMB: 10,
		},
		Email: EmailConfig{
			Enabled:  false,
			SMTPPort: 587,
			FromName: "AgriReview",
		},
	}
}

// Load reads configuration from file and merges with defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Determine config file path
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil // Use defaults if can't find home
		}
		path = filepath.Join(homeDir, ".config", "agrireview", "config.yaml")
	}

	// Expand ~ in path
	path = expandPath(path)

	// Read config file if it exists
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Reports.OutputDir = expandPath(cfg.Reports.OutputDir)

	return cfg, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Reports.OutputDir == "" {
		return fmt.Errorf("reports.output_dir is required")
	}

	if c.Review.Temperature < 0 || c.Review.Temperature > 2 {
		return fmt.Errorf("review.temperature must be in [0, 2], got %v", c.Review.Temperature)
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}

	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("smtp_host is required when email is enabled")
		}
		if c.Email.ToAddress == "" {
			return fmt.Errorf("to_address is required when email is enabled")
		}
	}

	if c.Review.APIKey == "" {
		// Check environment variables in provider order
		switch c.Review.Provider {
		case "openai":
			c.Review.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			if key := os.Getenv("GEMINI_API_KEY"); key != "" {
				c.Review.APIKey = key
			} else {
				c.Review.APIKey = os.Getenv("GOOGLE_API_KEY")
			}
		}
	}

	return nil
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
