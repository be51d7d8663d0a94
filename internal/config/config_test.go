package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "googleai", cfg.Review.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Review.Model)
	assert.Equal(t, 0.3, cfg.Review.Temperature)
	assert.Equal(t, 120, cfg.Review.TimeoutSeconds)
	assert.Equal(t, "reports", cfg.Reports.OutputDir)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "googleai", cfg.Review.Provider)
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
review:
  provider: openai
  model: glm-4.7
  base_url: https://api.z.ai/api/paas/v4
  temperature: 0.5
reports:
  output_dir: /tmp/agrireview-reports
server:
  listen_addr: ":9999"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Review.Provider)
	assert.Equal(t, "glm-4.7", cfg.Review.Model)
	assert.Equal(t, "https://api.z.ai/api/paas/v4", cfg.Review.BaseURL)
	assert.Equal(t, 0.5, cfg.Review.Temperature)
	assert.Equal(t, "/tmp/agrireview-reports", cfg.Reports.OutputDir)
	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	// Untouched sections keep their defaults
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
	assert.Equal(t, 120, cfg.Review.TimeoutSeconds)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("review: [not a mapping"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_EnvCredentialFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-gemini-env")
	t.Setenv("GOOGLE_API_KEY", "from-google-env")

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "from-gemini-env", cfg.Review.APIKey)
}

func TestValidate_EnvCredentialFallbackOpenAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-openai-env")

	cfg := DefaultConfig()
	cfg.Review.Provider = "openai"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "from-openai-env", cfg.Review.APIKey)
}

func TestValidate_ExplicitKeyWins(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg := DefaultConfig()
	cfg.Review.APIKey = "from-config"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "from-config", cfg.Review.APIKey)
}

func TestValidate_Rejections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reports.OutputDir = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Review.Temperature = 3
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.MaxUploadMB = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Email.Enabled = true
	assert.Error(t, cfg.Validate(), "smtp_host required when email enabled")
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := ServerConfig{MaxUploadMB: 10}
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
}
