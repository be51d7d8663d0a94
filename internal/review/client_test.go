package review

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrireview/agrireview/internal/config"
	"github.com/agrireview/agrireview/internal/domain"
)

func testLogger() *log.Logger {
	return log.New(bytes.NewBuffer(nil), "", 0)
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestNewClient_MissingCredential(t *testing.T) {
	clearCredentialEnv(t)

	_, err := NewClient(config.ReviewConfig{Provider: "googleai"}, testLogger())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthentication))
}

func TestNewClient_MissingCredentialOpenAI(t *testing.T) {
	clearCredentialEnv(t)

	_, err := NewClient(config.ReviewConfig{Provider: "openai"}, testLogger())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthentication))
}

func TestNewClient_DefaultModel(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	c, err := NewClient(config.ReviewConfig{Provider: "googleai"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "googleai/gemini-2.5-flash", c.Model())
}

func TestClient_BuildPrompt(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	c, err := NewClient(config.ReviewConfig{Provider: "googleai"}, testLogger())
	require.NoError(t, err)

	prompt := c.buildPrompt("The maize trial will run for two seasons.")

	assert.Contains(t, prompt, "Agronomy Professor")
	assert.Contains(t, prompt, "Scientific Rigor")
	assert.Contains(t, prompt, "The maize trial will run for two seasons.")
	// Gemini declares the schema in the request config, not the prompt
	assert.NotContains(t, prompt, "Required Output Format")
}

func TestClient_Temperature(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	c, err := NewClient(config.ReviewConfig{Provider: "googleai"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0.3, c.temperature())

	c2, err := NewClient(config.ReviewConfig{Provider: "googleai", Temperature: 0.7}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0.7, c2.temperature())
}

func TestStripFences(t *testing.T) {
	payload := `{"summary": "ok"}`

	assert.Equal(t, payload, stripFences(payload))
	assert.Equal(t, payload, stripFences("```json\n"+payload+"\n```"))
	assert.Equal(t, payload, stripFences("```\n"+payload+"\n```"))
	assert.Equal(t, payload, stripFences("  \n"+payload+"\n  "))
	assert.Equal(t, "", stripFences("```json\n```"))
}

func TestResponseContract_MatchesSchema(t *testing.T) {
	schema := responseSchema()

	require.Contains(t, schema.Required, "summary")
	require.Contains(t, schema.Required, "scores")
	require.Contains(t, schema.Required, "comments")

	scores := schema.Properties["scores"]
	require.NotNil(t, scores)
	assert.ElementsMatch(t,
		[]string{"logic", "content", "structure", "feasibility", "scientific"},
		scores.Required)

	severity := schema.Properties["comments"].Items.Properties["severity"]
	require.NotNil(t, severity)
	assert.Equal(t, []string{"critical", "minor", "good"}, severity.Enum)
}

func TestOutputInstructions_NamesAllFields(t *testing.T) {
	for _, field := range []string{"summary", "scores", "comments",
		"original_text_context", "critique", "suggestion", "severity"} {
		assert.True(t, strings.Contains(outputInstructions, field), "missing %s", field)
	}
}
