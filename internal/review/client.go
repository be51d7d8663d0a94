package review

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	oai "github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/google/uuid"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/agrireview/agrireview/internal/config"
	"github.com/agrireview/agrireview/internal/domain"
)

// Client sends document text to the generative model and returns a
// validated review. Each call is independent; nothing is cached or retried.
type Client struct {
	config  config.ReviewConfig
	logger  *log.Logger
	genkit  *genkit.Genkit
	modelID string
	timeout time.Duration
}

// NewClient creates a Client for the configured provider. The credential is
// resolved exactly once here; a missing credential fails with the
// authentication kind before any network interaction.
func NewClient(cfg config.ReviewConfig, logger *log.Logger) (*Client, error) {
	ctx := context.Background()

	var g *genkit.Genkit
	var modelID string

	switch cfg.Provider {
	case "openai":
		// OpenAI-compatible API (Zhipu AI, etc.)
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, domain.NewError(domain.KindAuthentication,
				"no API key configured for provider openai")
		}

		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}

		plugin := &oai.OpenAI{
			APIKey: apiKey,
			Opts:   opts,
		}

		modelID = cfg.Model
		if modelID == "" {
			modelID = "gpt-4o-mini"
		}
		if !strings.Contains(modelID, "/") {
			modelID = "openai/" + modelID
		}

		g = genkit.Init(ctx,
			genkit.WithDefaultModel(modelID),
			genkit.WithPlugins(plugin),
		)

	case "googleai":
		fallthrough
	default:
		// Google AI (Gemini)
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
			if apiKey == "" {
				apiKey = os.Getenv("GOOGLE_API_KEY")
			}
		}
		if apiKey == "" {
			return nil, domain.NewError(domain.KindAuthentication,
				"no API key configured for provider googleai")
		}

		modelID = cfg.Model
		if modelID == "" {
			modelID = "gemini-2.5-flash"
		}
		if !strings.Contains(modelID, "/") {
			modelID = "googleai/" + modelID
		}

		g = genkit.Init(ctx,
			genkit.WithDefaultModel(modelID),
			genkit.WithPlugins(&googlegenai.GoogleAI{
				APIKey: apiKey,
			}),
		)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		config:  cfg,
		logger:  logger,
		genkit:  g,
		modelID: modelID,
		timeout: timeout,
	}, nil
}

// Review asks the model for a structured critique of the document text.
func (c *Client) Review(ctx context.Context, text string) (*domain.ReviewResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.New().String()
	c.logger.Printf("Review request %s: model=%s chars=%d", requestID, c.modelID, len(text))

	opts := []ai.GenerateOption{
		ai.WithModelName(c.modelID),
		ai.WithPrompt(c.buildPrompt(text)),
	}
	if c.isGemini() {
		opts = append(opts, ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(c.temperature())),
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema(),
		}))
	}

	answer, err := genkit.GenerateText(ctx, c.genkit, opts...)
	if err != nil {
		return nil, domain.WrapError(domain.KindGeneration, "generating review", err)
	}

	raw := stripFences(answer)
	if raw == "" {
		return nil, domain.NewError(domain.KindGeneration, "model returned an empty response")
	}

	resp, err := ValidateResponse([]byte(raw))
	if err != nil {
		return nil, err
	}

	c.logger.Printf("Review request %s: %d comments, %d critical",
		requestID, resp.TotalComments(), resp.CriticalCount())
	return resp, nil
}

func (c *Client) isGemini() bool {
	return strings.HasPrefix(c.modelID, "googleai/")
}

func (c *Client) temperature() float64 {
	if c.config.Temperature > 0 {
		return c.config.Temperature
	}
	return 0.3
}

// buildPrompt concatenates the persona, the document, and (for providers
// without native schema enforcement) the output format instructions.
func (c *Client) buildPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString(systemInstruction)
	sb.WriteString("\n\nPlease review the following academic text:\n\n")
	sb.WriteString(text)

	if !c.isGemini() {
		sb.WriteString("\n")
		sb.WriteString(outputInstructions)
	}

	return sb.String()
}

// stripFences removes a surrounding markdown code block, if any. Some
// models wrap JSON output even when asked not to.
func stripFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
	}

	return strings.TrimSpace(text)
}

// Model returns the resolved model identifier, for logging and reports.
func (c *Client) Model() string {
	return c.modelID
}
