package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrireview/agrireview/internal/domain"
)

const validPayload = `{
  "summary": "A promising proposal that needs statistical rigor.",
  "scores": {"logic": 80, "content": 70, "structure": 90, "feasibility": 60, "scientific": 75},
  "comments": [
    {
      "original_text_context": "We will repeat the trial twice.",
      "critique": "Two repetitions are insufficient for ANOVA.",
      "suggestion": "Use at least four replicates per treatment.",
      "severity": "critical"
    },
    {
      "original_text_context": "The introduction cites recent literature.",
      "critique": "Good coverage of the last five years.",
      "suggestion": "Keep this depth in the discussion as well.",
      "severity": "good"
    }
  ]
}`

func TestValidateResponse_Valid(t *testing.T) {
	resp, err := ValidateResponse([]byte(validPayload))
	require.NoError(t, err)

	assert.Equal(t, "A promising proposal that needs statistical rigor.", resp.Summary)
	assert.Equal(t, float64(80), resp.Scores.Logic)
	assert.Equal(t, float64(70), resp.Scores.Content)
	assert.Equal(t, float64(90), resp.Scores.Structure)
	assert.Equal(t, float64(60), resp.Scores.Feasibility)
	assert.Equal(t, float64(75), resp.Scores.Scientific)

	require.Len(t, resp.Comments, 2)
	assert.Equal(t, domain.SeverityCritical, resp.Comments[0].Severity)
	assert.Equal(t, domain.SeverityGood, resp.Comments[1].Severity)
	// Order is display order, preserved as received
	assert.Equal(t, "We will repeat the trial twice.", resp.Comments[0].OriginalTextContext)
}

func TestValidateResponse_NotJSON(t *testing.T) {
	_, err := ValidateResponse([]byte("I could not produce a review."))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindGeneration))
}

func TestValidateResponse_MissingSummary(t *testing.T) {
	payload := `{
  "scores": {"logic": 1, "content": 1, "structure": 1, "feasibility": 1, "scientific": 1},
  "comments": []
}`
	_, err := ValidateResponse([]byte(payload))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "summary")
}

func TestValidateResponse_MissingScoreField(t *testing.T) {
	payload := `{
  "summary": "ok",
  "scores": {"logic": 1, "content": 1, "structure": 1, "feasibility": 1},
  "comments": []
}`
	_, err := ValidateResponse([]byte(payload))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestValidateResponse_UnrecognizedSeverity(t *testing.T) {
	payload := `{
  "summary": "ok",
  "scores": {"logic": 1, "content": 1, "structure": 1, "feasibility": 1, "scientific": 1},
  "comments": [
    {"original_text_context": "x", "critique": "y", "suggestion": "z", "severity": "catastrophic"}
  ]
}`
	_, err := ValidateResponse([]byte(payload))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "severity")
}

func TestValidateResponse_ClampsScores(t *testing.T) {
	payload := `{
  "summary": "ok",
  "scores": {"logic": 104, "content": -3, "structure": 50, "feasibility": 50, "scientific": 50},
  "comments": []
}`
	resp, err := ValidateResponse([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, float64(100), resp.Scores.Logic)
	assert.Equal(t, float64(0), resp.Scores.Content)
}

func TestValidateResponse_EmptyCommentField(t *testing.T) {
	payload := `{
  "summary": "ok",
  "scores": {"logic": 1, "content": 1, "structure": 1, "feasibility": 1, "scientific": 1},
  "comments": [
    {"original_text_context": "x", "critique": "   ", "suggestion": "z", "severity": "minor"}
  ]
}`
	_, err := ValidateResponse([]byte(payload))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
