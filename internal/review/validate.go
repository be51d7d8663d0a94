package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agrireview/agrireview/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

var contractSchema = mustCompileContract()

func mustCompileContract() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseContract))
	if err != nil {
		panic(fmt.Sprintf("review: invalid response contract: %v", err))
	}
	return schema
}

// wire types mirror the model's JSON so severity can be checked explicitly
// instead of being coerced during unmarshaling.
type wireResponse struct {
	Summary  string              `json:"summary"`
	Scores   domain.ReviewScores `json:"scores"`
	Comments []wireComment       `json:"comments"`
}

type wireComment struct {
	OriginalTextContext string `json:"original_text_context"`
	Critique            string `json:"critique"`
	Suggestion          string `json:"suggestion"`
	Severity            string `json:"severity"`
}

// ValidateResponse parses and validates a raw model payload against the
// response contract. A payload that is not JSON fails with the generation
// kind; a structurally or semantically invalid one fails with the
// validation kind. Scores are clamped into [0,100]; severity is never
// coerced.
func ValidateResponse(raw []byte) (*domain.ReviewResponse, error) {
	result, err := contractSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, domain.WrapError(domain.KindGeneration, "model returned a malformed payload", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, domain.NewError(domain.KindValidation,
			"model response does not match the review contract: "+strings.Join(problems, "; "))
	}

	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.WrapError(domain.KindGeneration, "model returned a malformed payload", err)
	}

	resp := &domain.ReviewResponse{
		Summary:  strings.TrimSpace(wire.Summary),
		Scores:   wire.Scores,
		Comments: make([]domain.ReviewComment, 0, len(wire.Comments)),
	}
	resp.Scores.Clamp()

	if resp.Summary == "" {
		return nil, domain.NewError(domain.KindValidation, "model response has an empty summary")
	}

	for i, c := range wire.Comments {
		severity, ok := domain.ParseSeverity(c.Severity)
		if !ok {
			return nil, domain.NewError(domain.KindValidation,
				fmt.Sprintf("comment %d has unrecognized severity %q", i+1, c.Severity))
		}

		comment := domain.ReviewComment{
			OriginalTextContext: strings.TrimSpace(c.OriginalTextContext),
			Critique:            strings.TrimSpace(c.Critique),
			Suggestion:          strings.TrimSpace(c.Suggestion),
			Severity:            severity,
		}
		if comment.OriginalTextContext == "" || comment.Critique == "" || comment.Suggestion == "" {
			return nil, domain.NewError(domain.KindValidation,
				fmt.Sprintf("comment %d is missing required fields", i+1))
		}

		resp.Comments = append(resp.Comments, comment)
	}

	return resp, nil
}
