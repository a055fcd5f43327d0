package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"mealsnap/internal/model"
)

// parseReply turns the raw model reply into a structured analysis.
// Despite the prompt demanding bare JSON, models occasionally wrap the
// object in markdown code fences, so those are stripped before
// parsing. Anything that still fails to parse, or parses into the
// wrong shape, is reported as ErrMalformedReply.
func parseReply(content string) (*model.Analysis, error) {
	cleaned := stripCodeFences(content)

	var result model.Analysis
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	for i, food := range result.Foods {
		if strings.TrimSpace(food.Name) == "" {
			return nil, fmt.Errorf("%w: food %d has no name", ErrMalformedReply, i)
		}
	}

	// An empty foods list is a valid result: the model found nothing
	// it could identify. Normalise to a non-nil slice so the JSON
	// response renders [] rather than null.
	if result.Foods == nil {
		result.Foods = []model.Food{}
	}

	return &result, nil
}

// stripCodeFences removes an optional leading ```json (or bare ```)
// fence and the matching trailing fence.
func stripCodeFences(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	return strings.TrimSpace(s)
}
