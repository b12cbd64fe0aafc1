package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"quiz-backend/jsonrepair"
)

// Assistant is the minimal model surface the validator needs; implemented by
// openai.Client and by test mocks.
type Assistant interface {
	StreamChat(ctx context.Context, system, user string) (<-chan string, error)
}

const validatorSystemTemplate = "You are a strict %s quiz validator.\n" +
	"Rules:\n" +
	"- For 'mcq': match ignoring case/spacing.\n" +
	"- For 'fill_code' and 'fill_blank': accept equivalent code/terms if logically correct.\n" +
	"- For 'drag_drop': require same order, allow case-insensitive matches.\n" +
	"Output STRICT JSON only:\n" +
	"{ \"correct\": true/false, \"feedback\": \"short explanation\" }"

// ValidationInput carries the question context the model needs to judge a
// submission that missed the literal comparison.
type ValidationInput struct {
	Type           string   `json:"type"`
	Question       string   `json:"question"`
	CodeWithBlanks string   `json:"code_with_blanks,omitempty"`
	Options        []string `json:"options,omitempty"`
	Expected       any      `json:"expected_answer"`
	Submitted      any      `json:"user_answer"`
	Language       string   `json:"-"`
}

// Validator asks the model to judge answers that literal grading rejected.
// Intended for fill_code, where equivalent code should still count.
type Validator struct {
	ai Assistant
}

func NewValidator(ai Assistant) *Validator { return &Validator{ai: ai} }

// Validate returns the model's verdict and feedback. Any failure along the
// way fails closed: the answer stays incorrect.
func (v *Validator) Validate(ctx context.Context, in ValidationInput) (bool, string) {
	lang := strings.TrimSpace(in.Language)
	if lang == "" {
		lang = "JavaScript"
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return false, ""
	}
	ch, err := v.ai.StreamChat(ctx, fmt.Sprintf(validatorSystemTemplate, lang), string(payload))
	if err != nil {
		log.Printf("[grading.validate] model call failed: %v", err)
		return false, ""
	}
	var sb strings.Builder
	for tok := range ch {
		sb.WriteString(tok)
	}
	obj, err := jsonrepair.ParseObject(sb.String())
	if err != nil {
		log.Printf("[grading.validate] unparseable verdict: %v", err)
		return false, ""
	}
	correct, _ := obj["correct"].(bool)
	feedback, _ := obj["feedback"].(string)
	return correct, feedback
}
