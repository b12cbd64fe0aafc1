// Package generator builds quiz questions by prompting the model and
// splitting each item into a client-safe view and a server-only secret
// record.
package generator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"quiz-backend/grading"
	"quiz-backend/jsonrepair"
	"quiz-backend/session"
)

// Assistant is a minimal interface implemented by openai.Client.
type Assistant interface {
	StreamChat(ctx context.Context, system, user string) (<-chan string, error)
}

// Request describes one generation call after defaults are applied.
type Request struct {
	Language   string `json:"language"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	N          int    `json:"n"`
}

// ApplyDefaults fills the blanks the way the API documents them and clamps
// the question count.
func (r *Request) ApplyDefaults() {
	if strings.TrimSpace(r.Language) == "" {
		r.Language = "javascript"
	}
	if strings.TrimSpace(r.Topic) == "" {
		r.Topic = "loops"
	}
	if strings.TrimSpace(r.Difficulty) == "" {
		r.Difficulty = "mixed"
	}
	if r.N <= 0 {
		r.N = 10
	}
	if r.N > 20 {
		r.N = 20
	}
}

// SafeQuestion is the client-visible subset of a generated question.
type SafeQuestion struct {
	QuestionID     string   `json:"question_id"`
	Type           string   `json:"type"`
	Question       string   `json:"question"`
	Options        []string `json:"options,omitempty"`
	CodeWithBlanks string   `json:"code_with_blanks,omitempty"`
}

// Result pairs the public questions with their secret records. Both slices
// are index-aligned and share question ids.
type Result struct {
	Safe   []SafeQuestion
	Secret []*session.SecretRecord
}

type Generator struct {
	ai          Assistant
	maxAttempts int
}

func New(ai Assistant) *Generator {
	return &Generator{ai: ai, maxAttempts: 3}
}

const systemPromptTemplate = "You are a strict %s quiz generator. " +
	"Allowed types: mcq, fill_code, drag_drop.\n\n" +
	"Rules:\n" +
	"- Output ONLY JSON (no markdown, no explanations outside JSON).\n" +
	"- Return a JSON list with exactly N objects (N is provided in the user prompt).\n" +
	"- The list MUST include a mix of question types (at least 1 mcq, 1 fill_code, and 1 drag_drop if N >= 3).\n" +
	"- Keys: ['type','question','options','code_with_blanks','answer','explanation'].\n" +
	"- For 'mcq': include exactly 4 plausible options, one correct.\n" +
	"- For 'fill_code': return code_with_blanks with proper indentation and ___ placeholders for blanks.\n" +
	"- For 'drag_drop': 'options' must be a list of items to arrange; 'answer' must be the correct ordered list.\n" +
	"- Always include an 'answer' and an 'explanation'.\n"

func userPrompt(req Request) string {
	return fmt.Sprintf(
		"Generate %d %s %s quiz questions about %s. "+
			"The set MUST include a balanced mix of mcq, fill_code, and drag_drop question types "+
			"(at least 1 of each if N >= 3). "+
			"Return a JSON list with exactly %d objects.",
		req.N, req.Difficulty, req.Language, req.Topic, req.N)
}

// Generate asks the model for req.N questions. When the parsed batch does not
// match the requested count it re-requests up to maxAttempts times, keeping
// the largest batch seen.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	req.ApplyDefaults()
	system := fmt.Sprintf(systemPromptTemplate, req.Language)
	user := userPrompt(req)

	var (
		best    []map[string]any
		lastErr error
	)
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		log.Printf("[generator] attempt=%d requesting %d %s questions topic=%s difficulty=%s",
			attempt, req.N, req.Language, req.Topic, req.Difficulty)
		ch, err := g.ai.StreamChat(ctx, system, user)
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		for tok := range ch {
			sb.WriteString(tok)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := jsonrepair.ParseList(sb.String())
		if err != nil {
			log.Printf("[generator] attempt=%d unparseable output: %v", attempt, err)
			lastErr = err
			continue
		}
		if len(items) == req.N {
			best = items
			break
		}
		log.Printf("[generator] attempt=%d count mismatch: got %d, want %d", attempt, len(items), req.N)
		if len(items) > len(best) {
			best = items
		}
	}
	if len(best) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("model returned no questions")
		}
		return nil, lastErr
	}

	res := &Result{
		Safe:   make([]SafeQuestion, 0, len(best)),
		Secret: make([]*session.SecretRecord, 0, len(best)),
	}
	for i, item := range best {
		safe, secret := splitItem(item, i+1, req.Language)
		res.Safe = append(res.Safe, safe)
		res.Secret = append(res.Secret, secret)
	}
	log.Printf("[generator] generated %d questions", len(res.Safe))
	return res, nil
}

// splitItem normalizes one model-provided item and splits it into the public
// question and the private answer record, joined by a fresh uuid.
func splitItem(item map[string]any, seq int, language string) (SafeQuestion, *session.SecretRecord) {
	qid := uuid.NewString()
	qType := normalizeType(toStr(item["type"]))
	question := strings.TrimSpace(toStr(item["question"]))
	if question == "" {
		question = fmt.Sprintf("Question %d", seq)
	}
	options := optionList(item["options"])
	code := toStr(item["code_with_blanks"])
	explanation := strings.TrimSpace(toStr(item["explanation"]))

	var answer any
	switch qType {
	case "drag_drop":
		ordered := grading.CoerceList(item["answer"])
		answer = ordered
		// Items to arrange default to the answer itself when omitted.
		if len(options) == 0 {
			options = append([]string(nil), ordered...)
		}
	case "mcq":
		ans := strings.TrimSpace(toStr(item["answer"]))
		if len(options) == 0 && ans != "" {
			options = []string{ans}
		}
		if ans == "" && len(options) > 0 {
			ans = options[0]
		}
		if ans != "" && !containsFold(options, ans) {
			options = append(options, ans)
		}
		answer = ans
	default: // fill_code
		answer = strings.TrimSpace(toStr(item["answer"]))
		options = nil
	}

	safe := SafeQuestion{
		QuestionID:     qid,
		Type:           qType,
		Question:       question,
		Options:        options,
		CodeWithBlanks: code,
	}
	secret := &session.SecretRecord{
		QuestionID:     qid,
		Type:           qType,
		Question:       question,
		Options:        options,
		CodeWithBlanks: code,
		Answer:         answer,
		Explanation:    explanation,
		Language:       language,
	}
	return safe, secret
}

func normalizeType(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_")))
	switch s {
	case "mcq", "multiple_choice", "single_choice", "choice":
		return "mcq"
	case "fill_code", "fill_blank", "fill_in", "code":
		return "fill_code"
	case "drag_drop", "dragdrop", "ordering", "order":
		return "drag_drop"
	default:
		return "mcq"
	}
}

func toStr(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// optionList coerces an options value, dropping empties and duplicates while
// preserving order.
func optionList(v any) []string {
	if v == nil {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, 4)
	for _, o := range grading.CoerceList(v) {
		o = strings.TrimSpace(o)
		key := strings.ToLower(o)
		if o == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}

func containsFold(xs []string, s string) bool {
	for _, x := range xs {
		if strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
