package generator

import (
	"context"
	"testing"
)

// replayAssistant returns one scripted reply per StreamChat call.
type replayAssistant struct {
	replies []string
	calls   int
}

func (r *replayAssistant) StreamChat(ctx context.Context, system, user string) (<-chan string, error) {
	reply := r.replies[len(r.replies)-1]
	if r.calls < len(r.replies) {
		reply = r.replies[r.calls]
	}
	r.calls++
	ch := make(chan string, 2)
	// split the reply to exercise token collection
	half := len(reply) / 2
	ch <- reply[:half]
	ch <- reply[half:]
	close(ch)
	return ch, nil
}

const threeQuestions = `[
  {"type":"mcq","question":"Which keyword declares a block-scoped variable?","options":["var","let","global","def"],"answer":"let","explanation":"let is block scoped."},
  {"type":"fill_code","question":"Fill the blank.","code_with_blanks":"for (let i = 0; i < 3; ___) {}","answer":"i++","explanation":"increment"},
  {"type":"drag_drop","question":"Order the steps.","options":["loop","init","exit"],"answer":["init","loop","exit"],"explanation":"loop lifecycle"}
]`

func TestGenerateSplitsSafeAndSecret(t *testing.T) {
	g := New(&replayAssistant{replies: []string{threeQuestions}})
	res, err := g.Generate(context.Background(), Request{N: 3, Topic: "loops"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Safe) != 3 || len(res.Secret) != 3 {
		t.Fatalf("want 3+3, got %d safe %d secret", len(res.Safe), len(res.Secret))
	}
	for i := range res.Safe {
		if res.Safe[i].QuestionID == "" || res.Safe[i].QuestionID != res.Secret[i].QuestionID {
			t.Fatalf("question ids must align, got %q vs %q", res.Safe[i].QuestionID, res.Secret[i].QuestionID)
		}
		if res.Secret[i].Attempts != 0 || res.Secret[i].FirstWrong {
			t.Fatal("fresh records must have zero attempts")
		}
		if res.Secret[i].Language != "javascript" {
			t.Fatalf("language default not applied: %q", res.Secret[i].Language)
		}
	}
	if res.Secret[0].Answer != "let" {
		t.Fatalf("mcq answer lost: %v", res.Secret[0].Answer)
	}
	ordered, ok := res.Secret[2].Answer.([]string)
	if !ok || len(ordered) != 3 || ordered[0] != "init" {
		t.Fatalf("drag_drop answer must stay an ordered list: %v", res.Secret[2].Answer)
	}
}

func TestGenerateRetriesOnCountMismatch(t *testing.T) {
	short := `[{"type":"mcq","question":"Q1?","options":["a","b"],"answer":"a","explanation":""}]`
	ra := &replayAssistant{replies: []string{short, threeQuestions}}
	g := New(ra)
	res, err := g.Generate(context.Background(), Request{N: 3})
	if err != nil {
		t.Fatal(err)
	}
	if ra.calls != 2 {
		t.Fatalf("want 2 model calls, got %d", ra.calls)
	}
	if len(res.Safe) != 3 {
		t.Fatalf("want 3 questions, got %d", len(res.Safe))
	}
}

func TestGenerateKeepsBestBatchAfterExhaustedRetries(t *testing.T) {
	two := `[{"type":"mcq","question":"Q1?","answer":"a","options":["a","b"]},{"type":"mcq","question":"Q2?","answer":"b","options":["a","b"]}]`
	ra := &replayAssistant{replies: []string{two, two, two}}
	g := New(ra)
	res, err := g.Generate(context.Background(), Request{N: 5})
	if err != nil {
		t.Fatal(err)
	}
	if ra.calls != 3 {
		t.Fatalf("want 3 attempts, got %d", ra.calls)
	}
	if len(res.Safe) != 2 {
		t.Fatalf("best batch should survive, got %d", len(res.Safe))
	}
}

func TestGenerateRecoversFromGarbage(t *testing.T) {
	ra := &replayAssistant{replies: []string{"sorry, I cannot do that", threeQuestions}}
	g := New(ra)
	res, err := g.Generate(context.Background(), Request{N: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Safe) != 3 {
		t.Fatalf("want 3 questions, got %d", len(res.Safe))
	}
}

func TestGenerateSurfacesParseError(t *testing.T) {
	ra := &replayAssistant{replies: []string{"garbage", "garbage", "garbage"}}
	g := New(ra)
	if _, err := g.Generate(context.Background(), Request{N: 3}); err == nil {
		t.Fatal("expected parse error after exhausted retries")
	}
}

func TestApplyDefaults(t *testing.T) {
	r := Request{}
	r.ApplyDefaults()
	if r.Language != "javascript" || r.Topic != "loops" || r.Difficulty != "mixed" || r.N != 10 {
		t.Fatalf("unexpected defaults: %+v", r)
	}
	r = Request{N: 100}
	r.ApplyDefaults()
	if r.N != 20 {
		t.Fatalf("n must be clamped to 20, got %d", r.N)
	}
}

func TestSplitItemCoercions(t *testing.T) {
	safe, secret := splitItem(map[string]any{
		"type":     "single-choice",
		"question": "Pick one",
		"options":  []any{"a", "b"},
		"answer":   "c",
	}, 1, "python")
	if safe.Type != "mcq" {
		t.Fatalf("single-choice must normalize to mcq, got %q", safe.Type)
	}
	if !containsFold(safe.Options, "c") {
		t.Fatalf("answer must be represented in options: %v", safe.Options)
	}
	if secret.Language != "python" {
		t.Fatalf("language not carried: %q", secret.Language)
	}

	_, secret = splitItem(map[string]any{
		"type":   "ordering",
		"answer": `["first","second"]`,
	}, 2, "cpp")
	ordered, ok := secret.Answer.([]string)
	if !ok || len(ordered) != 2 {
		t.Fatalf("stringified list answer must be parsed: %v", secret.Answer)
	}
}
