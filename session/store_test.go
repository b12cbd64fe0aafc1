package session

import (
	"sync"
	"testing"
)

func sampleRecords() []*SecretRecord {
	return []*SecretRecord{
		{QuestionID: "q1", Type: "mcq", Answer: "let", Explanation: "block scoped"},
		{QuestionID: "q2", Type: "drag_drop", Answer: []string{"a", "b"}, Explanation: "order"},
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(sampleRecords())
	if id == "" {
		t.Fatal("empty session id")
	}
	rec, ok := s.Get(id, "q1")
	if !ok {
		t.Fatal("q1 not found")
	}
	if rec.Answer != "let" {
		t.Fatalf("unexpected answer %v", rec.Answer)
	}
	if _, ok := s.Get(id, "missing"); ok {
		t.Fatal("expected miss for unknown question")
	}
	if _, ok := s.Get("missing", "q1"); ok {
		t.Fatal("expected miss for unknown session")
	}
}

func TestRecordAttempt(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(sampleRecords())

	rec, ok := s.RecordAttempt(id, "q1", false)
	if !ok {
		t.Fatal("q1 not found")
	}
	if rec.Attempts != 1 || !rec.FirstWrong {
		t.Fatalf("want attempts=1 firstWrong=true, got %d %v", rec.Attempts, rec.FirstWrong)
	}
	rec, _ = s.RecordAttempt(id, "q1", true)
	if rec.Attempts != 2 || !rec.FirstWrong {
		t.Fatalf("first-wrong flag must stick, got %d %v", rec.Attempts, rec.FirstWrong)
	}

	rec, _ = s.RecordAttempt(id, "q2", true)
	if rec.Attempts != 1 || rec.FirstWrong {
		t.Fatalf("correct first try must not set firstWrong, got %d %v", rec.Attempts, rec.FirstWrong)
	}
}

func TestEndDestroysSession(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(sampleRecords())

	recs, ok := s.End(id)
	if !ok || len(recs) != 2 {
		t.Fatalf("want 2 records, got %d ok=%v", len(recs), ok)
	}
	if _, ok := s.Get(id, "q1"); ok {
		t.Fatal("record accessible after End")
	}
	if _, ok := s.End(id); ok {
		t.Fatal("second End must report unknown session")
	}
	if s.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", s.Len())
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(sampleRecords())
	rec, _ := s.Get(id, "q1")
	rec.Attempts = 99
	again, _ := s.Get(id, "q1")
	if again.Attempts != 0 {
		t.Fatal("Get must return a copy, not shared state")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(sampleRecords())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.RecordAttempt(id, "q1", false)
		}()
		go func() {
			defer wg.Done()
			s.Get(id, "q2")
		}()
	}
	wg.Wait()

	rec, ok := s.Get(id, "q1")
	if !ok || rec.Attempts != 50 {
		t.Fatalf("want 50 attempts, got %d ok=%v", rec.Attempts, ok)
	}
}
