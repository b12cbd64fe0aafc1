package quizapi

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quiz-backend/generator"
	"quiz-backend/grading"
	"quiz-backend/jsonrepair"
	"quiz-backend/openai"
	"quiz-backend/results"
	"quiz-backend/session"
)

const (
	generateTimeout = 90 * time.Second
	validateTimeout = 30 * time.Second
)

// QuestionGenerator is a minimal interface implemented by generator.Generator.
type QuestionGenerator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

// CodeValidator is the optional LLM second pass for fill_code answers.
type CodeValidator interface {
	Validate(ctx context.Context, in grading.ValidationInput) (bool, string)
}

// ResultWriter persists end-of-quiz summaries when history is configured.
type ResultWriter interface {
	SaveResult(sessionID, language string, sum results.Summary, records []*session.SecretRecord) error
}

// Handler exposes the quiz endpoints.
type Handler struct {
	gen       QuestionGenerator
	store     session.Store
	validator CodeValidator
	history   ResultWriter
}

func NewHandler(gen QuestionGenerator, store session.Store) *Handler {
	return &Handler{gen: gen, store: store}
}

// SetCodeValidator injects the LLM validator used for fill_code submissions
// that miss the literal comparison.
func (h *Handler) SetCodeValidator(v CodeValidator) { h.validator = v }

// SetHistory injects the optional quiz-history writer.
func (h *Handler) SetHistory(w ResultWriter) { h.history = w }

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/generate_questions", h.generate)
	r.POST("/check_answer", h.check)
	r.POST("/end_quiz", h.end)
	r.GET("/healthz", h.healthz)
}

type checkRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	UserAnswer any    `json:"user_answer"`
	Language   string `json:"language"`
}

type endRequest struct {
	SessionID string `json:"session_id"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	res, err := h.gen.Generate(ctx, req)
	if err != nil {
		var parseErr *jsonrepair.ParseError
		switch {
		case errors.Is(err, openai.ErrMissingAPIKey):
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "OpenAI API key is missing."})
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, gin.H{"status": "error", "message": "model timeout"})
		case errors.As(err, &parseErr):
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": parseErr.Error()})
		default:
			log.Printf("[quizapi.generate] generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Generation failed: " + err.Error()})
		}
		return
	}

	sessionID := h.store.Create(res.Secret)
	log.Printf("[quizapi.generate] session=%s stored %d questions", sessionID, len(res.Secret))

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"session_id": sessionID,
		"questions":  res.Safe,
	})
}

func (h *Handler) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}

	rec, ok := h.store.Get(req.SessionID, req.QuestionID)
	if !ok {
		log.Printf("[quizapi.check] not found session=%s qid=%s", req.SessionID, req.QuestionID)
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Question not found or expired"})
		return
	}

	correct := grading.Correct(rec.Answer, req.UserAnswer)
	explanation := rec.Explanation

	// Equivalent code should still count for fill_code; the model gets the
	// final word, failing closed.
	if !correct && rec.Type == "fill_code" && h.validator != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), validateTimeout)
		lang := req.Language
		if lang == "" {
			lang = rec.Language
		}
		verdict, feedback := h.validator.Validate(ctx, grading.ValidationInput{
			Type:           rec.Type,
			Question:       rec.Question,
			CodeWithBlanks: rec.CodeWithBlanks,
			Options:        rec.Options,
			Expected:       rec.Answer,
			Submitted:      req.UserAnswer,
			Language:       lang,
		})
		cancel()
		if verdict {
			correct = true
			if feedback != "" {
				explanation = feedback
			}
		}
	}

	h.store.RecordAttempt(req.SessionID, req.QuestionID, correct)

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"correct":     correct,
		"expected":    rec.Answer,
		"explanation": explanation,
	})
}

func (h *Handler) end(c *gin.Context) {
	var req endRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}

	records, ok := h.store.End(req.SessionID)
	sum := summarize(records)
	if ok {
		log.Printf("[quizapi.end] session=%s total=%d correct_first_try=%d score=%.2f",
			req.SessionID, sum.Total, sum.CorrectFirstTry, sum.ScorePercentage)
		if h.history != nil {
			language := ""
			if len(records) > 0 {
				language = records[0].Language
			}
			if err := h.history.SaveResult(req.SessionID, language, sum, records); err != nil {
				log.Printf("[quizapi.end] history write failed session=%s: %v", req.SessionID, err)
			}
		}
	}

	// Ending an unknown or already-ended session stays a 200.
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Quiz session " + req.SessionID + " ended.",
		"summary": sum,
	})
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// summarize scores a finished session: a question counts when its first
// attempt was correct.
func summarize(records []*session.SecretRecord) results.Summary {
	sum := results.Summary{Total: len(records)}
	for _, rec := range records {
		if rec.Attempts > 0 && !rec.FirstWrong {
			sum.CorrectFirstTry++
		}
	}
	if sum.Total > 0 {
		pct := float64(sum.CorrectFirstTry) / float64(sum.Total) * 100.0
		sum.ScorePercentage = math.Round(pct*100) / 100
	}
	return sum
}
