// Package results persists finished quiz summaries to MySQL. Sessions
// themselves stay in memory; only the end-of-quiz outcome is written.
package results

import (
	"database/sql"
	"encoding/json"

	"quiz-backend/session"
)

// Summary is the end-of-quiz score snapshot.
type Summary struct {
	Total           int     `json:"total"`
	CorrectFirstTry int     `json:"correct_first_try"`
	ScorePercentage float64 `json:"score_percentage"`
}

// Repository handles DB operations for quiz history.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with the given DB.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveResult stores one finished quiz and its per-question outcomes.
func (r *Repository) SaveResult(sessionID, language string, sum Summary, records []*session.SecretRecord) error {
	res, err := r.db.Exec(
		`INSERT INTO quiz_results (session_id, language, total, correct_first_try, score) VALUES (?,?,?,?,?)`,
		sessionID, language, sum.Total, sum.CorrectFirstTry, sum.ScorePercentage)
	if err != nil {
		return err
	}
	resultID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, rec := range records {
		answer, err := json.Marshal(rec.Answer)
		if err != nil {
			return err
		}
		_, err = r.db.Exec(
			`INSERT INTO quiz_result_answers (result_id, question_id, type, question, answer, attempts, first_wrong) VALUES (?,?,?,?,?,?,?)`,
			resultID, rec.QuestionID, rec.Type, rec.Question, string(answer), rec.Attempts, rec.FirstWrong)
		if err != nil {
			return err
		}
	}
	return nil
}
