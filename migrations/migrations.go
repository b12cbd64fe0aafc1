package migrations

import (
	"database/sql"
	"fmt"
)

// Migrate creates the quiz-history tables if they do not exist.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	createResults := `
	CREATE TABLE IF NOT EXISTS quiz_results (
		id INT AUTO_INCREMENT PRIMARY KEY,
		session_id VARCHAR(64) NOT NULL,
		language VARCHAR(32) NOT NULL DEFAULT '',
		total INT NOT NULL DEFAULT 0,
		correct_first_try INT NOT NULL DEFAULT 0,
		score DECIMAL(5,2) NOT NULL DEFAULT 0.00,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createResults); err != nil {
		return err
	}
	createAnswers := `
	CREATE TABLE IF NOT EXISTS quiz_result_answers (
		id INT AUTO_INCREMENT PRIMARY KEY,
		result_id INT NOT NULL,
		question_id VARCHAR(64) NOT NULL,
		type VARCHAR(32) NOT NULL DEFAULT '',
		question TEXT,
		answer TEXT,
		attempts INT NOT NULL DEFAULT 0,
		first_wrong TINYINT(1) NOT NULL DEFAULT 0,
		INDEX idx_result (result_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createAnswers); err != nil {
		return err
	}
	return nil
}
