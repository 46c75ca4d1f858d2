package models

import "github.com/Skryldev/questionsdb/db"

// Question represents a row in the "questions" table.
type Question struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	AuthorID int64  `json:"author_id"`
}

// QuestionFromRecord builds a Question from a field-keyed row.
func QuestionFromRecord(r db.Record) Question {
	return Question{
		ID:       r.Int64("id"),
		Title:    r.String("title"),
		Body:     r.String("body"),
		AuthorID: r.Int64("author_id"),
	}
}

// Persisted reports whether the question has been saved.
func (q Question) Persisted() bool { return q.ID != 0 }
