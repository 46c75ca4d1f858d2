package models

import "github.com/Skryldev/questionsdb/db"

// Reply represents a row in the "replies" table. Replies form a tree per
// question through ParentID; a nil ParentID marks a top-level reply.
//
// The parent must belong to the same question. Nothing here checks that.
type Reply struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	ParentID   *int64 `json:"parent_id"`
	Body       string `json:"body"`
	AuthorID   int64  `json:"author_id"`
}

// ReplyFromRecord builds a Reply from a field-keyed row.
func ReplyFromRecord(r db.Record) Reply {
	return Reply{
		ID:         r.Int64("id"),
		QuestionID: r.Int64("question_id"),
		ParentID:   r.NullInt64("parent_id"),
		Body:       r.String("body"),
		AuthorID:   r.Int64("author_id"),
	}
}

// Persisted reports whether the reply has been saved.
func (r Reply) Persisted() bool { return r.ID != 0 }

// IsTopLevel reports whether the reply answers the question directly.
func (r Reply) IsTopLevel() bool { return r.ParentID == nil }
