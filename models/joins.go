package models

import "github.com/Skryldev/questionsdb/db"

// QuestionFollower represents a row in "question_followers": FollowerID
// follows QuestionID. Pairs are not deduplicated.
type QuestionFollower struct {
	ID         int64 `json:"id"`
	QuestionID int64 `json:"question_id"`
	FollowerID int64 `json:"follower_id"`
}

// QuestionFollowerFromRecord builds a QuestionFollower from a field-keyed row.
func QuestionFollowerFromRecord(r db.Record) QuestionFollower {
	return QuestionFollower{
		ID:         r.Int64("id"),
		QuestionID: r.Int64("question_id"),
		FollowerID: r.Int64("follower_id"),
	}
}

// QuestionLike represents a row in "question_likes": UserID likes QuestionID.
type QuestionLike struct {
	ID         int64 `json:"id"`
	UserID     int64 `json:"user_id"`
	QuestionID int64 `json:"question_id"`
}

// QuestionLikeFromRecord builds a QuestionLike from a field-keyed row.
func QuestionLikeFromRecord(r db.Record) QuestionLike {
	return QuestionLike{
		ID:         r.Int64("id"),
		UserID:     r.Int64("user_id"),
		QuestionID: r.Int64("question_id"),
	}
}

// Tag represents a row in "tags".
type Tag struct {
	ID  int64  `json:"id"`
	Tag string `json:"tag"`
}

// TagFromRecord builds a Tag from a field-keyed row.
func TagFromRecord(r db.Record) Tag {
	return Tag{
		ID:  r.Int64("id"),
		Tag: r.String("tag"),
	}
}

// QuestionTag represents a row in "question_tags", linking questions and
// tags many-to-many.
type QuestionTag struct {
	ID         int64 `json:"id"`
	QuestionID int64 `json:"question_id"`
	TagID      int64 `json:"tag_id"`
}

// QuestionTagFromRecord builds a QuestionTag from a field-keyed row.
func QuestionTagFromRecord(r db.Record) QuestionTag {
	return QuestionTag{
		ID:         r.Int64("id"),
		QuestionID: r.Int64("question_id"),
		TagID:      r.Int64("tag_id"),
	}
}
