package repo

import (
	"context"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
)

// QuestionRepository defines lookups, relationship traversal, rankings and
// persistence for questions.
type QuestionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Question, error)
	FindByAuthorID(ctx context.Context, authorID int64) ([]models.Question, error)
	List(ctx context.Context, limit, offset int) ([]models.Question, error)
	Author(ctx context.Context, q models.Question) (*models.User, error)
	Replies(ctx context.Context, q models.Question) ([]models.Reply, error)
	Followers(ctx context.Context, q models.Question) ([]models.User, error)
	Likers(ctx context.Context, q models.Question) ([]models.User, error)
	NumLikes(ctx context.Context, q models.Question) (int64, error)
	Tags(ctx context.Context, q models.Question) ([]models.Tag, error)
	MostFollowed(ctx context.Context, n int) ([]models.Question, error)
	MostLiked(ctx context.Context, n int) ([]models.Question, error)
	Save(ctx context.Context, q *models.Question) error
}

type questionRepo struct {
	q db.Querier
}

// NewQuestionRepo returns a QuestionRepository backed by q.
func NewQuestionRepo(q db.Querier) QuestionRepository {
	return &questionRepo{q: q}
}

const (
	sqlFindQuestionByID = `
		SELECT id, title, body, author_id
		FROM   questions
		WHERE  id = ?`

	sqlFindQuestionsByAuthorID = `
		SELECT   id, title, body, author_id
		FROM     questions
		WHERE    author_id = ?
		ORDER BY id`

	sqlListQuestions = `
		SELECT   id, title, body, author_id
		FROM     questions
		ORDER BY id
		LIMIT    ? OFFSET ?`

	sqlInsertQuestion = `
		INSERT INTO questions (title, body, author_id)
		VALUES (?, ?, ?)`

	sqlUpdateQuestion = `
		UPDATE questions
		SET    title = ?, body = ?, author_id = ?
		WHERE  id = ?`
)

// FindByID returns the question with the given id, or db.ErrNotFound.
func (r *questionRepo) FindByID(ctx context.Context, id int64) (*models.Question, error) {
	return findOne(ctx, r.q, "repo/question", models.QuestionFromRecord, sqlFindQuestionByID, id)
}

// FindByAuthorID returns every question written by the user, in id order.
func (r *questionRepo) FindByAuthorID(ctx context.Context, authorID int64) ([]models.Question, error) {
	return findAll(ctx, r.q, "repo/question", models.QuestionFromRecord, sqlFindQuestionsByAuthorID, authorID)
}

// List returns a page of questions ordered by id.
func (r *questionRepo) List(ctx context.Context, limit, offset int) ([]models.Question, error) {
	return findAll(ctx, r.q, "repo/question", models.QuestionFromRecord, sqlListQuestions, limit, offset)
}

// Author returns the question's author, or db.ErrNotFound if the author row
// is gone.
func (r *questionRepo) Author(ctx context.Context, q models.Question) (*models.User, error) {
	return NewUserRepo(r.q).FindByID(ctx, q.AuthorID)
}

// Replies returns every reply on the question, at any depth, as a flat list.
func (r *questionRepo) Replies(ctx context.Context, q models.Question) ([]models.Reply, error) {
	return NewReplyRepo(r.q).FindByQuestionID(ctx, q.ID)
}

// Followers returns the users following q, in the order they followed it.
func (r *questionRepo) Followers(ctx context.Context, q models.Question) ([]models.User, error) {
	return NewQuestionFollowerRepo(r.q).FollowersForQuestionID(ctx, q.ID)
}

// Likers returns the users who liked q, in the order they liked it.
func (r *questionRepo) Likers(ctx context.Context, q models.Question) ([]models.User, error) {
	return NewQuestionLikeRepo(r.q).LikersForQuestionID(ctx, q.ID)
}

// NumLikes returns how many likes the question has; 0 when it has none.
func (r *questionRepo) NumLikes(ctx context.Context, q models.Question) (int64, error) {
	return NewQuestionLikeRepo(r.q).NumLikesForQuestionID(ctx, q.ID)
}

// Tags returns the tags attached to q.
func (r *questionRepo) Tags(ctx context.Context, q models.Question) ([]models.Tag, error) {
	return NewQuestionTagRepo(r.q).TagsForQuestionID(ctx, q.ID)
}

// MostFollowed returns up to n questions ordered by follower count.
func (r *questionRepo) MostFollowed(ctx context.Context, n int) ([]models.Question, error) {
	return NewQuestionFollowerRepo(r.q).MostFollowedQuestions(ctx, n)
}

// MostLiked returns up to n questions ordered by like count.
func (r *questionRepo) MostLiked(ctx context.Context, n int) ([]models.Question, error) {
	return NewQuestionLikeRepo(r.q).MostLikedQuestions(ctx, n)
}

// Save inserts q when it has no id and otherwise overwrites title, body and
// author. A missing author surfaces as db.ErrForeignKeyViolation.
func (r *questionRepo) Save(ctx context.Context, q *models.Question) error {
	return save(ctx, r.q, "repo/question", &q.ID, sqlInsertQuestion, sqlUpdateQuestion, q.Title, q.Body, q.AuthorID)
}

var _ QuestionRepository = (*questionRepo)(nil)
