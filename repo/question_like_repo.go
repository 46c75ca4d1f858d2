package repo

import (
	"context"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
)

// QuestionLikeRepository covers the question_likes join table.
type QuestionLikeRepository interface {
	FindByID(ctx context.Context, id int64) (*models.QuestionLike, error)
	LikersForQuestionID(ctx context.Context, questionID int64) ([]models.User, error)
	NumLikesForQuestionID(ctx context.Context, questionID int64) (int64, error)
	LikedQuestionsForUserID(ctx context.Context, userID int64) ([]models.Question, error)
	MostLikedQuestions(ctx context.Context, n int) ([]models.Question, error)
	Save(ctx context.Context, l *models.QuestionLike) error
}

type questionLikeRepo struct {
	q db.Querier
}

// NewQuestionLikeRepo returns a QuestionLikeRepository backed by q.
func NewQuestionLikeRepo(q db.Querier) QuestionLikeRepository {
	return &questionLikeRepo{q: q}
}

const (
	sqlFindQuestionLikeByID = `
		SELECT id, user_id, question_id
		FROM   question_likes
		WHERE  id = ?`

	sqlLikersForQuestion = `
		SELECT   users.id, users.fname, users.lname
		FROM     users
		JOIN     question_likes ON question_likes.user_id = users.id
		WHERE    question_likes.question_id = ?
		ORDER BY question_likes.id`

	sqlNumLikesForQuestion = `
		SELECT COUNT(*)
		FROM   question_likes
		WHERE  question_id = ?`

	sqlLikedQuestionsForUser = `
		SELECT   questions.id, questions.title, questions.body, questions.author_id
		FROM     questions
		JOIN     question_likes ON question_likes.question_id = questions.id
		WHERE    question_likes.user_id = ?
		ORDER BY question_likes.id`

	sqlMostLikedQuestions = `
		SELECT   questions.id, questions.title, questions.body, questions.author_id
		FROM     questions
		JOIN     question_likes ON question_likes.question_id = questions.id
		GROUP BY questions.id
		ORDER BY COUNT(question_likes.id) DESC, questions.id
		LIMIT    ?`

	sqlInsertQuestionLike = `
		INSERT INTO question_likes (user_id, question_id)
		VALUES (?, ?)`

	sqlUpdateQuestionLike = `
		UPDATE question_likes
		SET    user_id = ?, question_id = ?
		WHERE  id = ?`
)

// FindByID returns the like row with the given id, or db.ErrNotFound.
func (r *questionLikeRepo) FindByID(ctx context.Context, id int64) (*models.QuestionLike, error) {
	return findOne(ctx, r.q, "repo/question_like", models.QuestionLikeFromRecord, sqlFindQuestionLikeByID, id)
}

// LikersForQuestionID returns the users who liked the question.
func (r *questionLikeRepo) LikersForQuestionID(ctx context.Context, questionID int64) ([]models.User, error) {
	return findAll(ctx, r.q, "repo/question_like", models.UserFromRecord, sqlLikersForQuestion, questionID)
}

// NumLikesForQuestionID counts the likes on a question. An unknown question
// has zero likes.
func (r *questionLikeRepo) NumLikesForQuestionID(ctx context.Context, questionID int64) (int64, error) {
	return countOf(ctx, r.q, "repo/question_like", sqlNumLikesForQuestion, questionID)
}

// LikedQuestionsForUserID returns the questions the user liked, in the order
// they were liked.
func (r *questionLikeRepo) LikedQuestionsForUserID(ctx context.Context, userID int64) ([]models.Question, error) {
	return findAll(ctx, r.q, "repo/question_like", models.QuestionFromRecord, sqlLikedQuestionsForUser, userID)
}

// MostLikedQuestions returns at most n questions, most likes first, ties
// broken by id.
func (r *questionLikeRepo) MostLikedQuestions(ctx context.Context, n int) ([]models.Question, error) {
	return top(n, func() ([]models.Question, error) {
		return findAll(ctx, r.q, "repo/question_like", models.QuestionFromRecord, sqlMostLikedQuestions, n)
	})
}

// Save inserts l when it has no id and otherwise repoints it. A missing user
// or question surfaces as db.ErrForeignKeyViolation.
func (r *questionLikeRepo) Save(ctx context.Context, l *models.QuestionLike) error {
	return save(ctx, r.q, "repo/question_like", &l.ID, sqlInsertQuestionLike, sqlUpdateQuestionLike, l.UserID, l.QuestionID)
}

var _ QuestionLikeRepository = (*questionLikeRepo)(nil)
