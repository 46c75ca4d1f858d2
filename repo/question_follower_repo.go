package repo

import (
	"context"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
)

// QuestionFollowerRepository covers the question_followers join table and
// the queries that traverse it.
type QuestionFollowerRepository interface {
	FindByID(ctx context.Context, id int64) (*models.QuestionFollower, error)
	FollowersForQuestionID(ctx context.Context, questionID int64) ([]models.User, error)
	FollowedQuestionsForUserID(ctx context.Context, userID int64) ([]models.Question, error)
	MostFollowedQuestions(ctx context.Context, n int) ([]models.Question, error)
	Save(ctx context.Context, f *models.QuestionFollower) error
}

type questionFollowerRepo struct {
	q db.Querier
}

// NewQuestionFollowerRepo returns a QuestionFollowerRepository backed by q.
func NewQuestionFollowerRepo(q db.Querier) QuestionFollowerRepository {
	return &questionFollowerRepo{q: q}
}

const (
	sqlFindQuestionFollowerByID = `
		SELECT id, question_id, follower_id
		FROM   question_followers
		WHERE  id = ?`

	sqlFollowersForQuestion = `
		SELECT   users.id, users.fname, users.lname
		FROM     users
		JOIN     question_followers ON question_followers.follower_id = users.id
		WHERE    question_followers.question_id = ?
		ORDER BY question_followers.id`

	sqlFollowedQuestionsForUser = `
		SELECT   questions.id, questions.title, questions.body, questions.author_id
		FROM     questions
		JOIN     question_followers ON question_followers.question_id = questions.id
		WHERE    question_followers.follower_id = ?
		ORDER BY question_followers.id`

	sqlMostFollowedQuestions = `
		SELECT   questions.id, questions.title, questions.body, questions.author_id
		FROM     questions
		JOIN     question_followers ON question_followers.question_id = questions.id
		GROUP BY questions.id
		ORDER BY COUNT(question_followers.id) DESC, questions.id
		LIMIT    ?`

	sqlInsertQuestionFollower = `
		INSERT INTO question_followers (question_id, follower_id)
		VALUES (?, ?)`

	sqlUpdateQuestionFollower = `
		UPDATE question_followers
		SET    question_id = ?, follower_id = ?
		WHERE  id = ?`
)

// FindByID returns the follow row with the given id, or db.ErrNotFound.
func (r *questionFollowerRepo) FindByID(ctx context.Context, id int64) (*models.QuestionFollower, error) {
	return findOne(ctx, r.q, "repo/question_follower", models.QuestionFollowerFromRecord, sqlFindQuestionFollowerByID, id)
}

// FollowersForQuestionID returns the users following the question, in the
// order they followed it.
func (r *questionFollowerRepo) FollowersForQuestionID(ctx context.Context, questionID int64) ([]models.User, error) {
	return findAll(ctx, r.q, "repo/question_follower", models.UserFromRecord, sqlFollowersForQuestion, questionID)
}

// FollowedQuestionsForUserID returns the questions the user follows, in the
// order they were followed.
func (r *questionFollowerRepo) FollowedQuestionsForUserID(ctx context.Context, userID int64) ([]models.Question, error) {
	return findAll(ctx, r.q, "repo/question_follower", models.QuestionFromRecord, sqlFollowedQuestionsForUser, userID)
}

// MostFollowedQuestions returns at most n questions, highest follower count
// first. Ties go to the lower id. Questions nobody follows are never listed.
func (r *questionFollowerRepo) MostFollowedQuestions(ctx context.Context, n int) ([]models.Question, error) {
	return top(n, func() ([]models.Question, error) {
		return findAll(ctx, r.q, "repo/question_follower", models.QuestionFromRecord, sqlMostFollowedQuestions, n)
	})
}

// Save inserts f when it has no id and otherwise repoints it. Pairs are not
// checked for duplicates.
func (r *questionFollowerRepo) Save(ctx context.Context, f *models.QuestionFollower) error {
	return save(ctx, r.q, "repo/question_follower", &f.ID, sqlInsertQuestionFollower, sqlUpdateQuestionFollower, f.QuestionID, f.FollowerID)
}

var _ QuestionFollowerRepository = (*questionFollowerRepo)(nil)
