package repo

import (
	"context"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
)

// QuestionTagRepository covers the question_tags join table.
type QuestionTagRepository interface {
	FindByID(ctx context.Context, id int64) (*models.QuestionTag, error)
	TagsForQuestionID(ctx context.Context, questionID int64) ([]models.Tag, error)
	QuestionsForTagID(ctx context.Context, tagID int64) ([]models.Question, error)
	MostPopularQuestions(ctx context.Context) ([]models.Question, error)
	Save(ctx context.Context, qt *models.QuestionTag) error
}

type questionTagRepo struct {
	q db.Querier
}

// NewQuestionTagRepo returns a QuestionTagRepository backed by q.
func NewQuestionTagRepo(q db.Querier) QuestionTagRepository {
	return &questionTagRepo{q: q}
}

const (
	sqlFindQuestionTagByID = `
		SELECT id, question_id, tag_id
		FROM   question_tags
		WHERE  id = ?`

	sqlTagsForQuestion = `
		SELECT   tags.id, tags.tag
		FROM     tags
		JOIN     question_tags ON question_tags.tag_id = tags.id
		WHERE    question_tags.question_id = ?
		ORDER BY question_tags.id`

	sqlQuestionsForTag = `
		SELECT   questions.id, questions.title, questions.body, questions.author_id
		FROM     questions
		JOIN     question_tags ON question_tags.question_id = questions.id
		WHERE    question_tags.tag_id = ?
		ORDER BY question_tags.id`

	// For each tag, the liked questions whose like count equals the best
	// count under that tag. Questions without likes drop out at the join.
	sqlMostPopularQuestions = `
		WITH tag_likes AS (
			SELECT   question_tags.tag_id, question_tags.question_id, COUNT(question_likes.id) AS likes
			FROM     question_tags
			JOIN     question_likes ON question_likes.question_id = question_tags.question_id
			GROUP BY question_tags.tag_id, question_tags.question_id
		)
		SELECT   questions.id, questions.title, questions.body, questions.author_id
		FROM     question_tags
		JOIN     questions      ON questions.id = question_tags.question_id
		JOIN     question_likes ON question_likes.question_id = questions.id
		GROUP BY question_tags.tag_id, questions.id
		HAVING   COUNT(question_likes.id) = (
			SELECT MAX(tag_likes.likes)
			FROM   tag_likes
			WHERE  tag_likes.tag_id = question_tags.tag_id
		)
		ORDER BY question_tags.tag_id, questions.id`

	sqlInsertQuestionTag = `
		INSERT INTO question_tags (question_id, tag_id)
		VALUES (?, ?)`

	sqlUpdateQuestionTag = `
		UPDATE question_tags
		SET    question_id = ?, tag_id = ?
		WHERE  id = ?`
)

// FindByID returns the question-tag link with the given id, or db.ErrNotFound.
func (r *questionTagRepo) FindByID(ctx context.Context, id int64) (*models.QuestionTag, error) {
	return findOne(ctx, r.q, "repo/question_tag", models.QuestionTagFromRecord, sqlFindQuestionTagByID, id)
}

// TagsForQuestionID returns the tags on the question, in the order they were
// attached.
func (r *questionTagRepo) TagsForQuestionID(ctx context.Context, questionID int64) ([]models.Tag, error) {
	return findAll(ctx, r.q, "repo/question_tag", models.TagFromRecord, sqlTagsForQuestion, questionID)
}

// QuestionsForTagID returns the questions carrying the tag.
func (r *questionTagRepo) QuestionsForTagID(ctx context.Context, tagID int64) ([]models.Question, error) {
	return findAll(ctx, r.q, "repo/question_tag", models.QuestionFromRecord, sqlQuestionsForTag, tagID)
}

// MostPopularQuestions returns, tag by tag, every question tied for the
// most likes under that tag. A question that leads several tags appears once
// per tag.
func (r *questionTagRepo) MostPopularQuestions(ctx context.Context) ([]models.Question, error) {
	return findAll(ctx, r.q, "repo/question_tag", models.QuestionFromRecord, sqlMostPopularQuestions)
}

// Save inserts qt when it has no id and otherwise repoints the link.
func (r *questionTagRepo) Save(ctx context.Context, qt *models.QuestionTag) error {
	return save(ctx, r.q, "repo/question_tag", &qt.ID, sqlInsertQuestionTag, sqlUpdateQuestionTag, qt.QuestionID, qt.TagID)
}

var _ QuestionTagRepository = (*questionTagRepo)(nil)
