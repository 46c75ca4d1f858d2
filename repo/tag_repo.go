package repo

import (
	"context"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
)

// TagRepository defines lookups and persistence for tags.
type TagRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Tag, error)
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	Questions(ctx context.Context, t models.Tag) ([]models.Question, error)
	MostPopular(ctx context.Context) ([]models.Question, error)
	Save(ctx context.Context, t *models.Tag) error
}

type tagRepo struct {
	q db.Querier
}

// NewTagRepo returns a TagRepository backed by q.
func NewTagRepo(q db.Querier) TagRepository {
	return &tagRepo{q: q}
}

const (
	sqlFindTagByID = `
		SELECT id, tag
		FROM   tags
		WHERE  id = ?`

	sqlFindTagByName = `
		SELECT   id, tag
		FROM     tags
		WHERE    tag = ?
		ORDER BY id
		LIMIT    1`

	sqlInsertTag = `INSERT INTO tags (tag) VALUES (?)`

	sqlUpdateTag = `UPDATE tags SET tag = ? WHERE id = ?`
)

// FindByID returns the tag with the given id, or db.ErrNotFound.
func (r *tagRepo) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	return findOne(ctx, r.q, "repo/tag", models.TagFromRecord, sqlFindTagByID, id)
}

// FindByName returns the first tag, by id, with the exact name.
func (r *tagRepo) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	return findOne(ctx, r.q, "repo/tag", models.TagFromRecord, sqlFindTagByName, name)
}

// Questions returns the questions carrying t.
func (r *tagRepo) Questions(ctx context.Context, t models.Tag) ([]models.Question, error) {
	return NewQuestionTagRepo(r.q).QuestionsForTagID(ctx, t.ID)
}

// MostPopular is QuestionTagRepository.MostPopularQuestions.
func (r *tagRepo) MostPopular(ctx context.Context) ([]models.Question, error) {
	return NewQuestionTagRepo(r.q).MostPopularQuestions(ctx)
}

// Save inserts t when it has no id and otherwise renames it.
func (r *tagRepo) Save(ctx context.Context, t *models.Tag) error {
	return save(ctx, r.q, "repo/tag", &t.ID, sqlInsertTag, sqlUpdateTag, t.Tag)
}

var _ TagRepository = (*tagRepo)(nil)
