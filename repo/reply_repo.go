package repo

import (
	"context"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
)

// ReplyRepository defines lookups, tree navigation and persistence for
// replies. The reply tree is never materialised: parents and children are
// fetched by id when asked for.
type ReplyRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Reply, error)
	FindByQuestionID(ctx context.Context, questionID int64) ([]models.Reply, error)
	FindByUserID(ctx context.Context, authorID int64) ([]models.Reply, error)
	Author(ctx context.Context, rp models.Reply) (*models.User, error)
	Question(ctx context.Context, rp models.Reply) (*models.Question, error)
	ParentReply(ctx context.Context, rp models.Reply) (*models.Reply, error)
	ChildReplies(ctx context.Context, rp models.Reply) ([]models.Reply, error)
	Save(ctx context.Context, rp *models.Reply) error
}

type replyRepo struct {
	q db.Querier
}

// NewReplyRepo returns a ReplyRepository backed by q.
func NewReplyRepo(q db.Querier) ReplyRepository {
	return &replyRepo{q: q}
}

const (
	sqlFindReplyByID = `
		SELECT id, question_id, parent_id, body, author_id
		FROM   replies
		WHERE  id = ?`

	sqlFindRepliesByQuestionID = `
		SELECT   id, question_id, parent_id, body, author_id
		FROM     replies
		WHERE    question_id = ?
		ORDER BY id`

	sqlFindRepliesByAuthorID = `
		SELECT   id, question_id, parent_id, body, author_id
		FROM     replies
		WHERE    author_id = ?
		ORDER BY id`

	sqlFindChildReplies = `
		SELECT   id, question_id, parent_id, body, author_id
		FROM     replies
		WHERE    parent_id = ?
		ORDER BY id`

	sqlInsertReply = `
		INSERT INTO replies (question_id, parent_id, body, author_id)
		VALUES (?, ?, ?, ?)`

	sqlUpdateReply = `
		UPDATE replies
		SET    question_id = ?, parent_id = ?, body = ?, author_id = ?
		WHERE  id = ?`
)

// FindByID returns the reply with the given id, or db.ErrNotFound.
func (r *replyRepo) FindByID(ctx context.Context, id int64) (*models.Reply, error) {
	return findOne(ctx, r.q, "repo/reply", models.ReplyFromRecord, sqlFindReplyByID, id)
}

// FindByQuestionID returns every reply on the question, at any depth, in
// id order.
func (r *replyRepo) FindByQuestionID(ctx context.Context, questionID int64) ([]models.Reply, error) {
	return findAll(ctx, r.q, "repo/reply", models.ReplyFromRecord, sqlFindRepliesByQuestionID, questionID)
}

// FindByUserID returns every reply written by the user, in id order.
func (r *replyRepo) FindByUserID(ctx context.Context, authorID int64) ([]models.Reply, error) {
	return findAll(ctx, r.q, "repo/reply", models.ReplyFromRecord, sqlFindRepliesByAuthorID, authorID)
}

// Author returns the user who wrote rp.
func (r *replyRepo) Author(ctx context.Context, rp models.Reply) (*models.User, error) {
	return NewUserRepo(r.q).FindByID(ctx, rp.AuthorID)
}

// Question returns the question rp belongs to.
func (r *replyRepo) Question(ctx context.Context, rp models.Reply) (*models.Question, error) {
	return NewQuestionRepo(r.q).FindByID(ctx, rp.QuestionID)
}

// ParentReply returns the reply rp answers. A top-level reply has no parent:
// the result is nil with a nil error and no statement is issued.
func (r *replyRepo) ParentReply(ctx context.Context, rp models.Reply) (*models.Reply, error) {
	if rp.ParentID == nil {
		return nil, nil
	}
	return r.FindByID(ctx, *rp.ParentID)
}

// ChildReplies returns the direct answers to rp, one level deep.
func (r *replyRepo) ChildReplies(ctx context.Context, rp models.Reply) ([]models.Reply, error) {
	return findAll(ctx, r.q, "repo/reply", models.ReplyFromRecord, sqlFindChildReplies, rp.ID)
}

// Save inserts rp when it has no id and otherwise overwrites every non-key
// column, including the parent link.
func (r *replyRepo) Save(ctx context.Context, rp *models.Reply) error {
	return save(ctx, r.q, "repo/reply", &rp.ID, sqlInsertReply, sqlUpdateReply,
		rp.QuestionID, nullableID(rp.ParentID), rp.Body, rp.AuthorID)
}

// nullableID binds a nil id as SQL NULL.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

var _ ReplyRepository = (*replyRepo)(nil)
