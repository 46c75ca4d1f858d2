package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository
// ─────────────────────────────────────────────────────────────────────────────

// UserRepository defines lookups, relationship traversal and persistence for
// users. Every method is a single statement against the Querier.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByName(ctx context.Context, fname, lname string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	AuthoredQuestions(ctx context.Context, u models.User) ([]models.Question, error)
	AuthoredReplies(ctx context.Context, u models.User) ([]models.Reply, error)
	FollowedQuestions(ctx context.Context, u models.User) ([]models.Question, error)
	LikedQuestions(ctx context.Context, u models.User) ([]models.Question, error)
	AverageKarma(ctx context.Context, u models.User) (sql.NullFloat64, error)
	Save(ctx context.Context, u *models.User) error
}

type userRepo struct {
	q db.Querier
}

// NewUserRepo returns a UserRepository backed by q (a *db.DB or *db.Tx).
func NewUserRepo(q db.Querier) UserRepository {
	return &userRepo{q: q}
}

const (
	sqlFindUserByID = `
		SELECT id, fname, lname
		FROM   users
		WHERE  id = ?`

	sqlFindUserByName = `
		SELECT   id, fname, lname
		FROM     users
		WHERE    fname = ?
		AND      lname = ?
		ORDER BY id
		LIMIT    1`

	sqlListUsers = `
		SELECT   id, fname, lname
		FROM     users
		ORDER BY id
		LIMIT    ? OFFSET ?`

	// Questions with no likes drop out of the inner join, so they do not
	// count as zero in the average. A user with no liked question gets NULL.
	sqlUserAverageKarma = `
		SELECT AVG(like_count) AS karma
		FROM (
			SELECT   COUNT(question_likes.id) AS like_count
			FROM     questions
			JOIN     question_likes ON question_likes.question_id = questions.id
			WHERE    questions.author_id = ?
			GROUP BY questions.id
		)`

	sqlInsertUser = `
		INSERT INTO users (fname, lname)
		VALUES (?, ?)`

	sqlUpdateUser = `
		UPDATE users
		SET    fname = ?, lname = ?
		WHERE  id = ?`
)

// FindByID returns the user with the given id, or db.ErrNotFound.
func (r *userRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return findOne(ctx, r.q, "repo/user", models.UserFromRecord, sqlFindUserByID, id)
}

// FindByName returns the first user, in id order, with exactly this first
// and last name, or db.ErrNotFound.
func (r *userRepo) FindByName(ctx context.Context, fname, lname string) (*models.User, error) {
	return findOne(ctx, r.q, "repo/user", models.UserFromRecord, sqlFindUserByName, fname, lname)
}

// List returns a page of users ordered by id.
func (r *userRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return findAll(ctx, r.q, "repo/user", models.UserFromRecord, sqlListUsers, limit, offset)
}

// AuthoredQuestions returns the questions u wrote, in id order.
func (r *userRepo) AuthoredQuestions(ctx context.Context, u models.User) ([]models.Question, error) {
	return NewQuestionRepo(r.q).FindByAuthorID(ctx, u.ID)
}

// AuthoredReplies returns the replies u wrote, in id order.
func (r *userRepo) AuthoredReplies(ctx context.Context, u models.User) ([]models.Reply, error) {
	return NewReplyRepo(r.q).FindByUserID(ctx, u.ID)
}

// FollowedQuestions returns the questions u follows.
func (r *userRepo) FollowedQuestions(ctx context.Context, u models.User) ([]models.Question, error) {
	return NewQuestionFollowerRepo(r.q).FollowedQuestionsForUserID(ctx, u.ID)
}

// LikedQuestions returns the questions u liked.
func (r *userRepo) LikedQuestions(ctx context.Context, u models.User) ([]models.Question, error) {
	return NewQuestionLikeRepo(r.q).LikedQuestionsForUserID(ctx, u.ID)
}

// AverageKarma returns the mean like count over the user's questions that
// have at least one like. The result is invalid (NULL) when there are none.
func (r *userRepo) AverageKarma(ctx context.Context, u models.User) (sql.NullFloat64, error) {
	var karma sql.NullFloat64
	if err := r.q.QueryRow(ctx, sqlUserAverageKarma, u.ID).Scan(&karma); err != nil {
		return sql.NullFloat64{}, fmt.Errorf("repo/user: karma: %w", err)
	}
	return karma, nil
}

// Save inserts u when it has no id, adopting the generated one, and
// otherwise overwrites the stored names.
func (r *userRepo) Save(ctx context.Context, u *models.User) error {
	return save(ctx, r.q, "repo/user", &u.ID, sqlInsertUser, sqlUpdateUser, u.Fname, u.Lname)
}

var _ UserRepository = (*userRepo)(nil)
