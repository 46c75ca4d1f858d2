package repo

import "github.com/Skryldev/questionsdb/db"

// Store groups one repository per table over a single Querier. Build it
// over a *db.DB for autocommit access, or over a *db.Tx inside ExecTx to make
// several saves atomic:
//
//	err := d.ExecTx(ctx, func(tx *db.Tx) error {
//	    s := repo.NewStore(tx)
//	    if err := s.Questions.Save(ctx, &q); err != nil {
//	        return err
//	    }
//	    return s.Followers.Save(ctx, &models.QuestionFollower{QuestionID: q.ID, FollowerID: u.ID})
//	})
type Store struct {
	Users        UserRepository
	Questions    QuestionRepository
	Replies      ReplyRepository
	Followers    QuestionFollowerRepository
	Likes        QuestionLikeRepository
	Tags         TagRepository
	QuestionTags QuestionTagRepository
}

// NewStore returns a Store whose repositories all share q.
func NewStore(q db.Querier) *Store {
	return &Store{
		Users:        NewUserRepo(q),
		Questions:    NewQuestionRepo(q),
		Replies:      NewReplyRepo(q),
		Followers:    NewQuestionFollowerRepo(q),
		Likes:        NewQuestionLikeRepo(q),
		Tags:         NewTagRepo(q),
		QuestionTags: NewQuestionTagRepo(q),
	}
}
