package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
	"github.com/Skryldev/questionsdb/repo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Followers / likes
// ─────────────────────────────────────────────────────────────────────────────

func TestQuestionFollowerRepo(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	row, err := f.store.Followers.FindByID(ctx, 4)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if diff := cmp.Diff(models.QuestionFollower{ID: 4, QuestionID: 2, FollowerID: 1}, *row); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	followed, err := f.store.Followers.FollowedQuestionsForUserID(ctx, 4)
	if err != nil {
		t.Fatalf("followed: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 3}, questionIDs(followed)); diff != "" {
		t.Fatalf("followed (-want +got):\n%s", diff)
	}

	// Follow pairs are not deduplicated.
	dup := models.QuestionFollower{QuestionID: 2, FollowerID: 1}
	if err := f.store.Followers.Save(ctx, &dup); err != nil {
		t.Fatalf("save duplicate pair: %v", err)
	}
	followers, _ := f.store.Followers.FollowersForQuestionID(ctx, 2)
	if diff := cmp.Diff([]int64{1, 1}, userIDs(followers)); diff != "" {
		t.Fatalf("followers (-want +got):\n%s", diff)
	}
}

func TestQuestionLikeRepo(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	like := models.QuestionLike{UserID: 3, QuestionID: 4}
	if err := f.store.Likes.Save(ctx, &like); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := f.store.Likes.FindByID(ctx, like.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if diff := cmp.Diff(like, *got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	n, err := f.store.Likes.NumLikesForQuestionID(ctx, 4)
	if err != nil || n != 1 {
		t.Fatalf("num likes = %d, %v; want 1", n, err)
	}

	likers, _ := f.store.Likes.LikersForQuestionID(ctx, 4)
	if diff := cmp.Diff([]int64{3}, userIDs(likers)); diff != "" {
		t.Fatalf("likers (-want +got):\n%s", diff)
	}

	bad := models.QuestionLike{UserID: 999, QuestionID: 1}
	if err := f.store.Likes.Save(ctx, &bad); !db.IsForeignKeyViolation(err) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Tags
// ─────────────────────────────────────────────────────────────────────────────

func TestTagRepo(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	tag, err := f.store.Tags.FindByName(ctx, "hardware")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	qs, err := f.store.Tags.Questions(ctx, *tag)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2}, questionIDs(qs)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	if _, err := f.store.Tags.FindByName(ctx, "poetry"); !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	tag.Tag = "engines"
	if err := f.store.Tags.Save(ctx, tag); err != nil {
		t.Fatalf("rename: %v", err)
	}
	renamed, _ := f.store.Tags.FindByID(ctx, tag.ID)
	if renamed.Tag != "engines" {
		t.Fatalf("rename not applied: %+v", renamed)
	}
}

func TestQuestionTagRepo(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	qt, err := f.store.QuestionTags.FindByID(ctx, 5)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if diff := cmp.Diff(models.QuestionTag{ID: 5, QuestionID: 3, TagID: 2}, *qt); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	tags, err := f.store.QuestionTags.TagsForQuestionID(ctx, 2)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	want := []models.Tag{{ID: 1, Tag: "hardware"}, {ID: 3, Tag: "history"}}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestMostPopular(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	got, err := f.store.Tags.MostPopular(ctx)
	if err != nil {
		t.Fatalf("most popular: %v", err)
	}
	// hardware → q1, software → q1 (q4 is unliked), history → q2.
	if diff := cmp.Diff([]int64{1, 1, 2}, questionIDs(got)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestMostPopular_IncludesTies(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	// Give q3 a third like so it ties q1 under "software".
	if err := f.store.Likes.Save(ctx, &models.QuestionLike{UserID: 2, QuestionID: 3}); err != nil {
		t.Fatalf("like: %v", err)
	}
	got, err := f.store.QuestionTags.MostPopularQuestions(ctx)
	if err != nil {
		t.Fatalf("most popular: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 1, 3, 2}, questionIDs(got)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestMostPopular_NoLikes(t *testing.T) {
	f := newFixture(t, false)
	got, err := f.store.Tags.MostPopular(context.Background())
	if err != nil {
		t.Fatalf("most popular: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Store over a transaction
// ─────────────────────────────────────────────────────────────────────────────

func TestStore_InsideTx(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	abort := errors.New("abort")

	var q models.Question
	err := f.db.ExecTx(ctx, func(tx *db.Tx) error {
		s := repo.NewStore(tx)
		q = models.Question{Title: "Rolled back", Body: "never seen", AuthorID: 2}
		if err := s.Questions.Save(ctx, &q); err != nil {
			return err
		}
		if err := s.Followers.Save(ctx, &models.QuestionFollower{QuestionID: q.ID, FollowerID: 3}); err != nil {
			return err
		}
		if _, err := s.Questions.FindByID(ctx, q.ID); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("expected abort, got %v", err)
	}
	if _, err := f.store.Questions.FindByID(ctx, q.ID); !db.IsNotFound(err) {
		t.Fatalf("expected rolled back question to be gone, got %v", err)
	}
}

func TestStore_OneStatementPerJoinOperation(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	s := f.store

	ops := map[string]func() error{
		"FollowersForQuestionID":     func() error { _, err := s.Followers.FollowersForQuestionID(ctx, 1); return err },
		"FollowedQuestionsForUserID": func() error { _, err := s.Followers.FollowedQuestionsForUserID(ctx, 1); return err },
		"LikersForQuestionID":        func() error { _, err := s.Likes.LikersForQuestionID(ctx, 1); return err },
		"LikedQuestionsForUserID":    func() error { _, err := s.Likes.LikedQuestionsForUserID(ctx, 1); return err },
		"NumLikesForQuestionID":      func() error { _, err := s.Likes.NumLikesForQuestionID(ctx, 1); return err },
		"MostPopular":                func() error { _, err := s.Tags.MostPopular(ctx); return err },
		"Tags.Questions":             func() error { _, err := s.Tags.Questions(ctx, models.Tag{ID: 1}); return err },
		"Replies.ChildReplies":       func() error { _, err := s.Replies.ChildReplies(ctx, models.Reply{ID: 1}); return err },
	}
	for name, op := range ops {
		if n := f.roundTrips(t, op); n != 1 {
			t.Errorf("%s: %d statements, want 1", name, n)
		}
	}
}
