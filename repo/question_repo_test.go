package repo_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
)

func questionIDs(qs []models.Question) []int64 {
	return ids(qs, func(q models.Question) int64 { return q.ID })
}

func userIDs(us []models.User) []int64 {
	return ids(us, func(u models.User) int64 { return u.ID })
}

// ─────────────────────────────────────────────────────────────────────────────
// Save / FindByID
// ─────────────────────────────────────────────────────────────────────────────

func TestQuestionRepo_SaveAndFind(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	q := models.Question{Title: "Punched cards", Body: "Who cut the first deck?", AuthorID: 3}
	if err := f.store.Questions.Save(ctx, &q); err != nil {
		t.Fatalf("save: %v", err)
	}
	if q.ID != 5 {
		t.Fatalf("expected id 5 after four seeded questions, got %d", q.ID)
	}

	q.Body = "Who punched the first deck?"
	if err := f.store.Questions.Save(ctx, &q); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := f.store.Questions.FindByID(ctx, q.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if diff := cmp.Diff(q, *got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestQuestionRepo_Save_UnknownAuthor(t *testing.T) {
	f := newFixture(t, true)
	q := models.Question{Title: "Orphan", Body: "No author", AuthorID: 999}
	err := f.store.Questions.Save(context.Background(), &q)
	if !db.IsForeignKeyViolation(err) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
	if q.Persisted() {
		t.Fatalf("failed insert must not assign an id, got %d", q.ID)
	}
}

func TestQuestionRepo_FindByAuthorID(t *testing.T) {
	f := newFixture(t, true)
	qs, err := f.store.Questions.FindByAuthorID(context.Background(), 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 4}, questionIDs(qs)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Relationships
// ─────────────────────────────────────────────────────────────────────────────

func TestQuestionRepo_Relationships(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	q, _ := f.store.Questions.FindByID(ctx, 1)

	author, err := f.store.Questions.Author(ctx, *q)
	if err != nil {
		t.Fatalf("author: %v", err)
	}
	if author.Fname != "Ada" {
		t.Fatalf("unexpected author %+v", author)
	}

	replies, err := f.store.Questions.Replies(ctx, *q)
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, ids(replies, func(r models.Reply) int64 { return r.ID })); diff != "" {
		t.Fatalf("replies at every depth (-want +got):\n%s", diff)
	}

	followers, err := f.store.Questions.Followers(ctx, *q)
	if err != nil {
		t.Fatalf("followers: %v", err)
	}
	if diff := cmp.Diff([]int64{2, 3, 4}, userIDs(followers)); diff != "" {
		t.Fatalf("followers (-want +got):\n%s", diff)
	}

	likers, err := f.store.Questions.Likers(ctx, *q)
	if err != nil {
		t.Fatalf("likers: %v", err)
	}
	if diff := cmp.Diff([]int64{2, 3, 4}, userIDs(likers)); diff != "" {
		t.Fatalf("likers (-want +got):\n%s", diff)
	}

	tags, err := f.store.Questions.Tags(ctx, *q)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	want := []models.Tag{{ID: 1, Tag: "hardware"}, {ID: 2, Tag: "software"}}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}
}

func TestQuestionRepo_NumLikes(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	for id, want := range map[int64]int64{1: 3, 2: 1, 3: 2, 4: 0, 999: 0} {
		n, err := f.store.Questions.NumLikes(ctx, models.Question{ID: id})
		if err != nil {
			t.Fatalf("num likes %d: %v", id, err)
		}
		if n != want {
			t.Errorf("question %d: %d likes, want %d", id, n, want)
		}
	}
}

func TestQuestionRepo_Author_Missing(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.store.Questions.Author(context.Background(), models.Question{AuthorID: 999})
	if !db.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Rankings
// ─────────────────────────────────────────────────────────────────────────────

func TestQuestionRepo_MostFollowed(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	cases := []struct {
		n    int
		want []int64
	}{
		{n: 1, want: []int64{1}},
		{n: 2, want: []int64{1, 3}},
		// q4 has no followers and is never ranked.
		{n: 10, want: []int64{1, 3, 2}},
		{n: 0, want: []int64{}},
		{n: -3, want: []int64{}},
	}
	for _, tc := range cases {
		got, err := f.store.Questions.MostFollowed(ctx, tc.n)
		if err != nil {
			t.Fatalf("n=%d: %v", tc.n, err)
		}
		if diff := cmp.Diff(tc.want, questionIDs(got)); diff != "" {
			t.Errorf("n=%d (-want +got):\n%s", tc.n, diff)
		}
	}
}

func TestQuestionRepo_MostLiked(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	got, err := f.store.Questions.MostLiked(ctx, 10)
	if err != nil {
		t.Fatalf("most liked: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 3, 2}, questionIDs(got)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	var prev int64 = 1 << 62
	for _, q := range got {
		n, _ := f.store.Questions.NumLikes(ctx, q)
		if n > prev {
			t.Fatalf("ranking not descending at question %d", q.ID)
		}
		prev = n
	}
}

func TestQuestionRepo_MostLiked_TiesByID(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	s := f.store

	u := models.User{Fname: "Alan", Lname: "Turing"}
	_ = s.Users.Save(ctx, &u)
	var qs [3]models.Question
	for i := range qs {
		qs[i] = models.Question{Title: "t", Body: "b", AuthorID: u.ID}
		if err := s.Questions.Save(ctx, &qs[i]); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// Same like count on the last two, the first gets none.
	for _, q := range qs[1:] {
		if err := s.Likes.Save(ctx, &models.QuestionLike{UserID: u.ID, QuestionID: q.ID}); err != nil {
			t.Fatalf("like: %v", err)
		}
	}

	got, err := s.Questions.MostLiked(ctx, 2)
	if err != nil {
		t.Fatalf("most liked: %v", err)
	}
	if diff := cmp.Diff([]int64{qs[1].ID, qs[2].ID}, questionIDs(got)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestQuestionRepo_RankingWithNonPositiveNIssuesNoStatement(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	n := f.roundTrips(t, func() error {
		_, err := f.store.Questions.MostFollowed(ctx, 0)
		return err
	})
	if n != 0 {
		t.Fatalf("expected no statements, got %d", n)
	}
}

func TestQuestionRepo_OneStatementPerOperation(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	q := models.Question{ID: 1, AuthorID: 1}

	ops := map[string]func() error{
		"FindByID":       func() error { _, err := f.store.Questions.FindByID(ctx, 1); return err },
		"FindByAuthorID": func() error { _, err := f.store.Questions.FindByAuthorID(ctx, 1); return err },
		"Author":         func() error { _, err := f.store.Questions.Author(ctx, q); return err },
		"Replies":        func() error { _, err := f.store.Questions.Replies(ctx, q); return err },
		"Followers":      func() error { _, err := f.store.Questions.Followers(ctx, q); return err },
		"Likers":         func() error { _, err := f.store.Questions.Likers(ctx, q); return err },
		"NumLikes":       func() error { _, err := f.store.Questions.NumLikes(ctx, q); return err },
		"Tags":           func() error { _, err := f.store.Questions.Tags(ctx, q); return err },
		"MostFollowed":   func() error { _, err := f.store.Questions.MostFollowed(ctx, 3); return err },
		"MostLiked":      func() error { _, err := f.store.Questions.MostLiked(ctx, 3); return err },
		"Save":           func() error { c := q; return f.store.Questions.Save(ctx, &c) },
	}
	for name, op := range ops {
		if n := f.roundTrips(t, op); n != 1 {
			t.Errorf("%s: %d statements, want 1", name, n)
		}
	}
}
