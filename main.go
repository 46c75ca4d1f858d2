// main.go walks through the questions store end to end on a throwaway
// in-memory database:
//
//  1. Opening through the driver registry, with logging and metrics hooks
//  2. Creating the schema
//  3. Saving records, with a transaction around a group of saves
//  4. Relationship traversal and the reply tree
//  5. Aggregates: karma, rankings, most popular per tag
//  6. Typed error handling
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/models"
	"github.com/Skryldev/questionsdb/repo"
	"github.com/Skryldev/questionsdb/schema"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(context.Background(), os.Stdout, logger); err != nil {
		fatalf("walkthrough: %v", err)
	}
}

func run(ctx context.Context, out io.Writer, logger *slog.Logger) error {
	// ── 1. Open ──────────────────────────────────────────────────────────
	counter := &db.QueryCounter{}
	provider := db.NewDriverProvider("sqlite3", db.DriverOptions{
		Database:    ":memory:",
		ForeignKeys: true,
		BusyTimeout: 5 * time.Second,
	}, db.Config{
		MaxOpenConns: 1,
		Hooks: []db.Hook{
			db.NewLogHook(db.LogHookConfig{
				Logger:             logger,
				SlowQueryThreshold: 100 * time.Millisecond,
			}),
			db.NewMetricsHook(counter),
		},
	})
	defer provider.Close()

	database, err := provider.DB()
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	// ── 2. Schema ────────────────────────────────────────────────────────
	if err := schema.Apply(ctx, database); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	store := repo.NewStore(database)

	// ── 3. Save ──────────────────────────────────────────────────────────
	ada := models.User{Fname: "Ada", Lname: "Lovelace"}
	if err := store.Users.Save(ctx, &ada); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	karma, err := store.Users.AverageKarma(ctx, ada)
	if err != nil {
		return fmt.Errorf("karma: %w", err)
	}
	fmt.Fprintf(out, "Ada before asking anything: karma valid=%v\n", karma.Valid)

	var question models.Question
	fans := []models.User{{Fname: "Charles", Lname: "Babbage"}, {Fname: "Grace", Lname: "Hopper"}}

	// The question, its likers and their likes land together or not at all.
	err = database.ExecTx(ctx, func(tx *db.Tx) error {
		s := repo.NewStore(tx)
		question = models.Question{Title: "Analytical Engine loops", Body: "Can the engine repeat cards?", AuthorID: ada.ID}
		if err := s.Questions.Save(ctx, &question); err != nil {
			return err
		}
		for i := range fans {
			if err := s.Users.Save(ctx, &fans[i]); err != nil {
				return err
			}
			if err := s.Likes.Save(ctx, &models.QuestionLike{UserID: fans[i].ID, QuestionID: question.ID}); err != nil {
				return err
			}
			if err := s.Followers.Save(ctx, &models.QuestionFollower{QuestionID: question.ID, FollowerID: fans[i].ID}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx: %w", err)
	}

	// ── 4. Relationships ─────────────────────────────────────────────────
	top := models.Reply{QuestionID: question.ID, Body: "Yes, the cards can be backed up.", AuthorID: fans[0].ID}
	if err := store.Replies.Save(ctx, &top); err != nil {
		return fmt.Errorf("save reply: %w", err)
	}
	nested := models.Reply{QuestionID: question.ID, ParentID: &top.ID, Body: "That is a loop.", AuthorID: ada.ID}
	if err := store.Replies.Save(ctx, &nested); err != nil {
		return fmt.Errorf("save reply: %w", err)
	}

	parent, err := store.Replies.ParentReply(ctx, nested)
	if err != nil {
		return fmt.Errorf("parent reply: %w", err)
	}
	if parent == nil {
		return fmt.Errorf("reply %d lost its parent", nested.ID)
	}
	children, err := store.Replies.ChildReplies(ctx, top)
	if err != nil {
		return fmt.Errorf("child replies: %w", err)
	}
	noParent, err := store.Replies.ParentReply(ctx, top)
	if err != nil {
		return fmt.Errorf("parent reply: %w", err)
	}
	fmt.Fprintf(out, "reply %d answers reply %d; reply %d has %d child(ren); top-level parent is nil: %v\n",
		nested.ID, parent.ID, top.ID, len(children), noParent == nil)

	followers, err := store.Questions.Followers(ctx, question)
	if err != nil {
		return fmt.Errorf("followers: %w", err)
	}
	fmt.Fprintf(out, "%q is followed by %d user(s)\n", question.Title, len(followers))

	// ── 5. Aggregates ────────────────────────────────────────────────────
	// An unliked second question does not drag the average down.
	second := models.Question{Title: "Bernoulli numbers", Body: "Which note holds the table?", AuthorID: ada.ID}
	if err := store.Questions.Save(ctx, &second); err != nil {
		return fmt.Errorf("save question: %w", err)
	}

	if karma, err = store.Users.AverageKarma(ctx, ada); err != nil {
		return fmt.Errorf("karma: %w", err)
	}
	likes, err := store.Questions.NumLikes(ctx, question)
	if err != nil {
		return fmt.Errorf("num likes: %w", err)
	}
	fmt.Fprintf(out, "Ada's karma: %.1f (question likes: %d)\n", karma.Float64, likes)

	hardware := models.Tag{Tag: "hardware"}
	if err := store.Tags.Save(ctx, &hardware); err != nil {
		return fmt.Errorf("save tag: %w", err)
	}
	for _, q := range []models.Question{question, second} {
		if err := store.QuestionTags.Save(ctx, &models.QuestionTag{QuestionID: q.ID, TagID: hardware.ID}); err != nil {
			return fmt.Errorf("tag question %d: %w", q.ID, err)
		}
	}

	mostLiked, err := store.Questions.MostLiked(ctx, 5)
	if err != nil {
		return fmt.Errorf("most liked: %w", err)
	}
	popular, err := store.Tags.MostPopular(ctx)
	if err != nil {
		return fmt.Errorf("most popular: %w", err)
	}
	fmt.Fprintf(out, "most liked: %d question(s); most popular per tag: %d question(s)\n", len(mostLiked), len(popular))

	// ── 6. Errors ────────────────────────────────────────────────────────
	_, err = store.Users.FindByID(ctx, 9999)
	switch {
	case db.IsNotFound(err):
		fmt.Fprintln(out, "user 9999: not found")
	case err != nil:
		return fmt.Errorf("find user: %w", err)
	default:
		return errors.New("user 9999 unexpectedly exists")
	}

	orphan := models.Question{Title: "Orphan", Body: "nobody wrote this", AuthorID: 9999}
	err = store.Questions.Save(ctx, &orphan)
	switch {
	case db.IsForeignKeyViolation(err):
		fmt.Fprintln(out, "question with unknown author: rejected by foreign key")
	case err != nil:
		return fmt.Errorf("save orphan: %w", err)
	default:
		return errors.New("question with unknown author was accepted")
	}

	logger.Info("walkthrough finished", "statements", counter.Total(), "failed", counter.Failures(), "elapsed", counter.Elapsed())
	return nil
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
