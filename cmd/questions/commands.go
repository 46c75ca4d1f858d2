package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/Skryldev/questionsdb/models"
	"github.com/Skryldev/questionsdb/repo"
)

const defaultListLimit = 100

// action is one <entity> <action> pair. nargs is the exact positional
// argument count; -1 means up to two optional arguments.
type action struct {
	nargs int
	run   func(ctx context.Context, s *repo.Store, args []string) (any, error)
}

type command struct {
	entity string
	action string
	args   []string
	fn     action
}

func (c command) run(ctx context.Context, s *repo.Store) (any, error) {
	return c.fn.run(ctx, s, c.args)
}

var commands = map[string]map[string]action{
	"user": {
		"show": {1, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			return s.Users.FindByID(ctx, mustID(a[0]))
		}},
		"find": {2, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			return s.Users.FindByName(ctx, a[0], a[1])
		}},
		"questions": {1, withUser(func(ctx context.Context, s *repo.Store, u models.User) (any, error) {
			return s.Users.AuthoredQuestions(ctx, u)
		})},
		"replies": {1, withUser(func(ctx context.Context, s *repo.Store, u models.User) (any, error) {
			return s.Users.AuthoredReplies(ctx, u)
		})},
		"followed": {1, withUser(func(ctx context.Context, s *repo.Store, u models.User) (any, error) {
			return s.Users.FollowedQuestions(ctx, u)
		})},
		"liked": {1, withUser(func(ctx context.Context, s *repo.Store, u models.User) (any, error) {
			return s.Users.LikedQuestions(ctx, u)
		})},
		"karma": {1, withUser(func(ctx context.Context, s *repo.Store, u models.User) (any, error) {
			k, err := s.Users.AverageKarma(ctx, u)
			if err != nil {
				return nil, err
			}
			out := struct {
				UserID int64    `json:"user_id"`
				Karma  *float64 `json:"karma"`
			}{UserID: u.ID}
			if k.Valid {
				out.Karma = &k.Float64
			}
			return out, nil
		})},
		"list": {-1, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			limit, offset := page(a)
			return s.Users.List(ctx, limit, offset)
		}},
	},
	"question": {
		"show": {1, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			return s.Questions.FindByID(ctx, mustID(a[0]))
		}},
		"author": {1, withQuestion(func(ctx context.Context, s *repo.Store, q models.Question) (any, error) {
			return s.Questions.Author(ctx, q)
		})},
		"replies": {1, withQuestion(func(ctx context.Context, s *repo.Store, q models.Question) (any, error) {
			return s.Questions.Replies(ctx, q)
		})},
		"followers": {1, withQuestion(func(ctx context.Context, s *repo.Store, q models.Question) (any, error) {
			return s.Questions.Followers(ctx, q)
		})},
		"likers": {1, withQuestion(func(ctx context.Context, s *repo.Store, q models.Question) (any, error) {
			return s.Questions.Likers(ctx, q)
		})},
		"likes": {1, withQuestion(func(ctx context.Context, s *repo.Store, q models.Question) (any, error) {
			n, err := s.Questions.NumLikes(ctx, q)
			if err != nil {
				return nil, err
			}
			return struct {
				QuestionID int64 `json:"question_id"`
				Likes      int64 `json:"likes"`
			}{q.ID, n}, nil
		})},
		"tags": {1, withQuestion(func(ctx context.Context, s *repo.Store, q models.Question) (any, error) {
			return s.Questions.Tags(ctx, q)
		})},
		"most-followed": {1, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			return s.Questions.MostFollowed(ctx, mustInt(a[0]))
		}},
		"most-liked": {1, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			return s.Questions.MostLiked(ctx, mustInt(a[0]))
		}},
		"list": {-1, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			limit, offset := page(a)
			return s.Questions.List(ctx, limit, offset)
		}},
	},
	"reply": {
		"show": {1, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			return s.Replies.FindByID(ctx, mustID(a[0]))
		}},
		"parent": {1, withReply(func(ctx context.Context, s *repo.Store, r models.Reply) (any, error) {
			return s.Replies.ParentReply(ctx, r)
		})},
		"children": {1, withReply(func(ctx context.Context, s *repo.Store, r models.Reply) (any, error) {
			return s.Replies.ChildReplies(ctx, r)
		})},
		"question": {1, withReply(func(ctx context.Context, s *repo.Store, r models.Reply) (any, error) {
			return s.Replies.Question(ctx, r)
		})},
	},
	"tag": {
		"most-popular": {0, func(ctx context.Context, s *repo.Store, _ []string) (any, error) {
			return s.Tags.MostPopular(ctx)
		}},
		"questions": {1, func(ctx context.Context, s *repo.Store, a []string) (any, error) {
			t, err := s.Tags.FindByName(ctx, a[0])
			if err != nil {
				return nil, err
			}
			return s.Tags.Questions(ctx, *t)
		}},
	},
}

// lookupCommand resolves the entity (plural forms accepted) and action and
// validates the positional arguments before any storage is opened.
func lookupCommand(entity, name string, args []string) (command, error) {
	entity = inflection.Singular(strings.ToLower(entity))
	actions, ok := commands[entity]
	if !ok {
		return command{}, fmt.Errorf("%w: unknown entity %q (want one of %s)", errUsage, entity, strings.Join(keys(commands), ", "))
	}
	act, ok := actions[name]
	if !ok {
		return command{}, fmt.Errorf("%w: unknown %s action %q (want one of %s)", errUsage, entity, name, strings.Join(keys(actions), ", "))
	}

	switch {
	case act.nargs >= 0 && len(args) != act.nargs:
		return command{}, fmt.Errorf("%w: %s %s takes %d argument(s), got %d", errUsage, entity, name, act.nargs, len(args))
	case act.nargs < 0 && len(args) > 2:
		return command{}, fmt.Errorf("%w: %s %s takes at most 2 arguments", errUsage, entity, name)
	}
	if err := validateArgs(entity, name, args); err != nil {
		return command{}, err
	}
	return command{entity: entity, action: name, args: args, fn: act}, nil
}

// validateArgs checks that numeric arguments parse, so the run functions
// can use mustID and mustInt.
func validateArgs(entity, name string, args []string) error {
	if entity == "user" && name == "find" || entity == "tag" {
		return nil
	}
	for _, a := range args {
		if _, err := strconv.ParseInt(a, 10, 64); err != nil {
			return fmt.Errorf("%w: %s %s: %q is not a number", errUsage, entity, name, a)
		}
	}
	return nil
}

func withUser(fn func(context.Context, *repo.Store, models.User) (any, error)) func(context.Context, *repo.Store, []string) (any, error) {
	return func(ctx context.Context, s *repo.Store, a []string) (any, error) {
		u, err := s.Users.FindByID(ctx, mustID(a[0]))
		if err != nil {
			return nil, err
		}
		return fn(ctx, s, *u)
	}
}

func withQuestion(fn func(context.Context, *repo.Store, models.Question) (any, error)) func(context.Context, *repo.Store, []string) (any, error) {
	return func(ctx context.Context, s *repo.Store, a []string) (any, error) {
		q, err := s.Questions.FindByID(ctx, mustID(a[0]))
		if err != nil {
			return nil, err
		}
		return fn(ctx, s, *q)
	}
}

func withReply(fn func(context.Context, *repo.Store, models.Reply) (any, error)) func(context.Context, *repo.Store, []string) (any, error) {
	return func(ctx context.Context, s *repo.Store, a []string) (any, error) {
		r, err := s.Replies.FindByID(ctx, mustID(a[0]))
		if err != nil {
			return nil, err
		}
		return fn(ctx, s, *r)
	}
}

func mustID(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func mustInt(s string) int {
	return int(mustID(s))
}

func page(a []string) (limit, offset int) {
	limit = defaultListLimit
	if len(a) > 0 {
		limit = mustInt(a[0])
	}
	if len(a) > 1 {
		offset = mustInt(a[1])
	}
	return limit, offset
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
