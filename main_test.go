package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestWalkthrough(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := run(context.Background(), &out, logger); err != nil {
		t.Fatalf("walkthrough: %v", err)
	}

	want := []string{
		"Ada before asking anything: karma valid=false",
		"reply 2 answers reply 1; reply 1 has 1 child(ren); top-level parent is nil: true",
		`"Analytical Engine loops" is followed by 2 user(s)`,
		"Ada's karma: 2.0 (question likes: 2)",
		"most liked: 1 question(s); most popular per tag: 1 question(s)",
		"user 9999: not found",
		"question with unknown author: rejected by foreign key",
	}
	for _, line := range want {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output missing %q\ngot:\n%s", line, out.String())
		}
	}
}

func TestWalkthrough_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected the walkthrough to stop with an error")
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output before the first failure, got %q", out.String())
	}
}
