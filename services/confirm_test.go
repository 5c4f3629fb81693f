package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestTokenConfirm(t *testing.T) {
	for token, want := range map[string]bool{"yes": true, " Yes\n": true, "YES": true, "y": false, "no": false, "": false} {
		ok, err := TokenConfirm(token)(context.Background())
		if err != nil || ok != want {
			t.Errorf("TokenConfirm(%q) = %v, %v", token, ok, err)
		}
	}
}

func TestRefuseConfirm(t *testing.T) {
	ok, err := RefuseConfirm()(context.Background())
	if ok || !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("got %v, %v", ok, err)
	}
}

func TestPromptConfirm(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"  YES  \n", true},
		{"yes", true},
		{"no\n", false},
		{"\n", false},
	}
	for _, tc := range testCases {
		var out bytes.Buffer
		ok, err := PromptConfirm(strings.NewReader(tc.input), &out)(context.Background())
		if err != nil || ok != tc.want {
			t.Errorf("input %q: got %v, %v", tc.input, ok, err)
		}
		if !strings.Contains(out.String(), "Are you sure you want to clear all data? (yes/no): ") {
			t.Errorf("prompt not shown: %q", out.String())
		}
	}
}

func TestPromptConfirmEOF(t *testing.T) {
	_, err := PromptConfirm(strings.NewReader(""), io.Discard)(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF error, got %v", err)
	}
}

func TestPromptConfirmCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := PromptConfirm(pr, io.Discard)(ctx)
	if ok || !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, %v", ok, err)
	}
}
