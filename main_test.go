package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"-file", "items.jsonl", "-dry-run", "-clear-first", "-confirm", "yes", "-unmapped-journals", "misc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.file != "items.jsonl" || !f.dryRun || !f.clearFirst || f.confirm != "yes" || f.unmapped != "misc" {
		t.Errorf("flags %+v", f)
	}

	f, err = parseFlags([]string{"-verbose", "scraped.json"})
	if err != nil || f.file != "scraped.json" || !f.verbose {
		t.Errorf("positional file: %+v %v", f, err)
	}

	if _, err := parseFlags(nil); err == nil {
		t.Error("expected error without -file")
	}
	if _, err := parseFlags([]string{"-nope"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("debug", false); err != nil {
		t.Errorf("debug: %v", err)
	}
	if _, err := newLogger("", true); err != nil {
		t.Errorf("verbose: %v", err)
	}
	if _, err := newLogger("loud", false); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestRunExitCodes(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("S3_ENDPOINT", "")
	t.Setenv("S3_ACCESS_KEY", "")
	t.Setenv("PUSHGATEWAY_URL", "")
	t.Chdir(t.TempDir())

	if code := run([]string{"-file", "missing.json"}); code != 1 {
		t.Errorf("missing file: exit %d", code)
	}

	path := filepath.Join(t.TempDir(), "items.jsonl")
	data := `{"item_type": "article", "title": "T", "summary": "s", "journal_name": "Journal of Sustainable Agricultural Economics"}` + "\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	if code := run([]string{"-file", path}); code != 1 {
		t.Errorf("no database: exit %d", code)
	}
	t.Setenv("SEED_BCRYPT_COST", "4")
	if code := run([]string{"-file", path, "-dry-run"}); code != 0 {
		t.Errorf("dry run: exit %d", code)
	}
	if code := run([]string{"-file", path, "-dry-run", "-unmapped-journals", "nowhere"}); code != 1 {
		t.Errorf("bad policy: exit %d", code)
	}
}
