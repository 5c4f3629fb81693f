package models

import "testing"

func TestRawRecordString(t *testing.T) {
	rec := RawRecord{
		"title":     "Soil Health and Yield",
		"summary":   nil,
		"keywords":  []any{"soil"},
		"item_type": "article",
	}

	if got, err := rec.String("title"); err != nil || got != "Soil Health and Yield" {
		t.Fatalf("unexpected title %q (%v)", got, err)
	}
	if got, err := rec.String("summary"); err != nil || got != "" {
		t.Fatalf("null summary should read as empty, got %q (%v)", got, err)
	}
	if got, err := rec.String("missing"); err != nil || got != "" {
		t.Fatalf("missing key should read as empty, got %q (%v)", got, err)
	}
	if _, err := rec.String("keywords"); err == nil {
		t.Fatal("expected type error for non-string field")
	}
	if rec.Text("keywords") != "" {
		t.Fatal("Text should swallow the type error")
	}
	if rec.ItemType() != ItemTypeArticle {
		t.Fatalf("unexpected item type %q", rec.ItemType())
	}
}
