package models

import "fmt"

// Item types understood by the seeder.
const (
	ItemTypeArticle      = "article"
	ItemTypeDissertation = "dissertation_thesis"
)

// RawRecord is one scraped item exactly as decoded from the input file.
type RawRecord map[string]any

// String returns the string value under key. Missing keys and JSON null yield "".
// A value of any other type is reported as an error.
func (r RawRecord) String(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}

// Text is String without the type error; non-string values read as "".
func (r RawRecord) Text(key string) string {
	s, _ := r.String(key)
	return s
}

// ItemType returns the item_type discriminator.
func (r RawRecord) ItemType() string {
	return r.Text("item_type")
}
