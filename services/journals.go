package services

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/segmentio/encoding/json"

	"journal-seeder/models"
)

//go:embed journals.json
var embeddedJournals []byte

// MiscJournalCode is the fallback journal used by the "misc" unmapped policy.
const MiscJournalCode = "MISC"

// JournalEntry is one row of the name->code lookup table.
type JournalEntry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// JournalTable is the immutable mapping between full journal names and codes.
type JournalTable struct {
	entries []JournalEntry
	byName  map[string]string
	byCode  map[string]string
}

// ParseJournalTable decodes a JSON array of {name, code} entries.
func ParseJournalTable(data []byte) (*JournalTable, error) {
	var entries []JournalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode journal table: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("journal table is empty")
	}
	t := &JournalTable{
		entries: make([]JournalEntry, 0, len(entries)),
		byName:  make(map[string]string, len(entries)),
		byCode:  make(map[string]string, len(entries)),
	}
	for i, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		e.Code = strings.TrimSpace(e.Code)
		if e.Name == "" || e.Code == "" {
			return nil, fmt.Errorf("journal table entry %d: name and code are required", i)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("journal table: duplicate name %q", e.Name)
		}
		if _, dup := t.byCode[e.Code]; dup {
			return nil, fmt.Errorf("journal table: duplicate code %q", e.Code)
		}
		if e.Code == MiscJournalCode {
			return nil, fmt.Errorf("journal table: code %q is reserved", MiscJournalCode)
		}
		t.entries = append(t.entries, e)
		t.byName[e.Name] = e.Code
		t.byCode[e.Code] = e.Name
	}
	return t, nil
}

// DefaultJournalTable returns the table compiled into the binary.
func DefaultJournalTable() *JournalTable {
	t, err := ParseJournalTable(embeddedJournals)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadJournalTable reads a replacement table from disk.
func LoadJournalTable(path string) (*JournalTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal table: %w", err)
	}
	return ParseJournalTable(data)
}

// Code looks up the code for an exact full name.
func (t *JournalTable) Code(name string) (string, bool) {
	code, ok := t.byName[name]
	return code, ok
}

// Name looks up the full name for a code.
func (t *JournalTable) Name(code string) (string, bool) {
	name, ok := t.byCode[code]
	return name, ok
}

// Len returns the number of known journals.
func (t *JournalTable) Len() int {
	return len(t.entries)
}

// JournalName extracts the trimmed journal_name of a record. Placeholder
// values scraped from navigation links count as absent.
func JournalName(rec models.RawRecord) (string, bool) {
	name := strings.TrimSpace(rec.Text("journal_name"))
	switch name {
	case "", "null", "About the journal":
		return "", false
	}
	return name, true
}

// MappedJournals returns the table entries referenced by records, in order of
// first appearance. Unknown names never become journals.
func (t *JournalTable) MappedJournals(records []models.RawRecord) []JournalEntry {
	seen := map[string]bool{}
	var out []JournalEntry
	for _, rec := range records {
		name, ok := JournalName(rec)
		if !ok {
			continue
		}
		code, ok := t.byName[name]
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, JournalEntry{Name: name, Code: code})
	}
	return out
}

// UnmappedPolicy decides where articles with unknown journal names go.
type UnmappedPolicy string

const (
	// UnmappedFirst links to the first journal resolved in this run.
	UnmappedFirst UnmappedPolicy = "first"
	// UnmappedMisc links to the MISC fallback journal.
	UnmappedMisc UnmappedPolicy = "misc"
	// UnmappedSkip drops the article and counts it as skipped.
	UnmappedSkip UnmappedPolicy = "skip"
)

// ParseUnmappedPolicy validates a policy name.
func ParseUnmappedPolicy(s string) (UnmappedPolicy, error) {
	switch p := UnmappedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case UnmappedFirst, UnmappedMisc, UnmappedSkip:
		return p, nil
	case "":
		return UnmappedFirst, nil
	}
	return "", fmt.Errorf("unknown unmapped journal policy %q (want first, misc or skip)", s)
}

// JournalIndex holds the ids of journals written during a run, keyed by code.
type JournalIndex struct {
	ids   map[string]string
	order []string
}

func (ix *JournalIndex) add(code, id string) {
	if ix.ids == nil {
		ix.ids = map[string]string{}
	}
	if _, ok := ix.ids[code]; !ok {
		ix.order = append(ix.order, code)
	}
	ix.ids[code] = id
}

// ID returns the database id for a code.
func (ix JournalIndex) ID(code string) (string, bool) {
	id, ok := ix.ids[code]
	return id, ok
}

// Len returns the number of resolved journals.
func (ix JournalIndex) Len() int {
	return len(ix.order)
}

func (ix JournalIndex) first() (string, bool) {
	for _, code := range ix.order {
		if code != MiscJournalCode {
			return code, true
		}
	}
	return "", false
}

// Resolve returns the journal code an article record links to. An exact table
// match always wins; otherwise policy decides. Under "first", records with no
// journal name at all are not linked.
func (t *JournalTable) Resolve(rec models.RawRecord, ix JournalIndex, policy UnmappedPolicy) (string, bool) {
	name, present := JournalName(rec)
	if present {
		if code, ok := t.byName[name]; ok {
			return code, true
		}
	}
	switch policy {
	case UnmappedMisc:
		return MiscJournalCode, true
	case UnmappedFirst:
		if !present {
			return "", false
		}
		return ix.first()
	}
	return "", false
}

func journalRow(e JournalEntry, displayOrder int) *models.Journal {
	return &models.Journal{
		Code:                    e.Code,
		FullName:                e.Name,
		ShortName:               e.Code,
		Description:             fmt.Sprintf("%s - A peer-reviewed academic journal", e.Name),
		AimsAndScope:            fmt.Sprintf("Publishes high-quality research in %s", strings.ToLower(e.Name)),
		Publisher:               "C5K Publishing",
		Frequency:               "Quarterly",
		ArticleProcessingCharge: 0,
		IsActive:                true,
		DisplayOrder:            displayOrder,
	}
}

func miscJournalRow() *models.Journal {
	return &models.Journal{
		Code:                    MiscJournalCode,
		FullName:                "Miscellaneous Academic Publications",
		ShortName:               MiscJournalCode,
		Description:             "A collection of academic publications across various disciplines",
		AimsAndScope:            "Publishes research papers across multiple academic disciplines that do not fall under specific journal categories",
		Publisher:               "C5K Publishing",
		Frequency:               "Continuous",
		ArticleProcessingCharge: 0,
		IsActive:                true,
		DisplayOrder:            999,
	}
}
