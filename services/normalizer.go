package services

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"journal-seeder/models"
)

const (
	maxTitleLen      = 500
	maxAbstractLen   = 5000
	citationTitleLen = 100
	logTitleLen      = 50

	citationPlaceholder = "Citation"
)

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"2 January, 2006", // 03 July, 2024
	"January 2, 2006", // July 03, 2024
	"2006-1-2",        // 2024-07-03
	"2-1-2006",        // 03-07-2024
}

// Normalizer turns raw scraped records into rows. Now and Rand are injectable
// so synthetic dates are reproducible in tests.
type Normalizer struct {
	Now  func() time.Time
	Rand *rand.Rand
}

// NewNormalizer returns a Normalizer backed by the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Now:  time.Now,
		Rand: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

// ParseDate parses the date formats found in the scrape. Empty strings, the
// literal "null" and unknown formats all yield nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// backdate returns a day between minDays and maxDays (inclusive) before now.
func (n *Normalizer) backdate(minDays, maxDays int) time.Time {
	days := minDays + n.Rand.IntN(maxDays-minDays+1)
	return now.With(n.Now().AddDate(0, 0, -days)).BeginningOfDay()
}

// PublicationDate picks online-first, then accepted, then submitted. With none
// available it invents a date 30 to 365 days in the past.
func (n *Normalizer) PublicationDate(onlineFirst, accepted, submitted *time.Time) time.Time {
	for _, t := range []*time.Time{onlineFirst, accepted, submitted} {
		if t != nil {
			return *t
		}
	}
	return n.backdate(30, 365)
}

// ExtractDOI returns the part after the last "doi.org/" of a DOI link.
func ExtractDOI(raw string) *string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "doi.org") {
		return nil
	}
	idx := strings.LastIndex(raw, "doi.org/")
	if idx < 0 {
		return nil
	}
	doi := strings.TrimSpace(raw[idx+len("doi.org/"):])
	if doi == "" {
		return nil
	}
	return &doi
}

// ArticleTitle replaces the scraper's "Citation" placeholder with the start of
// the summary.
func ArticleTitle(title, summary string) string {
	switch title {
	case "":
		return "Untitled Article"
	case citationPlaceholder:
		if utf8.RuneCountInString(summary) > citationTitleLen {
			return truncateRunes(summary, citationTitleLen) + "..."
		}
		return summary
	}
	return title
}

// DissertationTitle undoes slug-style hyphenation in scraped thesis titles.
func DissertationTitle(title string) string {
	title = strings.TrimSpace(strings.ReplaceAll(title, "-", " "))
	if title == "" {
		return "Untitled Thesis"
	}
	return title
}

// Keywords trims every entry of a keyword list and drops blanks. Anything that
// is not a list yields an empty set.
func Keywords(v any) []string {
	out := []string{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DegreeType guesses the degree from the title.
func DegreeType(title string) string {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "master") || strings.Contains(lower, "msc") {
		return "masters"
	}
	return "phd"
}

// cleanText applies NFC normalization. Characters are otherwise kept as scraped.
func cleanText(s string) string {
	out, _, err := transform.String(norm.NFC, s)
	if err != nil {
		return s
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func clampTitle(s string) string    { return truncateRunes(s, maxTitleLen) }
func clampAbstract(s string) string { return truncateRunes(s, maxAbstractLen) }

func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// NormalizeArticle builds an Article row. Non-string values in text fields are
// reported as errors.
func (n *Normalizer) NormalizeArticle(rec models.RawRecord, journalID, authorID string) (*models.Article, error) {
	fields, err := stringFields(rec, "title", "summary", "doi", "pdf_url", "submitted", "accepted", "online_first")
	if err != nil {
		return nil, err
	}
	title, summary := cleanText(fields["title"]), cleanText(fields["summary"])

	submitted := ParseDate(fields["submitted"])
	accepted := ParseDate(fields["accepted"])
	pubDate := n.PublicationDate(ParseDate(fields["online_first"]), accepted, submitted)

	submissionDate := pubDate.AddDate(0, 0, -90)
	if submitted != nil {
		submissionDate = *submitted
	}
	acceptanceDate := pubDate.AddDate(0, 0, -30)
	if accepted != nil {
		acceptanceDate = *accepted
	}

	return &models.Article{
		ID:              uuid.NewString(),
		JournalID:       journalID,
		AuthorID:        authorID,
		Title:           clampTitle(ArticleTitle(title, summary)),
		Abstract:        clampAbstract(summary),
		Keywords:        Keywords(rec["keywords"]),
		ArticleType:     "research",
		DOI:             ExtractDOI(fields["doi"]),
		PDFURL:          optionalString(fields["pdf_url"]),
		Status:          "published",
		PublicationDate: pubDate,
		SubmissionDate:  submissionDate,
		AcceptanceDate:  acceptanceDate,
		IsOpenAccess:    true,
		Language:        "en",
	}, nil
}

// NormalizeDissertation builds a Dissertation row with a synthesized abstract
// when the scrape has none.
func (n *Normalizer) NormalizeDissertation(rec models.RawRecord, authorID string) (*models.Dissertation, error) {
	fields, err := stringFields(rec, "title", "summary", "pdf_url")
	if err != nil {
		return nil, err
	}

	title := DissertationTitle(cleanText(fields["title"]))
	abstract := cleanText(fields["summary"])
	if abstract == "" {
		abstract = fmt.Sprintf("A dissertation on %s", title)
	}

	return &models.Dissertation{
		ID:             uuid.NewString(),
		AuthorID:       authorID,
		Title:          clampTitle(title),
		Abstract:       clampAbstract(abstract),
		University:     "C5K University",
		DegreeType:     DegreeType(title),
		Keywords:       Keywords(rec["keywords"]),
		PDFURL:         optionalString(fields["pdf_url"]),
		Status:         "published",
		SubmissionDate: n.backdate(30, 730),
	}, nil
}

func stringFields(rec models.RawRecord, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := rec.String(k)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// recordLabel is the truncated title used to identify a record in logs.
func recordLabel(rec models.RawRecord) string {
	title := rec.Text("title")
	if title == "" {
		return "Unknown"
	}
	return truncateRunes(title, logTitleLen)
}
