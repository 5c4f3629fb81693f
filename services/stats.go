package services

import (
	"fmt"
	"io"
	"strings"
)

// Stats counts what a run (or one stage of it) did. Skipped means a record was
// deliberately not written; Errors means writing it failed.
type Stats struct {
	JournalsCreated      int `json:"journals_created"`
	UsersCreated         int `json:"users_created"`
	ArticlesCreated      int `json:"articles_created"`
	DissertationsCreated int `json:"dissertations_created"`
	Skipped              int `json:"skipped"`
	Errors               int `json:"errors"`
}

// Add merges the counters of another stage.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		JournalsCreated:      s.JournalsCreated + o.JournalsCreated,
		UsersCreated:         s.UsersCreated + o.UsersCreated,
		ArticlesCreated:      s.ArticlesCreated + o.ArticlesCreated,
		DissertationsCreated: s.DissertationsCreated + o.DissertationsCreated,
		Skipped:              s.Skipped + o.Skipped,
		Errors:               s.Errors + o.Errors,
	}
}

// Report writes the operator summary printed at the end of every run.
func (s Stats) Report(w io.Writer, dryRun bool) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SEEDING SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Journals created:      %d\n", s.JournalsCreated)
	fmt.Fprintf(w, "Users created:         %d\n", s.UsersCreated)
	fmt.Fprintf(w, "Articles created:      %d\n", s.ArticlesCreated)
	fmt.Fprintf(w, "Dissertations created: %d\n", s.DissertationsCreated)
	fmt.Fprintf(w, "Skipped:               %d\n", s.Skipped)
	fmt.Fprintf(w, "Errors:                %d\n", s.Errors)
	fmt.Fprintln(w, rule)
	if dryRun {
		fmt.Fprintln(w, "DRY RUN MODE - No changes were made to the database")
	}
}
