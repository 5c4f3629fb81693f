package services

import "journal-seeder/models"

// Partition is the result of splitting the input by item_type.
type Partition struct {
	Articles      []models.RawRecord
	Dissertations []models.RawRecord
	// WithoutSummary counts articles dropped for lacking a summary.
	WithoutSummary int
	// Ignored counts records of any other item type.
	Ignored int
}

// Classify splits records into article and dissertation streams, keeping
// input order. Articles need a non-empty summary to be eligible.
func Classify(records []models.RawRecord) Partition {
	var p Partition
	for _, rec := range records {
		switch rec.ItemType() {
		case models.ItemTypeArticle:
			if rec.Text("summary") == "" {
				p.WithoutSummary++
				continue
			}
			p.Articles = append(p.Articles, rec)
		case models.ItemTypeDissertation:
			p.Dissertations = append(p.Dissertations, rec)
		default:
			p.Ignored++
		}
	}
	return p
}
