package models

import "time"

// Article ist ein veröffentlichter Artikel. JournalID und AuthorID sind Pflicht.
type Article struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:createdAt"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updatedAt"`

	JournalID string `json:"journal_id" gorm:"column:journalId;index;not null"`
	AuthorID  string `json:"author_id" gorm:"column:authorId;index;not null"`

	Title       string   `json:"title" gorm:"column:title;not null"`
	Abstract    string   `json:"abstract" gorm:"column:abstract;type:text"`
	Keywords    []string `json:"keywords" gorm:"column:keywords;type:text[]"`
	ArticleType string   `json:"article_type" gorm:"column:articleType"`
	DOI         *string  `json:"doi,omitempty" gorm:"column:doi"`
	PDFURL      *string  `json:"pdf_url,omitempty" gorm:"column:pdfUrl"`
	Status      string   `json:"status" gorm:"column:status"`

	PublicationDate time.Time `json:"publication_date" gorm:"column:publicationDate"`
	SubmissionDate  time.Time `json:"submission_date" gorm:"column:submissionDate"`
	AcceptanceDate  time.Time `json:"acceptance_date" gorm:"column:acceptanceDate"`

	IsOpenAccess bool   `json:"is_open_access" gorm:"column:isOpenAccess"`
	Language     string `json:"language" gorm:"column:language"`
}

// TableName gibt explizit den Tabellennamen an.
func (Article) TableName() string {
	return "Article"
}
