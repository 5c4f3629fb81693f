package models

import "time"

// Dissertation hängt an keinem Journal, nur am Default-Autor.
type Dissertation struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:createdAt"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updatedAt"`

	AuthorID   string   `json:"author_id" gorm:"column:authorId;index;not null"`
	Title      string   `json:"title" gorm:"column:title;not null"`
	Abstract   string   `json:"abstract" gorm:"column:abstract;type:text"`
	University string   `json:"university" gorm:"column:university"`
	DegreeType string   `json:"degree_type" gorm:"column:degreeType"` // masters, phd
	Keywords   []string `json:"keywords" gorm:"column:keywords;type:text[]"`
	PDFURL     *string  `json:"pdf_url,omitempty" gorm:"column:pdfUrl"`
	Status     string   `json:"status" gorm:"column:status"`

	SubmissionDate time.Time `json:"submission_date" gorm:"column:submissionDate"`
}

// TableName gibt explizit den Tabellennamen an.
func (Dissertation) TableName() string {
	return "Dissertation"
}
