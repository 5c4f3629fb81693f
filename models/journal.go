package models

import "time"

// Journal repräsentiert eine Zeitschrift der Plattform. Der natürliche Schlüssel ist Code.
type Journal struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:createdAt"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updatedAt"`

	Code         string `json:"code" gorm:"column:code;uniqueIndex;not null"`
	FullName     string `json:"full_name" gorm:"column:fullName;not null"`
	ShortName    string `json:"short_name" gorm:"column:shortName"`
	Description  string `json:"description" gorm:"column:description;type:text"`
	AimsAndScope string `json:"aims_and_scope" gorm:"column:aimsAndScope;type:text"`

	// Im Scrape nicht enthalten, bleiben NULL
	ISSN         *string  `json:"issn,omitempty" gorm:"column:issn"`
	EISSN        *string  `json:"e_issn,omitempty" gorm:"column:eIssn"`
	ImpactFactor *float64 `json:"impact_factor,omitempty" gorm:"column:impactFactor"`

	Publisher               string  `json:"publisher" gorm:"column:publisher"`
	Frequency               string  `json:"frequency" gorm:"column:frequency"`
	ArticleProcessingCharge float64 `json:"article_processing_charge" gorm:"column:articleProcessingCharge"`
	IsActive                bool    `json:"is_active" gorm:"column:isActive"`
	DisplayOrder            int     `json:"display_order" gorm:"column:displayOrder"`
}

// TableName gibt explizit den Tabellennamen an.
func (Journal) TableName() string {
	return "Journal"
}
