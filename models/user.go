package models

import "time"

// User ist eine Demo-Identität (Autor, Reviewer, Admin). Natürlicher Schlüssel: Email.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:createdAt"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updatedAt"`

	Email           string  `json:"email" gorm:"column:email;uniqueIndex;not null"`
	PasswordHash    string  `json:"-" gorm:"column:passwordHash;not null"`
	Name            string  `json:"name" gorm:"column:name"`
	University      string  `json:"university" gorm:"column:university"`
	Role            string  `json:"role" gorm:"column:role"` // author, reviewer, admin
	Affiliation     *string `json:"affiliation,omitempty" gorm:"column:affiliation"`
	IsEmailVerified bool    `json:"is_email_verified" gorm:"column:isEmailVerified"`
	IsActive        bool    `json:"is_active" gorm:"column:isActive"`
}

// TableName gibt explizit den Tabellennamen an.
func (User) TableName() string {
	return "User"
}
