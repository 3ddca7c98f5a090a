package models

// Experience is one skill entry owned by a user. Rows are never patched in
// place: the owner's whole set is replaced in a single transaction.
type Experience struct {
	ID                uint   `gorm:"primaryKey" json:"-"`
	UserID            string `gorm:"size:36;index;not null" json:"-"`
	Skill             string `gorm:"size:255;not null" json:"skill"`
	YearsOfExperience int    `gorm:"not null" json:"years_of_experience"`
}

// TableName keeps the table name the schema has always used.
func (Experience) TableName() string { return "user_experiences" }
