package domain

import "time"

// Project holds the onboarding configuration a job runs against. A generate
// trigger for a project that does not exist is a pre-flight failure.
type Project struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	BrandVoice  string    `gorm:"type:text" json:"brand_voice"`
	Promotional bool      `gorm:"default:false" json:"promotional"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Project.
func (Project) TableName() string {
	return "projects"
}
