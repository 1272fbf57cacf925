package domain

import "time"

// WorkItem is the unit processed in a batch: a page, keyword, or post
// belonging to exactly one project and phase. Immutable during a run.
type WorkItem struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	ProjectID string    `gorm:"type:text;not null;index:idx_items_scope" json:"project_id"`
	Phase     Phase     `gorm:"type:text;not null;index:idx_items_scope" json:"phase"`
	Ref       string    `gorm:"type:text;not null" json:"ref"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for WorkItem.
func (WorkItem) TableName() string {
	return "work_items"
}
