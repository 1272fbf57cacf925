package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RecordStatus represents the approval state of a generated draft.
// Transitions are monotone: pending -> approved or pending -> rejected.
type RecordStatus string

const (
	RecordStatusPending  RecordStatus = "pending"
	RecordStatusApproved RecordStatus = "approved"
	RecordStatusRejected RecordStatus = "rejected"
)

// Terminal reports whether the status accepts no further transitions.
func (s RecordStatus) Terminal() bool {
	return s == RecordStatusApproved || s == RecordStatusRejected
}

// JSONMap is a custom type for storing free-form metadata as JSON in the database.
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// GenerationRecord is one generated draft for a work item. A new record is
// created on every successful generation; prior records for the same work
// item are retained, the most recent one is authoritative for display.
type GenerationRecord struct {
	ID           string       `gorm:"type:text;primaryKey" json:"id"`
	WorkItemID   string       `gorm:"type:text;not null;index:idx_records_item" json:"work_item_id"`
	ProjectID    string       `gorm:"type:text;not null;index:idx_records_scope" json:"project_id"`
	Phase        Phase        `gorm:"type:text;not null;index:idx_records_scope" json:"phase"`
	Body         string       `gorm:"type:text;not null" json:"body"`
	OriginalBody string       `gorm:"type:text;not null" json:"original_body"`
	Approach     Approach     `gorm:"type:text;not null" json:"approach"`
	Status       RecordStatus `gorm:"type:text;index:idx_records_status;default:pending" json:"status"`
	Metadata     JSONMap      `gorm:"type:text" json:"metadata"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName returns the database table name for GenerationRecord.
func (GenerationRecord) TableName() string {
	return "generation_records"
}
