package model

import "time"

// MaintenanceRecord is one logged service visit. Year and Month are derived
// from Timestamp at insert time; the composite unique index on
// (elevator_id, year, month) guarantees at most one record per elevator per
// calendar month even under concurrent scans.
type MaintenanceRecord struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	ElevatorID  int64     `gorm:"not null;uniqueIndex:idx_records_elevator_month,priority:1" json:"elevatorId"`
	UserID      int64     `gorm:"not null;index" json:"userId"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	Year        int       `gorm:"not null;uniqueIndex:idx_records_elevator_month,priority:2" json:"-"`
	Month       int       `gorm:"not null;uniqueIndex:idx_records_elevator_month,priority:3" json:"-"`
	NeedsRepair bool      `gorm:"not null;default:false" json:"needsRepair"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Associations
	Elevator    Elevator     `json:"elevator"`
	User        User         `json:"user"`
	Attachments []Attachment `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"attachments"`
}

// Attachment is one uploaded photo plus its free-text description. Ordering
// within a record follows insertion order.
type Attachment struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	RecordID    int64  `gorm:"index;not null" json:"recordId"`
	File        string `gorm:"size:512;not null" json:"file"`
	Description string `gorm:"size:1024;not null;default:''" json:"description"`
}
