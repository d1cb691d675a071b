package model

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Elevator represents one registered elevator. The QR code mounted in the
// elevator cabin encodes QRCodeData, which is globally unique.
type Elevator struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:256;not null" json:"name"`
	Location   string `gorm:"size:256;not null" json:"location"`
	QRCodeData string `gorm:"uniqueIndex;size:64;not null" json:"qrCodeData"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Associations
	Schedules []MaintenanceSchedule `gorm:"constraint:OnDelete:CASCADE" json:"maintenanceSchedules"`
}

// MaintenanceSchedule is one schedule entry of an elevator: a target month
// and an optional repeat interval in months (0 = one-time).
type MaintenanceSchedule struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	ElevatorID   int64     `gorm:"index;not null" json:"elevatorId"`
	Date         time.Time `gorm:"not null" json:"date"`
	RepeatMonths int       `gorm:"not null;default:0" json:"repeat"`
}

// GenerateQRCodeData produces a new QR token in the ELV-<timestamp>-<random>
// format printed on the physical labels.
func GenerateQRCodeData() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return "ELV-" + ts + "-" + strings.ToUpper(hex.EncodeToString(buf))
}
