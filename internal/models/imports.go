package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// DeviceType identifies a supported launch monitor export format.
type DeviceType string

const (
	DeviceGarminR10 DeviceType = "Garmin R10"
	DeviceSkyTrak   DeviceType = "SkyTrak+"
	DeviceMevo      DeviceType = "Flightscope Mevo+"
	DeviceGeneric   DeviceType = "Generic Launch Monitor"
)

// ImportStatus tracks the lifecycle of a launch monitor import.
type ImportStatus string

const (
	ImportPending  ImportStatus = "pending"
	ImportParsing  ImportStatus = "parsing"
	ImportPreview  ImportStatus = "preview"
	ImportImported ImportStatus = "imported"
	ImportFailed   ImportStatus = "failed"
	ImportPartial  ImportStatus = "partial"
)

// LaunchMonitorImport tracks launch monitor data imports for audit and debugging.
type LaunchMonitorImport struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	DeviceType    DeviceType     `gorm:"type:varchar(50)" json:"device_type"`
	FileName      string         `gorm:"not null" json:"file_name"`
	FileSize      int64          `json:"file_size"`
	RawData       string         `gorm:"type:text" json:"-"`
	ParsedData    datatypes.JSON `json:"parsed_data,omitempty"`
	Status        ImportStatus   `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Errors        pq.StringArray `gorm:"type:text[]" json:"errors"`
	Warnings      pq.StringArray `gorm:"type:text[]" json:"warnings"`
	RoundsCreated int            `gorm:"default:0" json:"rounds_created"`
	ShotsCreated  int            `gorm:"default:0" json:"shots_created"`
	CreatedAt     time.Time      `json:"created_at"`
	ImportedAt    *time.Time     `json:"imported_at,omitempty"`
}

func (LaunchMonitorImport) TableName() string {
	return "launch_monitor_imports"
}
