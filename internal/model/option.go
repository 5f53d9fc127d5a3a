package model

import (
	"time"

	"gorm.io/datatypes"
)

// Well-known option names.
const (
	OptionDBVersion      = "db_version"
	OptionSettings       = "settings"
	OptionKeysMigrated   = "subscriber_keys_migrated"
	OptionLastSend       = "last_newsletter_send"
	OptionLastManualSend = "last_manual_send"
)

// Option is a named JSON value: runtime settings, migration flags and
// last-send timestamps live here.
type Option struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:191;uniqueIndex;not null"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Option) TableName() string {
	return "options"
}
