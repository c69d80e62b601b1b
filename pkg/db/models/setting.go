package models

import "time"

// Setting is a single scalar application setting.
type Setting struct {
	Key   string `gorm:"primaryKey;type:text"`
	Value string `gorm:"type:text;not null"`

	UpdatedAt time.Time
}

func (Setting) TableName() string {
	return "settings"
}
