package models

import "time"

// FilterType categorizes the origin directory of a loot filter file.
type FilterType string

const (
	FilterTypeLocal  FilterType = "local"
	FilterTypeOnline FilterType = "online"
)

// FilterMetadata represents one loot filter file discovered on disk.
// The id is derived deterministically from the normalized file path, so
// repeated scans of the same file always resolve to the same row.
type FilterMetadata struct {
	ID         string     `gorm:"primaryKey;type:text"`
	FilterType FilterType `gorm:"type:text;not null;index"`
	FilePath   string     `gorm:"type:text;not null;uniqueIndex"`
	FilterName string     `gorm:"type:text;not null"`

	// LastUpdate is the mtime of the filter file itself, not of this row.
	LastUpdate *time.Time

	IsFullyParsed bool `gorm:"not null;default:false"`
	ParsedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Rarities []FilterCardRarity `gorm:"foreignKey:FilterID;constraint:OnDelete:CASCADE"`
}

func (FilterMetadata) TableName() string {
	return "filter_metadata"
}

// FilterCardRarity is one divination card tier extracted from a filter.
// Rarity runs from 1 (extremely rare) to 4 (common).
type FilterCardRarity struct {
	FilterID string `gorm:"primaryKey;type:text"`
	CardName string `gorm:"primaryKey;type:text"`
	Rarity   int    `gorm:"not null;check:rarity >= 1 AND rarity <= 4"`
}

func (FilterCardRarity) TableName() string {
	return "filter_card_rarities"
}
