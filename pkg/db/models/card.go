package models

import "time"

// DivinationCard is one entry of the known-card catalog for a game.
type DivinationCard struct {
	Game string `gorm:"primaryKey;type:text"`
	Name string `gorm:"primaryKey;type:text"`

	CreatedAt time.Time
}

func (DivinationCard) TableName() string {
	return "divination_cards"
}

// LeagueCardRarity is the applied per-league rarity of a card, written when a
// filter's tier mapping is applied. Cards the filter does not mention are
// written with rarity 4 (common).
type LeagueCardRarity struct {
	Game     string `gorm:"primaryKey;type:text"`
	League   string `gorm:"primaryKey;type:text"`
	CardName string `gorm:"primaryKey;type:text"`
	Rarity   int    `gorm:"not null;check:rarity >= 1 AND rarity <= 4"`

	UpdatedAt time.Time
}

func (LeagueCardRarity) TableName() string {
	return "league_card_rarities"
}
