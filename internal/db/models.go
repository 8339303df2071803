package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID         uint      `gorm:"primaryKey"`
	JoinCode   string    `gorm:"size:12;uniqueIndex;not null"`
	Name       string    `gorm:"size:64;not null"`
	Phase      string    `gorm:"size:32;not null"`
	MaxRounds  int       `gorm:"not null;default:5"`
	MaxPlayers int       `gorm:"not null;default:10"`
	IsPrivate  bool      `gorm:"not null;default:false"`
	Categories datatypes.JSON
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Players    []Player
	Rounds     []Round
	Events     []Event
}

type Player struct {
	ID         uint      `gorm:"primaryKey"`
	GameID     uint      `gorm:"not null;uniqueIndex:idx_players_game_name"`
	Name       string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_name"`
	Color      string    `gorm:"size:16"`
	Avatar     string    `gorm:"size:16"`
	IsBot      bool      `gorm:"not null;default:false"`
	IsHost     bool      `gorm:"not null;default:false"`
	Difficulty string    `gorm:"size:16"`
	TotalScore int       `gorm:"not null;default:0"`
	JoinedAt   time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Judgments  []Judgment
	Events     []Event
}

type Round struct {
	ID         uint           `gorm:"primaryKey"`
	GameID     uint           `gorm:"index;not null;uniqueIndex:idx_rounds_game_number"`
	Number     int            `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	Letter     string         `gorm:"size:1;not null"`
	Status     string         `gorm:"size:32;not null"`
	Commentary string         `gorm:"size:512"`
	Answers    datatypes.JSON
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
	Judgments  []Judgment
	Events     []Event
}

type Judgment struct {
	ID           uint      `gorm:"primaryKey"`
	RoundID      uint      `gorm:"index;not null;uniqueIndex:idx_judgments_round_player_category"`
	PlayerID     uint      `gorm:"index;not null;uniqueIndex:idx_judgments_round_player_category"`
	CategoryName string    `gorm:"size:64;not null;uniqueIndex:idx_judgments_round_player_category"`
	Answer       string    `gorm:"size:128"`
	IsValid      bool      `gorm:"not null;default:false"`
	Score        int       `gorm:"not null;default:0"`
	Reason       string    `gorm:"size:280"`
	GeniusChoice bool      `gorm:"not null;default:false"`
	Emoji        string    `gorm:"size:8"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uint           `gorm:"index;not null"`
	RoundID   *uint          `gorm:"index"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
