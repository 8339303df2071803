package server

import "time"

const (
	phaseLobby    = "lobby"
	phasePlaying  = "playing"
	phaseJudging  = "judging"
	phaseResults  = "results"
	phaseComplete = "complete"
)

const (
	difficultyEasy   = "EASY"
	difficultyMedium = "MEDIUM"
	difficultyHard   = "HARD"
)

const (
	statusWaiting = "waiting"
	statusTyping  = "typing"
	statusDone    = "done"
)

const (
	wsRolePlayer = "player"
	wsRoleHost   = "host"
)

type GameSummary struct {
	ID         string
	Name       string
	JoinCode   string
	Phase      string
	Players    int
	MaxPlayers int
	IsPrivate  bool
}

type Game struct {
	ID             string
	DBID           uint
	Name           string
	JoinCode       string
	Password       string
	IsPrivate      bool
	Phase          string
	PhaseStartedAt time.Time
	MaxPlayers     int
	MaxRounds      int
	LobbyLocked    bool
	HostID         int
	Categories     []Category
	Players        []Player
	Rounds         []RoundState
	KickedPlayers  map[string]struct{}
}

type Category struct {
	ID   string
	Name string
}

type Player struct {
	ID         int
	DBID       uint
	Token      string
	Name       string
	Color      string
	Avatar     string
	IsBot      bool
	IsHost     bool
	Difficulty string
	Answers    map[string]string
	RoundScore int
	TotalScore int
	Status     string
}

// RoundState is ephemeral round data; Generation guards the single
// in-flight judge call against stale resolution.
type RoundState struct {
	Number     int
	DBID       uint
	Letter     string
	Generation int
	Commentary string
	JudgeError string
	Judgments  []JudgmentEntry
}

// JudgmentEntry is one judged (player, category) pair as returned by the
// judge. PlayerID is the echoed correlation id; zero means the judge did
// not echo it and name matching applies.
type JudgmentEntry struct {
	DBID         uint
	PlayerID     int
	PlayerName   string
	CategoryName string
	Answer       string
	IsValid      bool
	Score        int
	Reason       string
	GeniusChoice bool
	Emoji        string
}
