package server

type EventPayload struct {
	GameID      string `json:"game_id,omitempty"`
	JoinCode    string `json:"join_code,omitempty"`
	PlayerName  string `json:"player,omitempty"`
	PlayerID    int    `json:"player_id,omitempty"`
	RoundNumber int    `json:"round_number,omitempty"`
	Letter      string `json:"letter,omitempty"`
	Phase       string `json:"phase,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	MaxRounds   int    `json:"max_rounds,omitempty"`
	MaxPlayers  int    `json:"max_players,omitempty"`
	LobbyLocked bool   `json:"lobby_locked,omitempty"`
	Count       int    `json:"count,omitempty"`
}
