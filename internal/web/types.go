package web

type GameSummary struct {
	ID         string `json:"game_id"`
	Name       string `json:"name"`
	JoinCode   string `json:"join_code"`
	Phase      string `json:"phase"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	IsPrivate  bool   `json:"is_private"`
}
