package server

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	mu           sync.Mutex
	nextID       int
	nextPlayerID int
	games        map[string]*Game
}

func NewStore() *Store {
	return &Store{
		nextID:       1,
		nextPlayerID: 1,
		games:        make(map[string]*Game),
	}
}

type CreateGameOptions struct {
	Name       string
	Password   string
	MaxPlayers int
	MaxRounds  int
}

func (s *Store) CreateGame(opts CreateGameOptions) *Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("game-%d", s.nextID)
	s.nextID++
	game := &Game{
		ID:             id,
		Name:           opts.Name,
		JoinCode:       newJoinCode(),
		Password:       opts.Password,
		IsPrivate:      opts.Password != "",
		Phase:          phaseLobby,
		PhaseStartedAt: timeNowUTC(),
		MaxPlayers:     opts.MaxPlayers,
		MaxRounds:      opts.MaxRounds,
		Categories:     defaultCategoryList(),
		KickedPlayers:  make(map[string]struct{}),
	}
	s.games[id] = game
	return game
}

func (s *Store) GetGame(id string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	return game, ok
}

func (s *Store) UpdateGame(id string, update func(game *Game) error) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, errors.New("game not found")
	}
	if err := update(game); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *Store) FindGameByJoinCode(code string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range s.games {
		if game.JoinCode == code {
			return game, true
		}
	}
	return nil, false
}

func (s *Store) UpdateGameID(game *Game, newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game.ID == newID {
		return
	}
	delete(s.games, game.ID)
	game.ID = newID
	s.games[newID] = game
}

type JoinOptions struct {
	Name     string
	Avatar   string
	Color    string
	Password string
}

func (s *Store) AddPlayer(gameIDOrCode string, opts JoinOptions) (*Game, *Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameIDOrCode]
	if !ok {
		for _, candidate := range s.games {
			if candidate.JoinCode == gameIDOrCode {
				game = candidate
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, nil, errors.New("game not found")
	}

	if game.Phase != phaseLobby {
		return nil, nil, errors.New("game already started")
	}
	if game.LobbyLocked {
		return nil, nil, errors.New("lobby locked")
	}
	if game.Password != "" && game.Password != opts.Password {
		return nil, nil, errors.New("wrong password")
	}
	if game.MaxPlayers > 0 && len(game.Players) >= game.MaxPlayers {
		return nil, nil, errors.New("lobby full")
	}
	if _, kicked := game.KickedPlayers[strings.ToLower(opts.Name)]; kicked {
		return nil, nil, errors.New("player removed")
	}
	for i := range game.Players {
		if strings.EqualFold(game.Players[i].Name, opts.Name) {
			return nil, nil, errors.New("name already taken")
		}
	}

	avatar := opts.Avatar
	if avatar == "" {
		avatar = pickPlayerAvatar(len(game.Players))
	}
	color := opts.Color
	if color == "" {
		color = pickPlayerColor(len(game.Players))
	}
	player := Player{
		ID:      s.nextPlayerID,
		Token:   uuid.NewString(),
		Name:    opts.Name,
		Avatar:  avatar,
		Color:   color,
		IsHost:  len(game.Players) == 0,
		Status:  statusWaiting,
		Answers: make(map[string]string),
	}
	s.nextPlayerID++
	game.Players = append(game.Players, player)
	if player.IsHost {
		game.HostID = player.ID
	}
	return game, &game.Players[len(game.Players)-1], nil
}

func (s *Store) AddBot(gameID string) (*Game, *Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return nil, nil, errors.New("game not found")
	}
	if game.Phase != phaseLobby {
		return nil, nil, errors.New("game already started")
	}
	if game.MaxPlayers > 0 && len(game.Players) >= game.MaxPlayers {
		return nil, nil, errors.New("lobby full")
	}

	tmpl := pickBotTemplate(game.Players)
	player := Player{
		ID:         s.nextPlayerID,
		Token:      uuid.NewString(),
		Name:       tmpl.Name,
		Avatar:     tmpl.Avatar,
		Color:      tmpl.Color,
		IsBot:      true,
		Difficulty: difficultyMedium,
		Status:     statusWaiting,
		Answers:    make(map[string]string),
	}
	s.nextPlayerID++
	game.Players = append(game.Players, player)
	return game, &game.Players[len(game.Players)-1], nil
}

func (s *Store) ListGameSummaries() []GameSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]GameSummary, 0, len(s.games))
	for _, game := range s.games {
		list = append(list, GameSummary{
			ID:         game.ID,
			Name:       game.Name,
			JoinCode:   game.JoinCode,
			Phase:      game.Phase,
			Players:    len(game.Players),
			MaxPlayers: game.MaxPlayers,
			IsPrivate:  game.IsPrivate,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return gameSortKey(list[i].ID) < gameSortKey(list[j].ID)
	})
	return list
}

func gameSortKey(id string) int {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return 0
	}
	value, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return value
}

func (s *Store) GetPlayer(gameID string, playerID int) (*Game, *Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return nil, nil, false
	}
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return game, &game.Players[i], true
		}
	}
	return game, nil, false
}

func (s *Store) FindPlayer(game *Game, playerID int) (*Player, bool) {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return &game.Players[i], true
		}
	}
	return nil, false
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
