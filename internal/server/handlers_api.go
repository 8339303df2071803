package server

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"stop-this/internal/db"
)

type createGameRequest struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	MaxPlayers int    `json:"max_players"`
	MaxRounds  int    `json:"max_rounds"`
}

type joinRequest struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Color    string `json:"color"`
	Password string `json:"password"`
}

type hostRequest struct {
	PlayerID int `json:"player_id"`
}

type targetRequest struct {
	PlayerID int `json:"player_id"`
	TargetID int `json:"target_id"`
}

type settingsRequest struct {
	PlayerID      int    `json:"player_id"`
	Name          string `json:"name"`
	Rounds        int    `json:"rounds"`
	MaxPlayers    int    `json:"max_players"`
	LobbyLocked   bool   `json:"lobby_locked"`
	Password      string `json:"password"`
	ClearPassword bool   `json:"clear_password"`
}

type categoriesRequest struct {
	PlayerID int    `json:"player_id"`
	Add      string `json:"add"`
	RemoveID string `json:"remove_id"`
}

type answersRequest struct {
	PlayerID int               `json:"player_id"`
	Answers  map[string]string `json:"answers"`
	Done     bool              `json:"done"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	_ = readJSON(r.Body, &req)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = generateRoomName()
	}
	name, err := validateRoomName(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	password, err := validatePassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers <= 0 || maxPlayers > s.cfg.MaxLobbyPlayers {
		maxPlayers = s.cfg.MaxLobbyPlayers
	}
	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = s.cfg.MaxRounds
	}
	if !isRoundOption(maxRounds) {
		writeError(w, http.StatusBadRequest, "invalid round count")
		return
	}
	game := s.store.CreateGame(CreateGameOptions{
		Name:       name,
		Password:   password,
		MaxPlayers: maxPlayers,
		MaxRounds:  maxRounds,
	})
	if err := s.persistGame(game); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}
	log.Printf("game created game_id=%s join_code=%s name=%q", game.ID, game.JoinCode, game.Name)
	writeJSON(w, http.StatusCreated, map[string]string{
		"game_id":   game.ID,
		"join_code": game.JoinCode,
		"name":      game.Name,
	})
	s.broadcastHomeUpdate()
}

// handleListGames is the room browser: open lobbies, searchable by
// normalized name or join code.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	search := normalizeName(r.URL.Query().Get("q"))
	games := make([]map[string]any, 0)
	for _, summary := range s.store.ListGameSummaries() {
		if search != "" &&
			!strings.Contains(normalizeName(summary.Name), search) &&
			!strings.Contains(normalizeName(summary.JoinCode), search) {
			continue
		}
		games = append(games, map[string]any{
			"game_id":     summary.ID,
			"name":        summary.Name,
			"join_code":   summary.JoinCode,
			"phase":       summary.Phase,
			"players":     summary.Players,
			"max_players": summary.MaxPlayers,
			"is_private":  summary.IsPrivate,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleGameSubroutes(w http.ResponseWriter, r *http.Request) {
	gameID, action, ok := parseGamePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if action == "" && r.Method == http.MethodGet {
		s.handleGetGame(w, r, gameID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "results":
			s.handleResults(w, r, gameID)
		case "events":
			s.handleEvents(w, r, gameID)
		case "qr":
			s.handleJoinQR(w, r, gameID)
		default:
			http.NotFound(w, r)
		}
	case http.MethodPost:
		switch action {
		case "join":
			s.handleJoinGame(w, r, gameID)
		case "bots":
			s.handleAddBot(w, r, gameID)
		case "kick":
			s.handleKick(w, r, gameID)
		case "difficulty":
			s.handleBotDifficulty(w, r, gameID)
		case "settings":
			s.handleSettings(w, r, gameID)
		case "categories":
			s.handleCategories(w, r, gameID)
		case "suggest":
			s.handleSuggestCategories(w, r, gameID)
		case "start":
			s.handleStartGame(w, r, gameID)
		case "answers":
			s.handleAnswers(w, r, gameID)
		case "stop":
			s.handleStop(w, r, gameID)
		case "next":
			s.handleNextRound(w, r, gameID)
		case "reset":
			s.handleReset(w, r, gameID)
		default:
			http.NotFound(w, r)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, gameID string) {
	game, ok := s.store.GetGame(gameID)
	if !ok {
		game, ok = s.store.FindGameByJoinCode(gameID)
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(game))
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request, gameID string) {
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, player, err := s.store.AddPlayer(gameID, JoinOptions{
		Name:     name,
		Avatar:   strings.TrimSpace(req.Avatar),
		Color:    strings.TrimSpace(req.Color),
		Password: req.Password,
	})
	if err != nil {
		if err.Error() == "game not found" {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	playerID, persistErr := s.persistPlayer(game, player)
	if persistErr != nil {
		writeError(w, http.StatusInternalServerError, "failed to join game")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":      game.ID,
		"join_code":    game.JoinCode,
		"player":       name,
		"player_id":    playerID,
		"player_token": player.Token,
		"is_host":      player.IsHost,
	})
	log.Printf("player joined game_id=%s player_id=%d player_name=%s", game.ID, playerID, name)
	s.broadcastGameUpdate(game)
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request, gameID string) {
	var req hostRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	if err := s.requireHost(gameID, req.PlayerID); err != nil {
		s.writeGameError(w, r, err)
		return
	}
	game, bot, err := s.store.AddBot(gameID)
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	if _, err := s.persistPlayer(game, bot); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add bot")
		return
	}
	log.Printf("bot added game_id=%s bot_id=%d bot_name=%s", game.ID, bot.ID, bot.Name)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleKick(w http.ResponseWriter, r *http.Request, gameID string) {
	var req targetRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 || req.TargetID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id and target_id are required")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phaseLobby {
			return errors.New("kick only available in lobby")
		}
		if game.HostID != 0 && req.PlayerID != game.HostID {
			return errors.New("only host can remove players")
		}
		if req.TargetID == game.HostID {
			return errors.New("cannot remove host")
		}
		index := -1
		for i := range game.Players {
			if game.Players[i].ID == req.TargetID {
				index = i
				break
			}
		}
		if index == -1 {
			return errors.New("player not found")
		}
		if !game.Players[index].IsBot {
			game.KickedPlayers[strings.ToLower(game.Players[index].Name)] = struct{}{}
		}
		game.Players = append(game.Players[:index], game.Players[index+1:]...)
		return nil
	})
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	log.Printf("player removed game_id=%s target_id=%d", game.ID, req.TargetID)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleBotDifficulty(w http.ResponseWriter, r *http.Request, gameID string) {
	var req targetRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 || req.TargetID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id and target_id are required")
		return
	}
	var difficulty string
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phaseLobby {
			return errors.New("difficulty only available in lobby")
		}
		if game.HostID != 0 && req.PlayerID != game.HostID {
			return errors.New("only host can change difficulty")
		}
		player, ok := s.store.FindPlayer(game, req.TargetID)
		if !ok {
			return errors.New("player not found")
		}
		if !player.IsBot {
			return errors.New("player is not a bot")
		}
		player.Difficulty = nextDifficulty(player.Difficulty)
		difficulty = player.Difficulty
		return nil
	})
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	if err := s.persistEvent(game, "difficulty_changed", EventPayload{
		PlayerID:   req.TargetID,
		Difficulty: difficulty,
	}); err != nil {
		log.Printf("difficulty persist failed game_id=%s error=%v", game.ID, err)
	}
	log.Printf("bot difficulty changed game_id=%s bot_id=%d difficulty=%s", game.ID, req.TargetID, difficulty)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, gameID string) {
	var req settingsRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	if req.Rounds != 0 && !isRoundOption(req.Rounds) {
		writeError(w, http.StatusBadRequest, "invalid round count")
		return
	}
	if req.MaxPlayers < 0 || req.MaxPlayers > s.cfg.MaxLobbyPlayers {
		writeError(w, http.StatusBadRequest, "invalid max players")
		return
	}
	var name string
	if strings.TrimSpace(req.Name) != "" {
		var err error
		name, err = validateRoomName(req.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	password, err := validatePassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phaseLobby {
			return errors.New("settings only available in lobby")
		}
		if game.HostID != 0 && req.PlayerID != game.HostID {
			return errors.New("only host can update settings")
		}
		if req.Rounds != 0 {
			game.MaxRounds = req.Rounds
		}
		if req.MaxPlayers > 0 {
			if req.MaxPlayers < len(game.Players) {
				return errors.New("max players is below current player count")
			}
			game.MaxPlayers = req.MaxPlayers
		}
		if name != "" {
			game.Name = name
		}
		if req.ClearPassword {
			game.Password = ""
		} else if password != "" {
			game.Password = password
		}
		game.IsPrivate = game.Password != ""
		game.LobbyLocked = req.LobbyLocked
		return nil
	})
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	if err := s.persistSettings(game); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	log.Printf("settings updated game_id=%s rounds=%d max_players=%d locked=%t", game.ID, game.MaxRounds, game.MaxPlayers, game.LobbyLocked)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request, gameID string) {
	var req categoriesRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	var added string
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phaseLobby {
			return errors.New("categories only available in lobby")
		}
		if game.HostID != 0 && req.PlayerID != game.HostID {
			return errors.New("only host can change categories")
		}
		if req.RemoveID != "" {
			if len(game.Categories) <= minCategories {
				return errors.New("cannot have fewer than 3 categories")
			}
			index := -1
			for i := range game.Categories {
				if game.Categories[i].ID == req.RemoveID {
					index = i
					break
				}
			}
			if index == -1 {
				return errors.New("category not found")
			}
			game.Categories = append(game.Categories[:index], game.Categories[index+1:]...)
			return nil
		}
		name, err := validateCategoryName(req.Add)
		if err != nil {
			return err
		}
		if len(game.Categories) >= maxCategories {
			return errors.New("cannot have more than 10 categories")
		}
		for _, category := range game.Categories {
			if normalizeName(category.Name) == normalizeName(name) {
				return errors.New("category already exists")
			}
		}
		game.Categories = append(game.Categories, Category{
			ID:   categorySlug(name),
			Name: name,
		})
		added = name
		return nil
	})
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	if err := s.persistSettings(game); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save categories")
		return
	}
	if added != "" {
		log.Printf("category added game_id=%s category=%q", game.ID, added)
	} else {
		log.Printf("category removed game_id=%s category_id=%s", game.ID, req.RemoveID)
	}
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleSuggestCategories(w http.ResponseWriter, r *http.Request, gameID string) {
	var req hostRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	game, ok := s.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	suggestions := s.ai.SuggestCategories(r.Context(), categoryNames(game.Categories))
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":     game.ID,
		"suggestions": suggestions,
	})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request, gameID string) {
	var req hostRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.HostID != 0 && req.PlayerID != game.HostID {
			return errors.New("only host can start")
		}
		if game.Phase != phaseLobby {
			return errors.New("game already started")
		}
		_, err := s.advancePhase(game, transitionManual, time.Now().UTC())
		return err
	})
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	if err := s.persistPhase(game, "game_started", EventPayload{Phase: game.Phase}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start game")
		return
	}
	if err := s.persistRound(game); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create round")
		return
	}
	letter := ""
	if round := currentRound(game); round != nil {
		letter = round.Letter
	}
	log.Printf("game started game_id=%s phase=%s letter=%s", game.ID, game.Phase, letter)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
	s.schedulePhaseTimer(game)
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request, gameID string) {
	var req answersRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phasePlaying {
			return errors.New("answers not accepted in this phase")
		}
		player, ok := s.store.FindPlayer(game, req.PlayerID)
		if !ok {
			return errors.New("player not found")
		}
		if player.IsBot {
			return errors.New("bots do not submit answers")
		}
		for categoryID, raw := range req.Answers {
			if !hasCategory(game.Categories, categoryID) {
				return errors.New("category not found")
			}
			answer, err := validateAnswer(raw)
			if err != nil {
				return err
			}
			player.Answers[categoryID] = answer
		}
		if req.Done {
			player.Status = statusDone
		} else {
			player.Status = statusTyping
		}
		return nil
	})
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

// handleStop is the explicit stop action. Any human in the game can call
// it, matching the tabletop rule that the first finished player yells stop.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, gameID string) {
	var req hostRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	if _, player, ok := s.store.GetPlayer(gameID, req.PlayerID); !ok || player == nil || player.IsBot {
		writeError(w, http.StatusConflict, "player not found")
		return
	}
	game, err := s.stopRound(gameID, "stop")
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request, gameID string) {
	var req hostRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.HostID != 0 && req.PlayerID != game.HostID {
			return errors.New("only host can advance")
		}
		if game.Phase != phaseResults {
			return errors.New("round not finished")
		}
		_, err := s.advancePhase(game, transitionManual, time.Now().UTC())
		return err
	})
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	if game.Phase == phasePlaying {
		if err := s.persistRound(game); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create round")
			return
		}
	}
	if err := s.persistPhase(game, "game_advanced", EventPayload{Phase: game.Phase}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to advance game")
		return
	}
	log.Printf("game advanced game_id=%s phase=%s", game.ID, game.Phase)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
	s.schedulePhaseTimer(game)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, gameID string) {
	var req hostRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.HostID != 0 && req.PlayerID != game.HostID {
			return errors.New("only host can reset")
		}
		if game.Phase == phaseJudging {
			return errors.New("judging in progress")
		}
		resetToLobby(game)
		return nil
	})
	if err != nil {
		s.writeGameError(w, r, err)
		return
	}
	s.cancelPhaseTimer(game.ID)
	if err := s.persistPhase(game, "game_reset", EventPayload{Phase: game.Phase}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset game")
		return
	}
	log.Printf("game reset game_id=%s", game.ID)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request, gameID string) {
	game, ok := s.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	payload := map[string]any{
		"game_id":       game.ID,
		"phase":         game.Phase,
		"current_round": len(game.Rounds),
		"max_rounds":    game.MaxRounds,
		"scores":        buildScoreboard(game),
	}
	if round := currentRound(game); round != nil {
		payload["letter"] = round.Letter
		payload["commentary"] = round.Commentary
		payload["judge_error"] = round.JudgeError
		payload["judgments"] = judgmentsPayload(round.Judgments)
		payload["grid"] = buildResultsGrid(game)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, gameID string) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "events not available")
		return
	}
	game, ok := s.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load game")
			return
		}
	}
	var records []db.Event
	if err := s.db.Where("game_id = ?", game.DBID).Order("created_at asc").Find(&records).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	events := make([]map[string]any, 0, len(records))
	for _, record := range records {
		events = append(events, map[string]any{
			"id":         record.ID,
			"type":       record.Type,
			"round_id":   record.RoundID,
			"player_id":  record.PlayerID,
			"created_at": record.CreatedAt,
			"payload":    record.Payload,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": game.ID,
		"events":  events,
	})
}

func (s *Server) handleDailyChallenge(w http.ResponseWriter, r *http.Request) {
	dateSeed := time.Now().UTC().Format("2006-01-02")
	challenge, err := s.dailyChallenge(r.Context(), dateSeed)
	if err != nil {
		writeError(w, http.StatusBadGateway, "daily challenge unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":       dateSeed,
		"letter":     challenge.Letter,
		"categories": challenge.Categories,
	})
}

func (s *Server) requireHost(gameID string, playerID int) error {
	_, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.HostID != 0 && playerID != game.HostID {
			return errors.New("only host can do that")
		}
		return nil
	})
	return err
}

func (s *Server) writeGameError(w http.ResponseWriter, r *http.Request, err error) {
	if err.Error() == "game not found" {
		http.NotFound(w, r)
		return
	}
	writeError(w, http.StatusConflict, err.Error())
}

func hasCategory(categories []Category, id string) bool {
	for _, category := range categories {
		if category.ID == id {
			return true
		}
	}
	return false
}

func nextDifficulty(difficulty string) string {
	switch difficulty {
	case difficultyEasy:
		return difficultyMedium
	case difficultyMedium:
		return difficultyHard
	default:
		return difficultyEasy
	}
}
