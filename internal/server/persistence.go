package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stop-this/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

func (s *Server) persistGame(game *Game) error {
	if s.db == nil {
		return nil
	}
	categories, err := json.Marshal(categoryNames(game.Categories))
	if err != nil {
		return err
	}
	record := db.Game{
		JoinCode:   game.JoinCode,
		Name:       game.Name,
		Phase:      game.Phase,
		MaxRounds:  game.MaxRounds,
		MaxPlayers: game.MaxPlayers,
		IsPrivate:  game.IsPrivate,
		Categories: datatypes.JSON(categories),
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	game.DBID = record.ID
	newID := fmt.Sprintf("game-%d", record.ID)
	if game.ID != newID {
		s.store.UpdateGameID(game, newID)
	}
	return s.persistEvent(game, "game_created", EventPayload{
		GameID:   game.ID,
		JoinCode: game.JoinCode,
	})
}

func (s *Server) persistPlayer(game *Game, player *Player) (int, error) {
	if s.db == nil {
		return player.ID, nil
	}
	if player.DBID != 0 {
		return player.ID, nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return 0, err
		}
		if game.DBID == 0 {
			return 0, errors.New("game not found")
		}
	}
	record := db.Player{
		GameID:     game.DBID,
		Name:       player.Name,
		Color:      player.Color,
		Avatar:     player.Avatar,
		IsBot:      player.IsBot,
		IsHost:     player.IsHost,
		Difficulty: player.Difficulty,
		JoinedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findPlayerDBID(game.DBID, player.Name)
			if lookupErr == nil && existing != 0 {
				player.DBID = existing
				return player.ID, nil
			}
		}
		return 0, err
	}
	player.DBID = record.ID
	if err := s.persistEvent(game, "player_joined", EventPayload{
		PlayerName: player.Name,
		PlayerID:   player.ID,
	}); err != nil {
		return player.ID, err
	}
	return player.ID, nil
}

func (s *Server) persistPhase(game *Game, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return err
		}
	}
	if game.DBID == 0 {
		return errors.New("game not found")
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", game.DBID).Update("phase", game.Phase).Error; err != nil {
		return err
	}
	if round := currentRound(game); round != nil && round.DBID != 0 {
		if err := s.db.Model(&db.Round{}).Where("id = ?", round.DBID).Update("status", game.Phase).Error; err != nil {
			return err
		}
	}
	return s.persistEvent(game, eventType, payload)
}

func (s *Server) persistSettings(game *Game) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return err
		}
	}
	if game.DBID == 0 {
		return errors.New("game not found")
	}
	categories, err := json.Marshal(categoryNames(game.Categories))
	if err != nil {
		return err
	}
	updates := map[string]any{
		"name":        game.Name,
		"max_rounds":  game.MaxRounds,
		"max_players": game.MaxPlayers,
		"is_private":  game.IsPrivate,
		"categories":  datatypes.JSON(categories),
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistEvent(game, "settings_updated", EventPayload{
		MaxRounds:   game.MaxRounds,
		MaxPlayers:  game.MaxPlayers,
		LobbyLocked: game.LobbyLocked,
	})
}

func (s *Server) persistEvent(game *Game, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return err
		}
	}
	if game.DBID == 0 {
		return errors.New("game not found")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		GameID:   game.DBID,
		RoundID:  s.resolveEventRoundID(game),
		PlayerID: s.resolveEventPlayerID(game, payload),
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	return s.db.Create(&event).Error
}

func (s *Server) resolveEventRoundID(game *Game) *uint {
	round := currentRound(game)
	if round == nil {
		return nil
	}
	if round.DBID == 0 {
		if err := s.persistRound(game); err != nil {
			return nil
		}
	}
	if round.DBID == 0 {
		return nil
	}
	id := round.DBID
	return &id
}

func (s *Server) resolveEventPlayerID(game *Game, payload EventPayload) *uint {
	if payload.PlayerID <= 0 {
		return nil
	}
	player, found := s.store.FindPlayer(game, payload.PlayerID)
	if found && player.DBID != 0 {
		value := player.DBID
		return &value
	}
	return nil
}

func (s *Server) ensureGameDBID(game *Game) error {
	if s.db == nil || game.DBID != 0 {
		return nil
	}
	var record db.Game
	if err := s.db.Where("join_code = ?", game.JoinCode).First(&record).Error; err != nil {
		return nil
	}
	game.DBID = record.ID
	return nil
}

func (s *Server) persistRound(game *Game) error {
	if s.db == nil {
		return nil
	}
	round := currentRound(game)
	if round == nil || round.DBID != 0 {
		return nil
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			return err
		}
	}
	if game.DBID == 0 {
		return errors.New("game not found")
	}
	record := db.Round{
		GameID: game.DBID,
		Number: round.Number,
		Letter: round.Letter,
		Status: game.Phase,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	round.DBID = record.ID
	return nil
}

// persistJudgedRound writes the round's final answers, commentary and
// judgments once judging has resolved, and rolls player totals forward.
func (s *Server) persistJudgedRound(game *Game) error {
	if s.db == nil {
		return nil
	}
	round := currentRound(game)
	if round == nil {
		return errors.New("round not started")
	}
	if round.DBID == 0 {
		if err := s.persistRound(game); err != nil {
			return err
		}
	}
	answers := make(map[string]map[string]string, len(game.Players))
	for _, player := range game.Players {
		byCategory := make(map[string]string, len(game.Categories))
		for _, category := range game.Categories {
			byCategory[category.Name] = player.Answers[category.ID]
		}
		answers[player.Name] = byCategory
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"status":     game.Phase,
		"commentary": round.Commentary,
		"answers":    datatypes.JSON(answersJSON),
	}
	if err := s.db.Model(&db.Round{}).Where("id = ?", round.DBID).Updates(updates).Error; err != nil {
		return err
	}
	for i := range round.Judgments {
		judgment := &round.Judgments[i]
		if judgment.DBID != 0 {
			continue
		}
		playerDBID := s.judgmentPlayerDBID(game, *judgment)
		if playerDBID == 0 {
			continue
		}
		record := db.Judgment{
			RoundID:      round.DBID,
			PlayerID:     playerDBID,
			CategoryName: judgment.CategoryName,
			Answer:       judgment.Answer,
			IsValid:      judgment.IsValid,
			Score:        judgment.Score,
			Reason:       judgment.Reason,
			GeniusChoice: judgment.GeniusChoice,
			Emoji:        judgment.Emoji,
		}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
			return err
		}
		judgment.DBID = record.ID
	}
	for _, player := range game.Players {
		if player.DBID == 0 {
			continue
		}
		if err := s.db.Model(&db.Player{}).Where("id = ?", player.DBID).Update("total_score", player.TotalScore).Error; err != nil {
			return err
		}
	}
	return s.persistEvent(game, "round_judged", EventPayload{
		RoundNumber: round.Number,
		Letter:      round.Letter,
		Count:       len(round.Judgments),
	})
}

func (s *Server) judgmentPlayerDBID(game *Game, judgment JudgmentEntry) uint {
	for _, player := range game.Players {
		if judgmentMatchesPlayer(judgment, player) {
			return player.DBID
		}
	}
	return 0
}

func (s *Server) findPlayerDBID(gameDBID uint, name string) (uint, error) {
	var record db.Player
	if err := s.db.Where("game_id = ? AND name = ?", gameDBID, name).First(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func categoryNames(categories []Category) []string {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}
	return names
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
