package server

import "time"

// snapshotGame is the wire representation broadcast to every connected
// client after each mutation.
func (s *Server) snapshotGame(game *Game) map[string]any {
	players := make([]map[string]any, 0, len(game.Players))
	for _, player := range game.Players {
		entry := map[string]any{
			"id":          player.ID,
			"name":        player.Name,
			"color":       player.Color,
			"avatar":      player.Avatar,
			"is_bot":      player.IsBot,
			"is_host":     player.IsHost,
			"status":      player.Status,
			"round_score": player.RoundScore,
			"total_score": player.TotalScore,
		}
		if player.IsBot {
			entry["difficulty"] = player.Difficulty
			entry["answers"] = player.Answers
		}
		players = append(players, entry)
	}

	categories := make([]map[string]string, 0, len(game.Categories))
	for _, category := range game.Categories {
		categories = append(categories, map[string]string{
			"id":   category.ID,
			"name": category.Name,
		})
	}

	payload := map[string]any{
		"game_id":          game.ID,
		"name":             game.Name,
		"join_code":        game.JoinCode,
		"is_private":       game.IsPrivate,
		"phase":            game.Phase,
		"phase_started_at": game.PhaseStartedAt,
		"seconds_left":     s.phaseSecondsLeft(game),
		"max_players":      game.MaxPlayers,
		"max_rounds":       game.MaxRounds,
		"lobby_locked":     game.LobbyLocked,
		"host_id":          game.HostID,
		"players":          players,
		"categories":       categories,
		"current_round":    len(game.Rounds),
	}
	if round := currentRound(game); round != nil {
		payload["letter"] = round.Letter
		payload["round_number"] = round.Number
		if game.Phase == phaseResults || game.Phase == phaseComplete {
			payload["commentary"] = round.Commentary
			payload["judge_error"] = round.JudgeError
			payload["judgments"] = judgmentsPayload(round.Judgments)
		}
	}
	duration := s.phaseDuration(game)
	if duration > 0 && !game.PhaseStartedAt.IsZero() {
		payload["phase_ends_at"] = game.PhaseStartedAt.Add(duration).UTC().Format(time.RFC3339)
	}
	return payload
}

func judgmentsPayload(judgments []JudgmentEntry) []map[string]any {
	out := make([]map[string]any, 0, len(judgments))
	for _, judgment := range judgments {
		out = append(out, map[string]any{
			"player_id":     judgment.PlayerID,
			"player_name":   judgment.PlayerName,
			"category_name": judgment.CategoryName,
			"answer":        judgment.Answer,
			"is_valid":      judgment.IsValid,
			"score":         judgment.Score,
			"reason":        judgment.Reason,
			"genius_choice": judgment.GeniusChoice,
			"emoji":         judgment.Emoji,
		})
	}
	return out
}

// buildResultsGrid is the per-player, per-category results table: each
// submitted answer joined with its judgment when one landed on it.
func buildResultsGrid(game *Game) []map[string]any {
	round := currentRound(game)
	if round == nil {
		return nil
	}
	rows := make([]map[string]any, 0, len(game.Players))
	for _, player := range game.Players {
		cells := make([]map[string]any, 0, len(game.Categories))
		for _, category := range game.Categories {
			cell := map[string]any{
				"category": category.Name,
				"answer":   player.Answers[category.ID],
			}
			if judgment, ok := findJudgment(round.Judgments, player, category.Name); ok {
				cell["is_valid"] = judgment.IsValid
				cell["score"] = judgment.Score
				cell["reason"] = judgment.Reason
				cell["genius_choice"] = judgment.GeniusChoice
				cell["emoji"] = judgment.Emoji
			}
			cells = append(cells, cell)
		}
		rows = append(rows, map[string]any{
			"player_id":   player.ID,
			"player_name": player.Name,
			"cells":       cells,
		})
	}
	return rows
}

func buildScoreboard(game *Game) []map[string]any {
	out := make([]map[string]any, 0, len(game.Players))
	for _, player := range game.Players {
		out = append(out, map[string]any{
			"player_id":   player.ID,
			"name":        player.Name,
			"round_score": player.RoundScore,
			"total_score": player.TotalScore,
		})
	}
	return out
}
