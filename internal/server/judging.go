package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	minCategories = 3
	maxCategories = 10
	maxJudgeScore = 20
)

// Judge validates a round's answers and synthesizes bot answers. The
// production implementation is the Gemini client; tests substitute stubs.
type Judge interface {
	JudgeRound(ctx context.Context, submission RoundSubmission) (*RoundVerdict, error)
}

type RoundSubmission struct {
	Letter     string
	Categories []string
	Humans     []HumanEntry
	Bots       []BotEntry
}

type HumanEntry struct {
	ID      int               `json:"playerId"`
	Name    string            `json:"playerName"`
	Answers map[string]string `json:"answers"`
}

type BotEntry struct {
	ID         int    `json:"playerId"`
	Name       string `json:"playerName"`
	Difficulty string `json:"difficulty"`
}

type RoundVerdict struct {
	Commentary string
	Judgments  []JudgmentEntry
	BotAnswers []BotAnswerSet
}

type BotAnswerSet struct {
	PlayerID  int
	BotName   string
	Responses map[string]string
}

// buildRoundSubmission assembles the judging request from live game state.
// Human answers pass through untouched: empty strings included, no local
// validity checks. Answers keyed by category id are re-keyed to the
// category's display name, which is what the judge sees.
func buildRoundSubmission(game *Game) (RoundSubmission, error) {
	round := currentRound(game)
	if round == nil {
		return RoundSubmission{}, errors.New("round not started")
	}
	submission := RoundSubmission{
		Letter:     strings.ToUpper(round.Letter),
		Categories: make([]string, 0, len(game.Categories)),
	}
	for _, category := range game.Categories {
		submission.Categories = append(submission.Categories, category.Name)
	}
	for _, player := range game.Players {
		if player.IsBot {
			submission.Bots = append(submission.Bots, BotEntry{
				ID:         player.ID,
				Name:       player.Name,
				Difficulty: player.Difficulty,
			})
			continue
		}
		answers := make(map[string]string, len(game.Categories))
		for _, category := range game.Categories {
			answers[category.Name] = player.Answers[category.ID]
		}
		submission.Humans = append(submission.Humans, HumanEntry{
			ID:      player.ID,
			Name:    player.Name,
			Answers: answers,
		})
	}
	return submission, nil
}

// buildJudgePrompt renders the natural-language instruction plus embedded
// JSON sent to the judge. Player ids ride along and the judge is told to
// echo them, so reconciliation does not have to rely on name matching.
func buildJudgePrompt(submission RoundSubmission) string {
	humanData, _ := json.Marshal(submission.Humans)
	botInfo := make([]string, 0, len(submission.Bots))
	for _, bot := range submission.Bots {
		botInfo = append(botInfo, fmt.Sprintf("%s (id: %d, Nível: %s)", bot.Name, bot.ID, bot.Difficulty))
	}

	return fmt.Sprintf(`Aja como Juiz de Stop. Letra: %q.
Categorias: %s.
Jogadores humanos (JSON, com playerId): %s.
Bots: %s.

TAREFAS:
1. Gere respostas realistas para os Bots (bots fáceis erram/deixam vazio).
2. Julgue todos. Resposta deve começar com %q.
3. Pontos: 0 (inválido/vazio), 5 (válido mas repetido na categoria), 10 (válido e único), 15/20 (raro/genial).
4. Comentário sarcástico curto.
5. Em cada julgamento, repita o playerId do jogador correspondente.

Retorne APENAS JSON:
{
  "commentary": "texto",
  "judgments": [
    {"playerId": 0, "playerName": "n", "categoryName": "c", "answer": "a", "isValid": bool, "score": int, "reason": "r", "isGeniusChoice": bool, "emoji": "e"}
  ],
  "botAnswers": [
    {"playerId": 0, "botName": "n", "responses": [{"category": "c", "answer": "a"}]}
  ]
}`,
		submission.Letter,
		strings.Join(submission.Categories, ", "),
		string(humanData),
		strings.Join(botInfo, ", "),
		submission.Letter,
	)
}

type verdictPayload struct {
	Commentary string `json:"commentary"`
	Judgments  []struct {
		PlayerID       int    `json:"playerId"`
		PlayerName     string `json:"playerName"`
		CategoryName   string `json:"categoryName"`
		Answer         string `json:"answer"`
		IsValid        bool   `json:"isValid"`
		Score          int    `json:"score"`
		Reason         string `json:"reason"`
		IsGeniusChoice bool   `json:"isGeniusChoice"`
		Emoji          string `json:"emoji"`
	} `json:"judgments"`
	BotAnswers []struct {
		PlayerID  int    `json:"playerId"`
		BotName   string `json:"botName"`
		Responses []struct {
			Category string `json:"category"`
			Answer   string `json:"answer"`
		} `json:"responses"`
	} `json:"botAnswers"`
}

// parseVerdict decodes the judge's JSON. A response without judgments is
// treated the same as a transport failure. Scores are clamped to the
// advertised 0..20 tiers since the model is only asked, not bound, to
// respect them.
func parseVerdict(raw string) (*RoundVerdict, error) {
	var payload verdictPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse judge response")
	}
	if len(payload.Judgments) == 0 {
		return nil, errors.New("judge returned no judgments")
	}
	verdict := &RoundVerdict{
		Commentary: strings.TrimSpace(payload.Commentary),
		Judgments:  make([]JudgmentEntry, 0, len(payload.Judgments)),
	}
	for _, judgment := range payload.Judgments {
		verdict.Judgments = append(verdict.Judgments, JudgmentEntry{
			PlayerID:     judgment.PlayerID,
			PlayerName:   judgment.PlayerName,
			CategoryName: judgment.CategoryName,
			Answer:       judgment.Answer,
			IsValid:      judgment.IsValid,
			Score:        clampScore(judgment.Score),
			Reason:       judgment.Reason,
			GeniusChoice: judgment.IsGeniusChoice,
			Emoji:        judgment.Emoji,
		})
	}
	for _, botAnswer := range payload.BotAnswers {
		responses := make(map[string]string, len(botAnswer.Responses))
		for _, response := range botAnswer.Responses {
			responses[response.Category] = response.Answer
		}
		verdict.BotAnswers = append(verdict.BotAnswers, BotAnswerSet{
			PlayerID:  botAnswer.PlayerID,
			BotName:   botAnswer.BotName,
			Responses: responses,
		})
	}
	return verdict, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxJudgeScore {
		return maxJudgeScore
	}
	return score
}

// stopRound moves playing -> judging and launches the single judge call.
// reason is "stop" for an explicit stop action, "timeout" for timer expiry.
func (s *Server) stopRound(gameID, reason string) (*Game, error) {
	var submission RoundSubmission
	var generation int
	var roundNumber int
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phasePlaying {
			return errors.New("round not in progress")
		}
		if _, err := s.advancePhase(game, transitionManual, time.Now().UTC()); err != nil {
			return err
		}
		round := currentRound(game)
		generation = round.Generation
		roundNumber = round.Number
		var buildErr error
		submission, buildErr = buildRoundSubmission(game)
		return buildErr
	})
	if err != nil {
		return nil, err
	}
	s.cancelPhaseTimer(game.ID)
	if err := s.persistPhase(game, "round_stopped", EventPayload{Phase: game.Phase, Reason: reason}); err != nil {
		log.Printf("stop persist phase failed game_id=%s error=%v", game.ID, err)
	}
	log.Printf("round stopped game_id=%s round=%d reason=%s", game.ID, roundNumber, reason)
	go s.resolveJudging(game.ID, roundNumber, generation, submission)
	return game, nil
}

// resolveJudging performs the judge call and applies its outcome. The
// (roundNumber, generation) pair captured at call time guards against a
// stale resolution landing on a different round: if the game moved on, the
// verdict is dropped.
func (s *Server) resolveJudging(gameID string, roundNumber, generation int, submission RoundSubmission) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	verdict, judgeErr := s.judge.JudgeRound(ctx, submission)

	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phaseJudging {
			return errors.New("stale judge result")
		}
		round := currentRound(game)
		if round == nil || round.Number != roundNumber || round.Generation != generation {
			return errors.New("stale judge result")
		}
		if judgeErr != nil {
			round.JudgeError = judgeErr.Error()
			round.Judgments = nil
			for i := range game.Players {
				game.Players[i].RoundScore = 0
				game.Players[i].Status = statusDone
			}
			setPhase(game, phaseResults)
			return nil
		}
		applyVerdict(game, round, verdict)
		setPhase(game, phaseResults)
		return nil
	})
	if err != nil {
		log.Printf("judge result dropped game_id=%s round=%d error=%v", gameID, roundNumber, err)
		return
	}
	if judgeErr != nil {
		log.Printf("judging failed game_id=%s round=%d error=%v", game.ID, roundNumber, judgeErr)
	} else {
		log.Printf("judging complete game_id=%s round=%d judgments=%d", game.ID, roundNumber, len(verdict.Judgments))
	}
	if err := s.persistJudgedRound(game); err != nil {
		log.Printf("judging persist failed game_id=%s error=%v", game.ID, err)
	}
	s.broadcastGameUpdate(game)
}

// applyVerdict folds the verdict onto the roster: bot answers land on the
// bot players, judgments are recorded, and scores accumulate from the
// pre-round totals.
func applyVerdict(game *Game, round *RoundState, verdict *RoundVerdict) {
	for _, botAnswer := range verdict.BotAnswers {
		for i := range game.Players {
			player := &game.Players[i]
			if !player.IsBot {
				continue
			}
			if !botAnswerMatches(botAnswer, *player) {
				continue
			}
			for _, category := range game.Categories {
				if answer, ok := botAnswer.Responses[category.Name]; ok {
					player.Answers[category.ID] = answer
				}
			}
			break
		}
	}
	round.Commentary = verdict.Commentary
	round.JudgeError = ""
	round.Judgments = verdict.Judgments
	applyRoundScores(game, totalsByPlayer(game.Players), verdict.Judgments)
}

func botAnswerMatches(botAnswer BotAnswerSet, player Player) bool {
	if botAnswer.PlayerID != 0 {
		return botAnswer.PlayerID == player.ID
	}
	return judgmentMatchesPlayer(JudgmentEntry{PlayerName: botAnswer.BotName}, player)
}
