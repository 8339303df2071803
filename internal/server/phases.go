package server

import (
	"errors"
	"time"
)

type transitionMode int

const (
	transitionPreview transitionMode = iota
	transitionManual
	transitionAuto
)

type phaseTransition struct {
	advance func(s *Server, game *Game, mode transitionMode, at time.Time) (string, error)
}

// phaseTransitions drives the round lifecycle:
// lobby -> playing -> judging -> results -> (playing | complete).
// judging is absent on purpose: leaving it is owned exclusively by the
// judge call's resolution in resolveJudging.
var phaseTransitions = map[string]phaseTransition{
	phaseLobby: {
		advance: func(s *Server, game *Game, mode transitionMode, at time.Time) (string, error) {
			if len(game.Players) == 0 {
				return "", errors.New("not enough players")
			}
			if len(game.Categories) < minCategories || len(game.Categories) > maxCategories {
				return "", errors.New("invalid category count")
			}
			if mode != transitionPreview {
				startRound(game)
			}
			applyPhase(game, phasePlaying, mode, at)
			return phasePlaying, nil
		},
	},
	phasePlaying: {
		advance: func(s *Server, game *Game, mode transitionMode, at time.Time) (string, error) {
			round := currentRound(game)
			if round == nil {
				return "", errors.New("round not started")
			}
			if mode != transitionPreview {
				round.Generation++
			}
			applyPhase(game, phaseJudging, mode, at)
			return phaseJudging, nil
		},
	},
	phaseResults: {
		advance: func(s *Server, game *Game, mode transitionMode, at time.Time) (string, error) {
			next := phasePlaying
			if len(game.Rounds) >= game.MaxRounds {
				next = phaseComplete
			}
			if mode != transitionPreview && next == phasePlaying {
				startRound(game)
			}
			applyPhase(game, next, mode, at)
			return next, nil
		},
	},
}

func (s *Server) nextPhase(game *Game) (string, bool, error) {
	next, err := s.advancePhase(game, transitionPreview, time.Time{})
	if err != nil || next == "" {
		return "", false, err
	}
	return next, true, nil
}

func (s *Server) advancePhase(game *Game, mode transitionMode, at time.Time) (string, error) {
	if game == nil {
		return "", errors.New("game not found")
	}
	transition, ok := phaseTransitions[game.Phase]
	if !ok {
		return "", errors.New("no next phase")
	}
	return transition.advance(s, game, mode, at)
}

// startRound appends a fresh round with a newly drawn letter and resets
// every player to typing with empty answers.
func startRound(game *Game) {
	game.Rounds = append(game.Rounds, RoundState{
		Number: len(game.Rounds) + 1,
		Letter: drawLetter(),
	})
	for i := range game.Players {
		game.Players[i].Answers = make(map[string]string)
		game.Players[i].RoundScore = 0
		game.Players[i].Status = statusTyping
	}
}

// resetToLobby is the explicit new-game action: the only path that zeroes
// accumulated totals.
func resetToLobby(game *Game) {
	game.Rounds = nil
	for i := range game.Players {
		game.Players[i].Answers = make(map[string]string)
		game.Players[i].RoundScore = 0
		game.Players[i].TotalScore = 0
		game.Players[i].Status = statusWaiting
	}
	setPhase(game, phaseLobby)
}

func currentRound(game *Game) *RoundState {
	if len(game.Rounds) == 0 {
		return nil
	}
	return &game.Rounds[len(game.Rounds)-1]
}

func roundByNumber(game *Game, number int) *RoundState {
	if game == nil || number <= 0 {
		return nil
	}
	for i := range game.Rounds {
		if game.Rounds[i].Number == number {
			return &game.Rounds[i]
		}
	}
	return nil
}

func setPhase(game *Game, phase string) {
	setPhaseAt(game, phase, time.Now().UTC())
}

func setPhaseAt(game *Game, phase string, at time.Time) {
	game.Phase = phase
	if at.IsZero() {
		at = time.Now().UTC()
	}
	game.PhaseStartedAt = at
}

func applyPhase(game *Game, phase string, mode transitionMode, at time.Time) {
	if mode == transitionPreview {
		return
	}
	setPhaseAt(game, phase, at)
}
