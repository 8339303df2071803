package server

import (
	"log"
	"time"
)

func (s *Server) schedulePhaseTimer(game *Game) {
	duration := s.phaseDuration(game)
	if duration <= 0 {
		s.cancelPhaseTimer(game.ID)
		return
	}
	s.timersMu.Lock()
	if existing, ok := s.timers[game.ID]; ok {
		existing.Stop()
	}
	timer := time.AfterFunc(duration, func() {
		s.autoStopRound(game.ID)
	})
	s.timers[game.ID] = timer
	s.timersMu.Unlock()
}

func (s *Server) cancelPhaseTimer(gameID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[gameID]; ok {
		timer.Stop()
		delete(s.timers, gameID)
	}
}

// The countdown only exists while answers are being typed. Judging has its
// own call timeout and results wait on the host.
func (s *Server) phaseDuration(game *Game) time.Duration {
	if game == nil {
		return 0
	}
	switch game.Phase {
	case phasePlaying:
		return time.Duration(s.cfg.RoundDurationSeconds) * time.Second
	default:
		return 0
	}
}

func (s *Server) phaseSecondsLeft(game *Game) int {
	duration := s.phaseDuration(game)
	if duration <= 0 || game.PhaseStartedAt.IsZero() {
		return 0
	}
	left := duration - time.Since(game.PhaseStartedAt)
	if left < 0 {
		return 0
	}
	return int(left / time.Second)
}

func (s *Server) autoStopRound(gameID string) {
	game, err := s.stopRound(gameID, "timeout")
	if err != nil {
		return
	}
	log.Printf("round timed out game_id=%s", game.ID)
	s.broadcastGameUpdate(game)
}
