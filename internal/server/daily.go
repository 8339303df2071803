package server

import "context"

// dailyChallenge caches the generated challenge for the current day so
// repeated requests don't each cost a model call. The model is seeded by
// the date, so regenerating would return the same challenge anyway.
func (s *Server) dailyChallenge(ctx context.Context, dateSeed string) (*DailyChallenge, error) {
	s.dailyMu.Lock()
	if s.daily != nil && s.dailyDay == dateSeed {
		cached := s.daily
		s.dailyMu.Unlock()
		return cached, nil
	}
	s.dailyMu.Unlock()

	challenge, err := s.ai.FetchDailyChallenge(ctx, dateSeed)
	if err != nil {
		return nil, err
	}

	s.dailyMu.Lock()
	s.daily = challenge
	s.dailyDay = dateSeed
	s.dailyMu.Unlock()
	return challenge, nil
}
