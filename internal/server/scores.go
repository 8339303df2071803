package server

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName lowercases, trims and strips accents, so "  João " and
// "joao" compare equal.
func normalizeName(name string) string {
	stripped, _, err := transform.String(accentStripper, name)
	if err != nil {
		stripped = name
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

// judgmentMatchesPlayer correlates a judgment with a local player. The
// echoed player id is authoritative; name matching is the fallback for
// judgments that come back without one. Name matching is substring
// containment on normalized names, so two players whose normalized names
// contain each other are ambiguous. That limitation is inherited from the
// judging contract, which keys on display names.
func judgmentMatchesPlayer(judgment JudgmentEntry, player Player) bool {
	if judgment.PlayerID != 0 {
		return judgment.PlayerID == player.ID
	}
	judged := normalizeName(judgment.PlayerName)
	local := normalizeName(player.Name)
	if judged == "" || local == "" {
		return false
	}
	return strings.Contains(judged, local) || strings.Contains(local, judged)
}

// roundScores folds the judgment list into per-player round scores. It is
// a pure function of its inputs: applying it twice with the same judgments
// yields the same map, never a doubled one. Players with no matching
// judgment score zero.
func roundScores(players []Player, judgments []JudgmentEntry) map[int]int {
	scores := make(map[int]int, len(players))
	for _, player := range players {
		total := 0
		for _, judgment := range judgments {
			if judgmentMatchesPlayer(judgment, player) {
				total += judgment.Score
			}
		}
		scores[player.ID] = total
	}
	return scores
}

// applyRoundScores writes the fold back onto the roster and marks players
// done. Totals are accumulated from the pre-round totals passed in, so the
// write is idempotent for a given (baseTotals, judgments) pair.
func applyRoundScores(game *Game, baseTotals map[int]int, judgments []JudgmentEntry) {
	scores := roundScores(game.Players, judgments)
	for i := range game.Players {
		player := &game.Players[i]
		player.RoundScore = scores[player.ID]
		player.TotalScore = baseTotals[player.ID] + scores[player.ID]
		player.Status = statusDone
	}
}

func totalsByPlayer(players []Player) map[int]int {
	totals := make(map[int]int, len(players))
	for _, player := range players {
		totals[player.ID] = player.TotalScore
	}
	return totals
}

func findJudgment(judgments []JudgmentEntry, player Player, categoryName string) (JudgmentEntry, bool) {
	target := normalizeName(categoryName)
	for _, judgment := range judgments {
		if !judgmentMatchesPlayer(judgment, player) {
			continue
		}
		if normalizeName(judgment.CategoryName) == target {
			return judgment, true
		}
	}
	return JudgmentEntry{}, false
}
