package server

import "math/rand"

// roundAlphabet excludes letters that are near-impossible in Portuguese
// word games (Q, W, X, Y, Z).
const roundAlphabet = "ABCDEFGHIJKLMNOPRSTUV"

func drawLetter() string {
	return string(roundAlphabet[rand.Intn(len(roundAlphabet))])
}

func isRoundLetter(letter string) bool {
	if len(letter) != 1 {
		return false
	}
	for i := 0; i < len(roundAlphabet); i++ {
		if roundAlphabet[i] == letter[0] {
			return true
		}
	}
	return false
}
