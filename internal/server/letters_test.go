package server

import (
	"strings"
	"testing"
)

func TestDrawLetterStaysInAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		letter := drawLetter()
		if len(letter) != 1 {
			t.Fatalf("expected single letter, got %q", letter)
		}
		if !strings.Contains(roundAlphabet, letter) {
			t.Fatalf("letter %q is outside the round alphabet", letter)
		}
	}
}

func TestRoundAlphabetExcludesHardLetters(t *testing.T) {
	for _, banned := range []string{"Q", "W", "X", "Y", "Z"} {
		if strings.Contains(roundAlphabet, banned) {
			t.Fatalf("round alphabet must not contain %s", banned)
		}
	}
	if !isRoundLetter("A") || !isRoundLetter("V") {
		t.Fatal("expected A and V to be playable letters")
	}
	if isRoundLetter("W") || isRoundLetter("") || isRoundLetter("AB") {
		t.Fatal("expected W, empty and multi-char inputs to be rejected")
	}
}
