package server

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	maxNameLength     = 20
	maxAnswerLength   = 40
	maxCategoryLength = 32
	maxRoomNameLength = 40
	maxPasswordLength = 24
)

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validateAnswer(text string) (string, error) {
	// Empty answers are legal: the judge scores them zero.
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", nil
	}
	if len([]rune(trimmed)) > maxAnswerLength {
		return "", fmt.Errorf("answer must be %d characters or fewer", maxAnswerLength)
	}
	if !isSafeText(trimmed) {
		return "", errors.New("answer contains unsupported characters")
	}
	return trimmed, nil
}

func validateCategoryName(text string) (string, error) {
	return validateText("category", text, maxCategoryLength)
}

func validateRoomName(text string) (string, error) {
	return validateText("room name", text, maxRoomNameLength)
}

func validatePassword(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}
	if len([]rune(trimmed)) > maxPasswordLength {
		return "", fmt.Errorf("password must be %d characters or fewer", maxPasswordLength)
	}
	return trimmed, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if len([]rune(trimmed)) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", fmt.Errorf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

// isSafeText permits letters (accented ones included, the game is played
// in Portuguese), digits and light punctuation.
func isSafeText(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '.', ',', '!', '?', '&', '(', ')', '/', '#':
			continue
		default:
			return false
		}
	}
	return true
}
