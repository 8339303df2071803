package server

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand"
	"strings"
)

func newJoinCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

func pickPlayerColor(index int) string {
	palette := []string{
		"#6366f1",
		"#ec4899",
		"#f59e0b",
		"#10b981",
		"#3b82f6",
		"#8b5cf6",
		"#ef4444",
		"#94a3b8",
	}
	if index < 0 {
		index = 0
	}
	return palette[index%len(palette)]
}

func pickPlayerAvatar(index int) string {
	avatars := []string{"👤", "🧑‍🚀", "🥷", "🧙‍♂️", "🦊", "🐼", "🤖", "👽", "🎮", "🚀"}
	if index < 0 {
		index = 0
	}
	return avatars[index%len(avatars)]
}

type botTemplate struct {
	Name   string
	Avatar string
	Color  string
}

var botTemplates = []botTemplate{
	{Name: "Bot Inteligente", Avatar: "🤖", Color: "#8b5cf6"},
	{Name: "Bot Ligeirinho", Avatar: "⚡", Color: "#f59e0b"},
	{Name: "Bot Criativo", Avatar: "🎨", Color: "#ec4899"},
	{Name: "Bot Engraçado", Avatar: "🤡", Color: "#ef4444"},
}

// pickBotTemplate numbers duplicate templates so every bot name in a game
// stays unique, which the judging contract relies on as a fallback key.
func pickBotTemplate(existing []Player) botTemplate {
	tmpl := botTemplates[mrand.Intn(len(botTemplates))]
	count := 0
	for _, p := range existing {
		if p.IsBot {
			count++
		}
	}
	if count > 0 {
		tmpl.Name = fmt.Sprintf("%s #%d", tmpl.Name, count+1)
	}
	return tmpl
}

var defaultCategories = []Category{
	{ID: "nome", Name: "Nome"},
	{ID: "animal", Name: "Animal"},
	{ID: "objeto", Name: "Objeto"},
	{ID: "fruta", Name: "Fruta"},
	{ID: "cor", Name: "Cor"},
}

func defaultCategoryList() []Category {
	out := make([]Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

var roomAdjectives = []string{"Épica", "Lendária", "Mágica", "Incrível", "Veloz", "Sábia", "Caótica", "Ninja", "Suprema", "Genial"}
var roomNouns = []string{"Arena", "Mansão", "Galáxia", "Toca", "Base", "Fortaleza", "Cidade", "Academia", "Nave", "Ilha"}

func generateRoomName() string {
	noun := roomNouns[mrand.Intn(len(roomNouns))]
	adjective := roomAdjectives[mrand.Intn(len(roomAdjectives))]
	return fmt.Sprintf("%s %s %d", noun, adjective, mrand.Intn(99))
}

func categorySlug(name string) string {
	slug := normalizeName(name)
	slug = strings.Join(strings.Fields(slug), "-")
	if slug == "" {
		slug = fmt.Sprintf("categoria-%d", mrand.Intn(9999))
	}
	return slug
}

var roundOptions = []int{3, 5, 10, 15}

func isRoundOption(rounds int) bool {
	for _, option := range roundOptions {
		if rounds == option {
			return true
		}
	}
	return false
}
