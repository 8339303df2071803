package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func newGeminiClient(apiKey, model string) *geminiClient {
	return &geminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiGenerateRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature"`
	Seed             *int64  `json:"seed,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generateJSON runs one generateContent call in JSON mode and returns the
// raw model text, expected to be a JSON document.
func (g *geminiClient) generateJSON(ctx context.Context, prompt string, temperature float64, seed *int64) (string, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return "", errors.New("Gemini API key is not configured.")
	}

	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			Temperature:      temperature,
			Seed:             seed,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to build Gemini request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build Gemini request")
	}
	req.Header.Set("x-goog-api-key", strings.TrimSpace(g.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach Gemini")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Gemini response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("Gemini request failed (%d)", resp.StatusCode)
	}

	var parsed geminiGenerateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse Gemini response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("Gemini error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("Gemini returned no candidates.")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// JudgeRound submits a full round for judging and bot-answer synthesis.
// One attempt, no retry: any failure is terminal for the round.
func (g *geminiClient) JudgeRound(ctx context.Context, submission RoundSubmission) (*RoundVerdict, error) {
	raw, err := g.generateJSON(ctx, buildJudgePrompt(submission), 0.5, nil)
	if err != nil {
		return nil, err
	}
	return parseVerdict(raw)
}

// SuggestCategories asks for two fresh categories not already in use.
// Failures degrade to an empty list, matching the lobby UX where a failed
// suggestion is just no suggestion.
func (g *geminiClient) SuggestCategories(ctx context.Context, exclude []string) []string {
	prompt := fmt.Sprintf(`Sugira 2 categorias únicas para Stop (não use: %s).
Responda APENAS array JSON de strings.`, strings.Join(exclude, ", "))
	raw, err := g.generateJSON(ctx, prompt, 1.0, nil)
	if err != nil {
		return nil
	}
	var suggestions []string
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil
	}
	return sanitizeSuggestions(suggestions, exclude)
}

type DailyChallenge struct {
	Letter     string   `json:"letter"`
	Categories []string `json:"categories"`
}

// FetchDailyChallenge generates the deterministic challenge for a date.
// The numeric form of the date seeds the model so every caller gets the
// same letter and categories for a given day.
func (g *geminiClient) FetchDailyChallenge(ctx context.Context, dateSeed string) (*DailyChallenge, error) {
	prompt := fmt.Sprintf(`Gere um desafio de Stop para a data %s.
Escolha 1 letra difícil e 5 categorias criativas.
Responda APENAS JSON: {"letter": "X", "categories": ["Item A", "Item B", ...]}`, dateSeed)

	seed := dateSeedValue(dateSeed)
	raw, err := g.generateJSON(ctx, prompt, 0, &seed)
	if err != nil {
		return nil, err
	}
	var challenge DailyChallenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		return nil, fmt.Errorf("failed to parse daily challenge")
	}
	challenge.Letter = strings.ToUpper(strings.TrimSpace(challenge.Letter))
	if len(challenge.Letter) == 0 || len(challenge.Categories) == 0 {
		return nil, errors.New("daily challenge is incomplete")
	}
	return &challenge, nil
}

func dateSeedValue(dateSeed string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, dateSeed)
	if len(digits) > 8 {
		digits = digits[:8]
	}
	var value int64
	for _, r := range digits {
		value = value*10 + int64(r-'0')
	}
	return value
}

func sanitizeSuggestions(suggestions, exclude []string) []string {
	used := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		used[normalizeName(name)] = struct{}{}
	}
	out := make([]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		clean := strings.TrimSpace(suggestion)
		if clean == "" {
			continue
		}
		key := normalizeName(clean)
		if _, exists := used[key]; exists {
			continue
		}
		used[key] = struct{}{}
		out = append(out, clean)
		if len(out) == 2 {
			break
		}
	}
	return out
}
