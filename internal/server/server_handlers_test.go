package server

import (
	"net/http"
	"testing"

	"stop-this/internal/config"
)

func TestCreateGameValidation(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodPost, "/api/games", map[string]any{
		"max_rounds": 7,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected %d for off-menu round count, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games", map[string]any{
		"name":       "Sala da Ana",
		"max_rounds": 10,
		"password":   "segredo",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["name"] != "Sala da Ana" {
		t.Fatalf("expected explicit name kept, got %v", body["name"])
	}
	if code := body["join_code"].(string); len(code) != 6 {
		t.Fatalf("expected 6 character join code, got %q", code)
	}
}

func TestJoinByCodeAndPassword(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodPost, "/api/games", map[string]any{
		"password": "segredo",
	})
	body := decodeBody(t, resp)
	code := body["join_code"].(string)

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+code+"/join", map[string]any{
		"name": "Ada",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d without password, got %d", http.StatusConflict, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+code+"/join", map[string]any{
		"name":     "Ada",
		"password": "segredo",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d with password, got %d", http.StatusOK, resp.StatusCode)
	}
	joined := decodeBody(t, resp)
	if joined["is_host"] != true {
		t.Fatal("first player should be host")
	}
	if token, ok := joined["player_token"].(string); !ok || token == "" {
		t.Fatal("expected a player token")
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+code+"/join", map[string]any{
		"name":     "ada",
		"password": "segredo",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for duplicate name, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestJoinRequiresName(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/join", map[string]any{
		"name": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestGetGameByJoinCode(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID, code := createGameWithCode(t, ts)
	snapshot := fetchSnapshot(t, ts, code)
	if snapshot["game_id"] != gameID {
		t.Fatalf("expected lookup by join code, got %v", snapshot["game_id"])
	}
}

func TestListGamesSearch(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	doRequest(t, ts, http.MethodPost, "/api/games", map[string]any{"name": "Arena Épica"})
	doRequest(t, ts, http.MethodPost, "/api/games", map[string]any{"name": "Toca Ninja"})

	resp := doRequest(t, ts, http.MethodGet, "/api/games?q=epica", nil)
	body := decodeBody(t, resp)
	games := body["games"].([]any)
	if len(games) != 1 {
		t.Fatalf("expected 1 match for accented search, got %d", len(games))
	}
	if games[0].(map[string]any)["name"] != "Arena Épica" {
		t.Fatalf("unexpected match %v", games[0])
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/games", nil)
	body = decodeBody(t, resp)
	if len(body["games"].([]any)) != 2 {
		t.Fatalf("expected 2 games unfiltered, got %d", len(body["games"].([]any)))
	}
}

func TestSettingsHostOnly(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	hostID := joinPlayer(t, ts, gameID, "Ada")
	guestID := joinPlayer(t, ts, gameID, "Ben")

	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/settings", map[string]any{
		"player_id": guestID,
		"rounds":    10,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for non-host, got %d", http.StatusConflict, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/settings", map[string]any{
		"player_id": hostID,
		"rounds":    10,
		"name":      "Sala Renomeada",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d for host, got %d", http.StatusOK, resp.StatusCode)
	}
	snapshot := decodeBody(t, resp)
	if snapshot["max_rounds"].(float64) != 10 || snapshot["name"] != "Sala Renomeada" {
		t.Fatalf("settings not applied: %v %v", snapshot["max_rounds"], snapshot["name"])
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/settings", map[string]any{
		"player_id": hostID,
		"rounds":    4,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected %d for invalid round option, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestSettingsPassword(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	hostID := joinPlayer(t, ts, gameID, "Ada")

	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/settings", map[string]any{
		"player_id": hostID,
		"password":  "segredo",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if snapshot := decodeBody(t, resp); snapshot["is_private"] != true {
		t.Fatal("expected room to turn private")
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/join", map[string]any{
		"name": "Ben",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d without password, got %d", http.StatusConflict, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/settings", map[string]any{
		"player_id":      hostID,
		"clear_password": true,
	})
	if snapshot := decodeBody(t, resp); snapshot["is_private"] != false {
		t.Fatal("expected room public again")
	}
	joinPlayer(t, ts, gameID, "Ben")
}

func TestCategoriesBounds(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	hostID := joinPlayer(t, ts, gameID, "Ada")

	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/categories", map[string]any{
		"player_id": hostID,
		"add":       "fruta",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for duplicate category, got %d", http.StatusConflict, resp.StatusCode)
	}

	for _, name := range []string{"Filme", "País", "Profissão", "Marca", "Time"} {
		resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/categories", map[string]any{
			"player_id": hostID,
			"add":       name,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add %s: expected %d, got %d", name, http.StatusOK, resp.StatusCode)
		}
	}
	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/categories", map[string]any{
		"player_id": hostID,
		"add":       "Comida",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d at the 10 category cap, got %d", http.StatusConflict, resp.StatusCode)
	}

	snapshot := fetchSnapshot(t, ts, gameID)
	categories := snapshot["categories"].([]any)
	for len(categories) > minCategories {
		id := categories[0].(map[string]any)["id"].(string)
		resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/categories", map[string]any{
			"player_id": hostID,
			"remove_id": id,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("remove %s: expected %d, got %d", id, http.StatusOK, resp.StatusCode)
		}
		categories = decodeBody(t, resp)["categories"].([]any)
	}

	id := categories[0].(map[string]any)["id"].(string)
	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/categories", map[string]any{
		"player_id": hostID,
		"remove_id": id,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d below the 3 category floor, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestKickBansRejoin(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	hostID := joinPlayer(t, ts, gameID, "Ada")
	guestID := joinPlayer(t, ts, gameID, "Ben")

	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/kick", map[string]any{
		"player_id": guestID,
		"target_id": hostID,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for guest kicking host, got %d", http.StatusConflict, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/kick", map[string]any{
		"player_id": hostID,
		"target_id": guestID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/join", map[string]any{
		"name": "ben",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for banned rejoin, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestBotDifficultyCycles(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	hostID := joinPlayer(t, ts, gameID, "Ada")
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/bots", map[string]any{
		"player_id": hostID,
	})
	snapshot := decodeBody(t, resp)
	var botID int
	for _, raw := range snapshot["players"].([]any) {
		player := raw.(map[string]any)
		if player["is_bot"].(bool) {
			botID = int(player["id"].(float64))
			if player["difficulty"] != difficultyMedium {
				t.Fatalf("new bots start at MEDIUM, got %v", player["difficulty"])
			}
		}
	}
	if botID == 0 {
		t.Fatal("bot not found in snapshot")
	}

	want := []string{difficultyHard, difficultyEasy, difficultyMedium}
	for _, expected := range want {
		resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/difficulty", map[string]any{
			"player_id": hostID,
			"target_id": botID,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("cycle difficulty: expected %d, got %d", http.StatusOK, resp.StatusCode)
		}
		bot := snapshotPlayer(t, decodeBody(t, resp), botID)
		if bot["difficulty"] != expected {
			t.Fatalf("expected %s, got %v", expected, bot["difficulty"])
		}
	}
}

func TestStartRequiresHostIdentity(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	joinPlayer(t, ts, gameID, "Ada")
	guestID := joinPlayer(t, ts, gameID, "Ben")

	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/start", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected %d for body-less start, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/start", map[string]any{
		"player_id": guestID,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for non-host start, got %d", http.StatusConflict, resp.StatusCode)
	}

	snapshot := fetchSnapshot(t, ts, gameID)
	if snapshot["phase"] != phaseLobby {
		t.Fatalf("game must still be in lobby, got %v", snapshot["phase"])
	}
}

func TestAnswersRejectedOutsidePlaying(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	playerID := joinPlayer(t, ts, gameID, "Ada")
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/answers", map[string]any{
		"player_id": playerID,
		"answers":   map[string]string{"fruta": "Morango"},
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d in lobby, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestAnswersRejectUnknownCategory(t *testing.T) {
	srv := New(nil, config.Default())
	srv.judge = scoringJudge()
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	playerID := joinPlayer(t, ts, gameID, "Ada")
	doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/start", map[string]any{
		"player_id": playerID,
	})
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/answers", map[string]any{
		"player_id": playerID,
		"answers":   map[string]string{"pais": "Portugal"},
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for unknown category, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestEventsUnavailableWithoutDatabase(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	resp := doRequest(t, ts, http.MethodGet, "/api/games/"+gameID+"/events", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}

func TestJoinQRServesPNG(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID := createGame(t, ts)
	resp := doRequest(t, ts, http.MethodGet, "/api/games/"+gameID+"/qr", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
}

func TestHomePageLists(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodGet, "/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	resp = doRequest(t, ts, http.MethodGet, "/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected %d for unknown path, got %d", http.StatusNotFound, resp.StatusCode)
	}
}
