package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

type stubJudge struct {
	fn func(ctx context.Context, submission RoundSubmission) (*RoundVerdict, error)
}

func (j stubJudge) JudgeRound(ctx context.Context, submission RoundSubmission) (*RoundVerdict, error) {
	return j.fn(ctx, submission)
}

func gamePhase(srv *Server, gameID string) string {
	phase := ""
	_, _ = srv.store.UpdateGame(gameID, func(game *Game) error {
		phase = game.Phase
		return nil
	})
	return phase
}

func waitForPhase(t *testing.T, srv *Server, gameID, phase string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if gamePhase(srv, gameID) == phase {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("game %s never reached phase %s, still in %s", gameID, phase, gamePhase(srv, gameID))
}
