package server

import (
	"net/http"
	"sync"
	"time"

	"stop-this/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	ws       *wsHub
	homeWS   *homeHub
	cfg      config.Config
	judge    Judge
	ai       *geminiClient
	timersMu sync.Mutex
	timers   map[string]*time.Timer
	dailyMu  sync.Mutex
	daily    *DailyChallenge
	dailyDay string
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	ai := newGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	return &Server{
		store:  NewStore(),
		db:     conn,
		ws:     newWSHub(),
		homeWS: newHomeHub(),
		cfg:    cfg,
		judge:  ai,
		ai:     ai,
		timers: make(map[string]*time.Timer),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.HandleFunc("GET /join", s.handleJoinView)
	mux.HandleFunc("GET /join/", s.handleJoinView)
	mux.HandleFunc("GET /games/", s.handleGameView)
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("POST /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("GET /api/daily", s.handleDailyChallenge)
	mux.HandleFunc("GET /ws/games/", s.handleWebsocket)
	mux.HandleFunc("GET /ws/home", s.handleHomeWebsocket)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	return mux
}

func (s *Server) snapshot(game *Game) map[string]any {
	return s.snapshotGame(game)
}
