package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"reactiontest/internal/config"
	"reactiontest/internal/history"
	"reactiontest/internal/metrics"
	"reactiontest/internal/population"
	"reactiontest/internal/records"
)

func Run() error {
	appCfg := config.Load()

	tuning, err := config.LoadTuning(appCfg.TuningFile)
	if err != nil {
		return fmt.Errorf("loading tuning: %w", err)
	}

	persist, err := history.OpenSQLite(appCfg.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("opening history db: %w", err)
	}
	defer persist.Close()

	// Optional shared records database. Without it percentiles fall
	// back to the median and results stay local.
	var svc *records.Service
	if appCfg.DatabaseURL != "" {
		svc, err = records.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without shared records)\n", err)
			svc = nil
		} else {
			if err := svc.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			log.Println("[DB] Records database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without shared records")
	}

	var ranker *population.Engine
	var remote history.Remote
	if svc != nil {
		ranker = population.NewEngine(svc)
		remote = svc
	} else {
		ranker = population.NewEngine(nil)
	}

	srv := &Server{
		Sessions: NewSessionStore(time.Duration(appCfg.SessionTTL) * time.Minute),
		History:  history.NewManager(persist, remote, ranker),
		Ranker:   ranker,
		Records:  svc,
		Tuning:   tuning,
	}

	addr := "0.0.0.0:" + appCfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
	return http.ListenAndServe(addr, srv.routes())
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tests/{type}", s.handleCreateSession)
	mux.HandleFunc("POST /api/sessions/{id}/start", s.handleStartSession)
	mux.HandleFunc("POST /api/sessions/{id}/input", s.handleSessionInput)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionState)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/ws", s.handleSessionWS)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/history", s.handleHistoryClear)
	mux.HandleFunc("GET /api/history/export.csv", s.handleHistoryExport)
	mux.HandleFunc("GET /api/history/{type}", s.handleHistoryByType)
	mux.HandleFunc("GET /api/history/{type}/best", s.handleHistoryBest)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleHistoryDelete)
	mux.HandleFunc("GET /api/distribution/{type}", s.handleDistribution)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}
