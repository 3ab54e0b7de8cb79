package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"reactiontest/internal/game"
	"reactiontest/internal/grading"
	"reactiontest/internal/history"
	"reactiontest/internal/population"
	"reactiontest/internal/records"
	"reactiontest/internal/results"
)

type Server struct {
	Sessions *SessionStore
	History  *history.Manager
	Ranker   *population.Engine
	Records  *records.Service // nil if no database configured
	Tuning   game.Tuning
}

type sessionView struct {
	ID      string           `json:"id"`
	Type    results.TestType `json:"type"`
	State   game.State       `json:"state"`
	Outcome *game.Outcome    `json:"outcome,omitempty"`
	Grade   grading.Grade    `json:"grade,omitempty"`
}

func viewOf(sess *Session) sessionView {
	v := sessionView{ID: sess.ID, Type: sess.Type, State: sess.Game.State()}
	if out, ok := sess.Game.Outcome(); ok {
		v.Outcome = &out
		if out.Result.AverageTime != nil {
			v.Grade = grading.FromTime(*out.Result.AverageTime)
		}
	}
	return v
}

// ownerID resolves the caller's owner cookie, minting one on first
// contact. Every browser gets its own history without any signup.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie("owner_id"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "owner_id",
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
	})
	return id
}

func (s *Server) ownerStore(w http.ResponseWriter, r *http.Request) (*history.Store, bool) {
	store, err := s.History.ForOwner(r.Context(), s.ownerID(w, r))
	if err != nil {
		log.Printf("[History] loading store: %v\n", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return nil, false
	}
	return store, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	typ := results.TestType(r.PathValue("type"))
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown test type %q", typ))
		return
	}

	sess := &Session{
		ID:        newSessionID(),
		OwnerID:   s.ownerID(w, r),
		Type:      typ,
		Events:    make(chan game.Event, eventBuffer),
		CreatedAt: time.Now(),
	}
	g, err := game.New(typ, s.Tuning, game.Deps{Listener: s.sessionListener(sess)})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.Game = g
	s.Sessions.Add(sess)
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

// sessionListener forwards machine events to the session's websocket
// queue and records the outcome exactly once. The listener runs under
// the machine lock, so recording moves to its own goroutine.
func (s *Server) sessionListener(sess *Session) func(game.Event) {
	return func(ev game.Event) {
		select {
		case sess.Events <- ev:
		default:
		}
		if ev.Kind != game.EventFinished || ev.Outcome == nil || !ev.Outcome.Recorded {
			return
		}
		out := *ev.Outcome
		sess.recordOnce.Do(func() {
			go s.recordOutcome(sess, out)
		})
	}
}

func (s *Server) recordOutcome(sess *Session, out game.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := s.History.ForOwner(ctx, sess.OwnerID)
	if err != nil {
		log.Printf("[History] loading store for outcome: %v\n", err)
		return
	}
	store.Add(ctx, out.Result)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Get(r.PathValue("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	sess.Game.Start()
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleSessionInput(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Get(r.PathValue("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	var in game.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input payload")
		return
	}
	if err := sess.Game.Handle(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Get(r.PathValue("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	store, ok := s.ownerStore(w, r)
	if !ok {
		return
	}
	all := store.All()
	if all == nil {
		all = []results.TestResult{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleHistoryByType(w http.ResponseWriter, r *http.Request) {
	typ := results.TestType(r.PathValue("type"))
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown test type %q", typ))
		return
	}
	store, ok := s.ownerStore(w, r)
	if !ok {
		return
	}
	ranked := store.ResultsByType(typ)
	if ranked == nil {
		ranked = []results.TestResult{}
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (s *Server) handleHistoryBest(w http.ResponseWriter, r *http.Request) {
	typ := results.TestType(r.PathValue("type"))
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown test type %q", typ))
		return
	}
	store, ok := s.ownerStore(w, r)
	if !ok {
		return
	}
	best, found := store.BestResult(typ)
	if !found {
		writeError(w, http.StatusNotFound, "no results for this test yet")
		return
	}
	writeJSON(w, http.StatusOK, best)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	store, ok := s.ownerStore(w, r)
	if !ok {
		return
	}
	if err := store.Delete(r.Context(), r.PathValue("id")); err != nil {
		// local removal already happened; the shared pool is behind
		log.Printf("[History] remote delete: %v\n", err)
		writeError(w, http.StatusBadGateway, "removed locally, shared records unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	store, ok := s.ownerStore(w, r)
	if !ok {
		return
	}
	if err := store.Clear(r.Context()); err != nil {
		log.Printf("[History] remote clear: %v\n", err)
		writeError(w, http.StatusBadGateway, "cleared locally, shared records unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	store, ok := s.ownerStore(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	if err := store.ExportCSV(w); err != nil {
		log.Printf("[History] csv export: %v\n", err)
	}
}

type distributionView struct {
	Type      results.TestType    `json:"type"`
	Metric    results.MetricKey   `json:"metric"`
	Stats     population.Stats    `json:"stats"`
	Histogram []population.Bucket `json:"histogram"`
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	typ := results.TestType(r.PathValue("type"))
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown test type %q", typ))
		return
	}
	key := results.KeyMetric(typ)
	values := s.Ranker.Distribution(r.Context(), typ, key)
	writeJSON(w, http.StatusOK, distributionView{
		Type:      typ,
		Metric:    key,
		Stats:     population.Summarize(values),
		Histogram: population.Histogram(values, 10),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.Records != nil {
		if err := s.Records.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":"%s"}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println(err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
