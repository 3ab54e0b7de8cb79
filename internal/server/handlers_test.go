package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reactiontest/internal/game"
	"reactiontest/internal/history"
	"reactiontest/internal/population"
	"reactiontest/internal/results"
)

func newTestServer(t *testing.T) (*Server, *http.ServeMux) {
	t.Helper()
	ranker := population.NewEngine(nil)
	srv := &Server{
		Sessions: NewSessionStore(time.Hour),
		History:  history.NewManager(nil, nil, ranker),
		Ranker:   ranker,
		Tuning:   game.DefaultTuning(),
	}
	return srv, srv.routes()
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return rec, decoded
}

func TestCreateSession(t *testing.T) {
	_, mux := newTestServer(t)

	rec, body := doJSON(t, mux, http.MethodPost, "/api/tests/color-change", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if body["id"] == "" {
		t.Error("response carries no session id")
	}
	if body["state"] != "idle" {
		t.Errorf("state = %v, want idle", body["state"])
	}
	if rec.Result().Cookies()[0].Name != "owner_id" {
		t.Error("first contact should mint an owner cookie")
	}
}

func TestCreateSession_UnknownType(t *testing.T) {
	_, mux := newTestServer(t)
	rec, _ := doJSON(t, mux, http.MethodPost, "/api/tests/telepathy", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestStartSession_EntersCountdown(t *testing.T) {
	_, mux := newTestServer(t)
	_, created := doJSON(t, mux, http.MethodPost, "/api/tests/click-tracker", "")
	id := created["id"].(string)

	rec, body := doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body["state"] != "countdown" {
		t.Errorf("state = %v, want countdown", body["state"])
	}
}

func TestSessionState_UnknownID(t *testing.T) {
	_, mux := newTestServer(t)
	rec, _ := doJSON(t, mux, http.MethodGet, "/api/sessions/no-such-session", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionInput_WrongKindRejected(t *testing.T) {
	_, mux := newTestServer(t)
	_, created := doJSON(t, mux, http.MethodPost, "/api/tests/color-change", "")
	id := created["id"].(string)

	rec, _ := doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/input", `{"kind":"cell","cell":4}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d; reaction games take press input only", rec.Code, http.StatusBadRequest)
	}
}

func TestSessionInput_BadPayload(t *testing.T) {
	_, mux := newTestServer(t)
	_, created := doJSON(t, mux, http.MethodPost, "/api/tests/color-change", "")
	id := created["id"].(string)

	rec, _ := doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/input", "{nope")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDeleteSession_TearsDown(t *testing.T) {
	srv, mux := newTestServer(t)
	_, created := doJSON(t, mux, http.MethodPost, "/api/tests/color-change", "")
	id := created["id"].(string)
	sess := srv.Sessions.Get(id)

	rec, _ := doJSON(t, mux, http.MethodDelete, "/api/sessions/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if srv.Sessions.Get(id) != nil {
		t.Error("session still resolvable after delete")
	}
	if sess.Game.State() != game.StateFinished {
		t.Error("game not torn down on delete")
	}

	rec, _ = doJSON(t, mux, http.MethodGet, "/api/sessions/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHistory_EmptyIsAnArray(t *testing.T) {
	_, mux := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func seedResult(t *testing.T, srv *Server, ownerID string, avg float64) results.TestResult {
	t.Helper()
	store, err := srv.History.ForOwner(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("ForOwner() error: %v", err)
	}
	r := results.New(results.TypeColorChange, time.Now())
	r.AverageTime = results.Float(avg)
	return store.Add(context.Background(), r)
}

func ownedRequest(method, path, ownerID string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: "owner_id", Value: ownerID})
	return req
}

func TestHistory_ListAndBest(t *testing.T) {
	srv, mux := newTestServer(t)
	seedResult(t, srv, "owner-1", 400)
	fast := seedResult(t, srv, "owner-1", 200)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, ownedRequest(http.MethodGet, "/api/history/color-change", "owner-1"))
	var ranked []results.TestResult
	if err := json.Unmarshal(rec.Body.Bytes(), &ranked); err != nil {
		t.Fatalf("decoding history list: %v", err)
	}
	if len(ranked) != 2 || ranked[0].ID != fast.ID {
		t.Error("ranked history should lead with the fastest run")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, ownedRequest(http.MethodGet, "/api/history/color-change/best", "owner-1"))
	var best results.TestResult
	if err := json.Unmarshal(rec.Body.Bytes(), &best); err != nil {
		t.Fatalf("decoding best: %v", err)
	}
	if best.ID != fast.ID {
		t.Errorf("best id = %s, want %s", best.ID, fast.ID)
	}
}

func TestHistory_OwnersSeeOnlyTheirOwn(t *testing.T) {
	srv, mux := newTestServer(t)
	seedResult(t, srv, "owner-1", 300)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, ownedRequest(http.MethodGet, "/api/history", "owner-2"))
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("owner-2 history = %q, want empty", got)
	}
}

func TestHistory_BestWithoutResults(t *testing.T) {
	_, mux := newTestServer(t)
	rec, _ := doJSON(t, mux, http.MethodGet, "/api/history/color-change/best", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHistory_UnknownType(t *testing.T) {
	_, mux := newTestServer(t)
	rec, _ := doJSON(t, mux, http.MethodGet, "/api/history/telepathy", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHistory_DeleteAndClear(t *testing.T) {
	srv, mux := newTestServer(t)
	r := seedResult(t, srv, "owner-1", 300)
	seedResult(t, srv, "owner-1", 350)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, ownedRequest(http.MethodDelete, "/api/history/"+r.ID, "owner-1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, ownedRequest(http.MethodDelete, "/api/history", "owner-1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	store, _ := srv.History.ForOwner(context.Background(), "owner-1")
	if store.Len() != 0 {
		t.Errorf("history length = %d, want 0", store.Len())
	}
}

func TestHistory_ExportCSV(t *testing.T) {
	srv, mux := newTestServer(t)
	seedResult(t, srv, "owner-1", 300)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, ownedRequest(http.MethodGet, "/api/history/export.csv", "owner-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	if !strings.Contains(rec.Body.String(), "average_time") {
		t.Error("csv header missing metric columns")
	}
}

func TestDistribution_EmptyPopulation(t *testing.T) {
	_, mux := newTestServer(t)
	rec, body := doJSON(t, mux, http.MethodGet, "/api/distribution/color-change", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body["metric"] != "averageTime" {
		t.Errorf("metric = %v, want averageTime", body["metric"])
	}
}

func TestHealth(t *testing.T) {
	_, mux := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q, want ok status", rec.Body.String())
	}
}
