package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/coder/websocket"

	"reactiontest/internal/game"
)

// handleSessionWS streams game events to the client and feeds player
// input back into the machine over one websocket.
func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Get(r.PathValue("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] accept: %v\n", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go writePump(ctx, conn, sess.Events)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var in game.Input
		if err := json.Unmarshal(data, &in); err != nil {
			log.Printf("[WS] bad input frame: %v\n", err)
			continue
		}
		if err := sess.Game.Handle(in); err != nil {
			log.Printf("[WS] input rejected: %v\n", err)
		}
	}
}

// writePump drains the session event queue onto the connection. A
// write error just ends the pump; the reader notices on its own.
func writePump(ctx context.Context, conn *websocket.Conn, events chan game.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("[WS] marshal event: %v\n", err)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
