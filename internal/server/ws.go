package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/flowsmith/flowsmith/pkg/errors"
)

// WebSocket timing limits.
const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// upgrader upgrades job progress connections. Origin checks are left to
// the deployment's reverse proxy.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleJobWS streams job progress events until the job finishes or the
// client disconnects.
func (s *Server) handleJobWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := s.jobs.get(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeJobNotFound, "job not found: %s", id))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debugf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Subscribe before the initial snapshot so no event is lost in between.
	events, cancel := job.subscribe()
	defer cancel()

	if err := writeWS(conn, job.snapshot()); err != nil {
		return
	}
	if job.done() {
		return
	}

	// Reader goroutine: detect client disconnect.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, open := <-events:
			if !open {
				// Job finished; send the final snapshot and close cleanly.
				_ = writeWS(conn, job.snapshot())
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteTimeout))
				return
			}
			if err := writeWS(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case <-clientGone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// writeWS sends one JSON message with a write deadline.
func writeWS(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(v)
}
