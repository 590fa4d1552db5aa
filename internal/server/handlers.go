package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"reactionduel/internal/db"
	"reactionduel/internal/duel"
	"reactionduel/internal/match"
	"reactionduel/internal/metrics"
	"reactionduel/internal/rooms"
	"reactionduel/internal/wshub"
)

type Server struct {
	Rooms          *rooms.Store
	DB             *db.DB // nil if no database configured
	Metrics        *metrics.Metrics
	Registry       *prometheus.Registry
	AllowedOrigins []string
}

// getRoom resolves the room named by the room query parameter, or the
// default room when it is absent.
func (s *Server) getRoom(r *http.Request) *rooms.Room {
	return s.Rooms.Get(r.URL.Query().Get("room"))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(r)
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.AllowedOrigins),
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	connID := uuid.NewString()
	logger := log.With().Str("room", room.Code).Str("conn_id", connID).Logger()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := wshub.NewClient(connID, conn)
	room.Hub.Register(client)
	s.Metrics.ConnOpened()
	logger.Debug().Msg("websocket connected")
	go client.WritePump(ctx)

	defer func() {
		room.Controller.Disconnect(connID)
		room.Hub.Unregister(connID)
		s.Metrics.ConnClosed()
		logger.Debug().Msg("websocket disconnected")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		msg, ok := wshub.ParseClientMessage(data)
		if !ok {
			s.Metrics.Rejected(duel.Code(duel.ErrMalformedIntent))
			room.Hub.Send(connID, wshub.ErrorMessage(duel.ErrMalformedIntent))
			continue
		}
		intent := match.Intent{Kind: msg.Type, ConnID: connID, Name: msg.Name, PlayerID: msg.PlayerID}
		if !room.Controller.Submit(intent) {
			return
		}
	}
}

// originPatterns turns configured origins into websocket host patterns.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}

type healthResponse struct {
	Status  string     `json:"status"`
	Players int        `json:"players"`
	Phase   duel.Phase `json:"phase"`
	Error   string     `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	view := s.Rooms.Get(rooms.DefaultCode).Controller.View()
	resp := healthResponse{Status: "ok", Players: len(view.Players), Phase: view.Phase}
	if s.DB != nil {
		if err := s.DB.Ping(r.Context()); err != nil {
			resp.Status = "db_error"
			resp.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(r)
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, room.Controller.View())
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.Rooms.Create()
	if err != nil {
		log.Error().Err(err).Msg("create room")
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	log.Info().Str("room", room.Code).Msg("created room")
	writeJSON(w, http.StatusCreated, map[string]string{"code": room.Code})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(r)
	if room == nil {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	msgChan := room.Broadcaster.Subscribe()
	defer room.Broadcaster.Unsubscribe(msgChan)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			for _, line := range strings.Split(msg.Msg, "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
