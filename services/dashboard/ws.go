package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/codes"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// cross-origin policy is enforced by the cors middleware on the
	// http routes; the socket accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// socketMessage is one frame of the chat stream protocol.
type socketMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

const socketWriteTimeout = time.Second * 10

// handleChatSocket upgrades to a websocket, reads {question} frames and
// streams each answer back as token/done/error frames.
func (s *Service) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ChatSocket")
	defer span.End()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	defer conn.Close()

	send := func(msg socketMessage) error {
		conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		return conn.WriteJSON(msg)
	}

	for {
		var req struct {
			Question string `json:"question"`
			Site     string `json:"site"`
		}
		err := conn.ReadJSON(&req)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("chat socket closed unexpectedly", "err", err)
			}
			return
		}
		if req.Question == "" {
			err = send(socketMessage{Type: "error", Error: "question must not be empty"})
			if err != nil {
				return
			}
			continue
		}
		backend, ok := s.chatBackend(req.Site)
		if !ok {
			err = send(socketMessage{Type: "error", Error: "unknown site: " + req.Site})
			if err != nil {
				return
			}
			continue
		}

		stream, err := backend.AskStream(ctx, req.Question)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			err = send(socketMessage{Type: "error", Error: err.Error()})
			if err != nil {
				return
			}
			continue
		}

		failed := false
		for chunk := range stream {
			if chunk.Err != nil {
				span.RecordError(chunk.Err)
				err = send(socketMessage{Type: "error", Error: chunk.Err.Error()})
				if err != nil {
					return
				}
				failed = true
				break
			}
			err = send(socketMessage{Type: "token", Content: chunk.Delta})
			if err != nil {
				return
			}
		}
		if failed {
			continue
		}
		err = send(socketMessage{Type: "done"})
		if err != nil {
			return
		}
	}
}
