package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/lookup"
	"github.com/gorilla/websocket"
)

const (
	flowDevice       = "device"
	flowSubscription = "subscription"

	wsRequestTimeout = 30 * time.Second
	wsWriteTimeout   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsRequest is the first client message of a WebSocket stream.
type wsRequest struct {
	Flow          string            `json:"flow"`
	Devices       string            `json:"devices"`
	Type          string            `json:"type"`
	Keys          string            `json:"keys"`
	ParsedHeaders map[string]string `json:"parsed_headers"`
}

// wsError is sent instead of events when the request is rejected.
type wsError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *API) websocketStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(wsRequestTimeout))
	var req wsRequest
	if err := conn.ReadJSON(&req); err != nil {
		a.logger.Debug().Err(err).Msg("WebSocket stream request not received")
		sendWSError(conn, "invalid_payload", "Invalid JSON payload")
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go watchClose(conn, cancel)

	events, err := a.startWSStream(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, lookup.ErrEmptyInput):
			sendWSError(conn, "empty_input", err.Error())
		default:
			sendWSError(conn, "invalid_flow", err.Error())
		}
		return
	}

	failed := false
	for ev := range events {
		if failed {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			a.logger.Debug().Err(err).Msg("WebSocket write failed, cancelling run")
			failed = true
			cancel()
		}
	}

	if !failed {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(wsWriteTimeout))
	}
}

func (a *API) startWSStream(ctx context.Context, req wsRequest) (<-chan lookup.Event, error) {
	switch req.Flow {
	case flowDevice, "":
		body := deviceBody{Devices: req.Devices, Type: req.Type, ParsedHeaders: req.ParsedHeaders}
		return a.service.StreamDevices(ctx, body.request())
	case flowSubscription:
		body := subscriptionBody{Keys: req.Keys, ParsedHeaders: req.ParsedHeaders}
		return a.service.StreamSubscriptions(ctx, body.request())
	default:
		return nil, errors.New("flow must be device or subscription")
	}
}

// watchClose cancels the run when the client closes the connection. Any
// further client message is ignored.
func watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func sendWSError(conn *websocket.Conn, code, message string) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteJSON(wsError{Type: "error", Code: code, Message: message})
}
