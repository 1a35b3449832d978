package server

import (
	"net/http"
	"time"

	"github.com/karwaan/tripsync/internal/realtime"

	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// TripEventsHandler streams membership-change ticks for a trip over a
// websocket. Clients that receive a tick re-fetch the member list; the
// frames carry no payload beyond the event name.
type TripEventsHandler struct {
	bridge   realtime.Bridge
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewTripEventsHandler(bridge realtime.Bridge, logger *zap.Logger) *TripEventsHandler {
	return &TripEventsHandler{
		bridge: bridge,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *TripEventsHandler) HandleTripEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID := chi.URLParam(r, "id")

	subscription, err := h.bridge.Subscribe(ctx, tripID)
	if err != nil {
		h.logger.Error("trip events subscription failed",
			zap.String("trip_id", tripID), zap.Error(err))
		http.Error(w, "subscription failed", http.StatusBadGateway)
		return
	}
	defer subscription.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	// Reads are drained only to surface the peer closing the connection.
	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pings := time.NewTicker(wsPingInterval)
	defer pings.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readClosed:
			return
		case <-pings.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case _, open := <-subscription.Changes():
			if !open {
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(map[string]string{"event": "members_changed"}); err != nil {
				h.logger.Debug("trip events write failed",
					zap.String("trip_id", tripID), zap.Error(err))
				return
			}
		}
	}
}
