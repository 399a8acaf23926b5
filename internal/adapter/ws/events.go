package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// BroadcastEvent implements broadcast.Broadcaster. Nothing is marshalled
// while no client is connected.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	if h.ConnectionCount() == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}
	h.Broadcast(ctx, Message{Type: eventType, Payload: data})
}
