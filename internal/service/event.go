package service

import (
	"encoding/json"

	ws "backend/internal/websocket"
)

// EngineEvent is the websocket payload broadcast after a successful mutating
// operation. Engine state never depends on delivery.
type EngineEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func broadcastEvent(hub *ws.Hub, event string, data interface{}) {
	if hub == nil {
		return
	}
	payload, err := json.Marshal(EngineEvent{Event: event, Data: data})
	if err != nil {
		return
	}
	hub.Broadcast <- payload
}
