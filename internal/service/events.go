package service

import "encoding/json"

// Broadcaster is the slice of the websocket hub the services need for
// pushing operational events to connected staff clients.
type Broadcaster interface {
	GetBroadcast() chan []byte
}

// Event is the JSON payload broadcast on lifecycle changes.
type Event struct {
	Type       string `json:"type"`
	RequestID  string `json:"request_id"`
	BuildingID string `json:"building_id"`
	Status     string `json:"status,omitempty"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

// emit pushes an event without ever blocking the caller: if nobody is
// draining the hub the event is dropped.
func emit(hub Broadcaster, event Event) {
	if hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case hub.GetBroadcast() <- payload:
	default:
	}
}
