package events

import (
	"encoding/json"
	"fmt"
)

const (
	EventMessage   = "message"
	EventSubscribe = "subscribe"
)

// Frame is the shape of every message on the live channel, in both
// directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SubscribeData struct {
	Channel string `json:"channel"`
}

type MessageData struct {
	Text string `json:"text"`
}

// Encode builds a frame around data that is already JSON.
func Encode(event string, data []byte) ([]byte, error) {
	if event == "" {
		return nil, fmt.Errorf("frame event is required")
	}
	if len(data) > 0 && !json.Valid(data) {
		return nil, fmt.Errorf("frame %q data is not valid json", event)
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// EncodeValue marshals v and wraps it in a frame.
func EncodeValue(event string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return Encode(event, data)
}

func Decode(raw []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if frame.Event == "" {
		return Frame{}, fmt.Errorf("decode frame: event is required")
	}
	return frame, nil
}
