package ws

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Inbound event kinds.
const (
	EventSendMessage  = "SendMessage"
	EventWebRtcSignal = "WebRtcSignal"
	EventSystemEvent  = "SystemEvent"
)

// Outbound event kinds.
const (
	EventMessage        = "Message"
	EventMessageDeleted = "MessageDeleted"
	EventError          = "Error"
)

// Envelope is the tagged wire frame: the event kind decides the data shape.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is the data of a SendMessage envelope.
type SendMessagePayload struct {
	ConversationID        uuid.UUID  `json:"conversation_id"`
	Content               string     `json:"content"`
	MessageType           string     `json:"message_type"`
	ReplyToID             *uuid.UUID `json:"reply_to_id,omitempty"`
	SelfDestructInSeconds *int64     `json:"self_destruct_in_seconds,omitempty"`
}

// WebRtcSignal is the data of a WebRtcSignal envelope. SenderUserID is
// filled in server-side before the relay; it is never trusted from the
// client.
type WebRtcSignal struct {
	Type          string    `json:"type"`
	SDP           *string   `json:"sdp,omitempty"`
	Candidate     *string   `json:"candidate,omitempty"`
	SDPMid        *string   `json:"sdp_mid,omitempty"`
	SDPMLineIndex *int      `json:"sdp_m_line_index,omitempty"`
	TargetUserID  uuid.UUID `json:"target_user_id"`
	SenderUserID  uuid.UUID `json:"sender_user_id,omitempty"`
}

func validSignalType(t string) bool {
	switch t {
	case "offer", "answer", "candidate", "bye":
		return true
	default:
		return false
	}
}

// ErrorPayload is the data of an Error envelope.
type ErrorPayload struct {
	Error string `json:"error"`
}

// MarshalEnvelope serializes an outbound frame.
func MarshalEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
