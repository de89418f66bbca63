package server

// MessageType represents a WebSocket message type
type MessageType string

const (
	// Client to server messages
	MessageTypeEquity      MessageType = "equity"
	MessageTypeListPresets MessageType = "list_presets"

	// Server to client messages
	MessageTypeEquityResult MessageType = "equity_result"
	MessageTypePresetList   MessageType = "preset_list"
	MessageTypeError        MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
