package ws

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/forgehq/forge/internal/domain"
)

// Command is a validated inbound message. Data holds the raw data object
// for commands that take free-form payloads; Content is populated for
// user_message only, already trimmed.
type Command struct {
	Type    string
	Data    []byte
	Content string
}

// ProtocolError is a typed validation failure carrying the wire error
// code. Transport-shape and payload-shape failures use different codes so
// the controller can always reply precisely.
type ProtocolError struct {
	Code    string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var commandNames = map[string]bool{
	domain.CommandStartGeneration: true,
	domain.CommandStopGeneration:  true,
	domain.CommandUserMessage:     true,
	domain.CommandGetState:        true,
	domain.CommandGetPreviewURL:   true,
}

// ValidateMessage decodes a raw inbound payload into a typed command.
// Validation is two-tier: envelope shape first ({type, data} object),
// then per-command payload shape.
func ValidateMessage(payload []byte) (*Command, *ProtocolError) {
	if !utf8.Valid(payload) {
		return nil, &ProtocolError{
			Code:    domain.ErrCodeInvalidMessage,
			Message: "message is not valid UTF-8",
		}
	}

	if !gjson.ValidBytes(payload) {
		return nil, &ProtocolError{
			Code:    domain.ErrCodeInvalidMessage,
			Message: "message is not valid JSON",
		}
	}

	parsed := gjson.ParseBytes(payload)
	if !parsed.IsObject() {
		return nil, &ProtocolError{
			Code:    domain.ErrCodeInvalidMessage,
			Message: "message must be a JSON object",
		}
	}

	msgType := parsed.Get("type")
	if msgType.Type != gjson.String || !commandNames[msgType.String()] {
		return nil, &ProtocolError{
			Code:    domain.ErrCodeUnknownMessageType,
			Message: fmt.Sprintf("unknown message type: %q", msgType.String()),
		}
	}

	data := parsed.Get("data")
	dataRaw := []byte("{}")
	if data.Exists() {
		if !data.IsObject() {
			return nil, &ProtocolError{
				Code:    domain.ErrCodeInvalidMessageData,
				Message: "data must be an object",
			}
		}
		dataRaw = []byte(data.Raw)
	}

	cmd := &Command{
		Type: msgType.String(),
		Data: dataRaw,
	}

	if cmd.Type == domain.CommandUserMessage {
		content := data.Get("content")
		if content.Type != gjson.String {
			return nil, &ProtocolError{
				Code:    domain.ErrCodeInvalidMessageData,
				Message: "user_message requires a content string",
			}
		}
		trimmed := strings.TrimSpace(content.String())
		if trimmed == "" {
			return nil, &ProtocolError{
				Code:    domain.ErrCodeInvalidMessageData,
				Message: "user_message content cannot be empty",
			}
		}
		cmd.Content = trimmed
	}

	return cmd, nil
}
