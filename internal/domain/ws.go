package domain

// Inbound command names. The set is closed: anything else is rejected by
// the validator with ErrCodeUnknownMessageType.
const (
	CommandStartGeneration = "start_generation"
	CommandStopGeneration  = "stop_generation"
	CommandUserMessage     = "user_message"
	CommandGetState        = "get_state"
	CommandGetPreviewURL   = "get_preview_url"
)

// Outbound message types.
const (
	MessageAgentConnected = "agent_connected"
	MessageStateUpdate    = "state_update"
	MessagePreviewURL     = "preview_url"
	MessageError          = "error"
)

// Error codes carried in outbound error messages.
const (
	ErrCodeInvalidMessage          = "invalid_message"
	ErrCodeInvalidMessageData      = "invalid_message_data"
	ErrCodeUnknownMessageType      = "unknown_message_type"
	ErrCodeProjectAccessDenied     = "project_access_denied"
	ErrCodeInternalError           = "internal_error"
	ErrCodeGenerationInProgress    = "generation_in_progress"
	ErrCodeGenerationNotInProgress = "generation_not_in_progress"
	ErrCodeNotImplemented          = "not_implemented"
)

// WebSocket close codes. 4xxx are application-defined; 1011 is the
// protocol's internal-error code, used when open itself fails.
const (
	CloseConflict      = 4000
	CloseForbidden     = 4003
	CloseNotFound      = 4004
	CloseInternalError = 1011
)

// UserMessageData is the payload required by the user_message command.
type UserMessageData struct {
	Content string `json:"content"`
}

// AgentConnectedMessage greets the client once open succeeds.
type AgentConnectedMessage struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId"`
}

// StateUpdateMessage is the snapshot broadcast after every successful
// state transition and on get_state.
type StateUpdateMessage struct {
	Type           string   `json:"type"`
	CurrentState   string   `json:"currentState"`
	CurrentPhase   *int64   `json:"currentPhase"`
	TotalPhases    int      `json:"totalPhases"`
	GeneratedFiles []string `json:"generatedFiles"`
	PreviewURL     *string  `json:"previewUrl"`
}

// PreviewURLMessage replies to get_preview_url.
type PreviewURLMessage struct {
	Type       string  `json:"type"`
	PreviewURL *string `json:"previewUrl"`
}

// ErrorMessage reports a failure to the client without closing unless the
// controller also issues a close code.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorMessage builds an outbound error message.
func NewErrorMessage(code, message string) ErrorMessage {
	return ErrorMessage{
		Type:    MessageError,
		Code:    code,
		Message: message,
	}
}
