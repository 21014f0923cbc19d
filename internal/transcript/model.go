// Package transcript turns line-oriented conversational logs (one JSON
// record per line) into a normalized, chronologically ordered stream of
// typed events suitable for monitoring consumption.
package transcript

// DefaultPreviewLen bounds event previews when the caller does not choose
// a limit.
const DefaultPreviewLen = 500

// Message type tags for events. Tool events carry the tool name as a
// suffix, see ToolUseType and ToolResultType.
const (
	MessageTypeUser          = "user"
	MessageTypeAssistantText = "assistant_text"
)

// ToolUseType returns the message type tag for a tool invocation.
func ToolUseType(tool string) string { return "tool_use:" + tool }

// ToolResultType returns the message type tag for a tool result.
func ToolResultType(tool string) string { return "tool_result:" + tool }

// Event is one normalized record derived from a transcript line or one of
// its content blocks. Timestamp is Unix epoch seconds; 0 is the sentinel
// for "missing or unparseable", not a real instant, and callers wanting a
// wall-clock fallback must substitute it themselves.
type Event struct {
	Timestamp      float64 `json:"timestamp"`
	SessionID      string  `json:"session_id"`
	MessageType    string  `json:"message_type"`
	ContentPreview string  `json:"content_preview"`
	ProjectPath    string  `json:"project_path"`
}
