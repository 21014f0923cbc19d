package transcript

import (
	"encoding/json"
	"fmt"

	"sessiontail/internal/textutil"
)

// serializedPreviewLen bounds the fallback preview for tools without a
// dedicated rule.
const serializedPreviewLen = 200

// toolInput holds the fields the preview rules care about. Anything the
// tool's input does not carry decodes to its zero value.
type toolInput struct {
	Command     string `json:"command"`
	FilePath    string `json:"file_path"`
	Pattern     string `json:"pattern"`
	Content     string `json:"content"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// toolPreview renders a tool invocation's structured input as a short
// human-readable string, keyed by tool name. Missing fields degrade to
// empty strings or the documented defaults, never to an error.
func toolPreview(name string, input json.RawMessage) string {
	var fields toolInput
	_ = json.Unmarshal(input, &fields)

	switch name {
	case "Bash":
		return fields.Command
	case "Read", "Glob":
		if fields.FilePath != "" {
			return fields.FilePath
		}
		return fields.Pattern
	case "Write":
		return fmt.Sprintf("%s (%d chars)", fields.FilePath, len(fields.Content))
	case "Edit":
		return fields.FilePath
	case "Grep":
		path := fields.Path
		if path == "" {
			path = "."
		}
		return fmt.Sprintf("/%s/ in %s", fields.Pattern, path)
	case "Task":
		return fields.Description
	default:
		return textutil.TruncateBytes(compactJSON(input), serializedPreviewLen)
	}
}
