package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sessiontail/internal/isotime"
	"sessiontail/internal/textutil"
)

// rawEntry is the loosely-shaped top of a transcript record. Everything
// below the type tag stays raw until the tag tells us what to expect.
type rawEntry struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
	Data      json.RawMessage `json:"data"`
}

type messagePayload struct {
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type progressData struct {
	Type     string          `json:"type"`
	ToolName string          `json:"tool_name"`
	Output   json.RawMessage `json:"output"`
}

var emptyObject = json.RawMessage("{}")

// Parse scans the transcript at path starting from the byte offset
// sinceOffset and returns the ordered events found plus the offset to
// resume from on the next call. Passing the returned offset back
// reprocesses nothing and skips no complete line, provided the file is
// only appended to between calls.
//
// Blank lines, lines that fail to decode, and records of unknown shape
// contribute no events and are never errors. Only open, seek, and read
// failures are fatal; when one occurs no events are returned.
func Parse(path string, sinceOffset int64, previewLen int) ([]Event, int64, error) {
	if previewLen <= 0 {
		previewLen = DefaultPreviewLen
	}
	sessionID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	projectPath := filepath.Dir(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := file.Seek(sinceOffset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek transcript: %w", err)
	}

	reader := bufio.NewReader(file)
	offset := sinceOffset
	var events []Event

	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, 0, fmt.Errorf("read transcript: %w", err)
		}
		offset += int64(len(line))

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			events = append(events, parseLine(trimmed, sessionID, projectPath, previewLen)...)
		}

		if err == io.EOF {
			break
		}
	}

	return events, offset, nil
}

// parseLine classifies one record and emits its events. A record of
// unrecognized type, or one whose payload does not have the expected
// shape, yields nothing.
func parseLine(line, sessionID, projectPath string, previewLen int) []Event {
	var entry rawEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return nil
	}

	var ts float64
	if entry.Timestamp != "" {
		ts, _ = isotime.EpochSeconds(entry.Timestamp)
	}

	base := Event{
		Timestamp:   ts,
		SessionID:   sessionID,
		ProjectPath: projectPath,
	}

	switch entry.Type {
	case "user":
		content := extractContent(entry.Message)
		if strings.TrimSpace(content) == "" {
			return nil
		}
		ev := base
		ev.MessageType = MessageTypeUser
		ev.ContentPreview = textutil.TruncateBytes(content, previewLen)
		return []Event{ev}

	case "assistant":
		blocks, ok := messageBlocks(entry.Message)
		if !ok {
			return nil
		}
		var events []Event
		for _, block := range blocks {
			switch block.Type {
			case "text":
				ev := base
				ev.MessageType = MessageTypeAssistantText
				ev.ContentPreview = textutil.TruncateBytes(block.Text, previewLen)
				events = append(events, ev)
			case "tool_use":
				input := block.Input
				if len(input) == 0 {
					input = emptyObject
				}
				ev := base
				ev.MessageType = ToolUseType(block.Name)
				ev.ContentPreview = textutil.TruncateBytes(toolPreview(block.Name, input), previewLen)
				events = append(events, ev)
			}
		}
		return events

	case "progress":
		if len(entry.Data) == 0 {
			return nil
		}
		var data progressData
		if err := json.Unmarshal(entry.Data, &data); err != nil {
			return nil
		}
		if data.Type != "tool_result" {
			return nil
		}
		ev := base
		ev.MessageType = ToolResultType(data.ToolName)
		ev.ContentPreview = textutil.TruncateBytes(stringify(data.Output), previewLen)
		return []Event{ev}
	}

	return nil
}

// extractContent flattens a message's content field into plain text: a
// string content is returned unchanged, an array keeps the text blocks
// joined by single spaces, and any other shape yields "".
func extractContent(message json.RawMessage) string {
	if len(message) == 0 {
		return ""
	}
	var msg messagePayload
	if err := json.Unmarshal(message, &msg); err != nil {
		return ""
	}
	if len(msg.Content) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(msg.Content, &asString); err == nil {
		return asString
	}

	var blocks []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return ""
	}
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Type == "text" && block.Text != nil {
			parts = append(parts, *block.Text)
		}
	}
	return strings.Join(parts, " ")
}

// messageBlocks returns the content blocks of an assistant message. The
// second return value is false when the message or its content is not the
// expected array shape.
func messageBlocks(message json.RawMessage) ([]contentBlock, bool) {
	if len(message) == 0 {
		return nil, false
	}
	var msg messagePayload
	if err := json.Unmarshal(message, &msg); err != nil {
		return nil, false
	}
	if len(msg.Content) == 0 {
		return nil, false
	}
	var blocks []contentBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return nil, false
	}
	return blocks, true
}

// stringify renders a tool result output: strings verbatim, anything else
// as compact JSON.
func stringify(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	return compactJSON(raw)
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
