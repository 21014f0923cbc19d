package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"sessiontail/internal/transcript"
)

// FeedOptions controls the chronological feed rendering.
type FeedOptions struct {
	// Width is the wrap column for preview text; 0 means 80.
	Width int
	// Color enables ANSI colors on the header line of each event.
	Color bool
}

const (
	ansiReset      = "\x1b[0m"
	ansiTimestamp  = "\x1b[38;5;245m"
	ansiUser       = "\x1b[38;5;220m"
	ansiAssistant  = "\x1b[38;5;44m"
	ansiToolUse    = "\x1b[38;5;207m"
	ansiToolResult = "\x1b[38;5;141m"
)

// WriteFeed renders events as a chronological feed: one header line per
// event followed by its wrapped, indented preview.
func WriteFeed(w io.Writer, events []transcript.Event, opts FeedOptions) error {
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	for i, ev := range events {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		header := fmt.Sprintf("%s · %s",
			colorize(opts.Color, roleColor(ev.MessageType), ev.MessageType),
			colorize(opts.Color, ansiTimestamp, formatTimestamp(ev.Timestamp)),
		)
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}

		if ev.ContentPreview == "" {
			continue
		}
		body := text.WrapSoft(ev.ContentPreview, width-2)
		for _, line := range strings.Split(body, "\n") {
			if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

func roleColor(messageType string) string {
	switch {
	case messageType == transcript.MessageTypeUser:
		return ansiUser
	case messageType == transcript.MessageTypeAssistantText:
		return ansiAssistant
	case strings.HasPrefix(messageType, "tool_use:"):
		return ansiToolUse
	case strings.HasPrefix(messageType, "tool_result:"):
		return ansiToolResult
	default:
		return ansiTimestamp
	}
}
