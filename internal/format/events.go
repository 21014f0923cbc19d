// Package format renders transcript events, listings, and connection sets
// for terminal and machine consumption.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sessiontail/internal/netscan"
	"sessiontail/internal/store"
	"sessiontail/internal/transcript"
)

// WriteEvents writes events to w in the requested format.
func WriteEvents(w io.Writer, events []transcript.Event, includeHeader bool, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeEventsTable(w, events, includeHeader)
	case "plain":
		return writeEventsPlain(w, events, includeHeader)
	case "json":
		return writeJSON(w, events)
	case "jsonl":
		enc := json.NewEncoder(w)
		for _, ev := range events {
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeEventsPlain(w io.Writer, events []transcript.Event, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "timestamp\tsession_id\tmessage_type\tcontent_preview"); err != nil {
			return err
		}
	}
	for _, ev := range events {
		line := fmt.Sprintf("%s\t%s\t%s\t%s",
			formatTimestamp(ev.Timestamp),
			ev.SessionID,
			ev.MessageType,
			escapeNewlines(ev.ContentPreview),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeEventsTable(w io.Writer, events []transcript.Event, includeHeader bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 80},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Timestamp", "Session", "Type", "Preview"})
	}

	for _, ev := range events {
		tw.AppendRow(table.Row{
			formatTimestamp(ev.Timestamp),
			ev.SessionID,
			ev.MessageType,
			escapeNewlines(ev.ContentPreview),
		})
	}

	if len(events) == 0 {
		tw.AppendRow(table.Row{"-", "(no events)", "-", "-"})
	}

	_ = tw.Render()
	return nil
}

// WriteSummaries writes transcript summaries to w in the requested format.
func WriteSummaries(w io.Writer, items []store.Summary, includeHeader bool, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeSummariesTable(w, items, includeHeader)
	case "plain":
		return writeSummariesPlain(w, items, includeHeader)
	case "json":
		return writeJSON(w, items)
	case "jsonl":
		enc := json.NewEncoder(w)
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSummariesPlain(w io.Writer, items []store.Summary, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "first_seen\tsession_id\tproject_path\tevent_count\tfirst_user"); err != nil {
			return err
		}
	}
	for _, item := range items {
		line := fmt.Sprintf("%s\t%s\t%s\t%d\t%s",
			formatTimestamp(item.FirstSeen),
			item.SessionID,
			item.ProjectPath,
			item.EventCount,
			escapeNewlines(item.FirstUser),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeSummariesTable(w io.Writer, items []store.Summary, includeHeader bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 80},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"First Seen", "Session", "Project", "Events", "First Message"})
	}

	for _, item := range items {
		tw.AppendRow(table.Row{
			formatTimestamp(item.FirstSeen),
			item.SessionID,
			item.ProjectPath,
			item.EventCount,
			escapeNewlines(item.FirstUser),
		})
	}

	if len(items) == 0 {
		tw.AppendRow(table.Row{"-", "(no transcripts)", "-", 0, "-"})
	}

	_ = tw.Render()
	return nil
}

// WriteConnections writes an established-connection set to w.
func WriteConnections(w io.Writer, conns []netscan.Connection, includeHeader bool, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleRounded)
		if includeHeader {
			tw.AppendHeader(table.Row{"Process", "Remote Address", "Port"})
		}
		for _, conn := range conns {
			tw.AppendRow(table.Row{conn.Process, conn.Addr, conn.Port})
		}
		if len(conns) == 0 {
			tw.AppendRow(table.Row{"(no connections)", "-", "-"})
		}
		_ = tw.Render()
		return nil
	case "plain":
		if includeHeader {
			if _, err := fmt.Fprintln(w, "process\taddr\tport"); err != nil {
				return err
			}
		}
		for _, conn := range conns {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%d\n", conn.Process, conn.Addr, conn.Port); err != nil {
				return err
			}
		}
		return nil
	case "json":
		return writeJSON(w, conns)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatTimestamp renders epoch seconds for display. The zero sentinel
// means the record carried no usable timestamp.
func formatTimestamp(ts float64) string {
	if ts == 0 {
		return "-"
	}
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC().Format(time.RFC3339)
}

func escapeNewlines(text string) string {
	return strings.ReplaceAll(text, "\n", "\\n")
}
