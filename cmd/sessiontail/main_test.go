package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample-session.jsonl")
	lines := strings.Join([]string{
		`{"type":"user","timestamp":"2025-03-01T10:00:00Z","message":{"content":"hello"}}`,
		`{"type":"assistant","timestamp":"2025-03-01T10:00:02Z","message":{"content":[{"type":"text","text":"hi"},{"type":"tool_use","name":"Bash","input":{"command":"pwd"}}]}}`,
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestEventsCommandJSONL(t *testing.T) {
	path := writeSample(t, t.TempDir())

	cmd := newEventsCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{path, "--format", "jsonl"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("events command failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 events, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"message_type":"user"`) {
		t.Fatalf("unexpected first event: %s", lines[0])
	}
	if !strings.Contains(lines[2], `"tool_use:Bash"`) {
		t.Fatalf("unexpected third event: %s", lines[2])
	}
}

func TestEventsCommandShowOffset(t *testing.T) {
	path := writeSample(t, t.TempDir())
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat sample: %v", err)
	}

	cmd := newEventsCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{path, "--format", "plain", "--no-header", "--show-offset"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("events command failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "next_offset\t") {
		t.Fatalf("expected final offset line, got %q", last)
	}
	got := mustParseInt(t, strings.TrimPrefix(last, "next_offset\t"))
	if got != info.Size() {
		t.Fatalf("offset %d does not match file size %d", got, info.Size())
	}
}

func mustParseInt(t *testing.T, s string) int64 {
	t.Helper()
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			t.Fatalf("not a number: %q", s)
		}
		n = n*10 + int64(r-'0')
	}
	return n
}

func TestTailCommandAdvancesCursor(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir)
	cursorPath := filepath.Join(dir, "cursor.json")

	run := func() string {
		cmd := newTailCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{path, "--cursor", cursorPath, "--format", "jsonl"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("tail command failed: %v", err)
		}
		return buf.String()
	}

	first := run()
	if got := len(strings.Split(strings.TrimSpace(first), "\n")); got != 3 {
		t.Fatalf("expected 3 events on first run, got %d:\n%s", got, first)
	}

	second := run()
	if strings.TrimSpace(second) != "" {
		t.Fatalf("expected no events on second run, got:\n%s", second)
	}

	appended := `{"type":"user","timestamp":"2025-03-01T10:05:00Z","message":{"content":"more"}}` + "\n"
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	if _, err := f.WriteString(appended); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	third := run()
	lines := strings.Split(strings.TrimSpace(third), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], `"more"`) {
		t.Fatalf("expected only the appended event, got:\n%s", third)
	}
}

func TestConnsCommandPlain(t *testing.T) {
	listing := "Safari 1234 andy 45u IPv4 0x1 0t0 TCP 10.0.0.2:50000->1.2.3.4:443 (ESTABLISHED)\n"

	cmd := newConnsCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(listing))
	cmd.SetArgs([]string{"--format", "plain", "--no-header"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("conns command failed: %v", err)
	}

	if got := buf.String(); got != "Safari\t1.2.3.4\t443\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestBodytextCommand(t *testing.T) {
	dir := t.TempDir()
	blobPath := filepath.Join(dir, "body.bin")
	blob := append([]byte("streamtypedNSString"), 0x01, '+', 5)
	blob = append(blob, []byte("hello-and-more")...)
	if err := os.WriteFile(blobPath, blob, 0o644); err != nil {
		t.Fatalf("write blob: %v", err)
	}

	cmd := newBodytextCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{blobPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("bodytext command failed: %v", err)
	}

	if got := buf.String(); got != "hello\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestResolveTranscriptPath(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir)

	got, err := resolveTranscriptPath(path, dir)
	if err != nil {
		t.Fatalf("direct path resolution failed: %v", err)
	}
	if got != path {
		t.Fatalf("unexpected path: %s", got)
	}

	got, err = resolveTranscriptPath("sample-session", dir)
	if err != nil {
		t.Fatalf("session id resolution failed: %v", err)
	}
	if got != path {
		t.Fatalf("unexpected path for id: %s", got)
	}

	if _, err := resolveTranscriptPath("", dir); err == nil {
		t.Fatal("expected error for empty identifier")
	}
	if _, err := resolveTranscriptPath("unknown-id", dir); err == nil {
		t.Fatal("expected error for unknown session id")
	}
}
