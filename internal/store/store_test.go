package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sampleRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "proj-a", "older.jsonl"),
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"content":"start of older"}}`+"\n"+
			`{"type":"assistant","timestamp":"2025-06-01T10:00:05Z","message":{"content":[{"type":"text","text":"ok"}]}}`+"\n")
	writeFile(t, filepath.Join(root, "proj-b", "newer.jsonl"),
		`{"type":"user","timestamp":"2025-07-01T09:00:00Z","message":{"content":"start of newer"}}`+"\n")
	writeFile(t, filepath.Join(root, "proj-b", "notes.txt"), "not a transcript\n")
	return root
}

func TestListTranscripts(t *testing.T) {
	root := sampleRoot(t)

	res, err := ListTranscripts(root, ListOptions{})
	if err != nil {
		t.Fatalf("ListTranscripts returned error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", res.Warnings)
	}
	if len(res.Summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(res.Summaries))
	}

	// Newest first.
	if res.Summaries[0].SessionID != "newer" || res.Summaries[1].SessionID != "older" {
		t.Fatalf("unexpected order: %s, %s",
			res.Summaries[0].SessionID, res.Summaries[1].SessionID)
	}

	older := res.Summaries[1]
	if older.EventCount != 2 {
		t.Fatalf("unexpected event count: %d", older.EventCount)
	}
	if older.FirstUser != "start of older" {
		t.Fatalf("unexpected first user text: %q", older.FirstUser)
	}
	if older.FirstSeen >= older.LastSeen {
		t.Fatalf("expected first < last, got %v >= %v", older.FirstSeen, older.LastSeen)
	}
	if older.ProjectPath != filepath.Join(root, "proj-a") {
		t.Fatalf("unexpected project path: %s", older.ProjectPath)
	}
}

func TestListTranscriptsLimit(t *testing.T) {
	root := sampleRoot(t)

	res, err := ListTranscripts(root, ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("ListTranscripts returned error: %v", err)
	}
	if len(res.Summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(res.Summaries))
	}
	if res.Summaries[0].SessionID != "newer" {
		t.Fatalf("expected newest kept, got %s", res.Summaries[0].SessionID)
	}
}

func TestListTranscriptsMaxSummary(t *testing.T) {
	root := sampleRoot(t)

	res, err := ListTranscripts(root, ListOptions{MaxSummary: 8})
	if err != nil {
		t.Fatalf("ListTranscripts returned error: %v", err)
	}
	for _, s := range res.Summaries {
		if len(s.FirstUser) > 8 {
			t.Fatalf("summary exceeds limit: %q", s.FirstUser)
		}
	}
}

func TestListTranscriptsEmptyRoot(t *testing.T) {
	if _, err := ListTranscripts("", ListOptions{}); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestFindTranscriptPath(t *testing.T) {
	root := sampleRoot(t)

	path, err := FindTranscriptPath(root, "older")
	if err != nil {
		t.Fatalf("FindTranscriptPath returned error: %v", err)
	}
	if path != filepath.Join(root, "proj-a", "older.jsonl") {
		t.Fatalf("unexpected path: %s", path)
	}

	if _, err := FindTranscriptPath(root, "missing"); err == nil {
		t.Fatal("expected error for unknown session id")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")

	c, err := LoadCursor(path)
	if err != nil {
		t.Fatalf("LoadCursor on missing file returned error: %v", err)
	}
	if got := c.Offset("/tmp/a.jsonl"); got != 0 {
		t.Fatalf("expected zero offset for unseen transcript, got %d", got)
	}

	c.Set("/tmp/a.jsonl", 1234)
	c.Set("/tmp/b.jsonl", 99)
	if err := c.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reloaded, err := LoadCursor(path)
	if err != nil {
		t.Fatalf("LoadCursor returned error: %v", err)
	}
	if got := reloaded.Offset("/tmp/a.jsonl"); got != 1234 {
		t.Fatalf("unexpected offset after reload: %d", got)
	}
	if got := reloaded.Offset("/tmp/b.jsonl"); got != 99 {
		t.Fatalf("unexpected offset after reload: %d", got)
	}
}

func TestCursorCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")
	writeFile(t, path, "not json")

	if _, err := LoadCursor(path); err == nil {
		t.Fatal("expected error for corrupt cursor file")
	}
}
