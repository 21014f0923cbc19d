// Package store provides transcript enumeration under a root directory and
// caller-side persistence of resume offsets.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"sessiontail/internal/textutil"
	"sessiontail/internal/transcript"
)

var errStop = errors.New("stop iteration")

// Summary describes one transcript file for listings.
type Summary struct {
	SessionID   string  `json:"session_id"`
	Path        string  `json:"path"`
	ProjectPath string  `json:"project_path"`
	FirstSeen   float64 `json:"first_seen"`
	LastSeen    float64 `json:"last_seen"`
	EventCount  int     `json:"event_count"`
	FirstUser   string  `json:"first_user"`
}

// ListOptions controls how transcripts are enumerated.
type ListOptions struct {
	Limit      int
	MaxSummary int
}

// ListResult contains transcript summaries and non-fatal warnings.
type ListResult struct {
	Summaries []Summary
	Warnings  []error
}

// ListTranscripts enumerates .jsonl transcripts under root, newest first.
// Files that cannot be read become warnings, not errors.
func ListTranscripts(root string, opts ListOptions) (ListResult, error) {
	if root == "" {
		return ListResult{}, errors.New("root directory is required")
	}

	var result ListResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}

		events, _, err := transcript.Parse(path, 0, transcript.DefaultPreviewLen)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("parse %s: %w", path, err))
			return nil
		}

		result.Summaries = append(result.Summaries, summarize(path, events, opts.MaxSummary))
		return nil
	})
	if err != nil {
		return result, err
	}

	sort.Slice(result.Summaries, func(i, j int) bool {
		return result.Summaries[i].FirstSeen > result.Summaries[j].FirstSeen
	})

	if opts.Limit > 0 && len(result.Summaries) > opts.Limit {
		result.Summaries = result.Summaries[:opts.Limit]
	}

	return result, nil
}

func summarize(path string, events []transcript.Event, maxSummary int) Summary {
	s := Summary{
		SessionID:   sessionID(path),
		Path:        path,
		ProjectPath: filepath.Dir(path),
		EventCount:  len(events),
	}

	for _, ev := range events {
		if ev.Timestamp != 0 {
			if s.FirstSeen == 0 || ev.Timestamp < s.FirstSeen {
				s.FirstSeen = ev.Timestamp
			}
			if ev.Timestamp > s.LastSeen {
				s.LastSeen = ev.Timestamp
			}
		}
		if s.FirstUser == "" && ev.MessageType == transcript.MessageTypeUser {
			s.FirstUser = collapseWhitespace(ev.ContentPreview)
		}
	}

	if maxSummary > 0 {
		s.FirstUser = textutil.TruncateBytes(s.FirstUser, maxSummary)
	}
	return s
}

// FindTranscriptPath locates the transcript whose session id matches id.
// Session ids are a pure function of the file name, so no contents are read.
func FindTranscriptPath(root, id string) (string, error) {
	if root == "" {
		return "", errors.New("root directory is required")
	}
	if id == "" {
		return "", errors.New("session id is required")
	}

	var matched string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		if sessionID(path) == id {
			matched = path
			return errStop
		}
		return nil
	})

	if matched != "" {
		return matched, nil
	}
	if err != nil && !errors.Is(err, errStop) {
		return "", err
	}
	return "", fmt.Errorf("session id %s not found under %s", id, root)
}

func sessionID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
