package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Cursor persists per-transcript resume offsets between runs. The parse
// core never stores offsets itself; this ledger belongs to the caller, and
// feeding a stored offset back into transcript.Parse continues exactly
// where the previous run stopped.
type Cursor struct {
	path    string
	offsets map[string]int64
}

// LoadCursor reads the cursor file at path. A missing file yields an empty
// cursor; an unreadable or corrupt one is an error.
func LoadCursor(path string) (*Cursor, error) {
	c := &Cursor{path: path, offsets: make(map[string]int64)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}
	if err := json.Unmarshal(data, &c.offsets); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	return c, nil
}

// Offset returns the stored resume offset for the transcript, or 0 when
// the transcript has not been seen before.
func (c *Cursor) Offset(transcriptPath string) int64 {
	return c.offsets[transcriptPath]
}

// Set records the next resume offset for the transcript.
func (c *Cursor) Set(transcriptPath string, offset int64) {
	c.offsets[transcriptPath] = offset
}

// Save writes the cursor back to its file.
func (c *Cursor) Save() error {
	data, err := json.MarshalIndent(c.offsets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cursor: %w", err)
	}
	if err := os.WriteFile(c.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return nil
}
