// Package main provides the sessiontail CLI for turning line-oriented
// conversation transcripts into ordered, typed event streams.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sessiontail/internal/attributed"
	"sessiontail/internal/format"
	"sessiontail/internal/netscan"
	"sessiontail/internal/store"
	"sessiontail/internal/transcript"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "sessiontail",
	Short:   "Tail conversation transcripts into normalized event streams",
	Version: version,
}

func init() {
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newTailCmd())
	rootCmd.AddCommand(newConnsCmd())
	rootCmd.AddCommand(newBodytextCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sessiontail: %v\n", err)
		os.Exit(1)
	}
}

// defaultRoot returns the transcripts directory from the environment or the
// conventional location.
func defaultRoot() string {
	if dir := os.Getenv("SESSIONTAIL_ROOT"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

func defaultCursorPath() string {
	if path := os.Getenv("SESSIONTAIL_CURSOR"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sessiontail", "cursor.json")
}

func newListCmd() *cobra.Command {
	var (
		root         string
		limit        int
		formatFlag   string
		noHeader     bool
		summaryWidth int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcripts in reverse chronological order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if root == "" {
				root = defaultRoot()
			}

			result, err := store.ListTranscripts(root, store.ListOptions{
				Limit:      limit,
				MaxSummary: summaryWidth,
			})
			if err != nil {
				return err
			}

			errs := cmd.ErrOrStderr()
			for _, warn := range result.Warnings {
				fmt.Fprintf(errs, "warning: %v\n", warn) //nolint:errcheck
			}

			return format.WriteSummaries(cmd.OutOrStdout(), result.Summaries, !noHeader, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&root, "root", "", "transcripts directory (env: SESSIONTAIL_ROOT)")
	flags.IntVar(&limit, "limit", 0, "limit number of transcripts returned (0 means no limit)")
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit the header row")
	flags.IntVar(&summaryWidth, "summary-width", 160, "maximum bytes of first-message text per row")

	return cmd
}

func newEventsCmd() *cobra.Command {
	var (
		root         string
		sinceOffset  int64
		previewLen   int
		formatFlag   string
		noHeader     bool
		showOffset   bool
		forceColor   bool
		forceNoColor bool
	)

	cmd := &cobra.Command{
		Use:   "events <session-id-or-path>",
		Short: "Parse a transcript into normalized events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}
			if root == "" {
				root = defaultRoot()
			}

			path, err := resolveTranscriptPath(args[0], root)
			if err != nil {
				return err
			}

			events, finalOffset, err := transcript.Parse(path, sinceOffset, previewLen)
			if err != nil {
				return err
			}

			if err := writeEvents(cmd, events, !noHeader, formatFlag, forceColor, forceNoColor); err != nil {
				return err
			}

			if showOffset {
				fmt.Fprintf(cmd.OutOrStdout(), "next_offset\t%d\n", finalOffset) //nolint:errcheck
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&root, "root", "", "transcripts directory for id resolution (env: SESSIONTAIL_ROOT)")
	flags.Int64Var(&sinceOffset, "since-offset", 0, "byte offset to resume scanning from")
	flags.IntVar(&previewLen, "preview-len", transcript.DefaultPreviewLen, "maximum byte length of each content preview")
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, jsonl, or feed")
	flags.BoolVar(&noHeader, "no-header", false, "omit the header row")
	flags.BoolVar(&showOffset, "show-offset", false, "print the resume offset after the events")
	flags.BoolVar(&forceColor, "color", false, "force-enable ANSI colors even when stdout is not a TTY")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable ANSI colors regardless of terminal detection")

	return cmd
}

func newTailCmd() *cobra.Command {
	var (
		root       string
		cursorPath string
		previewLen int
		formatFlag string
		noHeader   bool
	)

	cmd := &cobra.Command{
		Use:   "tail <session-id-or-path>",
		Short: "Emit events appended since the last run and advance the cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				root = defaultRoot()
			}
			if cursorPath == "" {
				cursorPath = defaultCursorPath()
			}

			path, err := resolveTranscriptPath(args[0], root)
			if err != nil {
				return err
			}

			cursor, err := store.LoadCursor(cursorPath)
			if err != nil {
				return err
			}

			events, finalOffset, err := transcript.Parse(path, cursor.Offset(path), previewLen)
			if err != nil {
				return err
			}

			if err := format.WriteEvents(cmd.OutOrStdout(), events, !noHeader, formatFlag); err != nil {
				return err
			}

			cursor.Set(path, finalOffset)
			if err := os.MkdirAll(filepath.Dir(cursorPath), 0o755); err != nil {
				return fmt.Errorf("create cursor directory: %w", err)
			}
			return cursor.Save()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&root, "root", "", "transcripts directory for id resolution (env: SESSIONTAIL_ROOT)")
	flags.StringVar(&cursorPath, "cursor", "", "cursor file holding resume offsets (env: SESSIONTAIL_CURSOR)")
	flags.IntVar(&previewLen, "preview-len", transcript.DefaultPreviewLen, "maximum byte length of each content preview")
	flags.StringVar(&formatFlag, "format", "jsonl", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit the header row")

	return cmd
}

func newConnsCmd() *cobra.Command {
	var (
		formatFlag string
		noHeader   bool
	)

	cmd := &cobra.Command{
		Use:   "conns [file]",
		Short: "Parse a connection listing into a deduplicated table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read listing: %w", err)
				}
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			conns := netscan.ParseListing(string(data))
			return format.WriteConnections(cmd.OutOrStdout(), conns, !noHeader, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, or json")
	flags.BoolVar(&noHeader, "no-header", false, "omit the header row")

	return cmd
}

func newBodytextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bodytext <file>",
		Short: "Extract the text run from an archived rich-text blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read blob: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), attributed.Text(blob))
			return err
		},
	}
}

// writeEvents dispatches between the plain writers and the terminal feed.
func writeEvents(cmd *cobra.Command, events []transcript.Event, includeHeader bool, formatFlag string, forceColor, forceNoColor bool) error {
	out := cmd.OutOrStdout()
	if strings.ToLower(formatFlag) != "feed" {
		return format.WriteEvents(out, events, includeHeader, formatFlag)
	}

	opts := format.FeedOptions{Width: 80}
	if outFile, ok := out.(*os.File); ok {
		fd := outFile.Fd()
		if isTerminal(fd) {
			opts.Color = true
			if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
				opts.Width = w
			}
		}
	}
	if forceColor {
		opts.Color = true
	}
	if forceNoColor {
		opts.Color = false
	}
	return format.WriteFeed(out, events, opts)
}

func resolveTranscriptPath(arg, root string) (string, error) {
	if arg == "" {
		return "", errors.New("transcript identifier is empty")
	}

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}

	candidate := filepath.Join(root, arg)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, nil
	}

	return store.FindTranscriptPath(root, arg)
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
