package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/avogt/scribe/internal/logging"
	"github.com/avogt/scribe/internal/pipeline"
)

// settleDelay is how long a file must stay unchanged before it counts
// as fully written. Transcription tools write large files in bursts.
const settleDelay = 2 * time.Second

// memoFile is the structured .json inbox format. Plain .txt and .md
// files carry only the transcript text.
type memoFile struct {
	Text            string  `json:"text"`
	RecordingDate   string  `json:"recording_date"`
	Language        string  `json:"language"`
	DurationSeconds float64 `json:"duration_seconds"`
	UserNotes       string  `json:"user_notes"`
}

// ProcessFunc runs one transcript through the pipeline.
type ProcessFunc func(ctx context.Context, sourceFile, text string, opts pipeline.Options) error

// Watcher drains a drop directory of transcript files. Processed files
// move to processed/, failures to failed/, so the inbox only ever holds
// pending work.
type Watcher struct {
	dir     string
	process ProcessFunc
}

func NewWatcher(dir string, process ProcessFunc) *Watcher {
	return &Watcher{dir: dir, process: process}
}

// Run watches until the context is cancelled. Files already present at
// startup are processed first.
func (w *Watcher) Run(ctx context.Context) error {
	for _, sub := range []string{"", "processed", "failed"} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0755); err != nil {
			return fmt.Errorf("failed to create inbox directory: %w", err)
		}
	}

	w.drainExisting(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logging.Info("inbox", "watching %s", w.dir)

	pending := make(map[string]*time.Timer)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			path := event.Name
			if !isTranscriptFile(path) {
				continue
			}
			// Restart the settle timer on every write burst.
			if t, exists := pending[path]; exists {
				t.Stop()
			}
			pending[path] = time.AfterFunc(settleDelay, func() {
				w.handle(ctx, path)
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("inbox", "watch error: %v", err)
		}
	}
}

func (w *Watcher) drainExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logging.Warn("inbox", "initial scan failed: %v", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isTranscriptFile(e.Name()) {
			continue
		}
		w.handle(ctx, filepath.Join(w.dir, e.Name()))
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	name := filepath.Base(path)
	text, opts, err := readMemo(path)
	if err != nil {
		logging.Warn("inbox", "read %s failed: %v", name, err)
		w.archive(path, "failed")
		return
	}

	logging.Info("inbox", "processing %s (%d chars)", name, len(text))
	if err := w.process(ctx, name, text, opts); err != nil {
		logging.Warn("inbox", "processing %s failed: %v", name, err)
		w.archive(path, "failed")
		return
	}
	w.archive(path, "processed")
}

func (w *Watcher) archive(path, sub string) {
	dest := filepath.Join(w.dir, sub, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		logging.Warn("inbox", "archive to %s failed: %v", sub, err)
	}
}

// readMemo loads a transcript file. JSON files carry metadata; plain
// text files get their recording date from the file mtime.
func readMemo(path string) (string, pipeline.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", pipeline.Options{}, err
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var memo memoFile
		if err := json.Unmarshal(data, &memo); err != nil {
			return "", pipeline.Options{}, fmt.Errorf("invalid memo json: %w", err)
		}
		if strings.TrimSpace(memo.Text) == "" {
			return "", pipeline.Options{}, fmt.Errorf("memo json has no text")
		}
		return memo.Text, pipeline.Options{
			RecordingDate:   memo.RecordingDate,
			Language:        memo.Language,
			DurationSeconds: memo.DurationSeconds,
			UserNotes:       memo.UserNotes,
		}, nil
	}

	opts := pipeline.Options{}
	if info, err := os.Stat(path); err == nil {
		opts.RecordingDate = info.ModTime().UTC().Format("2006-01-02")
	}
	return string(data), opts, nil
}

func isTranscriptFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".json":
		return true
	}
	return false
}
