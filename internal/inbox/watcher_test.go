package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/avogt/scribe/internal/pipeline"
)

func TestReadMemo_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.txt")
	os.WriteFile(path, []byte("hello world"), 0644)

	text, opts, err := readMemo(path)
	if err != nil {
		t.Fatalf("readMemo failed: %v", err)
	}
	if text != "hello world" {
		t.Errorf("Unexpected text %q", text)
	}
	if opts.RecordingDate == "" {
		t.Error("Expected recording date from mtime")
	}
}

func TestReadMemo_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.json")
	os.WriteFile(path, []byte(`{
		"text": "spoken words",
		"recording_date": "2026-08-25",
		"language": "en",
		"duration_seconds": 42.5,
		"user_notes": "file under journal"
	}`), 0644)

	text, opts, err := readMemo(path)
	if err != nil {
		t.Fatalf("readMemo failed: %v", err)
	}
	if text != "spoken words" {
		t.Errorf("Unexpected text %q", text)
	}
	if opts.RecordingDate != "2026-08-25" || opts.UserNotes != "file under journal" {
		t.Errorf("Unexpected options %+v", opts)
	}
}

func TestReadMemo_JSONWithoutText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.json")
	os.WriteFile(path, []byte(`{"recording_date": "2026-08-25"}`), 0644)

	if _, _, err := readMemo(path); err == nil {
		t.Error("Expected error for memo without text")
	}
}

func TestDrainExisting_ArchivesByOutcome(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "processed"), 0755)
	os.MkdirAll(filepath.Join(dir, "failed"), 0755)
	os.WriteFile(filepath.Join(dir, "good.txt"), []byte("fine"), 0644)
	os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("broken"), 0644)
	os.WriteFile(filepath.Join(dir, "ignored.wav"), []byte{1, 2}, 0644)

	w := NewWatcher(dir, func(ctx context.Context, sourceFile, text string, opts pipeline.Options) error {
		if sourceFile == "bad.txt" {
			return errors.New("boom")
		}
		return nil
	})
	w.drainExisting(context.Background())

	if _, err := os.Stat(filepath.Join(dir, "processed", "good.txt")); err != nil {
		t.Error("Expected good.txt archived to processed/")
	}
	if _, err := os.Stat(filepath.Join(dir, "failed", "bad.txt")); err != nil {
		t.Error("Expected bad.txt archived to failed/")
	}
	if _, err := os.Stat(filepath.Join(dir, "ignored.wav")); err != nil {
		t.Error("Expected non-transcript file left alone")
	}
}
