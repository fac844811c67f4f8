package store

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"shorts-pipeline/types"
)

func newTestRun(t *testing.T) *Run {
	t.Helper()
	run, err := NewRoot(t.TempDir()).NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	return run
}

func TestNewRunCreatesTimestampDir(t *testing.T) {
	run := newTestRun(t)
	id := filepath.Base(run.Dir())
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		t.Errorf("run id %q is not a unix timestamp", id)
	}
	if _, err := os.Stat(run.Dir()); err != nil {
		t.Errorf("run dir not created: %v", err)
	}
}

func TestOpenMissingDir(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Open() expected error for missing dir")
	}
}

func TestSegmentsRoundTrip(t *testing.T) {
	run := newTestRun(t)
	segments := []types.Segment{
		{Type: types.KindNarration, Text: "Lions are apex predators."},
		{Type: types.KindImage, Description: "a lion on a savanna"},
		{Type: types.KindNarration, Text: "They live in prides."},
	}
	if err := run.SaveSegments(segments); err != nil {
		t.Fatalf("SaveSegments() error = %v", err)
	}
	if !run.HasSegments() {
		t.Fatal("HasSegments() = false after save")
	}

	got, err := run.Segments()
	if err != nil {
		t.Fatalf("Segments() error = %v", err)
	}
	if len(got) != len(segments) {
		t.Fatalf("Segments() = %d entries, want %d", len(got), len(segments))
	}
	for i := range got {
		if got[i] != segments[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], segments[i])
		}
	}
}

func TestUploadConfigRoundTrip(t *testing.T) {
	run := newTestRun(t)
	cfg := &types.UploadConfig{
		Title:         "T",
		Description:   "D",
		FilePath:      run.NormalizedVideoPath(),
		Category:      "15",
		PrivacyStatus: "private",
	}
	if err := run.SaveUploadConfig(cfg); err != nil {
		t.Fatalf("SaveUploadConfig() error = %v", err)
	}
	got, err := run.UploadConfig()
	if err != nil {
		t.Fatalf("UploadConfig() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("UploadConfig() = %+v, want %+v", got, cfg)
	}
}

func TestFindImage(t *testing.T) {
	run := newTestRun(t)
	if err := os.MkdirAll(run.ImagesPath(), 0755); err != nil {
		t.Fatal(err)
	}
	want := run.ImagePath(2, "png")
	if err := os.WriteFile(want, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := run.FindImage(2)
	if err != nil {
		t.Fatalf("FindImage() error = %v", err)
	}
	if got != want {
		t.Errorf("FindImage() = %q, want %q", got, want)
	}

	if _, err := run.FindImage(3); err == nil {
		t.Error("FindImage(3) expected error for missing artifact")
	}
}

func TestClearImages(t *testing.T) {
	run := newTestRun(t)
	if err := os.MkdirAll(run.ImagesPath(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(run.ImagePath(1, "jpg"), []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := run.ClearImages(); err != nil {
		t.Fatalf("ClearImages() error = %v", err)
	}
	entries, err := os.ReadDir(run.ImagesPath())
	if err != nil {
		t.Fatalf("images dir gone after clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("images dir has %d entries after clear, want 0", len(entries))
	}
}

func TestPresenceIsCompletionSignal(t *testing.T) {
	run := newTestRun(t)
	if run.HasScript() || run.HasRawVideo() || run.HasNormalizedVideo() || run.HasUploadConfig() {
		t.Fatal("fresh run reports artifacts present")
	}
	if err := run.SaveScript("A script."); err != nil {
		t.Fatal(err)
	}
	if !run.HasScript() {
		t.Error("HasScript() = false after save")
	}
	text, err := run.Script()
	if err != nil || text != "A script." {
		t.Errorf("Script() = %q, %v", text, err)
	}
}
