package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts-pipeline/config"
	"shorts-pipeline/store"
	"shorts-pipeline/types"
)

// stubbedDriver replaces every stage with a counter and a minimal artifact
// writer, so tests can assert exactly which stages a pass executed.
type stageCalls struct {
	script, narration, images, video, normalize, metadata int
}

func stubbedDriver(cfg *config.Config, calls *stageCalls, scriptText string) *Driver {
	d := New(cfg)
	d.GenerateScript = func(ctx context.Context, system, user string) (string, error) {
		calls.script++
		return scriptText, nil
	}
	d.Synthesize = func(ctx context.Context, segments []types.Segment, dir string) error {
		calls.narration++
		return nil
	}
	d.CreateImages = func(ctx context.Context, service string, segments []types.Segment, dir string) error {
		calls.images++
		return nil
	}
	d.AssembleVideo = func(ctx context.Context, run *store.Run, captions *types.CaptionSettings) error {
		calls.video++
		return os.WriteFile(run.RawVideoPath(), []byte("avi"), 0644)
	}
	d.NormalizeAudio = func(ctx context.Context, run *store.Run) error {
		calls.normalize++
		if err := os.WriteFile(run.NormalizedVideoPath(), []byte("avi"), 0644); err != nil {
			return err
		}
		return os.Remove(run.RawVideoPath())
	}
	d.GenerateMetadata = func(ctx context.Context, run *store.Run) (string, error) {
		calls.metadata++
		err := run.SaveUploadConfig(&types.UploadConfig{Title: "t", FilePath: run.NormalizedVideoPath()})
		return run.UploadConfigPath(), err
	}
	return d
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ShortsRoot = t.TempDir()
	return cfg
}

const testScript = "Lions are apex predators.\n[a lion on a savanna]\nThey live in prides.\n"

func TestRunExecutesAllStages(t *testing.T) {
	cfg := testConfig(t)
	var calls stageCalls
	d := stubbedDriver(cfg, &calls, testScript)

	result, err := d.Run(context.Background(), RunRequest{SystemPrompt: "sys", UserPrompt: "user"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := stageCalls{script: 1, narration: 1, images: 1, video: 1, normalize: 1, metadata: 1}
	if calls != want {
		t.Errorf("stage calls = %+v, want %+v", calls, want)
	}

	run, err := store.Open(result.Basedir)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", result.Basedir, err)
	}
	if !run.HasScript() || !run.HasSegments() {
		t.Error("script or segments artifact missing after full run")
	}
	if !run.HasNormalizedVideo() || run.HasRawVideo() {
		t.Error("expected normalized video only after the normalize stage")
	}
	if result.VideoFile != run.NormalizedVideoPath() {
		t.Errorf("VideoFile = %q, want %q", result.VideoFile, run.NormalizedVideoPath())
	}
	if result.ConfigFile != run.UploadConfigPath() {
		t.Errorf("ConfigFile = %q, want %q", result.ConfigFile, run.UploadConfigPath())
	}
}

// prepareRun seeds a run directory as if script, narration and images had
// already completed for testScript's segment sequence.
func prepareRun(t *testing.T, cfg *config.Config) *store.Run {
	t.Helper()
	run, err := store.NewRoot(cfg.Paths.ShortsRoot).NewRun()
	if err != nil {
		t.Fatal(err)
	}
	if err := run.SaveScript(testScript); err != nil {
		t.Fatal(err)
	}
	segments := []types.Segment{
		{Type: types.KindNarration, Text: "Lions are apex predators."},
		{Type: types.KindImage, Description: "a lion on a savanna"},
		{Type: types.KindNarration, Text: "They live in prides."},
	}
	if err := run.SaveSegments(segments); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{run.NarrationsPath(), run.ImagesPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	for _, pos := range []int{1, 3} {
		if err := os.WriteFile(run.NarrationPath(pos), []byte("mp3"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(run.ImagePath(1, "jpg"), []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}
	return run
}

func TestRegenerateRunsOnlySelectedStages(t *testing.T) {
	cfg := testConfig(t)
	run := prepareRun(t, cfg)

	var calls stageCalls
	d := stubbedDriver(cfg, &calls, testScript)

	stages, err := ParseStages("video,normalize")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Regenerate(context.Background(), run.Dir(), stages, RunRequest{}); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	want := stageCalls{video: 1, normalize: 1, metadata: 1}
	if calls != want {
		t.Errorf("stage calls = %+v, want %+v", calls, want)
	}
	if _, err := os.Stat(run.NarrationPath(1)); err != nil {
		t.Error("narration artifact should survive a video+normalize pass")
	}
	if _, err := run.FindImage(1); err != nil {
		t.Error("image artifact should survive a video+normalize pass")
	}
}

func TestRegenerateNormalizeNeedsRawVideo(t *testing.T) {
	cfg := testConfig(t)
	run := prepareRun(t, cfg)

	var calls stageCalls
	d := stubbedDriver(cfg, &calls, testScript)

	stages, _ := ParseStages("normalize")
	if _, err := d.Regenerate(context.Background(), run.Dir(), stages, RunRequest{}); err == nil {
		t.Fatal("expected error when normalize is selected without a raw video artifact")
	}
	if calls.normalize != 0 {
		t.Errorf("normalize ran %d times, want 0", calls.normalize)
	}
}

func TestRegenerateNarrationKeepsImagesWhenSegmentsUnchanged(t *testing.T) {
	cfg := testConfig(t)
	run := prepareRun(t, cfg)

	var calls stageCalls
	d := stubbedDriver(cfg, &calls, testScript)

	stages, _ := ParseStages("narration,video,normalize")
	if _, err := d.Regenerate(context.Background(), run.Dir(), stages, RunRequest{}); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if calls.narration != 1 {
		t.Errorf("narration ran %d times, want 1", calls.narration)
	}
	if _, err := run.FindImage(1); err != nil {
		t.Error("images cleared although the segment sequence was unchanged")
	}
}

func TestRegenerateImagesDropsOldProviderFiles(t *testing.T) {
	cfg := testConfig(t)
	run := prepareRun(t, cfg) // seeded with image_1.jpg

	var calls stageCalls
	d := stubbedDriver(cfg, &calls, testScript)
	d.CreateImages = func(ctx context.Context, service string, segments []types.Segment, dir string) error {
		calls.images++
		return os.WriteFile(filepath.Join(dir, types.ImageFile(1, "png")), []byte("img"), 0644)
	}

	stages, _ := ParseStages("images")
	if _, err := d.Regenerate(context.Background(), run.Dir(), stages, RunRequest{ImageService: "dall_e"}); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	got, err := run.FindImage(1)
	if err != nil {
		t.Fatalf("FindImage() error = %v", err)
	}
	if !strings.HasSuffix(got, ".png") {
		t.Errorf("FindImage() = %q, old provider's file survived the redo", got)
	}
	if _, err := os.Stat(run.ImagePath(1, "jpg")); !os.IsNotExist(err) {
		t.Error("previous provider's artifact still present after the images redo")
	}
}

func TestRegenerateScriptClearsStaleArtifacts(t *testing.T) {
	cfg := testConfig(t)
	run := prepareRun(t, cfg)

	var calls stageCalls
	newScript := "A different opener.\n[a new scene]\n"
	d := stubbedDriver(cfg, &calls, newScript)

	stages, _ := ParseStages("script,narration,images,video,normalize")
	if _, err := d.Regenerate(context.Background(), run.Dir(), stages, RunRequest{SystemPrompt: "sys"}); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	if _, err := os.Stat(run.NarrationPath(3)); !os.IsNotExist(err) {
		t.Error("stale narration artifact survived a segment sequence change")
	}
	if _, err := run.FindImage(1); err == nil {
		t.Error("stale image artifact survived a segment sequence change")
	}
	segments, err := run.Segments()
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 2 || segments[0].Text != "A different opener." {
		t.Errorf("segments not rewritten from the new script: %+v", segments)
	}
}

func TestRegenerateScriptNeedsSystemPrompt(t *testing.T) {
	cfg := testConfig(t)
	run := prepareRun(t, cfg)

	d := stubbedDriver(cfg, &stageCalls{}, testScript)
	stages, _ := ParseStages("script")
	if _, err := d.Regenerate(context.Background(), run.Dir(), stages, RunRequest{}); err == nil {
		t.Fatal("expected error when redoing the script stage without a system prompt")
	}
}

func TestRegenerateSkipsMetadataWhenConfigPresent(t *testing.T) {
	cfg := testConfig(t)
	run := prepareRun(t, cfg)
	if err := run.SaveUploadConfig(&types.UploadConfig{Title: "existing"}); err != nil {
		t.Fatal(err)
	}

	var calls stageCalls
	d := stubbedDriver(cfg, &calls, testScript)

	stages, _ := ParseStages("images")
	if _, err := d.Regenerate(context.Background(), run.Dir(), stages, RunRequest{}); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if calls.metadata != 0 {
		t.Errorf("metadata regenerated %d times, want 0", calls.metadata)
	}
}

func TestParseStages(t *testing.T) {
	set, err := ParseStages("video, normalize")
	if err != nil {
		t.Fatalf("ParseStages() error = %v", err)
	}
	if !set[StageVideo] || !set[StageNormalize] || len(set) != 2 {
		t.Errorf("ParseStages() = %v", set)
	}
	if set.String() != "normalize,video" {
		t.Errorf("String() = %q, want %q", set.String(), "normalize,video")
	}

	if _, err := ParseStages("render"); err == nil {
		t.Error("expected error for unknown stage")
	}
	if _, err := ParseStages(""); err == nil {
		t.Error("expected error for empty stage list")
	}
}
