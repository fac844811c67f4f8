package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"shorts-pipeline/config"
	"shorts-pipeline/images"
	"shorts-pipeline/llm"
	"shorts-pipeline/metadata"
	"shorts-pipeline/narration"
	"shorts-pipeline/script"
	"shorts-pipeline/sound"
	"shorts-pipeline/store"
	"shorts-pipeline/types"
	"shorts-pipeline/video"
)

// Stage names a selectable pipeline stage.
type Stage string

const (
	StageScript    Stage = "script"
	StageNarration Stage = "narration"
	StageImages    Stage = "images"
	StageVideo     Stage = "video"
	StageNormalize Stage = "normalize"
)

var allStages = []Stage{StageScript, StageNarration, StageImages, StageVideo, StageNormalize}

// StageSet is the subset of stages a regeneration pass should redo.
type StageSet map[Stage]bool

// ParseStages parses a comma-separated stage list.
func ParseStages(s string) (StageSet, error) {
	set := StageSet{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		stage := Stage(part)
		valid := false
		for _, known := range allStages {
			if stage == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("unknown stage %q (want script, narration, images, video or normalize)", part)
		}
		set[stage] = true
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no stages selected")
	}
	return set, nil
}

func (s StageSet) String() string {
	var names []string
	for stage := range s {
		names = append(names, string(stage))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// RunRequest carries the caller-supplied inputs for a run.
type RunRequest struct {
	SystemPrompt string
	UserPrompt   string
	Captions     *types.CaptionSettings
	ImageService string // empty = config default
}

// Driver orchestrates the stages against a run's artifact store. The stage
// functions are fields so tests can substitute collaborators; New wires the
// real implementations.
type Driver struct {
	cfg *config.Config

	GenerateScript   func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Synthesize       func(ctx context.Context, segments []types.Segment, dir string) error
	CreateImages     func(ctx context.Context, service string, segments []types.Segment, dir string) error
	AssembleVideo    func(ctx context.Context, run *store.Run, captions *types.CaptionSettings) error
	NormalizeAudio   func(ctx context.Context, run *store.Run) error
	GenerateMetadata func(ctx context.Context, run *store.Run) (string, error)
}

func New(cfg *config.Config) *Driver {
	d := &Driver{cfg: cfg}

	d.GenerateScript = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		client, err := llm.NewFromEnv()
		if err != nil {
			return "", err
		}
		return script.NewWriter(cfg, client).Generate(ctx, systemPrompt, userPrompt)
	}
	d.Synthesize = narration.New(cfg).Run
	d.CreateImages = func(ctx context.Context, service string, segments []types.Segment, dir string) error {
		if service == "" {
			service = cfg.Images.Provider
		}
		provider, err := images.ForName(service, cfg)
		if err != nil {
			return err
		}
		return images.Create(ctx, cfg, provider, segments, dir)
	}
	d.AssembleVideo = video.New(cfg).Run
	d.NormalizeAudio = sound.Normalize
	d.GenerateMetadata = func(ctx context.Context, run *store.Run) (string, error) {
		client, err := llm.NewFromEnv()
		if err != nil {
			return "", err
		}
		return metadata.New(cfg, client).Generate(ctx, run)
	}
	return d
}

// Run executes a fresh run: every stage in dependency order under a new run
// directory. Failures abort; partial artifacts stay on disk for inspection.
func (d *Driver) Run(ctx context.Context, req RunRequest) (*types.RunResult, error) {
	run, err := store.NewRoot(d.cfg.Paths.ShortsRoot).NewRun()
	if err != nil {
		return nil, err
	}
	log.Printf("[pipeline] Run dir: %s", run.Dir())

	text, err := d.GenerateScript(ctx, req.SystemPrompt, req.UserPrompt)
	if err != nil {
		return nil, err
	}
	if err := run.SaveScript(text); err != nil {
		return nil, err
	}

	segments, err := script.Parse(text)
	if err != nil {
		return nil, err
	}
	if err := run.SaveSegments(segments); err != nil {
		return nil, err
	}

	if err := d.Synthesize(ctx, segments, run.NarrationsPath()); err != nil {
		return nil, err
	}
	if err := d.CreateImages(ctx, req.ImageService, segments, run.ImagesPath()); err != nil {
		return nil, err
	}
	if err := d.AssembleVideo(ctx, run, req.Captions); err != nil {
		return nil, err
	}
	if err := d.NormalizeAudio(ctx, run); err != nil {
		return nil, err
	}

	configFile, err := d.GenerateMetadata(ctx, run)
	if err != nil {
		return nil, err
	}

	log.Printf("[pipeline] ✅ DONE! Here's your video: %s", run.NormalizedVideoPath())
	return &types.RunResult{
		Basedir:    run.Dir(),
		VideoFile:  run.NormalizedVideoPath(),
		ConfigFile: configFile,
	}, nil
}

// Regenerate re-executes only the selected stages against an existing run
// directory, reading every other input from persisted artifacts. Redoing a
// stage that changes the segment sequence clears the narration and image
// namespaces so stale index-keyed artifacts cannot leak into the new cut.
func (d *Driver) Regenerate(ctx context.Context, basedir string, stages StageSet, req RunRequest) (*types.RunResult, error) {
	run, err := store.Open(basedir)
	if err != nil {
		return nil, err
	}
	log.Printf("[pipeline] Regenerating %s in %s", stages, run.Dir())

	resegmented := false

	if stages[StageScript] {
		if req.SystemPrompt == "" {
			return nil, fmt.Errorf("redoing the script stage needs a system prompt")
		}
		text, err := d.GenerateScript(ctx, req.SystemPrompt, req.UserPrompt)
		if err != nil {
			return nil, err
		}
		if err := run.SaveScript(text); err != nil {
			return nil, err
		}
		if err := d.resegment(run, text); err != nil {
			return nil, err
		}
		resegmented = true
	}

	if stages[StageNarration] {
		if !resegmented {
			// Segmentation is deterministic from the script artifact, so
			// re-deriving it here keeps data.json aligned with what narration
			// is about to produce.
			text, err := run.Script()
			if err != nil {
				return nil, err
			}
			if err := d.resegment(run, text); err != nil {
				return nil, err
			}
		}
		segments, err := run.Segments()
		if err != nil {
			return nil, err
		}
		if err := d.Synthesize(ctx, segments, run.NarrationsPath()); err != nil {
			return nil, err
		}
	}

	if stages[StageImages] {
		segments, err := run.Segments()
		if err != nil {
			return nil, err
		}
		// Clear first: a provider switch changes the extension, and FindImage
		// would otherwise keep matching the old provider's files.
		if err := run.ClearImages(); err != nil {
			return nil, err
		}
		if err := d.CreateImages(ctx, req.ImageService, segments, run.ImagesPath()); err != nil {
			return nil, err
		}
	}

	if stages[StageVideo] {
		if err := d.AssembleVideo(ctx, run, req.Captions); err != nil {
			return nil, err
		}
	}

	if stages[StageNormalize] {
		if !run.HasRawVideo() {
			return nil, fmt.Errorf("raw video artifact missing: select the video stage as well")
		}
		if err := d.NormalizeAudio(ctx, run); err != nil {
			return nil, err
		}
	}

	configFile := run.UploadConfigPath()
	if stages[StageNormalize] || !run.HasUploadConfig() {
		configFile, err = d.GenerateMetadata(ctx, run)
		if err != nil {
			return nil, err
		}
	}

	log.Printf("[pipeline] ✅ DONE! Here's your regenerated video: %s", run.NormalizedVideoPath())
	return &types.RunResult{
		Basedir:    run.Dir(),
		VideoFile:  run.NormalizedVideoPath(),
		ConfigFile: configFile,
	}, nil
}

// resegment reparses the script and persists the sequence. If the sequence
// differs from what downstream artifacts were keyed on, those namespaces are
// cleared: index-derived filenames from the old sequence would otherwise be
// silently misaligned.
func (d *Driver) resegment(run *store.Run, text string) error {
	segments, err := script.Parse(text)
	if err != nil {
		return err
	}
	old, oldErr := run.Segments()
	if oldErr != nil || !segmentsEqual(old, segments) {
		if oldErr == nil {
			log.Println("[pipeline] Segment sequence changed, clearing narration and image artifacts")
		}
		if err := run.ClearNarrations(); err != nil {
			return err
		}
		if err := run.ClearImages(); err != nil {
			return err
		}
	}
	return run.SaveSegments(segments)
}

func segmentsEqual(a, b []types.Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
