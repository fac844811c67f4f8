package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"shorts-pipeline/types"
)

// Fixed artifact names beneath a run directory. Artifact presence on disk is
// the completion signal for the stage that writes it; there is no separate
// status ledger.
const (
	ScriptFile          = "response.txt"
	SegmentsFile        = "data.json"
	NarrationsDir       = "narrations"
	ImagesDir           = "images"
	RenderDir           = "render"
	RawVideoFile        = "short.avi"
	NormalizedVideoFile = "normalized_short.avi"
	UploadConfigFile    = "upload_config.json"
)

// Root is the directory that holds all run directories.
type Root struct {
	dir string
}

func NewRoot(dir string) *Root {
	return &Root{dir: dir}
}

// NewRun creates a fresh run directory named by the current unix second.
func (r *Root) NewRun() (*Run, error) {
	id := strconv.FormatInt(time.Now().Unix(), 10)
	basedir := filepath.Join(r.dir, id)
	if err := os.MkdirAll(basedir, 0755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &Run{basedir: basedir}, nil
}

// Open attaches to an existing run directory.
func Open(basedir string) (*Run, error) {
	info, err := os.Stat(basedir)
	if err != nil {
		return nil, fmt.Errorf("open run dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open run dir: %s is not a directory", basedir)
	}
	return &Run{basedir: basedir}, nil
}

// Run is the artifact store for one pipeline run.
type Run struct {
	basedir string
}

func (r *Run) Dir() string { return r.basedir }

func (r *Run) ScriptPath() string          { return filepath.Join(r.basedir, ScriptFile) }
func (r *Run) SegmentsPath() string        { return filepath.Join(r.basedir, SegmentsFile) }
func (r *Run) NarrationsPath() string      { return filepath.Join(r.basedir, NarrationsDir) }
func (r *Run) ImagesPath() string          { return filepath.Join(r.basedir, ImagesDir) }
func (r *Run) RenderPath() string          { return filepath.Join(r.basedir, RenderDir) }
func (r *Run) RawVideoPath() string        { return filepath.Join(r.basedir, RawVideoFile) }
func (r *Run) NormalizedVideoPath() string { return filepath.Join(r.basedir, NormalizedVideoFile) }
func (r *Run) UploadConfigPath() string    { return filepath.Join(r.basedir, UploadConfigFile) }

// NarrationPath returns the narration artifact for the segment at 1-based
// position pos in the full segment sequence.
func (r *Run) NarrationPath(pos int) string {
	return filepath.Join(r.basedir, NarrationsDir, types.NarrationFile(pos))
}

// ImagePath returns the image artifact for the ordinal-th image segment.
func (r *Run) ImagePath(ordinal int, ext string) string {
	return filepath.Join(r.basedir, ImagesDir, types.ImageFile(ordinal, ext))
}

// FindImage locates the image artifact for the ordinal-th image segment
// regardless of which provider (and therefore extension) produced it.
func (r *Run) FindImage(ordinal int) (string, error) {
	pattern := filepath.Join(r.basedir, ImagesDir, fmt.Sprintf("image_%d.*", ordinal))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("image artifact %d not found under %s", ordinal, r.ImagesPath())
	}
	return matches[0], nil
}

func (r *Run) SaveScript(text string) error {
	return os.WriteFile(r.ScriptPath(), []byte(text), 0644)
}

func (r *Run) Script() (string, error) {
	data, err := os.ReadFile(r.ScriptPath())
	if err != nil {
		return "", fmt.Errorf("read script artifact: %w", err)
	}
	return string(data), nil
}

func (r *Run) SaveSegments(segments []types.Segment) error {
	data, err := json.Marshal(segments)
	if err != nil {
		return err
	}
	return os.WriteFile(r.SegmentsPath(), data, 0644)
}

func (r *Run) Segments() ([]types.Segment, error) {
	data, err := os.ReadFile(r.SegmentsPath())
	if err != nil {
		return nil, fmt.Errorf("read segments artifact: %w", err)
	}
	var segments []types.Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parse %s: %w", SegmentsFile, err)
	}
	return segments, nil
}

func (r *Run) SaveUploadConfig(cfg *types.UploadConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.UploadConfigPath(), data, 0644)
}

func (r *Run) UploadConfig() (*types.UploadConfig, error) {
	data, err := os.ReadFile(r.UploadConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read upload config: %w", err)
	}
	var cfg types.UploadConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", UploadConfigFile, err)
	}
	return &cfg, nil
}

func (r *Run) HasScript() bool          { return exists(r.ScriptPath()) }
func (r *Run) HasSegments() bool        { return exists(r.SegmentsPath()) }
func (r *Run) HasRawVideo() bool        { return exists(r.RawVideoPath()) }
func (r *Run) HasNormalizedVideo() bool { return exists(r.NormalizedVideoPath()) }
func (r *Run) HasUploadConfig() bool    { return exists(r.UploadConfigPath()) }

// ClearNarrations removes every narration artifact. Used when segmentation
// is redone so stale index-keyed files cannot survive.
func (r *Run) ClearNarrations() error {
	return clearDir(r.NarrationsPath())
}

// ClearImages removes every image artifact, for the same reason.
func (r *Run) ClearImages() error {
	return clearDir(r.ImagesPath())
}

func clearDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
