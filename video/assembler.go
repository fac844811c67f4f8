package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"shorts-pipeline/config"
	"shorts-pipeline/store"
	"shorts-pipeline/types"
)

// Assembler builds the pre-normalization video from the persisted segment
// sequence plus its narration and image artifacts. It performs no partial
// assembly: every artifact the sequence implies must already exist.
type Assembler struct {
	cfg   *config.Config
	probe func(string) (float64, error)
}

func New(cfg *config.Config) *Assembler {
	return &Assembler{cfg: cfg, probe: ffprobeDuration}
}

// slot is one stretch of playback: a narration clip with the image shown
// underneath it (empty image = black canvas).
type slot struct {
	image    string
	audio    string
	text     string
	duration float64
}

// buildSlots walks the segment sequence in order. An image segment switches
// the current backdrop; a narration segment emits a slot under the current
// backdrop. The total video duration is therefore exactly the sum of the
// narration clip durations, and each image stays visible for the span of the
// narrations at its interleaved position.
func buildSlots(
	segments []types.Segment,
	findImage func(int) (string, error),
	narrationPath func(int) string,
	probe func(string) (float64, error),
) ([]slot, error) {
	var slots []slot
	current := ""
	ordinal := 0
	for i, seg := range segments {
		switch seg.Type {
		case types.KindImage:
			ordinal++
			img, err := findImage(ordinal)
			if err != nil {
				return nil, err
			}
			current = img
		case types.KindNarration:
			audio := narrationPath(i + 1)
			dur, err := probe(audio)
			if err != nil {
				return nil, fmt.Errorf("narration artifact for segment %d: %w", i+1, err)
			}
			slots = append(slots, slot{image: current, audio: audio, text: seg.Text, duration: dur})
		default:
			return nil, fmt.Errorf("segment %d has unknown type %q", i+1, seg.Type)
		}
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("segment sequence contains no narration")
	}
	return slots, nil
}

// Run assembles short.avi for the given run.
func (a *Assembler) Run(ctx context.Context, run *store.Run, captions *types.CaptionSettings) error {
	log.Println("[video] Assembling video...")

	segments, err := run.Segments()
	if err != nil {
		return err
	}
	slots, err := buildSlots(segments, run.FindImage, run.NarrationPath, a.probe)
	if err != nil {
		return err
	}

	workDir := run.RenderPath()
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create render dir: %w", err)
	}

	var slotFiles []string
	for i, s := range slots {
		out, err := a.renderSlot(ctx, s, i, workDir)
		if err != nil {
			return fmt.Errorf("render slot %d: %w", i, err)
		}
		slotFiles = append(slotFiles, out)
	}

	assembled, err := a.concatSlots(ctx, slotFiles, workDir)
	if err != nil {
		return fmt.Errorf("concatenate slots: %w", err)
	}

	if !captionsEnabled(captions) {
		if err := os.Rename(assembled, run.RawVideoPath()); err != nil {
			return err
		}
		log.Printf("[video] ✅ Video ready (no captions): %s", run.RawVideoPath())
		return nil
	}

	srtFile := filepath.Join(workDir, "captions.srt")
	if err := os.WriteFile(srtFile, []byte(buildSRT(slots)), 0644); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	if err := a.burnCaptions(ctx, assembled, srtFile, captions, run.RawVideoPath()); err != nil {
		return fmt.Errorf("burn captions: %w", err)
	}

	log.Printf("[video] ✅ Video ready: %s", run.RawVideoPath())
	return nil
}

// renderSlot produces one silent-image-plus-narration clip.
func (a *Assembler) renderSlot(ctx context.Context, s slot, idx int, workDir string) (string, error) {
	out := filepath.Join(workDir, fmt.Sprintf("slot_%03d.avi", idx))
	w, h, fps := a.cfg.Video.Width, a.cfg.Video.Height, a.cfg.Video.FPS

	args := []string{"-y"}
	if s.image == "" {
		args = append(args, "-f", "lavfi", "-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d", w, h, fps))
	} else {
		args = append(args, "-loop", "1", "-framerate", fmt.Sprintf("%d", fps), "-i", s.image)
	}
	args = append(args,
		"-i", s.audio,
		"-t", fmt.Sprintf("%.3f", s.duration),
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1", w, h, w, h),
		"-r", fmt.Sprintf("%d", fps),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", "libmp3lame",
		"-ar", "44100",
		out,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w", err)
	}
	return out, nil
}

func (a *Assembler) concatSlots(ctx context.Context, slotFiles []string, workDir string) (string, error) {
	listFile := filepath.Join(workDir, "concat_list.txt")
	var lines []string
	for _, f := range slotFiles {
		lines = append(lines, fmt.Sprintf("file '%s'", f))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return "", err
	}

	out := filepath.Join(workDir, "assembled.avi")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		out,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg concat: %w", err)
	}
	return out, nil
}

func (a *Assembler) burnCaptions(ctx context.Context, videoFile, srtFile string, captions *types.CaptionSettings, outFile string) error {
	filter := fmt.Sprintf("subtitles=%s:force_style='%s'",
		escapeSubtitlePath(srtFile),
		styleFor(captions).forceStyle(),
	)
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoFile,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "20",
		"-c:a", "copy",
		outFile,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg subtitles: %w", err)
	}
	return nil
}

// ffprobeDuration returns a media file's duration in seconds.
func ffprobeDuration(file string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		file,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return dur, nil
}
