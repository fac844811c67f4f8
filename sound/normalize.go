package sound

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"

	"shorts-pipeline/store"
)

// loudnormFilter targets the loudness profile streaming platforms expect.
const loudnormFilter = "loudnorm=I=-14:TP=-2:LRA=11"

// Normalize produces normalized_short.avi from short.avi and then removes the
// raw artifact. This stage is destructive: once it has run, re-running video
// assembly requires rebuilding short.avi from the upstream artifacts.
func Normalize(ctx context.Context, run *store.Run) error {
	log.Println("[sound] Normalizing loudness...")

	if !run.HasRawVideo() {
		return fmt.Errorf("raw video artifact %s missing: redo the video stage first", store.RawVideoFile)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", run.RawVideoPath(),
		"-c:v", "copy",
		"-af", loudnormFilter,
		run.NormalizedVideoPath(),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg loudnorm: %w", err)
	}

	if err := os.Remove(run.RawVideoPath()); err != nil {
		return fmt.Errorf("remove raw video: %w", err)
	}

	log.Printf("[sound] ✅ Normalized video: %s", run.NormalizedVideoPath())
	return nil
}
