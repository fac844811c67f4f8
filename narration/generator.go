package narration

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

// Generator synthesizes narration audio per segment.
// It calls an external TTS binary/script via shell. Set TTS_COMMAND (or
// narration.command in config.yaml) to a command that accepts:
//
//	--text "..." --output path/to/file.mp3
//
// If neither is set it falls back to edge-tts (free Microsoft TTS).
type Generator struct {
	cfg   *config.Config
	synth func(ctx context.Context, ttsCmd, text, outFile string) error
}

func New(cfg *config.Config) *Generator {
	g := &Generator{cfg: cfg}
	g.synth = g.synthesize
	return g
}

type job struct {
	pos  int // 1-based position in the full segment sequence
	text string
}

// jobsFor derives the synthesis work list from a segment sequence. Positions
// count every segment so filenames stay aligned with image ordinals across
// regeneration passes.
func jobsFor(segments []types.Segment) []job {
	var jobs []job
	for i, seg := range segments {
		if seg.Type != types.KindNarration {
			continue
		}
		jobs = append(jobs, job{pos: i + 1, text: seg.Text})
	}
	return jobs
}

// Run synthesizes one audio file per narration segment into outputDir.
// Segments are independent, so synthesis fans out across a bounded worker
// pool; each worker writes only its own file.
func (g *Generator) Run(ctx context.Context, segments []types.Segment, outputDir string) error {
	log.Println("[narration] Generating TTS audio...")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create narrations dir: %w", err)
	}

	ttsCmd, err := g.resolveTTSCommand()
	if err != nil {
		return err
	}

	jobs := jobsFor(segments)
	if len(jobs) == 0 {
		return fmt.Errorf("no narration segments to synthesize")
	}

	workers := g.cfg.Narration.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	limiter := rate.NewLimiter(rate.Limit(g.cfg.Narration.RequestsPerSec), 1)

	// jobCh is pre-filled and closed up front so a worker that exits on
	// error never strands a sender.
	jobCh := make(chan job, len(jobs))
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	errCh := make(chan error, len(jobs))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if err := limiter.Wait(ctx); err != nil {
					errCh <- err
					return
				}
				outFile := filepath.Join(outputDir, types.NarrationFile(j.pos))
				if err := g.synth(ctx, ttsCmd, j.text, outFile); err != nil {
					errCh <- fmt.Errorf("segment %d TTS failed: %w", j.pos, err)
					return
				}
				log.Printf("[narration] Segment %d → %s", j.pos, outFile)
			}
		}()
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return err
	}
	log.Printf("[narration] ✅ %d narration clip(s) ready", len(jobs))
	return nil
}

func (g *Generator) resolveTTSCommand() (string, error) {
	ttsCmd := strings.TrimSpace(g.cfg.Narration.Command)
	if ttsCmd == "" {
		ttsCmd = strings.TrimSpace(os.Getenv("TTS_COMMAND"))
	}
	if ttsCmd == "" {
		if _, err := exec.LookPath("edge-tts"); err == nil {
			log.Println("[narration] Using edge-tts as TTS engine (fallback)")
			return "edge-tts", nil
		}
		return "", fmt.Errorf("no TTS engine found: set TTS_COMMAND or install edge-tts (pip install edge-tts)")
	}
	return ttsCmd, nil
}

// synthesize runs one TTS invocation, retrying up to 3 times.
func (g *Generator) synthesize(ctx context.Context, ttsCmd, text, outFile string) error {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		cmd := g.buildCommand(ctx, ttsCmd, text, outFile)
		cmd.Stderr = os.Stderr
		if err = cmd.Run(); err == nil {
			return nil
		}
		log.Printf("[narration] TTS attempt %d failed: %v, retrying...", attempt, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return err
}

func (g *Generator) buildCommand(ctx context.Context, ttsCmd, text, outFile string) *exec.Cmd {
	switch {
	case ttsCmd == "edge-tts":
		return exec.CommandContext(ctx,
			"edge-tts",
			"--voice", g.cfg.Narration.Voice,
			"--text", text,
			"--write-media", outFile,
		)
	case strings.HasSuffix(ttsCmd, ".py"):
		return exec.CommandContext(ctx,
			"python3", ttsCmd,
			"--text", text,
			"--output", outFile,
		)
	default:
		return exec.CommandContext(ctx,
			ttsCmd,
			"--text", text,
			"--output", outFile,
		)
	}
}
