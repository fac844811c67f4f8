package images

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

// promptSuffix keeps every provider producing portrait images that fill the
// short's frame.
const promptSuffix = ". Vertical image, fully filling the canvas."

type imageJob struct {
	ordinal int // 1-based count of image-kind segments
	prompt  string
}

// jobsFor derives the generation work list from a segment sequence. Ordinals
// count image segments only, matching the image_<n> naming scheme.
func jobsFor(segments []types.Segment) []imageJob {
	var jobs []imageJob
	ordinal := 0
	for _, seg := range segments {
		if seg.Type != types.KindImage {
			continue
		}
		ordinal++
		jobs = append(jobs, imageJob{ordinal: ordinal, prompt: seg.Description + promptSuffix})
	}
	return jobs
}

// Create generates one image per image-kind segment into outputDir, fanning
// out across a bounded worker pool. Each call writes a distinct file, so the
// workers never contend.
func Create(ctx context.Context, cfg *config.Config, provider Provider, segments []types.Segment, outputDir string) error {
	log.Println("[images] Generating images...")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create images dir: %w", err)
	}

	jobs := jobsFor(segments)
	if len(jobs) == 0 {
		log.Println("[images] No image segments, nothing to do")
		return nil
	}

	workers := cfg.Images.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.Images.RequestsPerSec), 1)

	// jobCh is pre-filled and closed up front so a worker that exits on
	// error never strands a sender.
	jobCh := make(chan imageJob, len(jobs))
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
				outFile := filepath.Join(outputDir, types.ImageFile(j.ordinal, provider.Ext()))
				if err := provider.Generate(ctx, j.prompt, outFile); err != nil {
					errCh <- fmt.Errorf("image %d: %w", j.ordinal, err)
					return
				}
				log.Printf("[images] Image %d → %s", j.ordinal, outFile)
			}
		}()
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return err
	}
	log.Printf("[images] ✅ %d image(s) ready", len(jobs))
	return nil
}
