package images

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Pollinations generates images via Pollinations.ai (free, no key needed).
type Pollinations struct {
	httpClient *http.Client
	model      string
}

func NewPollinations(model string) *Pollinations {
	return &Pollinations{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		model:      model,
	}
}

func (p *Pollinations) Ext() string { return "jpg" }

// imageURL builds the request URL. The seed is derived from the prompt so a
// regeneration pass with the same segments asks for the same image.
func (p *Pollinations) imageURL(prompt string) string {
	return fmt.Sprintf(
		"https://image.pollinations.ai/prompt/%s?width=1080&height=1920&nologo=true&model=%s&seed=%d",
		url.PathEscape(prompt),
		p.model,
		seedFor(prompt),
	)
}

func seedFor(prompt string) int {
	seed := 7
	for _, r := range prompt {
		seed = seed*31 + int(r)
		seed &= 0x7fffffff
	}
	return seed
}

// Generate fetches one image, retrying up to 3 times (Pollinations
// occasionally times out).
func (p *Pollinations) Generate(ctx context.Context, prompt, outFile string) error {
	imageURL := p.imageURL(prompt)

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		if err = p.download(ctx, imageURL, outFile); err == nil {
			return nil
		}
		log.Printf("[images] Pollinations attempt %d failed: %v", attempt, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 3 * time.Second):
		}
	}
	return fmt.Errorf("pollinations fetch failed after 3 attempts: %w", err)
}

func (p *Pollinations) download(ctx context.Context, imageURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ShortsPipeline/1.0)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from Pollinations", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// A tiny body is an error page, not an image.
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes)", len(data))
	}

	return os.WriteFile(outFile, data, 0644)
}
