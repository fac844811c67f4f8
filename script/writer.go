package script

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shorts-pipeline/config"
	"shorts-pipeline/llm"
)

// Writer generates the raw narration script for one short.
type Writer struct {
	cfg *config.Config
	llm llm.Completer
}

// NewWriter creates a script Writer on top of a chat completer.
func NewWriter(cfg *config.Config, completer llm.Completer) *Writer {
	return &Writer{cfg: cfg, llm: completer}
}

// Generate asks the model for a script and returns it with smart punctuation
// replaced by ASCII so downstream TTS and caption rendering behave.
func (w *Writer) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	log.Println("[script] Generating script...")

	text, err := w.llm.Chat(ctx, llm.ChatRequest{
		Model:       w.cfg.Script.Model,
		System:      systemPrompt,
		User:        userPrompt,
		Temperature: w.cfg.Script.Temperature,
		MaxTokens:   w.cfg.Script.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}

	text = normalizePunctuation(text)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("model returned an empty script")
	}

	log.Printf("[script] ✅ Script ready (%d chars)", len(text))
	return text, nil
}

var punctuationReplacer = strings.NewReplacer(
	"’", "'",
	"`", "'",
	"…", "...",
	"“", `"`,
	"”", `"`,
)

func normalizePunctuation(s string) string {
	return punctuationReplacer.Replace(s)
}
