package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"shorts-pipeline/config"
	"shorts-pipeline/llm"
	"shorts-pipeline/store"
	"shorts-pipeline/types"
)

const systemPrompt = "You are a helpful assistant that generates catchy YouTube short titles and descriptions."

// maxTitleLen is YouTube's title length limit.
const maxTitleLen = 100

// Generator produces upload_config.json for a finished run.
type Generator struct {
	cfg *config.Config
	llm llm.Completer
}

func New(cfg *config.Config, completer llm.Completer) *Generator {
	return &Generator{cfg: cfg, llm: completer}
}

type metadataJSON struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Generate asks the model for a title and description based on the run's
// script, fills in the fixed fields and persists the upload config. A
// response that does not parse as the expected JSON is fatal: proceeding
// would publish with undefined metadata.
func (g *Generator) Generate(ctx context.Context, run *store.Run) (string, error) {
	log.Println("[metadata] Generating upload config...")

	script, err := run.Script()
	if err != nil {
		return "", err
	}

	userPrompt := fmt.Sprintf(
		"Please generate a catchy title and description for the following youtube short script: %s. "+
			"Include relevant emojis at the end of the title and description. "+
			"Return the title and description as valid JSON.",
		script,
	)

	content, err := g.llm.Chat(ctx, llm.ChatRequest{
		Model:    g.cfg.Script.MetadataModel,
		System:   systemPrompt,
		User:     userPrompt,
		JSONMode: true,
	})
	if err != nil {
		return "", fmt.Errorf("generate metadata: %w", err)
	}

	var raw metadataJSON
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &raw); err != nil {
		return "", fmt.Errorf("parse metadata JSON: %w", err)
	}
	if raw.Title == "" || raw.Description == "" {
		return "", fmt.Errorf("metadata JSON missing title or description")
	}

	title := raw.Title
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen])
	}

	uploadCfg := &types.UploadConfig{
		Title:         title,
		Description:   raw.Description + "\n\n" + g.cfg.Upload.Disclaimer,
		FilePath:      run.NormalizedVideoPath(),
		Category:      g.cfg.Upload.CategoryID,
		PrivacyStatus: g.cfg.Upload.Privacy,
	}
	if err := run.SaveUploadConfig(uploadCfg); err != nil {
		return "", err
	}

	log.Printf("[metadata] ✅ Upload config: %s", run.UploadConfigPath())
	return run.UploadConfigPath(), nil
}
