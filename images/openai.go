package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DallE generates images via the OpenAI images API.
type DallE struct {
	httpClient *http.Client
	apiKey     string
	size       string
}

func NewDallE(size string) (*DallE, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	return &DallE{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		size:       size,
	}, nil
}

func (d *DallE) Ext() string { return "png" }

type dalleRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
	N              int    `json:"n"`
}

type dalleResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate requests one image and writes the decoded payload to outFile.
func (d *DallE) Generate(ctx context.Context, prompt, outFile string) error {
	reqBody := dalleRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		Size:           d.size,
		Quality:        "standard",
		ResponseFormat: "b64_json",
		N:              1,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/images/generations", bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dall-e request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var parsed dalleResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return fmt.Errorf("parse dall-e response: %w", err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("dall-e error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) == 0 {
		return fmt.Errorf("dall-e returned no images")
	}

	raw, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return fmt.Errorf("decode image payload: %w", err)
	}
	return os.WriteFile(outFile, raw, 0644)
}
