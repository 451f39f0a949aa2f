package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Generator produces an image URL from a text prompt. Unlike the embedding and
// vision paths, generation errors propagate: a try-on without an image is not
// a usable result.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type DalleGenerator struct {
	ApiKey    string
	ModelName string
	BaseURL   string
	Size      string
	Client    *http.Client
}

func NewDalleGenerator(apiKey, modelName string) *DalleGenerator {
	return &DalleGenerator{
		ApiKey:    apiKey,
		ModelName: modelName,
		BaseURL:   "https://api.openai.com/v1",
		Size:      "1024x1024",
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type generateRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type generateResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (g *DalleGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	reqPayload := generateRequest{
		Model:   g.ModelName,
		Prompt:  prompt,
		Size:    g.Size,
		Quality: "standard",
		N:       1,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/images/generations", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image generation error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed generateResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return "", fmt.Errorf("image generation returned no data")
	}

	return parsed.Data[0].URL, nil
}
