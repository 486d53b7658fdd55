// Package llm talks to a local Ollama server to produce free-text
// explanations of duplicate groups.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL = "http://127.0.0.1:11434"
	DefaultModel   = "llama3:latest"
	DefaultTimeout = 30 * time.Second

	generatePath = "/api/generate"
)

type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// NewClient keeps only the scheme and host of baseURL, so a base URL that
// already carries a path still hits /api/generate.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: sanitizeBaseURL(baseURL),
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

func (client *Client) URL() string {
	return client.baseURL + generatePath
}

// Generate never fails: any transport or protocol problem is returned as a
// descriptive string in place of the generated text.
func (client *Client) Generate(ctx context.Context, prompt string) string {
	endpoint := client.URL()
	body, err := json.Marshal(generateRequest{Model: client.model, Prompt: prompt, Stream: false})
	if err != nil {
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.http.Do(req)
	if err != nil {
		return fmt.Sprintf("Error: Could not connect to Ollama. Details: %s url=%s", connectReason(err), endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Sprintf("Error: Ollama request failed (%d) url=%s", resp.StatusCode, endpoint)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
	if decoded.Response == nil {
		return "Error: 'response' key not found in Ollama's reply."
	}
	return *decoded.Response
}

func sanitizeBaseURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return raw
	}
	return (&url.URL{Scheme: parsed.Scheme, Host: parsed.Host}).String()
}

func connectReason(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
