package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LLM is a minimal chat-completions client used to classify a page. The
// zero value (or empty fields) means classification is disabled.
type LLM struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

// Classification is the structured verdict the model must return.
type Classification struct {
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	AgeRating      string   `json:"ageRating"`
	Recommendation string   `json:"recommendation"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewLLM(baseURL, apiKey, model string, timeout time.Duration) *LLM {
	return &LLM{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *LLM) Enabled() bool {
	return c != nil && c.BaseURL != "" && c.Model != ""
}

// Classify asks the model for a category, tags, an age rating and a short
// recommendation for the page. The model is instructed to answer with strict
// JSON; anything around the JSON object is tolerated and stripped.
func (c *LLM) Classify(ctx context.Context, url, title, description string) (Classification, error) {
	if !c.Enabled() {
		return Classification{}, errors.New("llm not configured")
	}

	system := "You classify websites for a curated directory. Return strict JSON only."
	user := fmt.Sprintf(
		"Classify the following website.\n"+
			"Return JSON with fields: category (one short string), tags (array of short lowercase strings), "+
			"ageRating (\"SFW\" or \"18+\"), recommendation (one sentence, may be empty).\n"+
			"URL: %s\nTitle: %s\nDescription: %s",
		url, title, description,
	)

	raw, err := c.chat(ctx, system, user, 0.2)
	if err != nil {
		return Classification{}, err
	}
	raw = extractJSON(raw)
	if raw == "" {
		return Classification{}, errors.New("llm invalid json")
	}

	var out Classification
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Classification{}, err
	}
	out.Tags = normalizeList(out.Tags)
	return out, nil
}

func (c *LLM) chat(ctx context.Context, system, user string, temperature float64) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("llm error: %s", strings.TrimSpace(string(body)))
	}

	var res chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("llm empty response")
	}
	return strings.TrimSpace(res.Choices[0].Message.Content), nil
}

func (c *LLM) endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		v := strings.TrimSpace(item)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
