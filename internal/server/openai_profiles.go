package server

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

	"whos-who/internal/config"
)

const profileSystemPrompt = `You write short, playful personality profiles for a party game.
Players answered questions about one of their friends. Summarize what the
answers suggest about that person in 3 to 4 sentences, written in the third
person. Never mention the person's name or quote an answer verbatim; the
other players must guess who is being described. Keep it warm and funny,
never mean.`

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type openAIGenerator struct {
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
}

func newOpenAIGenerator(cfg config.Config) *openAIGenerator {
	timeout := time.Duration(cfg.OpenAITimeoutSeconds) * time.Second
	return &openAIGenerator{
		apiKey:  strings.TrimSpace(cfg.OpenAIAPIKey),
		model:   cfg.OpenAIModel,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *openAIGenerator) Available() bool {
	return g.apiKey != ""
}

func (g *openAIGenerator) GenerateProfile(ctx context.Context, subjectName string, answers []AnswerPair) (string, error) {
	if !g.Available() {
		return "", errors.New("OpenAI API key is not configured.")
	}

	var sb strings.Builder
	sb.WriteString("The friends answered these questions about the person:\n")
	for _, pair := range answers {
		fmt.Fprintf(&sb, "- %s %s\n", pair.Question, pair.Answer)
	}
	sb.WriteString("\nWrite the profile now.")

	reqBody := openAIChatRequest{
		Model: g.model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: profileSystemPrompt},
			{Role: "user", Content: sb.String()},
		},
		Temperature: 0.9,
		MaxTokens:   400,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach OpenAI")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read OpenAI response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("OpenAI request failed (%d)", resp.StatusCode)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("OpenAI error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("OpenAI returned no profile.")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
