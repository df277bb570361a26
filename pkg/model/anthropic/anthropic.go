package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raayon-bot/raayon/pkg/model"
)

const defaultMaxTokens = 4096

type Provider struct {
	config model.ProviderConfig
	client *http.Client
}

func init() {
	model.RegisterFactory("anthropic", New)
}

func New(config model.ProviderConfig) model.Provider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com/v1"
	}
	return &Provider{
		config: config,
		client: &http.Client{},
	}
}

type anthropicRequest struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	Messages    []anthropicMsg `json:"messages"`
	System      string         `json:"system,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
}

type anthropicMsg struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func convertRequest(req *model.Request) *anthropicRequest {
	ar := &anthropicRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages:  make([]anthropicMsg, 0, len(req.Messages)),
	}
	if ar.MaxTokens <= 0 {
		ar.MaxTokens = defaultMaxTokens
	}
	if req.Temperature > 0 {
		t := req.Temperature
		ar.Temperature = &t
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			if ar.System != "" {
				ar.System += "\n"
			}
			ar.System += msg.Content
		case "user", "assistant":
			ar.Messages = append(ar.Messages, anthropicMsg{
				Role:    msg.Role,
				Content: []anthropicContent{{Type: "text", Text: msg.Content}},
			})
		}
	}

	return ar
}

func convertResponse(ar *anthropicResponse) *model.Response {
	var text strings.Builder
	for _, c := range ar.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	finishReason := "stop"
	if ar.StopReason == "max_tokens" {
		finishReason = "length"
	}

	return &model.Response{
		ID:    ar.ID,
		Model: ar.Model,
		Choices: []model.Choice{{
			Message: model.Message{
				Role:    "assistant",
				Content: text.String(),
			},
			FinishReason: finishReason,
		}},
		Usage: model.Usage{
			PromptTokens:     ar.Usage.InputTokens,
			CompletionTokens: ar.Usage.OutputTokens,
			TotalTokens:      ar.Usage.InputTokens + ar.Usage.OutputTokens,
		},
	}
}

func (p *Provider) Send(ctx context.Context, req *model.Request) (*model.Response, error) {
	ar := convertRequest(req)
	if ar.Model == "" {
		ar.Model = p.config.Model
	}

	body, err := json.Marshal(ar)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.config.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var response anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return convertResponse(&response), nil
}
