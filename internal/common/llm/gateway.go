package llm

import (
	"context"
	"fmt"
	"strings"

	apihttp "site-pipeline/internal/common/http"
)

// GatewayProvider talks to an internal GenAI gateway over HTTP.
type GatewayProvider struct {
	baseURL string
	apiKey  string
	client  *apihttp.Client
}

func NewGatewayProvider(baseURL, apiKey string, client *apihttp.Client) *GatewayProvider {
	return &GatewayProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (g *GatewayProvider) Name() string { return "gateway" }

type gatewayRequest struct {
	Model          string  `json:"model,omitempty"`
	System         string  `json:"system"`
	Prompt         string  `json:"prompt"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float64 `json:"temperature"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Schema         string  `json:"schema,omitempty"`
	Metadata       struct {
		Agent string `json:"agent"`
	} `json:"metadata"`
}

type gatewayResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (g *GatewayProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	body := gatewayRequest{
		Model:       req.Model,
		System:      req.SystemPrompt,
		Prompt:      req.UserPrompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Schema:      req.SchemaHint,
	}
	if req.SchemaHint != "" {
		body.ResponseFormat = "json"
	}
	body.Metadata.Agent = req.Agent

	headers := map[string]string{}
	if g.apiKey != "" {
		headers["Authorization"] = "Bearer " + g.apiKey
	}

	var out gatewayResponse
	if err := g.client.PostJSON(ctx, g.baseURL+"/api/ai/generate", headers, body, &out); err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, fmt.Errorf("gateway: %w", ErrEmptyResponse)
	}

	return &Response{
		Text:  out.Text,
		Model: out.Model,
		Usage: Usage{InputTokens: out.Usage.InputTokens, OutputTokens: out.Usage.OutputTokens},
	}, nil
}
