package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yeremiapane/drivethru-app/config"
	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/utils"
)

// IntentParser turns a customer utterance into a structured order action.
// Implementations never return a Go error: every failure is reported as an
// unsuccessful IntentResult.
type IntentParser interface {
	ParseIntent(ctx context.Context, message string) models.IntentResult
}

// ParserFunc adapts a plain function to IntentParser.
type ParserFunc func(ctx context.Context, message string) models.IntentResult

func (f ParserFunc) ParseIntent(ctx context.Context, message string) models.IntentResult {
	return f(ctx, message)
}

// NewIntentParser builds the provider selected by AI_PROVIDER.
func NewIntentParser(cfg *config.Config, httpClient *http.Client) (IntentParser, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.AIRequestTimeout}
	}
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		return &OpenAIProvider{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			httpClient: httpClient,
		}, nil
	case config.ProviderGemini:
		return &GeminiProvider{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			httpClient: httpClient,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.AIProvider)
	}
}

func failedIntent(format string, args ...interface{}) models.IntentResult {
	return models.IntentResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// postJSON sends payload and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the Gemini key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}
	return nil
}

// OpenAIProvider classifies messages with the chat completions API and tools.
type OpenAIProvider struct {
	APIKey     string
	Model      string
	BaseURL    string
	httpClient *http.Client
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) ParseIntent(ctx context.Context, message string) models.IntentResult {
	tools := make([]map[string]interface{}, 0, 3)
	for _, fn := range FunctionDefinitions() {
		tools = append(tools, map[string]interface{}{
			"type":     "function",
			"function": fn,
		})
	}

	payload := map[string]interface{}{
		"model": p.Model,
		"messages": []map[string]string{
			{"role": "system", "content": SystemPrompt},
			{"role": "user", "content": message},
		},
		"tools":       tools,
		"tool_choice": "auto",
	}

	var resp openAIResponse
	endpoint := strings.TrimRight(p.BaseURL, "/") + "/v1/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + p.APIKey}
	if err := postJSON(ctx, p.httpClient, endpoint, headers, payload, &resp); err != nil {
		utils.ErrorLogger.Errorf("OpenAI API error: %v", err)
		return failedIntent("API error: %v", err)
	}

	if len(resp.Choices) == 0 {
		return failedIntent("No function call detected")
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name == "" {
			continue
		}
		data := map[string]interface{}{}
		if args := strings.TrimSpace(call.Function.Arguments); args != "" {
			if err := json.Unmarshal([]byte(args), &data); err != nil {
				return failedIntent("API error: invalid function arguments: %v", err)
			}
		}
		return models.IntentResult{Success: true, Action: call.Function.Name, Data: data}
	}
	return failedIntent("No function call detected")
}

// GeminiProvider classifies messages with generateContent function calling.
type GeminiProvider struct {
	APIKey     string
	Model      string
	BaseURL    string
	httpClient *http.Client
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text         string `json:"text,omitempty"`
				FunctionCall *struct {
					Name string                 `json:"name"`
					Args map[string]interface{} `json:"args"`
				} `json:"functionCall,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) ParseIntent(ctx context.Context, message string) models.IntentResult {
	declarations := make([]FunctionDefinition, 0, 3)
	for _, fn := range FunctionDefinitions() {
		fn.Parameters = geminiSchema(fn.Parameters)
		declarations = append(declarations, fn)
	}

	payload := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]string{{"text": SystemPrompt}},
		},
		"contents": []map[string]interface{}{
			{"role": "user", "parts": []map[string]string{{"text": message}}},
		},
		"tools": []map[string]interface{}{
			{"functionDeclarations": declarations},
		},
		"toolConfig": map[string]interface{}{
			"functionCallingConfig": map[string]string{"mode": "AUTO"},
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(p.BaseURL, "/"), url.PathEscape(p.Model), url.QueryEscape(p.APIKey))

	var resp geminiResponse
	if err := postJSON(ctx, p.httpClient, endpoint, nil, payload, &resp); err != nil {
		utils.ErrorLogger.Errorf("Gemini API error: %v", err)
		return failedIntent("API error: %v", err)
	}

	if len(resp.Candidates) == 0 {
		return failedIntent("No function call detected")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall == nil || part.FunctionCall.Name == "" {
			continue
		}
		data := part.FunctionCall.Args
		if data == nil {
			data = map[string]interface{}{}
		}
		return models.IntentResult{Success: true, Action: part.FunctionCall.Name, Data: data}
	}
	return failedIntent("No function call detected")
}
