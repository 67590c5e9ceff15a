package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type toolDefinition struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type chatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []chatMessage    `json:"messages"`
	Tools       []toolDefinition `json:"tools,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// groqChatClient 封装对 Groq OpenAI 兼容接口的调用
// API Key 由每次请求的调用方提供，客户端自身不持有任何密钥
type groqChatClient struct {
	http         httpDoer
	baseURL      string
	model        string
	defaultModel string
}

func newGroqChatClient(baseURL, defaultModel string) *groqChatClient {
	return &groqChatClient{
		http:         &http.Client{Timeout: 90 * time.Second},
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:        strings.TrimSpace(defaultModel),
		defaultModel: strings.TrimSpace(defaultModel),
	}
}

func (c *groqChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 20 * time.Second}
		return
	}
	c.http = client
}

func (c *groqChatClient) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *groqChatClient) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	c.model = model
}

func (c *groqChatClient) call(ctx context.Context, apiKey string, messages []chatMessage, tools []toolDefinition) (chatMessage, error) {
	if strings.TrimSpace(apiKey) == "" {
		return chatMessage{}, ErrAgentAPIKeyMissing
	}

	base := c.baseURL
	if base == "" {
		base = "https://api.groq.com/openai/v1"
	}

	model := c.model
	if model == "" {
		model = c.defaultModel
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	payload := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Tools:       tools,
		Temperature: defaultAgentTemperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return chatMessage{}, fmt.Errorf("构造请求失败: %w", err)
	}

	endpoint := base + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return chatMessage{}, fmt.Errorf("创建 Groq 请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(apiKey))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "droplog-agent/1.0")

	resp, err := client.Do(httpReq)
	if err != nil {
		return chatMessage{}, fmt.Errorf("请求 Groq 接口失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return chatMessage{}, fmt.Errorf("读取 Groq 响应失败: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return chatMessage{}, fmt.Errorf("解析 Groq 响应失败: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(completion.Error.Message)
		if errMsg == "" {
			errMsg = strings.TrimSpace(string(respBody))
		}
		if errMsg == "" {
			errMsg = resp.Status
		}
		return chatMessage{}, fmt.Errorf("Groq 接口返回错误：%s", errMsg)
	}

	if len(completion.Choices) == 0 {
		return chatMessage{}, fmt.Errorf("Groq 接口未返回结果")
	}

	return completion.Choices[0].Message, nil
}
