package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	defaultAgentTemperature = 0.2
	// maxToolIterations 限制一次提问中工具调用的往返轮数，防止模型陷入循环。
	maxToolIterations = 4
)

// ErrAgentAPIKeyMissing 表示调用方未提供 Groq API Key。
var ErrAgentAPIKeyMissing = errors.New("groq api key is required")

const agentSystemPrompt = "You are a friendly hydration coach. " +
	"Use the provided tools to look up the user's intake and goal before answering. " +
	"Answer concisely in plain language."

// AgentRequest 描述一次提问所需的全部上下文，密钥与目标均按请求传入。
type AgentRequest struct {
	Question string
	APIKey   string
	GoalML   int
	UserID   string
}

// HydrationAgentService 把饮水查询封装为工具交给外部托管模型推理
// 每次提问都是一次全新的智能体实例，服务自身在两次调用之间不保留状态
// 任何环节的失败（鉴权、网络、工具、输出格式）都折叠为一条描述性文本，
// 绝不向调用方抛出错误——智能体回答在协议上永远是一个字符串
type HydrationAgentService struct {
	client *groqChatClient
	water  *WaterLogService
}

// NewHydrationAgentService 构造 HydrationAgentService。
func NewHydrationAgentService(water *WaterLogService, baseURL, model string) *HydrationAgentService {
	return &HydrationAgentService{
		client: newGroqChatClient(baseURL, model),
		water:  water,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *HydrationAgentService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetBaseURL 覆盖默认的 Groq API 地址。
func (s *HydrationAgentService) SetBaseURL(base string) {
	s.client.SetBaseURL(base)
}

// SetModel 指定推理所用的模型名称。
func (s *HydrationAgentService) SetModel(model string) {
	s.client.SetModel(model)
}

// Ask 执行一轮带工具的智能体推理并返回最终回答。
// 返回值永远是面向用户的文本：出错时为 "[Agent Error] ..." 形式的描述。
func (s *HydrationAgentService) Ask(ctx context.Context, req AgentRequest) string {
	answer, err := s.run(ctx, req)
	if err != nil {
		logAIExchange("AGENT", "error", err.Error())
		return fmt.Sprintf("[Agent Error] %v", err)
	}
	return answer
}

func (s *HydrationAgentService) run(ctx context.Context, req AgentRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", errors.New("question is required")
	}

	tools := hydrationTools(s.water, req.GoalML, req.UserID)
	defs := toolDefinitions(tools)

	logAIExchange("AGENT", "question", question)

	messages := []chatMessage{
		{Role: "system", Content: agentSystemPrompt},
		{Role: "user", Content: question},
	}

	for i := 0; i < maxToolIterations; i++ {
		reply, err := s.client.call(ctx, req.APIKey, messages, defs)
		if err != nil {
			return "", err
		}

		if len(reply.ToolCalls) == 0 {
			answer := strings.TrimSpace(reply.Content)
			if answer == "" {
				return "", errors.New("模型返回了空回答")
			}
			logAIExchange("AGENT", "answer", answer)
			return answer, nil
		}

		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			result := s.execute(tools, call)
			logAIExchange("AGENT", "tool:"+call.Function.Name, result)
			messages = append(messages, chatMessage{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
		}
	}

	return "", fmt.Errorf("模型在 %d 轮工具调用后仍未给出回答", maxToolIterations)
}

// execute 运行单个工具调用；未知工具名同样以文本形式反馈给模型。
func (s *HydrationAgentService) execute(tools []AgentTool, call toolCall) string {
	tool, ok := findTool(tools, call.Function.Name)
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", call.Function.Name)
	}
	return tool.Call(call.Function.Arguments)
}
