package service

import (
	"encoding/json"
	"fmt"
)

// AgentTool 描述暴露给外部智能体的一个可调用能力。
// 约定为单字符串入参、单字符串出参：智能体把工具输出当作纯文本，
// 因此实现必须把自身的错误转写为可读文本而不是向上抛出。
type AgentTool interface {
	Name() string
	Description() string
	Call(input string) string
}

// ignoredInputSchema 是两个工具共用的参数模式：入参可为任意字符串且会被忽略。
var ignoredInputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"input": {
			"type": "string",
			"description": "Ignored. Pass any string."
		}
	}
}`)

// intakeSoFarTool 汇报某用户当天饮水进度与目标的差距
// 目标值按请求传入，用户在构造时绑定，工具本身无状态
type intakeSoFarTool struct {
	water  *WaterLogService
	goalML int
	userID string
}

func (t *intakeSoFarTool) Name() string { return "water_intake_history" }

func (t *intakeSoFarTool) Description() string {
	return "Returns today's water intake so far, compared against the daily goal. Input can be any string."
}

func (t *intakeSoFarTool) Call(_ string) string {
	total, err := t.water.TodayTotal(t.userID)
	if err != nil {
		return fmt.Sprintf("Could not read today's intake: %v", err)
	}

	if total >= t.goalML {
		return fmt.Sprintf("🎉 You've met your hydration goal of %d ml! Total intake: %d ml.", t.goalML, total)
	}

	remaining := t.goalML - total
	return fmt.Sprintf("💧 You've consumed %d ml today. %d ml to go to reach your goal of %d ml.", total, remaining, t.goalML)
}

// configuredGoalTool 汇报本次会话配置的每日目标，目标不做持久化
type configuredGoalTool struct {
	goalML int
}

func (t *configuredGoalTool) Name() string { return "hydration_goal" }

func (t *configuredGoalTool) Description() string {
	return "Returns the daily hydration goal for this session. Input can be any string."
}

func (t *configuredGoalTool) Call(_ string) string {
	return fmt.Sprintf("Your current hydration goal is %d ml per day.", t.goalML)
}

// hydrationTools 为一次智能体调用绑定目标与用户，返回全新的工具集合。
func hydrationTools(water *WaterLogService, goalML int, userID string) []AgentTool {
	return []AgentTool{
		&intakeSoFarTool{water: water, goalML: goalML, userID: userID},
		&configuredGoalTool{goalML: goalML},
	}
}

func toolDefinitions(tools []AgentTool) []toolDefinition {
	defs := make([]toolDefinition, 0, len(tools))
	for _, tool := range tools {
		defs = append(defs, toolDefinition{
			Type: "function",
			Function: toolFunction{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  ignoredInputSchema,
			},
		})
	}
	return defs
}

func findTool(tools []AgentTool, name string) (AgentTool, bool) {
	for _, tool := range tools {
		if tool.Name() == name {
			return tool, true
		}
	}
	return nil, false
}
