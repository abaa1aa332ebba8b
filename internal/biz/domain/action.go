package domain

import "time"

// ActionRecord is an advisory note about an action the bot took,
// kept so later prompts can mention it
type ActionRecord struct {
	ID              string            `json:"id"`
	ChatID          string            `json:"chat_id"`
	ActionName      string            `json:"action_name"`
	Display         string            `json:"display"`
	Reason          string            `json:"reason"`
	Data            map[string]string `json:"data,omitempty"`
	BuildIntoPrompt bool              `json:"build_into_prompt"`
	Done            bool              `json:"done"`
	CreatedAt       time.Time         `json:"created_at"`
}

// PokeMode tells whether the bot poked on its own or in response to a request
type PokeMode string

const (
	PokeModeActive  PokeMode = "主动"
	PokeModePassive PokeMode = "被动"
)

// ActionParameter describes one parameter the decision layer may fill
type ActionParameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ActionInfo is the self-description handed to the decision layer
type ActionInfo struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Parameters         []ActionParameter `json:"parameters"`
	Requirements       []string          `json:"requirements"`
	ActivationKeywords []string          `json:"activation_keywords"`
	ParallelAction     bool              `json:"parallel_action"`
}

// PokeActionInfo returns the description of the poke action
func PokeActionInfo() ActionInfo {
	return ActionInfo{
		Name:        "poke",
		Description: "调用 QQ 戳一戳功能",
		Parameters: []ActionParameter{
			{Name: "user_id", Description: "要戳的用户名称或 QQ 号；常见值如“我/自己/昵称/123456”。", Required: true},
			{Name: "group_id", Description: "群 ID（可选，不填会自动从上下文推断）"},
			{Name: "reply_id", Description: "回复消息 ID（可选）"},
			{Name: "poke_mode", Description: "主动或被动（可选，仅用于记录）"},
			{Name: "reason", Description: "使用戳一戳的原因（可选，会记录下来）"},
		},
		Requirements: []string{
			"用户明确要求“戳我/戳一下/poke”时可以使用",
			"友好互动氛围时可偶尔使用，但不要频繁",
			"不要在短时间内连续戳同一个人（尤其是群聊）",
		},
		ActivationKeywords: []string{"戳我", "戳一下", "poke"},
		ParallelAction:     false,
	}
}
