package types

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatCompletionRequest 聊天补全请求（OpenAI 标准格式）
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// NewPrompt 构造单轮 system + user 请求
func NewPrompt(system, user string, maxTokens int, temperature float64) ChatCompletionRequest {
	req := ChatCompletionRequest{
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if system != "" {
		req.Messages = append(req.Messages, Message{Role: RoleSystem, Content: system})
	}
	req.Messages = append(req.Messages, Message{Role: RoleUser, Content: user})
	return req
}
