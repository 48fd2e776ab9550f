package types

// StopReason 停止原因
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"   // 自然停止
	StopReasonMaxTokens StopReason = "max_tokens" // 达到 token 限制
	StopReasonLength    StopReason = "length"     // OpenAI 的 max_tokens
	StopReasonStop      StopReason = "stop"       // 遇到停止序列
)

// ChatCompletionResponse 聊天补全响应（OpenAI 标准格式）
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice 选择项
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Message 消息结构（用于请求和响应）
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Usage Token 使用统计
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Text 返回第一个选择项的文本，无选择项时返回空串
func (r *ChatCompletionResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Truncated 判断响应是否因达到 max_tokens 而被截断
func (r *ChatCompletionResponse) Truncated() bool {
	if r == nil || len(r.Choices) == 0 {
		return false
	}
	reason := StopReason(r.Choices[0].FinishReason)
	return reason == StopReasonMaxTokens || reason == StopReasonLength
}
